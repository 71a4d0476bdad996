package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"ecobrain/internal/core"
)

// BudgetStatuses lists the budgets matching f with their category and the
// amount spent in each budget's month.
func (s *LedgerService) BudgetStatuses(ctx context.Context, userID int64, f core.BudgetFilter) ([]core.BudgetStatus, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	budgets, err := s.store.ListBudgetCategories(ctx, userID, f)
	if err != nil {
		return nil, fmt.Errorf("list budget categories: %w", err)
	}
	if len(budgets) == 0 {
		return []core.BudgetStatus{}, nil
	}

	first, last := budgets[0].Period(), budgets[0].Period()
	for _, b := range budgets[1:] {
		p := b.Period()
		if p.Start().Before(first.Start().Time) {
			first = p
		}
		if p.Start().After(last.Start().Time) {
			last = p
		}
	}

	var (
		cats  []core.Category
		spent map[core.SpendKey]core.Money
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cats, err = s.store.ListCategories(gctx, userID)
		if err != nil {
			return fmt.Errorf("list categories: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		spent, err = s.store.SpentByCategory(gctx, userID, first.Start(), last.End())
		if err != nil {
			return fmt.Errorf("sum spending: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byID := make(map[int64]core.Category, len(cats))
	for _, c := range cats {
		byID[c.ID] = c
	}
	return core.BudgetStatuses(budgets, byID, spent), nil
}

func (s *LedgerService) CreateBudgetCategory(ctx context.Context, userID int64, in core.NewBudgetCategory) (core.BudgetCategory, error) {
	if err := in.Validate(); err != nil {
		return core.BudgetCategory{}, err
	}
	if _, err := requireOwnedCategory(ctx, s.store, userID, in.CategoryID); err != nil {
		return core.BudgetCategory{}, err
	}
	b, err := s.store.CreateBudgetCategory(ctx, in.BudgetCategory(userID))
	if err != nil {
		return core.BudgetCategory{}, fmt.Errorf("create budget category: %w", err)
	}
	return b, nil
}

func (s *LedgerService) UpdateBudgetCategory(ctx context.Context, userID, id int64, in core.BudgetCategoryUpdate) (core.BudgetCategory, error) {
	if err := in.Validate(); err != nil {
		return core.BudgetCategory{}, err
	}
	if _, err := owned(ctx, userID, id, "budget category", s.store.GetBudgetCategory); err != nil {
		return core.BudgetCategory{}, err
	}
	if in.CategoryID != nil {
		if _, err := requireOwnedCategory(ctx, s.store, userID, *in.CategoryID); err != nil {
			return core.BudgetCategory{}, err
		}
	}
	b, err := s.store.UpdateBudgetCategory(ctx, id, in)
	if err != nil {
		return core.BudgetCategory{}, fmt.Errorf("update budget category: %w", err)
	}
	return b, nil
}

func (s *LedgerService) DeleteBudgetCategory(ctx context.Context, userID, id int64) error {
	if _, err := owned(ctx, userID, id, "budget category", s.store.GetBudgetCategory); err != nil {
		return err
	}
	ok, err := s.store.DeleteBudgetCategory(ctx, id)
	return removed(ok, err, "budget category")
}
