package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"ecobrain/internal/core"
)

// savingsWindow is how many months, current included, feed savingsPotential.
const savingsWindow = 3

type GoalsView struct {
	Goals            []core.Goal `json:"goals"`
	SavingsPotential core.Money  `json:"savingsPotential"`
}

func (s *LedgerService) ListGoals(ctx context.Context, userID int64) (GoalsView, error) {
	months := core.LastMonths(s.today(), savingsWindow)
	window := core.TransactionFilter{From: months[0].Start(), To: months[len(months)-1].End()}

	var (
		goals []core.Goal
		txs   []core.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		goals, err = s.store.ListGoals(gctx, userID)
		if err != nil {
			return fmt.Errorf("list goals: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		txs, err = s.store.ListTransactions(gctx, userID, window)
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return GoalsView{}, err
	}
	if goals == nil {
		goals = []core.Goal{}
	}

	return GoalsView{
		Goals:            goals,
		SavingsPotential: core.SavingsPotential(core.MonthlyTotals(txs, months)),
	}, nil
}

func (s *LedgerService) CreateGoal(ctx context.Context, userID int64, in core.NewGoal) (core.Goal, error) {
	if err := in.Validate(); err != nil {
		return core.Goal{}, err
	}
	goal, err := s.store.CreateGoal(ctx, in.Goal(userID))
	if err != nil {
		return core.Goal{}, fmt.Errorf("create goal: %w", err)
	}
	return goal, nil
}

func (s *LedgerService) UpdateGoal(ctx context.Context, userID, id int64, in core.GoalUpdate) (core.Goal, error) {
	if err := in.Validate(); err != nil {
		return core.Goal{}, err
	}
	if _, err := owned(ctx, userID, id, "goal", s.store.GetGoal); err != nil {
		return core.Goal{}, err
	}
	goal, err := s.store.UpdateGoal(ctx, id, in)
	if err != nil {
		return core.Goal{}, fmt.Errorf("update goal: %w", err)
	}
	return goal, nil
}

func (s *LedgerService) DeleteGoal(ctx context.Context, userID, id int64) error {
	if _, err := owned(ctx, userID, id, "goal", s.store.GetGoal); err != nil {
		return err
	}
	ok, err := s.store.DeleteGoal(ctx, id)
	return removed(ok, err, "goal")
}
