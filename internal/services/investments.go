package services

import (
	"context"
	"fmt"

	"ecobrain/internal/core"
)

// growthWindow is the length of the portfolio's monthlyGrowth series.
const growthWindow = 6

type InvestmentsView struct {
	Investments []core.Investment     `json:"investments"`
	Summary     core.PortfolioSummary `json:"summary"`
}

func (s *LedgerService) ListInvestments(ctx context.Context, userID int64) (InvestmentsView, error) {
	invs, err := s.store.ListInvestments(ctx, userID)
	if err != nil {
		return InvestmentsView{}, fmt.Errorf("list investments: %w", err)
	}
	if invs == nil {
		invs = []core.Investment{}
	}
	return InvestmentsView{
		Investments: invs,
		Summary:     core.SummarizePortfolio(invs, core.LastMonths(s.today(), growthWindow)),
	}, nil
}

func (s *LedgerService) CreateInvestment(ctx context.Context, userID int64, in core.NewInvestment) (core.Investment, error) {
	if err := in.Validate(); err != nil {
		return core.Investment{}, err
	}
	inv, err := s.store.CreateInvestment(ctx, in.Investment(userID))
	if err != nil {
		return core.Investment{}, fmt.Errorf("create investment: %w", err)
	}
	return inv, nil
}

func (s *LedgerService) UpdateInvestment(ctx context.Context, userID, id int64, in core.InvestmentUpdate) (core.Investment, error) {
	if err := in.Validate(); err != nil {
		return core.Investment{}, err
	}
	if _, err := owned(ctx, userID, id, "investment", s.store.GetInvestment); err != nil {
		return core.Investment{}, err
	}
	inv, err := s.store.UpdateInvestment(ctx, id, in)
	if err != nil {
		return core.Investment{}, fmt.Errorf("update investment: %w", err)
	}
	return inv, nil
}

func (s *LedgerService) DeleteInvestment(ctx context.Context, userID, id int64) error {
	if _, err := owned(ctx, userID, id, "investment", s.store.GetInvestment); err != nil {
		return err
	}
	ok, err := s.store.DeleteInvestment(ctx, id)
	return removed(ok, err, "investment")
}
