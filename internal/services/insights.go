package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"ecobrain/internal/advisor"
	"ecobrain/internal/core"
)

// chartWindow is the default spending-chart and report range, in months.
const chartWindow = 6

// InsightService computes the read-only dashboard, report and suggestion
// views. Nothing is cached; every call reads the rows again.
type InsightService struct {
	store     Store
	suggester advisor.Suggester
	now       Clock
}

func NewInsightService(store Store, suggester advisor.Suggester) *InsightService {
	if suggester == nil {
		suggester = advisor.NewRules()
	}
	return &InsightService{store: store, suggester: suggester, now: systemClock}
}

func (s *InsightService) WithClock(now Clock) *InsightService {
	s.now = now
	return s
}

func (s *InsightService) monthTransactions(ctx context.Context, userID int64, ym core.YearMonth) ([]core.Transaction, error) {
	return s.rangeTransactions(ctx, userID, ym.Start(), ym.End())
}

func (s *InsightService) rangeTransactions(ctx context.Context, userID int64, from, to core.Date) ([]core.Transaction, error) {
	txs, err := s.store.ListTransactions(ctx, userID, core.TransactionFilter{From: from, To: to})
	if err != nil {
		return nil, fmt.Errorf("list transactions %s..%s: %w", from, to, err)
	}
	return txs, nil
}

// Overview builds the dashboard headline for the current month.
func (s *InsightService) Overview(ctx context.Context, userID int64) (core.Overview, error) {
	current := core.MonthOf(s.now())

	var (
		cur, prev  []core.Transaction
		budgets    []core.BudgetCategory
		lastIncome *core.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		cur, err = s.monthTransactions(gctx, userID, current)
		return err
	})
	g.Go(func() (err error) {
		prev, err = s.monthTransactions(gctx, userID, current.Add(-1))
		return err
	})
	g.Go(func() error {
		var err error
		budgets, err = s.store.ListBudgetCategories(gctx, userID, core.BudgetFilter{Month: int(current.Month), Year: current.Year})
		if err != nil {
			return fmt.Errorf("list budget categories: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		lastIncome, err = s.store.LatestIncome(gctx, userID)
		if err != nil {
			return fmt.Errorf("latest income: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.Overview{}, err
	}
	return core.BuildOverview(cur, prev, budgets, lastIncome), nil
}

type SpendingChart struct {
	ChartData []core.MonthTotals `json:"chartData"`
}

// SpendingChart returns income and expenses per month for timeRange, oldest
// first, ending with the current month.
func (s *InsightService) SpendingChart(ctx context.Context, userID int64, timeRange string) (SpendingChart, error) {
	n, err := core.ParseTimeRange("timeRange", timeRange, chartWindow)
	if err != nil {
		return SpendingChart{}, err
	}
	months := core.LastMonths(s.now(), n)
	txs, err := s.rangeTransactions(ctx, userID, months[0].Start(), months[len(months)-1].End())
	if err != nil {
		return SpendingChart{}, err
	}
	return SpendingChart{ChartData: core.MonthlyTotals(txs, months)}, nil
}

// Report assembles the charts reportType asks for over timeRange.
func (s *InsightService) Report(ctx context.Context, userID int64, reportType, timeRange string) (core.Report, error) {
	rt, err := core.ParseReportType(reportType)
	if err != nil {
		return core.Report{}, err
	}
	n, err := core.ParseTimeRange("timeRange", timeRange, chartWindow)
	if err != nil {
		return core.Report{}, err
	}

	now := s.now()
	months := core.LastMonths(now, n)
	year := core.MonthsOfYear(now.Year())

	var (
		rangeTxs, yearTxs []core.Transaction
		names             map[int64]string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		rangeTxs, err = s.rangeTransactions(gctx, userID, months[0].Start(), months[len(months)-1].End())
		return err
	})
	g.Go(func() (err error) {
		yearTxs, err = s.rangeTransactions(gctx, userID, year[0].Start(), year[11].End())
		return err
	})
	g.Go(func() (err error) {
		names, err = categoryNames(gctx, s.store, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.Report{}, err
	}
	return core.BuildReport(rt, rangeTxs, months, yearTxs, now, names), nil
}

type SuggestionsView struct {
	Suggestions []advisor.Suggestion `json:"suggestions"`
}

// Suggestions runs the configured Suggester over the current month.
func (s *InsightService) Suggestions(ctx context.Context, userID int64) (SuggestionsView, error) {
	current := core.MonthOf(s.now())
	snap, err := s.snapshot(ctx, userID, current)
	if err != nil {
		return SuggestionsView{}, err
	}
	out := s.suggester.Suggest(ctx, snap)
	if out == nil {
		out = []advisor.Suggestion{}
	}
	return SuggestionsView{Suggestions: out}, nil
}

func (s *InsightService) snapshot(ctx context.Context, userID int64, ym core.YearMonth) (advisor.Snapshot, error) {
	var (
		snap    advisor.Snapshot
		cats    []core.Category
		budgets []core.BudgetCategory
		spent   map[core.SpendKey]core.Money
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.Transactions, err = s.monthTransactions(gctx, userID, ym)
		return err
	})
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
		budgets, err = s.store.ListBudgetCategories(gctx, userID, core.BudgetFilter{Month: int(ym.Month), Year: ym.Year})
		if err != nil {
			return fmt.Errorf("list budget categories: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		spent, err = s.store.SpentByCategory(gctx, userID, ym.Start(), ym.End())
		if err != nil {
			return fmt.Errorf("sum spending: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return advisor.Snapshot{}, err
	}

	byID := make(map[int64]core.Category, len(cats))
	snap.Categories = make(map[int64]string, len(cats))
	for _, c := range cats {
		byID[c.ID] = c
		snap.Categories[c.ID] = c.Name
	}
	snap.Budgets = core.BudgetStatuses(budgets, byID, spent)
	return snap, nil
}

// Ping reports whether the store is reachable, for readiness probes.
func (s *InsightService) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.store.Ping(ctx)
}
