package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tx(typ TransactionType, cents int64, d Date, category int64) Transaction {
	return Transaction{Type: typ, Amount: Money{Cents: cents}, Date: d, CategoryID: category}
}

func TestBuildOverview(t *testing.T) {
	current := []Transaction{
		tx(TypeIncome, 100000, NewDate(2025, 6, 1), 1),
		tx(TypeExpense, 40000, NewDate(2025, 6, 3), 2),
	}

	t.Run("no budget", func(t *testing.T) {
		o := BuildOverview(current, nil, nil, nil)
		assert.Equal(t, int64(100000), o.MonthlyIncome.Cents)
		assert.Equal(t, int64(40000), o.MonthlyExpenses.Cents)
		assert.Equal(t, int64(60000), o.MonthlySavings.Cents)
		assert.Equal(t, o.MonthlySavings, o.CurrentBalance)
		assert.Equal(t, 0, o.BudgetPercentage)
		assert.Equal(t, 0.0, o.BalanceChange)
		assert.Nil(t, o.LastIncomeDate)
	})

	t.Run("with budget and previous month", func(t *testing.T) {
		previous := []Transaction{
			tx(TypeIncome, 100000, NewDate(2025, 5, 1), 1),
			tx(TypeExpense, 50000, NewDate(2025, 5, 3), 2),
		}
		budgets := []BudgetCategory{{Amount: Money{Cents: 50000}}, {Amount: Money{Cents: 30000}}}
		last := current[0]
		o := BuildOverview(current, previous, budgets, &last)
		assert.Equal(t, 50, o.BudgetPercentage)
		assert.Equal(t, 20.0, o.BalanceChange)
		assert.Equal(t, 10.0, o.SavingsChange)
		require.NotNil(t, o.LastIncomeDate)
		assert.Equal(t, "2025-06-01", o.LastIncomeDate.String())
	})
}

func TestSummarizePortfolio(t *testing.T) {
	investments := []Investment{
		{Type: "stocks", Value: Money{Cents: 950000}, InitialValue: Money{Cents: 1000000}, InitialDate: NewDate(2025, 1, 15)},
	}
	months := LastMonths(time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC), 3)
	s := SummarizePortfolio(investments, months)

	assert.Equal(t, int64(-50000), s.TotalProfit.Cents)
	assert.Equal(t, -5.0, s.ProfitPercentage)
	require.Len(t, s.Distribution, 1)
	assert.Equal(t, NameValue{Name: "stocks", Value: Money{Cents: 950000}}, s.Distribution[0])
	require.Len(t, s.MonthlyGrowth, 3)
	assert.Equal(t, int64(0), s.MonthlyGrowth[0].Value.Cents)
	assert.Equal(t, int64(950000), s.MonthlyGrowth[1].Value.Cents)
	assert.Equal(t, int64(950000), s.MonthlyGrowth[2].Value.Cents)
}

func TestSummarizePortfolioEmpty(t *testing.T) {
	s := SummarizePortfolio(nil, nil)
	assert.Equal(t, 0.0, s.ProfitPercentage)
	assert.NotNil(t, s.Distribution)
}

func TestDistributionSortedByValue(t *testing.T) {
	s := SummarizePortfolio([]Investment{
		{Type: "bonds", Value: Money{Cents: 100}},
		{Type: "stocks", Value: Money{Cents: 300}},
		{Type: "bonds", Value: Money{Cents: 100}},
	}, nil)
	require.Len(t, s.Distribution, 2)
	assert.Equal(t, "stocks", s.Distribution[0].Name)
	assert.Equal(t, int64(200), s.Distribution[1].Value.Cents)
}

func TestSavingsPotential(t *testing.T) {
	totals := []MonthTotals{
		{Income: Money{Cents: 3000}, Expenses: Money{Cents: 1000}},
		{Income: Money{Cents: 3000}, Expenses: Money{Cents: 2000}},
		{Income: Money{Cents: 0}, Expenses: Money{Cents: 0}},
	}
	assert.Equal(t, int64(1000), SavingsPotential(totals).Cents)

	deficit := []MonthTotals{{Expenses: Money{Cents: 500}}}
	assert.Equal(t, int64(0), SavingsPotential(deficit).Cents)
}

func TestMonthlyTotalsIgnoresOutOfRange(t *testing.T) {
	months := []YearMonth{{2025, time.May}, {2025, time.June}}
	totals := MonthlyTotals([]Transaction{
		tx(TypeIncome, 100, NewDate(2025, 4, 30), 1),
		tx(TypeIncome, 200, NewDate(2025, 5, 31), 1),
		tx(TypeExpense, 50, NewDate(2025, 6, 1), 2),
	}, months)
	assert.Equal(t, []MonthTotals{
		{Month: "May", Year: 2025, Income: Money{Cents: 200}},
		{Month: "Jun", Year: 2025, Expenses: Money{Cents: 50}},
	}, totals)
}

func TestBudgetStatuses(t *testing.T) {
	budgets := []BudgetCategory{{ID: 1, CategoryID: 5, Amount: Money{Cents: 20000}, Month: 6, Year: 2025}}
	cats := map[int64]Category{5: {ID: 5, Name: "Food", Color: "#fff", Icon: "restaurant"}}
	spent := map[SpendKey]Money{
		{CategoryID: 5, Period: YearMonth{2025, time.June}}: {Cents: 25000},
		{CategoryID: 5, Period: YearMonth{2025, time.May}}:  {Cents: 1},
	}
	st := BudgetStatuses(budgets, cats, spent)
	require.Len(t, st, 1)
	assert.Equal(t, "Food", st[0].CategoryName)
	assert.Equal(t, int64(25000), st[0].Spent.Cents)
	assert.Equal(t, 125, st[0].Percentage)
	assert.True(t, st[0].Exceeded())
}

func TestBudgetStatusExceededIgnoresRounding(t *testing.T) {
	budget := BudgetCategory{Amount: Money{Cents: 10000}}
	tests := []struct {
		name  string
		spent int64
		want  bool
	}{
		{name: "under", spent: 9999, want: false},
		{name: "exactly spent", spent: 10000, want: false},
		{name: "forty cents over", spent: 10040, want: true},
		{name: "well over", spent: 15000, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := BudgetStatuses([]BudgetCategory{budget}, nil, map[SpendKey]Money{{Period: budget.Period()}: {Cents: tt.spent}})
			require.Len(t, st, 1)
			assert.Equal(t, tt.want, st[0].Exceeded())
		})
	}
	assert.Equal(t, 100, BudgetStatuses([]BudgetCategory{budget}, nil, map[SpendKey]Money{{Period: budget.Period()}: {Cents: 10040}})[0].Percentage)
}

func TestBuildReport(t *testing.T) {
	now := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
	months := LastMonths(now, 6)
	txs := []Transaction{
		tx(TypeExpense, 1200, NewDate(2025, 6, 2), 1),
		tx(TypeExpense, 800, NewDate(2025, 5, 2), 2),
		tx(TypeIncome, 5000, NewDate(2025, 6, 1), 3),
	}
	names := map[int64]string{1: "Food", 2: "Transport", 3: "Income"}

	full := BuildReport(ReportOverview, txs, months, txs, now, names)
	assert.Len(t, full.Charts, 3)
	byCat, ok := full.Charts["expenseByCategory"].([]NameValue)
	require.True(t, ok)
	assert.Equal(t, []NameValue{{"Food", Money{1200}}, {"Transport", Money{800}}}, byCat)
	trend, ok := full.Charts["monthlyTrend"].([]TrendPoint)
	require.True(t, ok)
	assert.Len(t, trend, 12)
	assert.Equal(t, int64(1200), trend[5].Expenses.Cents)

	income := BuildReport(ReportIncome, txs, months, txs, now, names)
	assert.Len(t, income.Charts, 1)
	assert.Contains(t, income.Charts, "expenseVsIncome")

	_, err := ParseReportType("weird")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
