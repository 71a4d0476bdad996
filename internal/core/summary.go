package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// MonthTotals is income and expenses for one calendar month.
type MonthTotals struct {
	Month    string `json:"month"`
	Year     int    `json:"year"`
	Income   Money  `json:"income"`
	Expenses Money  `json:"expenses"`
}

// Savings is income minus expenses.
func (m MonthTotals) Savings() Money {
	return m.Income.Sub(m.Expenses)
}

// NameValue is one slice of a breakdown chart.
type NameValue struct {
	Name  string `json:"name"`
	Value Money  `json:"value"`
}

// MonthValue is one point of a monthly series.
type MonthValue struct {
	Month string `json:"month"`
	Year  int    `json:"year"`
	Value Money  `json:"value"`
}

// TrendPoint is the expense total of one month.
type TrendPoint struct {
	Month    string `json:"month"`
	Year     int    `json:"year"`
	Expenses Money  `json:"expenses"`
}

// Overview is the dashboard headline for one month.
type Overview struct {
	CurrentBalance   Money   `json:"currentBalance"`
	MonthlyIncome    Money   `json:"monthlyIncome"`
	MonthlyExpenses  Money   `json:"monthlyExpenses"`
	MonthlySavings   Money   `json:"monthlySavings"`
	BalanceChange    float64 `json:"balanceChange"`
	LastIncomeDate   *Date   `json:"lastIncomeDate"`
	BudgetPercentage int     `json:"budgetPercentage"`
	SavingsChange    float64 `json:"savingsChange"`
}

// PortfolioSummary aggregates every holding of a user.
type PortfolioSummary struct {
	TotalValue        Money        `json:"totalValue"`
	TotalInitialValue Money        `json:"totalInitialValue"`
	TotalProfit       Money        `json:"totalProfit"`
	ProfitPercentage  float64      `json:"profitPercentage"`
	Distribution      []NameValue  `json:"distribution"`
	MonthlyGrowth     []MonthValue `json:"monthlyGrowth"`
}

// SumByType splits transaction amounts into income and expenses.
func SumByType(txs []Transaction) (income, expenses Money) {
	for _, t := range txs {
		switch t.Type {
		case TypeIncome:
			income = income.Add(t.Amount)
		case TypeExpense:
			expenses = expenses.Add(t.Amount)
		}
	}
	return income, expenses
}

// MonthlyTotals buckets txs into months. Transactions outside months are ignored.
func MonthlyTotals(txs []Transaction, months []YearMonth) []MonthTotals {
	out := make([]MonthTotals, len(months))
	index := make(map[YearMonth]int, len(months))
	for i, ym := range months {
		out[i] = MonthTotals{Month: ym.Label(), Year: ym.Year}
		index[ym] = i
	}
	for _, t := range txs {
		i, ok := index[MonthOf(t.Date.Time)]
		if !ok {
			continue
		}
		switch t.Type {
		case TypeIncome:
			out[i].Income = out[i].Income.Add(t.Amount)
		case TypeExpense:
			out[i].Expenses = out[i].Expenses.Add(t.Amount)
		}
	}
	return out
}

// BuildOverview computes the dashboard figures from the current and previous
// month's transactions and the current month's budgets.
func BuildOverview(current, previous []Transaction, budgets []BudgetCategory, lastIncome *Transaction) Overview {
	income, expenses := SumByType(current)
	prevIncome, prevExpenses := SumByType(previous)
	balance := income.Sub(expenses)
	prevBalance := prevIncome.Sub(prevExpenses)

	var totalBudget Money
	for _, b := range budgets {
		totalBudget = totalBudget.Add(b.Amount)
	}

	o := Overview{
		CurrentBalance:   balance,
		MonthlyIncome:    income,
		MonthlyExpenses:  expenses,
		MonthlySavings:   balance,
		BalanceChange:    relativeChange(balance, prevBalance),
		BudgetPercentage: RoundedPercent(expenses, totalBudget),
		SavingsChange:    round1(decimal.NewFromFloat(Percent(balance, income) - Percent(prevBalance, prevIncome))),
	}
	if lastIncome != nil {
		d := lastIncome.Date
		o.LastIncomeDate = &d
	}
	return o
}

// relativeChange is (cur-prev)/|prev|*100 to one decimal, 0 when prev is 0.
func relativeChange(cur, prev Money) float64 {
	if prev.Cents == 0 {
		return 0
	}
	delta := cur.Sub(prev).Decimal()
	return round1(delta.Div(prev.Decimal().Abs()).Mul(hundred))
}

func round1(d decimal.Decimal) float64 {
	return d.Round(1).InexactFloat64()
}

// SummarizePortfolio totals holdings and groups them by type. MonthlyGrowth
// reports, for each month, the current value of holdings opened by that
// month's end.
func SummarizePortfolio(investments []Investment, months []YearMonth) PortfolioSummary {
	s := PortfolioSummary{
		Distribution:  []NameValue{},
		MonthlyGrowth: make([]MonthValue, 0, len(months)),
	}
	byType := map[string]Money{}
	for _, inv := range investments {
		s.TotalValue = s.TotalValue.Add(inv.Value)
		s.TotalInitialValue = s.TotalInitialValue.Add(inv.InitialValue)
		byType[inv.Type] = byType[inv.Type].Add(inv.Value)
	}
	s.TotalProfit = s.TotalValue.Sub(s.TotalInitialValue)
	s.ProfitPercentage = Percent(s.TotalProfit, s.TotalInitialValue)
	s.Distribution = sortedBreakdown(byType)

	for _, ym := range months {
		end := ym.End()
		var v Money
		for _, inv := range investments {
			if !inv.InitialDate.After(end.Time) {
				v = v.Add(inv.Value)
			}
		}
		s.MonthlyGrowth = append(s.MonthlyGrowth, MonthValue{Month: ym.Label(), Year: ym.Year, Value: v})
	}
	return s
}

// SavingsPotential is the mean monthly surplus, floored at zero.
func SavingsPotential(totals []MonthTotals) Money {
	if len(totals) == 0 {
		return Money{}
	}
	var sum Money
	for _, m := range totals {
		sum = sum.Add(m.Savings())
	}
	if sum.Cents <= 0 {
		return Money{}
	}
	return Money{Cents: sum.Cents / int64(len(totals))}
}

// ExpenseByCategory sums expenses per category name, largest first.
func ExpenseByCategory(txs []Transaction, names map[int64]string) []NameValue {
	sums := map[string]Money{}
	for _, t := range txs {
		if t.Type != TypeExpense {
			continue
		}
		name, ok := names[t.CategoryID]
		if !ok {
			name = "Other"
		}
		sums[name] = sums[name].Add(t.Amount)
	}
	return sortedBreakdown(sums)
}

// MonthlyTrend is the expense series of months.
func MonthlyTrend(txs []Transaction, months []YearMonth) []TrendPoint {
	totals := MonthlyTotals(txs, months)
	out := make([]TrendPoint, len(totals))
	for i, m := range totals {
		out[i] = TrendPoint{Month: m.Month, Year: m.Year, Expenses: m.Expenses}
	}
	return out
}

// SpendKey identifies the expenses of one category in one month.
type SpendKey struct {
	CategoryID int64
	Period     YearMonth
}

// BudgetStatuses joins budgets with their categories and spending.
func BudgetStatuses(budgets []BudgetCategory, categories map[int64]Category, spent map[SpendKey]Money) []BudgetStatus {
	out := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		st := BudgetStatus{BudgetCategory: b, Spent: spent[SpendKey{CategoryID: b.CategoryID, Period: b.Period()}]}
		if c, ok := categories[b.CategoryID]; ok {
			st.CategoryName, st.Color, st.Icon = c.Name, c.Color, c.Icon
		}
		st.Percentage = RoundedPercent(st.Spent, b.Amount)
		out = append(out, st)
	}
	return out
}

func sortedBreakdown(m map[string]Money) []NameValue {
	out := make([]NameValue, 0, len(m))
	for name, v := range m {
		out = append(out, NameValue{Name: name, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value.Cents != out[j].Value.Cents {
			return out[i].Value.Cents > out[j].Value.Cents
		}
		return out[i].Name < out[j].Name
	})
	return out
}
