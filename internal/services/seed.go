package services

import (
	"context"
	"fmt"
	"time"

	"ecobrain/internal/core"
	"ecobrain/internal/log"
)

// DemoUser is the account SeedDemo creates.
var DemoUser = core.NewUser{
	Username:  "demo",
	Password:  "password",
	Email:     "demo@ecobrain.app",
	FirstName: "Demo",
	LastName:  "User",
}

type demoEntry struct {
	category    string
	description string
	cents       int64
	day         int
	txType      core.TransactionType
	recurring   bool
}

var demoMonth = []demoEntry{
	{"Income", "Salary", 320000, 1, core.TypeIncome, true},
	{"Housing", "Rent", 95000, 2, core.TypeExpense, true},
	{"Bills", "Electricity and internet", 11850, 4, core.TypeExpense, false},
	{"Food", "Weekly groceries", 8740, 6, core.TypeExpense, false},
	{"Transport", "Monthly transit pass", 5500, 7, core.TypeExpense, true},
	{"Food", "Weekly groceries", 9215, 13, core.TypeExpense, false},
	{"Entertainment", "Cinema", 2400, 16, core.TypeExpense, false},
	{"Food", "Weekly groceries", 7980, 20, core.TypeExpense, false},
	{"Health", "Pharmacy", 1890, 22, core.TypeExpense, false},
	{"Food", "Weekly groceries", 8560, 27, core.TypeExpense, false},
}

var demoBudgets = map[string]int64{
	"Food":          40000,
	"Housing":       100000,
	"Transport":     8000,
	"Entertainment": 6000,
	"Bills":         15000,
}

// SeedDemo registers DemoUser and fills the account with three months of
// transactions up to now, current-month budgets, goals and investments.
// An existing demo account is core.ErrConflict and nothing is written.
func SeedDemo(ctx context.Context, accounts *AuthService, ledger *LedgerService, now time.Time) (core.User, error) {
	sess, err := accounts.Register(ctx, DemoUser)
	if err != nil {
		return core.User{}, err
	}
	user := sess.User

	cats, err := ledger.ListCategories(ctx, user.ID)
	if err != nil {
		return user, err
	}
	ids := make(map[string]int64, len(cats))
	for _, c := range cats {
		ids[c.Name] = c.ID
	}

	today := core.DateOf(now)
	current := core.MonthOf(now)
	created := 0
	for back := 2; back >= 0; back-- {
		ym := current.Add(-back)
		for _, e := range demoMonth {
			date := core.NewDate(ym.Year, int(ym.Month), e.day)
			if date.After(today.Time) {
				continue
			}
			_, err := ledger.CreateTransaction(ctx, user.ID, core.NewTransaction{
				CategoryID:  ids[e.category],
				Description: e.description,
				Amount:      core.Money{Cents: e.cents},
				Date:        date,
				Type:        e.txType,
				IsRecurring: e.recurring,
			})
			if err != nil {
				return user, fmt.Errorf("seed transaction %q: %w", e.description, err)
			}
			created++
		}
	}

	for name, cents := range demoBudgets {
		_, err := ledger.CreateBudgetCategory(ctx, user.ID, core.NewBudgetCategory{
			CategoryID: ids[name],
			Amount:     core.Money{Cents: cents},
			Month:      int(current.Month),
			Year:       current.Year,
		})
		if err != nil {
			return user, fmt.Errorf("seed budget %s: %w", name, err)
		}
	}

	goals := []core.NewGoal{
		{Name: "Emergency fund", Target: core.Money{Cents: 1000000}, CurrentAmount: core.Money{Cents: 350000},
			Deadline: core.DateOf(now.AddDate(1, 0, 0)), Category: "Savings"},
		{Name: "Summer trip", Target: core.Money{Cents: 250000}, CurrentAmount: core.Money{Cents: 80000},
			Deadline: core.DateOf(now.AddDate(0, 6, 0)), Category: "Travel"},
	}
	for _, g := range goals {
		if _, err := ledger.CreateGoal(ctx, user.ID, g); err != nil {
			return user, fmt.Errorf("seed goal %q: %w", g.Name, err)
		}
	}

	rate := 7.5
	investments := []core.NewInvestment{
		{Name: "World index fund", Type: "ETF", Value: core.Money{Cents: 540000}, InitialValue: core.Money{Cents: 500000},
			InitialDate: core.DateOf(now.AddDate(-1, 0, 0)), Institution: "Demo Broker", ReturnRate: &rate},
		{Name: "Government bonds", Type: "Bonds", Value: core.Money{Cents: 210000}, InitialValue: core.Money{Cents: 200000},
			InitialDate: core.DateOf(now.AddDate(0, -8, 0)), Institution: "Demo Bank"},
	}
	for _, in := range investments {
		if _, err := ledger.CreateInvestment(ctx, user.ID, in); err != nil {
			return user, fmt.Errorf("seed investment %q: %w", in.Name, err)
		}
	}

	log.FromContext(ctx).WithComponent(log.ComponentLedger).InfoContext(ctx, "Demo data seeded",
		log.FieldUserID, user.ID,
		"transactions", created,
		"budgets", len(demoBudgets),
		"goals", len(goals),
		"investments", len(investments))
	return user, nil
}
