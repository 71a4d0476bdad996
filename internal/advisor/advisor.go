// Package advisor produces spending suggestions from a month of activity.
package advisor

import (
	"context"
	"fmt"
	"sort"

	"ecobrain/internal/core"
)

type Kind string

const (
	KindBudget   Kind = "budget"
	KindCategory Kind = "category"
	KindSavings  Kind = "savings"
)

type Impact string

const (
	ImpactHigh   Impact = "high"
	ImpactMedium Impact = "medium"
	ImpactLow    Impact = "low"
)

type Suggestion struct {
	ID          string `json:"id"`
	Kind        Kind   `json:"kind"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Impact      Impact `json:"impact"`
}

// Snapshot is what a Suggester looks at: one month of transactions, the
// budget statuses of that month and the caller's category names.
type Snapshot struct {
	Transactions []core.Transaction
	Budgets      []core.BudgetStatus
	Categories   map[int64]string
}

type Suggester interface {
	Suggest(ctx context.Context, snap Snapshot) []Suggestion
}

// Thresholds of the rule-based suggester, in percent.
const (
	DefaultCategoryShare = 30
	DefaultSavingsRate   = 10
)

// Rules is the default Suggester. The zero value uses the default thresholds.
type Rules struct {
	CategoryShare int
	SavingsRate   int
}

func NewRules() *Rules {
	return &Rules{CategoryShare: DefaultCategoryShare, SavingsRate: DefaultSavingsRate}
}

func (r *Rules) Suggest(ctx context.Context, snap Snapshot) []Suggestion {
	out := []Suggestion{}
	out = append(out, r.overBudget(snap)...)
	out = append(out, r.dominantCategories(snap)...)
	if s, ok := r.lowSavings(snap); ok {
		out = append(out, s)
	}
	return out
}

func (r *Rules) overBudget(snap Snapshot) []Suggestion {
	var out []Suggestion
	for _, b := range snap.Budgets {
		if !b.Exceeded() {
			continue
		}
		name := b.CategoryName
		if name == "" {
			name = snap.Categories[b.CategoryID]
		}
		over := b.Spent.Sub(b.Amount)
		out = append(out, Suggestion{
			ID:          fmt.Sprintf("budget-%d", b.ID),
			Kind:        KindBudget,
			Title:       fmt.Sprintf("%s is over budget", name),
			Description: fmt.Sprintf("You spent %s of a %s budget (%d%%), %s over.", b.Spent, b.Amount, b.Percentage, over),
			Impact:      ImpactHigh,
		})
	}
	return out
}

func (r *Rules) dominantCategories(snap Snapshot) []Suggestion {
	threshold := r.CategoryShare
	if threshold <= 0 {
		threshold = DefaultCategoryShare
	}

	var total core.Money
	byCategory := map[int64]core.Money{}
	for _, t := range snap.Transactions {
		if t.Type != core.TypeExpense {
			continue
		}
		total = total.Add(t.Amount)
		byCategory[t.CategoryID] = byCategory[t.CategoryID].Add(t.Amount)
	}
	if total.Cents == 0 {
		return nil
	}

	ids := make([]int64, 0, len(byCategory))
	for id := range byCategory {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []Suggestion
	for _, id := range ids {
		share := core.RoundedPercent(byCategory[id], total)
		// strictly above the threshold
		if core.Percent(byCategory[id], total) <= float64(threshold) {
			continue
		}
		name, ok := snap.Categories[id]
		if !ok {
			name = "One category"
		}
		out = append(out, Suggestion{
			ID:          fmt.Sprintf("category-%d", id),
			Kind:        KindCategory,
			Title:       fmt.Sprintf("%s takes %d%% of your spending", name, share),
			Description: fmt.Sprintf("%s went to %s this month out of %s in total. Look for cuts there first.", byCategory[id], name, total),
			Impact:      ImpactMedium,
		})
	}
	return out
}

func (r *Rules) lowSavings(snap Snapshot) (Suggestion, bool) {
	threshold := r.SavingsRate
	if threshold <= 0 {
		threshold = DefaultSavingsRate
	}
	income, expenses := core.SumByType(snap.Transactions)
	if income.Cents == 0 {
		return Suggestion{}, false
	}
	rate := core.Percent(income.Sub(expenses), income)
	if rate >= float64(threshold) {
		return Suggestion{}, false
	}
	impact := ImpactMedium
	if rate < 0 {
		impact = ImpactHigh
	}
	return Suggestion{
		ID:          "savings-rate",
		Kind:        KindSavings,
		Title:       fmt.Sprintf("Savings rate is %.1f%%", rate),
		Description: fmt.Sprintf("You kept %s of %s earned this month. Aim for at least %d%%.", income.Sub(expenses), income, threshold),
		Impact:      impact,
	}, true
}
