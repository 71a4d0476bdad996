package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ecobrain/internal/amqp"
	"ecobrain/internal/core"
)

// Store is the persistence surface the services depend on.
// *storage.SQLiteRepository satisfies it.
type Store interface {
	Ping(ctx context.Context) error

	RegisterUser(ctx context.Context, u core.User, categories []core.NewCategory) (core.User, error)
	GetUser(ctx context.Context, id int64) (core.User, error)
	GetUserByUsername(ctx context.Context, username string) (core.User, error)

	CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
	GetCategory(ctx context.Context, id int64) (core.Category, error)
	ListCategories(ctx context.Context, userID int64) ([]core.Category, error)
	UpdateCategory(ctx context.Context, id int64, u core.CategoryUpdate) (core.Category, error)
	DeleteCategory(ctx context.Context, id int64) (bool, error)

	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	ListTransactions(ctx context.Context, userID int64, f core.TransactionFilter) ([]core.Transaction, error)
	CountTransactions(ctx context.Context, userID int64, f core.TransactionFilter) (int, error)
	RecentTransactions(ctx context.Context, userID int64, n int) ([]core.Transaction, error)
	LatestIncome(ctx context.Context, userID int64) (*core.Transaction, error)
	UpdateTransaction(ctx context.Context, id int64, u core.TransactionUpdate) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) (bool, error)
	SpentByCategory(ctx context.Context, userID int64, from, to core.Date) (map[core.SpendKey]core.Money, error)

	CreateBudgetCategory(ctx context.Context, b core.BudgetCategory) (core.BudgetCategory, error)
	GetBudgetCategory(ctx context.Context, id int64) (core.BudgetCategory, error)
	ListBudgetCategories(ctx context.Context, userID int64, f core.BudgetFilter) ([]core.BudgetCategory, error)
	UpdateBudgetCategory(ctx context.Context, id int64, u core.BudgetCategoryUpdate) (core.BudgetCategory, error)
	DeleteBudgetCategory(ctx context.Context, id int64) (bool, error)

	CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error)
	GetGoal(ctx context.Context, id int64) (core.Goal, error)
	ListGoals(ctx context.Context, userID int64) ([]core.Goal, error)
	UpdateGoal(ctx context.Context, id int64, u core.GoalUpdate) (core.Goal, error)
	DeleteGoal(ctx context.Context, id int64) (bool, error)

	CreateInvestment(ctx context.Context, i core.Investment) (core.Investment, error)
	GetInvestment(ctx context.Context, id int64) (core.Investment, error)
	ListInvestments(ctx context.Context, userID int64) ([]core.Investment, error)
	UpdateInvestment(ctx context.Context, id int64, u core.InvestmentUpdate) (core.Investment, error)
	DeleteInvestment(ctx context.Context, id int64) (bool, error)
}

// RecurringStore is what the scheduled jobs need.
type RecurringStore interface {
	DueRecurring(ctx context.Context, period core.YearMonth) ([]core.Transaction, error)
	CreateRecurringCopy(ctx context.Context, dup core.Transaction) (core.Transaction, bool, error)
	RolloverBudgets(ctx context.Context, from, to core.YearMonth) (int64, error)
}

// Publisher sends ledger events. *amqp.Client satisfies it.
type Publisher interface {
	PublishLedgerEvent(ctx context.Context, event *amqp.LedgerEvent) error
}

// Clock returns the current time. Tests pin it.
type Clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }

// authorize reports ErrForbidden unless userID owns entity.
func authorize[T core.Owned](entity T, userID int64) error {
	if entity.OwnerID() != userID {
		return core.ErrForbidden
	}
	return nil
}

// owned loads a record with get and checks that userID owns it.
func owned[T core.Owned](ctx context.Context, userID, id int64, noun string, get func(context.Context, int64) (T, error)) (T, error) {
	var zero T
	v, err := get(ctx, id)
	if err != nil {
		return zero, fmt.Errorf("get %s: %w", noun, err)
	}
	if err := authorize(v, userID); err != nil {
		return zero, fmt.Errorf("%s %d: %w", noun, id, err)
	}
	return v, nil
}

// removed turns a false delete result into ErrNotFound; a concurrent
// delete can win between the ownership check and the delete.
func removed(ok bool, err error, noun string) error {
	if err != nil {
		return fmt.Errorf("delete %s: %w", noun, err)
	}
	if !ok {
		return fmt.Errorf("delete %s: %w", noun, core.ErrNotFound)
	}
	return nil
}

// requireOwnedCategory validates that categoryID belongs to userID. It
// reports the problem as a field error on "categoryId", not as a 403 or 404.
func requireOwnedCategory(ctx context.Context, store Store, userID, categoryID int64) (core.Category, error) {
	c, err := store.GetCategory(ctx, categoryID)
	if errors.Is(err, core.ErrNotFound) || (err == nil && c.UserID != userID) {
		return core.Category{}, core.NewValidationError("categoryId", "must reference one of your categories")
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// categoryNames indexes a user's categories by id.
func categoryNames(ctx context.Context, store Store, userID int64) (map[int64]string, error) {
	cats, err := store.ListCategories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	names := make(map[int64]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}
	return names, nil
}
