package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"ecobrain/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "ecobrain.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

// seedUser registers a user with the default categories and returns it with
// its expense and income category ids.
func seedUser(t *testing.T, repo *SQLiteRepository, username string) (core.User, int64, int64) {
	t.Helper()
	ctx := context.Background()
	u, err := repo.RegisterUser(ctx, core.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		FirstName:    "Test",
	}, core.DefaultCategories())
	require.NoError(t, err)

	cats, err := repo.ListCategories(ctx, u.ID)
	require.NoError(t, err)
	var expense, income int64
	for _, c := range cats {
		switch c.Name {
		case "Food":
			expense = c.ID
		case "Income":
			income = c.ID
		}
	}
	require.NotZero(t, expense)
	require.NotZero(t, income)
	return u, expense, income
}

func TestRegisterUserSeedsCategories(t *testing.T) {
	repo := newTestRepo(t)
	u, _, _ := seedUser(t, repo, "alice")

	cats, err := repo.ListCategories(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Len(t, cats, len(core.DefaultCategories()))

	got, err := repo.GetUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)
}

func TestDuplicateUsernameConflicts(t *testing.T) {
	repo := newTestRepo(t)
	seedUser(t, repo, "alice")

	_, err := repo.RegisterUser(context.Background(), core.User{
		Username: "alice", Email: "other@example.com", PasswordHash: "x", FirstName: "Al",
	}, core.DefaultCategories())
	assert.ErrorIs(t, err, core.ErrConflict)

	// the failed registration must not leave orphaned categories behind
	var n int
	require.NoError(t, repo.db.QueryRow(`SELECT COUNT(*) FROM categories`).Scan(&n))
	assert.Equal(t, len(core.DefaultCategories()), n)
}

func TestTransactionRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u, food, _ := seedUser(t, repo, "alice")

	created, err := repo.CreateTransaction(ctx, core.Transaction{
		UserID: u.ID, CategoryID: food, Description: "Groceries", Amount: core.Money{Cents: 4250},
		Date: core.NewDate(2025, 6, 3), Type: core.TypeExpense, Notes: "weekly",
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	got, err := repo.GetTransaction(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Description, got.Description)
	assert.Equal(t, created.Amount, got.Amount)
	assert.Equal(t, "2025-06-03", got.Date.String())
	assert.Equal(t, core.TypeExpense, got.Type)
	assert.Equal(t, "weekly", got.Notes)
	assert.Nil(t, got.SourceID)
}

func TestEmptyUpdateOnlyTouchesUpdatedAt(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u, food, _ := seedUser(t, repo, "alice")

	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return clock }

	created, err := repo.CreateTransaction(ctx, core.Transaction{
		UserID: u.ID, CategoryID: food, Description: "Rent", Amount: core.Money{Cents: 100000},
		Date: core.NewDate(2025, 6, 1), Type: core.TypeExpense,
	})
	require.NoError(t, err)

	clock = clock.Add(time.Hour)
	updated, err := repo.UpdateTransaction(ctx, created.ID, core.TransactionUpdate{})
	require.NoError(t, err)

	assert.Equal(t, clock, updated.UpdatedAt)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
	updated.UpdatedAt = created.UpdatedAt
	assert.Equal(t, created, updated)
}

func TestUpdateMissingIsNotFound(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.UpdateGoal(context.Background(), 404, core.GoalUpdate{})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestDeleteThenGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u, food, _ := seedUser(t, repo, "alice")

	created, err := repo.CreateTransaction(ctx, core.Transaction{
		UserID: u.ID, CategoryID: food, Description: "Coffee", Amount: core.Money{Cents: 250},
		Date: core.NewDate(2025, 6, 3), Type: core.TypeExpense,
	})
	require.NoError(t, err)

	ok, err := repo.DeleteTransaction(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = repo.GetTransaction(ctx, created.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	ok, err = repo.DeleteTransaction(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEmptyUpdateAndDeleteForEveryEntity(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	later := start.Add(time.Hour)
	rate := 3.25

	// update applies an empty partial update and returns the stored row with
	// its updatedAt, and the row's updatedAt reset to start for comparison.
	tests := []struct {
		name   string
		create func(t *testing.T, repo *SQLiteRepository, userID, categoryID int64) (int64, any)
		update func(repo *SQLiteRepository, id int64) (any, time.Time, error)
		get    func(repo *SQLiteRepository, id int64) error
		delete func(repo *SQLiteRepository, id int64) (bool, error)
	}{
		{
			name: "category",
			create: func(t *testing.T, repo *SQLiteRepository, userID, _ int64) (int64, any) {
				c, err := repo.CreateCategory(ctx, core.Category{UserID: userID, Name: "Pets", Type: core.TypeExpense, Color: "#795548", Icon: "pets"})
				require.NoError(t, err)
				return c.ID, c
			},
			update: func(repo *SQLiteRepository, id int64) (any, time.Time, error) {
				c, err := repo.UpdateCategory(ctx, id, core.CategoryUpdate{})
				at := c.UpdatedAt
				c.UpdatedAt = start
				return c, at, err
			},
			get: func(repo *SQLiteRepository, id int64) error {
				_, err := repo.GetCategory(ctx, id)
				return err
			},
			delete: func(repo *SQLiteRepository, id int64) (bool, error) { return repo.DeleteCategory(ctx, id) },
		},
		{
			name: "budget category",
			create: func(t *testing.T, repo *SQLiteRepository, userID, categoryID int64) (int64, any) {
				b, err := repo.CreateBudgetCategory(ctx, core.BudgetCategory{UserID: userID, CategoryID: categoryID, Amount: core.Money{Cents: 40000}, Month: 6, Year: 2025})
				require.NoError(t, err)
				return b.ID, b
			},
			update: func(repo *SQLiteRepository, id int64) (any, time.Time, error) {
				b, err := repo.UpdateBudgetCategory(ctx, id, core.BudgetCategoryUpdate{})
				at := b.UpdatedAt
				b.UpdatedAt = start
				return b, at, err
			},
			get: func(repo *SQLiteRepository, id int64) error {
				_, err := repo.GetBudgetCategory(ctx, id)
				return err
			},
			delete: func(repo *SQLiteRepository, id int64) (bool, error) { return repo.DeleteBudgetCategory(ctx, id) },
		},
		{
			name: "goal",
			create: func(t *testing.T, repo *SQLiteRepository, userID, _ int64) (int64, any) {
				g, err := repo.CreateGoal(ctx, core.Goal{UserID: userID, Name: "Bike", Target: core.Money{Cents: 120000},
					CurrentAmount: core.Money{Cents: 30000}, Deadline: core.NewDate(2025, 12, 31), Category: "Leisure", Notes: "road bike"})
				require.NoError(t, err)
				return g.ID, g
			},
			update: func(repo *SQLiteRepository, id int64) (any, time.Time, error) {
				g, err := repo.UpdateGoal(ctx, id, core.GoalUpdate{})
				at := g.UpdatedAt
				g.UpdatedAt = start
				return g, at, err
			},
			get: func(repo *SQLiteRepository, id int64) error {
				_, err := repo.GetGoal(ctx, id)
				return err
			},
			delete: func(repo *SQLiteRepository, id int64) (bool, error) { return repo.DeleteGoal(ctx, id) },
		},
		{
			name: "investment",
			create: func(t *testing.T, repo *SQLiteRepository, userID, _ int64) (int64, any) {
				i, err := repo.CreateInvestment(ctx, core.Investment{UserID: userID, Name: "Bond ladder", Type: "bonds",
					Value: core.Money{Cents: 510000}, InitialValue: core.Money{Cents: 500000}, InitialDate: core.NewDate(2024, 9, 1),
					Institution: "Bank", ReturnRate: &rate, Notes: "five rungs"})
				require.NoError(t, err)
				return i.ID, i
			},
			update: func(repo *SQLiteRepository, id int64) (any, time.Time, error) {
				i, err := repo.UpdateInvestment(ctx, id, core.InvestmentUpdate{})
				at := i.UpdatedAt
				i.UpdatedAt = start
				return i, at, err
			},
			get: func(repo *SQLiteRepository, id int64) error {
				_, err := repo.GetInvestment(ctx, id)
				return err
			},
			delete: func(repo *SQLiteRepository, id int64) (bool, error) { return repo.DeleteInvestment(ctx, id) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newTestRepo(t)
			u, food, _ := seedUser(t, repo, "alice")

			clock := start
			repo.now = func() time.Time { return clock }
			id, created := tt.create(t, repo, u.ID, food)

			clock = later
			updated, updatedAt, err := tt.update(repo, id)
			require.NoError(t, err)
			assert.Equal(t, later, updatedAt)
			assert.Equal(t, created, updated)

			ok, err := tt.delete(repo, id)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.ErrorIs(t, tt.get(repo, id), core.ErrNotFound)

			ok, err = tt.delete(repo, id)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestListTransactionsPaging(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u, food, income := seedUser(t, repo, "alice")
	other, otherFood, _ := seedUser(t, repo, "bob")

	for i := 1; i <= 12; i++ {
		_, err := repo.CreateTransaction(ctx, core.Transaction{
			UserID: u.ID, CategoryID: food, Description: fmt.Sprintf("Expense %02d", i),
			Amount: core.Money{Cents: int64(i * 100)}, Date: core.NewDate(2025, 5, i), Type: core.TypeExpense,
		})
		require.NoError(t, err)
	}
	_, err := repo.CreateTransaction(ctx, core.Transaction{
		UserID: u.ID, CategoryID: income, Description: "Salary", Notes: "June payroll",
		Amount: core.Money{Cents: 300000}, Date: core.NewDate(2025, 6, 1), Type: core.TypeIncome,
	})
	require.NoError(t, err)
	_, err = repo.CreateTransaction(ctx, core.Transaction{
		UserID: other.ID, CategoryID: otherFood, Description: "Not mine",
		Amount: core.Money{Cents: 1}, Date: core.NewDate(2025, 5, 5), Type: core.TypeExpense,
	})
	require.NoError(t, err)

	f := core.TransactionFilter{Type: core.TypeExpense, Limit: 5, Offset: 5}
	page, err := repo.ListTransactions(ctx, u.ID, f)
	require.NoError(t, err)
	require.Len(t, page, 5)
	assert.Equal(t, "Expense 07", page[0].Description)
	assert.Equal(t, "Expense 03", page[4].Description)

	total, err := repo.CountTransactions(ctx, u.ID, f)
	require.NoError(t, err)
	assert.Equal(t, 12, total)

	t.Run("search matches notes case-insensitively", func(t *testing.T) {
		txs, err := repo.ListTransactions(ctx, u.ID, core.TransactionFilter{Search: "PAYROLL"})
		require.NoError(t, err)
		require.Len(t, txs, 1)
		assert.Equal(t, "Salary", txs[0].Description)
	})

	t.Run("search treats wildcards literally", func(t *testing.T) {
		txs, err := repo.ListTransactions(ctx, u.ID, core.TransactionFilter{Search: "%"})
		require.NoError(t, err)
		assert.Empty(t, txs)
	})

	t.Run("date window is inclusive", func(t *testing.T) {
		n, err := repo.CountTransactions(ctx, u.ID, core.TransactionFilter{From: core.NewDate(2025, 5, 10), To: core.NewDate(2025, 5, 12)})
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})

	t.Run("recent and latest income", func(t *testing.T) {
		recent, err := repo.RecentTransactions(ctx, u.ID, 3)
		require.NoError(t, err)
		require.Len(t, recent, 3)
		assert.Equal(t, "Salary", recent[0].Description)

		last, err := repo.LatestIncome(ctx, u.ID)
		require.NoError(t, err)
		require.NotNil(t, last)
		assert.Equal(t, "2025-06-01", last.Date.String())

		none, err := repo.LatestIncome(ctx, other.ID)
		require.NoError(t, err)
		assert.Nil(t, none)
	})
}

func TestDeleteReferencedCategoryConflicts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u, food, _ := seedUser(t, repo, "alice")

	_, err := repo.CreateTransaction(ctx, core.Transaction{
		UserID: u.ID, CategoryID: food, Description: "Lunch", Amount: core.Money{Cents: 1200},
		Date: core.NewDate(2025, 6, 3), Type: core.TypeExpense,
	})
	require.NoError(t, err)

	_, err = repo.DeleteCategory(ctx, food)
	assert.ErrorIs(t, err, core.ErrConflict)

	_, err = repo.GetCategory(ctx, food)
	assert.NoError(t, err)
}

func TestBudgetUniquenessAndRollover(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u, food, _ := seedUser(t, repo, "alice")
	cats, err := repo.ListCategories(ctx, u.ID)
	require.NoError(t, err)
	var housing int64
	for _, c := range cats {
		if c.Name == "Housing" {
			housing = c.ID
		}
	}

	may := core.YearMonth{Year: 2025, Month: time.May}
	june := may.Add(1)

	_, err = repo.CreateBudgetCategory(ctx, core.BudgetCategory{UserID: u.ID, CategoryID: food, Amount: core.Money{Cents: 40000}, Month: 5, Year: 2025})
	require.NoError(t, err)
	_, err = repo.CreateBudgetCategory(ctx, core.BudgetCategory{UserID: u.ID, CategoryID: housing, Amount: core.Money{Cents: 90000}, Month: 5, Year: 2025})
	require.NoError(t, err)
	_, err = repo.CreateBudgetCategory(ctx, core.BudgetCategory{UserID: u.ID, CategoryID: food, Amount: core.Money{Cents: 1}, Month: 5, Year: 2025})
	assert.ErrorIs(t, err, core.ErrConflict)

	// June already has its own food budget; only housing should be copied.
	_, err = repo.CreateBudgetCategory(ctx, core.BudgetCategory{UserID: u.ID, CategoryID: food, Amount: core.Money{Cents: 45000}, Month: 6, Year: 2025})
	require.NoError(t, err)

	n, err := repo.RolloverBudgets(ctx, may, june)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.RolloverBudgets(ctx, may, june)
	require.NoError(t, err)
	assert.Zero(t, n)

	juneBudgets, err := repo.ListBudgetCategories(ctx, u.ID, core.BudgetFilter{Month: 6, Year: 2025})
	require.NoError(t, err)
	require.Len(t, juneBudgets, 2)
	amounts := map[int64]int64{}
	for _, b := range juneBudgets {
		amounts[b.CategoryID] = b.Amount.Cents
	}
	assert.Equal(t, int64(45000), amounts[food])
	assert.Equal(t, int64(90000), amounts[housing])
}

func TestSpentByCategory(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u, food, income := seedUser(t, repo, "alice")

	for _, tx := range []core.Transaction{
		{CategoryID: food, Amount: core.Money{Cents: 1000}, Date: core.NewDate(2025, 6, 1), Type: core.TypeExpense},
		{CategoryID: food, Amount: core.Money{Cents: 500}, Date: core.NewDate(2025, 6, 30), Type: core.TypeExpense},
		{CategoryID: food, Amount: core.Money{Cents: 700}, Date: core.NewDate(2025, 5, 31), Type: core.TypeExpense},
		{CategoryID: income, Amount: core.Money{Cents: 9999}, Date: core.NewDate(2025, 6, 2), Type: core.TypeIncome},
	} {
		tx.UserID = u.ID
		tx.Description = "entry"
		_, err := repo.CreateTransaction(ctx, tx)
		require.NoError(t, err)
	}

	june := core.YearMonth{Year: 2025, Month: time.June}
	spent, err := repo.SpentByCategory(ctx, u.ID, june.Add(-1).Start(), june.End())
	require.NoError(t, err)
	assert.Equal(t, int64(1500), spent[core.SpendKey{CategoryID: food, Period: june}].Cents)
	assert.Equal(t, int64(700), spent[core.SpendKey{CategoryID: food, Period: june.Add(-1)}].Cents)
	_, ok := spent[core.SpendKey{CategoryID: income, Period: june}]
	assert.False(t, ok)
}

func TestRecurringCopyIsIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u, food, _ := seedUser(t, repo, "alice")

	src, err := repo.CreateTransaction(ctx, core.Transaction{
		UserID: u.ID, CategoryID: food, Description: "Gym", Amount: core.Money{Cents: 3000},
		Date: core.NewDate(2025, 5, 15), Type: core.TypeExpense, IsRecurring: true,
	})
	require.NoError(t, err)

	may := core.YearMonth{Year: 2025, Month: time.May}
	due, err := repo.DueRecurring(ctx, may)
	require.NoError(t, err)
	require.Len(t, due, 1)

	dup := due[0]
	dup.ID = 0
	dup.Date = core.NewDate(2025, 6, 15)
	dup.SourceID = &src.ID

	_, created, err := repo.CreateRecurringCopy(ctx, dup)
	require.NoError(t, err)
	assert.True(t, created)

	_, created, err = repo.CreateRecurringCopy(ctx, dup)
	require.NoError(t, err)
	assert.False(t, created)

	due, err = repo.DueRecurring(ctx, may)
	require.NoError(t, err)
	assert.Empty(t, due)

	n, err := repo.CountTransactions(ctx, u.ID, core.TransactionFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestDeletedRecurringCopyIsNotRecreated(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u, food, _ := seedUser(t, repo, "alice")

	src, err := repo.CreateTransaction(ctx, core.Transaction{
		UserID: u.ID, CategoryID: food, Description: "Rent", Amount: core.Money{Cents: 90000},
		Date: core.NewDate(2025, 5, 1), Type: core.TypeExpense, IsRecurring: true,
	})
	require.NoError(t, err)

	dup := src
	dup.ID = 0
	dup.Date = core.NewDate(2025, 6, 1)
	dup.SourceID = &src.ID
	copied, created, err := repo.CreateRecurringCopy(ctx, dup)
	require.NoError(t, err)
	require.True(t, created)

	ok, err := repo.DeleteTransaction(ctx, copied.ID)
	require.NoError(t, err)
	require.True(t, ok)

	may := core.YearMonth{Year: 2025, Month: time.May}
	due, err := repo.DueRecurring(ctx, may)
	require.NoError(t, err)
	assert.Empty(t, due)

	_, created, err = repo.CreateRecurringCopy(ctx, dup)
	require.NoError(t, err)
	assert.False(t, created)

	n, err := repo.CountTransactions(ctx, u.ID, core.TransactionFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestInvestmentNullableRate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u, _, _ := seedUser(t, repo, "alice")

	rate := 4.5
	withRate, err := repo.CreateInvestment(ctx, core.Investment{
		UserID: u.ID, Name: "ETF", Type: "stocks", Value: core.Money{Cents: 950000},
		InitialValue: core.Money{Cents: 1000000}, InitialDate: core.NewDate(2025, 1, 15), Institution: "Broker", ReturnRate: &rate,
	})
	require.NoError(t, err)
	_, err = repo.CreateInvestment(ctx, core.Investment{
		UserID: u.ID, Name: "Bond", Type: "bonds", InitialDate: core.NewDate(2025, 2, 1), Institution: "Bank",
	})
	require.NoError(t, err)

	got, err := repo.GetInvestment(ctx, withRate.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ReturnRate)
	assert.Equal(t, 4.5, *got.ReturnRate)

	all, err := repo.ListInvestments(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Nil(t, all[1].ReturnRate)
}

func TestMigrationVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "v.db")
	repo, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	defer repo.Close()

	v, dirty, err := MigrationVersion(path)
	require.NoError(t, err)
	assert.Equal(t, uint(2), v)
	assert.False(t, dirty)
}
