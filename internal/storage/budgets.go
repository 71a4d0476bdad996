package storage

import (
	"context"
	"log/slog"

	"ecobrain/internal/core"
)

const budgetColumns = `id, user_id, category_id, amount_cents, month, year, created_at, updated_at`

func scanBudget(s scanner) (core.BudgetCategory, error) {
	var (
		b                    core.BudgetCategory
		createdAt, updatedAt string
	)
	if err := s.Scan(&b.ID, &b.UserID, &b.CategoryID, &b.Amount.Cents, &b.Month, &b.Year, &createdAt, &updatedAt); err != nil {
		return core.BudgetCategory{}, err
	}
	b.CreatedAt = parseTimestamp(createdAt)
	b.UpdatedAt = parseTimestamp(updatedAt)
	return b, nil
}

func (q *Queries) InsertBudget(ctx context.Context, b core.BudgetCategory) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO budget_categories (user_id, category_id, amount_cents, month, year, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.UserID, b.CategoryID, b.Amount.Cents, b.Month, b.Year,
		formatTimestamp(b.CreatedAt), formatTimestamp(b.UpdatedAt))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (q *Queries) GetBudget(ctx context.Context, id int64) (core.BudgetCategory, error) {
	return scanBudget(q.db.QueryRowContext(ctx, `SELECT `+budgetColumns+` FROM budget_categories WHERE id = ?`, id))
}

func (q *Queries) ListBudgets(ctx context.Context, userID int64, f core.BudgetFilter) ([]core.BudgetCategory, error) {
	query := `SELECT ` + budgetColumns + ` FROM budget_categories WHERE user_id = ?`
	args := []any{userID}
	if f.Month > 0 {
		query += ` AND month = ?`
		args = append(args, f.Month)
	}
	if f.Year > 0 {
		query += ` AND year = ?`
		args = append(args, f.Year)
	}
	query += ` ORDER BY year DESC, month DESC, id`

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	budgets := []core.BudgetCategory{}
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

func (q *Queries) UpdateBudget(ctx context.Context, b core.BudgetCategory) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE budget_categories SET category_id = ?, amount_cents = ?, month = ?, year = ?, updated_at = ? WHERE id = ?`,
		b.CategoryID, b.Amount.Cents, b.Month, b.Year, formatTimestamp(b.UpdatedAt), b.ID)
	return err
}

func (q *Queries) DeleteBudget(ctx context.Context, id int64) (bool, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM budget_categories WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	return deleted(res)
}

// CopyBudgets clones every budget of from into to unless the same user and
// category already has one there.
func (q *Queries) CopyBudgets(ctx context.Context, from, to core.YearMonth, stamp string) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO budget_categories (user_id, category_id, amount_cents, month, year, created_at, updated_at)
		 SELECT b.user_id, b.category_id, b.amount_cents, ?, ?, ?, ?
		 FROM budget_categories b
		 WHERE b.month = ? AND b.year = ?
		   AND NOT EXISTS (
		     SELECT 1 FROM budget_categories n
		     WHERE n.user_id = b.user_id AND n.category_id = b.category_id AND n.month = ? AND n.year = ?
		   )`,
		int(to.Month), to.Year, stamp, stamp,
		int(from.Month), from.Year,
		int(to.Month), to.Year)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *SQLiteRepository) CreateBudgetCategory(ctx context.Context, b core.BudgetCategory) (core.BudgetCategory, error) {
	now := r.stamp()
	b.CreatedAt, b.UpdatedAt = now, now

	id, err := r.queries.InsertBudget(ctx, b)
	if err != nil {
		return core.BudgetCategory{}, classify("create budget category", err)
	}
	b.ID = id
	return b, nil
}

func (r *SQLiteRepository) GetBudgetCategory(ctx context.Context, id int64) (core.BudgetCategory, error) {
	b, err := r.queries.GetBudget(ctx, id)
	if err != nil {
		return core.BudgetCategory{}, classify("get budget category", err)
	}
	return b, nil
}

func (r *SQLiteRepository) ListBudgetCategories(ctx context.Context, userID int64, f core.BudgetFilter) ([]core.BudgetCategory, error) {
	budgets, err := r.queries.ListBudgets(ctx, userID, f)
	if err != nil {
		return nil, classify("list budget categories", err)
	}
	return budgets, nil
}

func (r *SQLiteRepository) UpdateBudgetCategory(ctx context.Context, id int64, u core.BudgetCategoryUpdate) (core.BudgetCategory, error) {
	var out core.BudgetCategory
	err := r.WithTx(ctx, func(tx *SQLiteRepository) error {
		b, err := tx.GetBudgetCategory(ctx, id)
		if err != nil {
			return err
		}
		u.Apply(&b)
		b.UpdatedAt = tx.stamp()
		if err := tx.queries.UpdateBudget(ctx, b); err != nil {
			return classify("update budget category", err)
		}
		out = b
		return nil
	})
	return out, err
}

func (r *SQLiteRepository) DeleteBudgetCategory(ctx context.Context, id int64) (bool, error) {
	ok, err := r.queries.DeleteBudget(ctx, id)
	if err != nil {
		return false, classify("delete budget category", err)
	}
	return ok, nil
}

// RolloverBudgets copies the budgets of from into to for every user,
// skipping rows that already exist. It returns the number of rows created.
func (r *SQLiteRepository) RolloverBudgets(ctx context.Context, from, to core.YearMonth) (int64, error) {
	var n int64
	err := r.WithTx(ctx, func(tx *SQLiteRepository) error {
		var err error
		n, err = tx.queries.CopyBudgets(ctx, from, to, formatTimestamp(tx.stamp()))
		if err != nil {
			return classify("rollover budgets", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "Budgets rolled over",
		"from", from.Start().String(),
		"to", to.Start().String(),
		"created", n)
	return n, nil
}
