package storage

import (
	"context"

	"ecobrain/internal/core"
)

const categoryColumns = `id, user_id, name, type, color, icon, created_at, updated_at`

func scanCategory(s scanner) (core.Category, error) {
	var (
		c                    core.Category
		typ                  string
		createdAt, updatedAt string
	)
	if err := s.Scan(&c.ID, &c.UserID, &c.Name, &typ, &c.Color, &c.Icon, &createdAt, &updatedAt); err != nil {
		return core.Category{}, err
	}
	c.Type = core.TransactionType(typ)
	c.CreatedAt = parseTimestamp(createdAt)
	c.UpdatedAt = parseTimestamp(updatedAt)
	return c, nil
}

func (q *Queries) InsertCategory(ctx context.Context, c core.Category) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO categories (user_id, name, type, color, icon, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.UserID, c.Name, string(c.Type), c.Color, c.Icon,
		formatTimestamp(c.CreatedAt), formatTimestamp(c.UpdatedAt))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (q *Queries) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	return scanCategory(q.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id))
}

func (q *Queries) ListCategories(ctx context.Context, userID int64) ([]core.Category, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE user_id = ? ORDER BY type, name, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []core.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (q *Queries) UpdateCategory(ctx context.Context, c core.Category) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, type = ?, color = ?, icon = ?, updated_at = ? WHERE id = ?`,
		c.Name, string(c.Type), c.Color, c.Icon, formatTimestamp(c.UpdatedAt), c.ID)
	return err
}

func (q *Queries) DeleteCategory(ctx context.Context, id int64) (bool, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	return deleted(res)
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	now := r.stamp()
	c.CreatedAt, c.UpdatedAt = now, now

	id, err := r.queries.InsertCategory(ctx, c)
	if err != nil {
		return core.Category{}, classify("create category", err)
	}
	c.ID = id
	return c, nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	c, err := r.queries.GetCategory(ctx, id)
	if err != nil {
		return core.Category{}, classify("get category", err)
	}
	return c, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context, userID int64) ([]core.Category, error) {
	categories, err := r.queries.ListCategories(ctx, userID)
	if err != nil {
		return nil, classify("list categories", err)
	}
	return categories, nil
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, id int64, u core.CategoryUpdate) (core.Category, error) {
	var out core.Category
	err := r.WithTx(ctx, func(tx *SQLiteRepository) error {
		c, err := tx.GetCategory(ctx, id)
		if err != nil {
			return err
		}
		u.Apply(&c)
		c.UpdatedAt = tx.stamp()
		if err := tx.queries.UpdateCategory(ctx, c); err != nil {
			return classify("update category", err)
		}
		out = c
		return nil
	})
	return out, err
}

// DeleteCategory fails with core.ErrConflict while a transaction or budget
// still references the category.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id int64) (bool, error) {
	ok, err := r.queries.DeleteCategory(ctx, id)
	if err != nil {
		return false, classify("delete category", err)
	}
	return ok, nil
}
