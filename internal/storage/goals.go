package storage

import (
	"context"

	"ecobrain/internal/core"
)

const goalColumns = `id, user_id, name, target_cents, current_amount_cents, deadline, category, notes, created_at, updated_at`

func scanGoal(s scanner) (core.Goal, error) {
	var (
		g                    core.Goal
		deadline             string
		createdAt, updatedAt string
	)
	if err := s.Scan(&g.ID, &g.UserID, &g.Name, &g.Target.Cents, &g.CurrentAmount.Cents, &deadline,
		&g.Category, &g.Notes, &createdAt, &updatedAt); err != nil {
		return core.Goal{}, err
	}
	d, err := parseDate(deadline)
	if err != nil {
		return core.Goal{}, err
	}
	g.Deadline = d
	g.CreatedAt = parseTimestamp(createdAt)
	g.UpdatedAt = parseTimestamp(updatedAt)
	return g, nil
}

func (q *Queries) InsertGoal(ctx context.Context, g core.Goal) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO goals (user_id, name, target_cents, current_amount_cents, deadline, category, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.UserID, g.Name, g.Target.Cents, g.CurrentAmount.Cents, g.Deadline.String(), g.Category, g.Notes,
		formatTimestamp(g.CreatedAt), formatTimestamp(g.UpdatedAt))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (q *Queries) GetGoal(ctx context.Context, id int64) (core.Goal, error) {
	return scanGoal(q.db.QueryRowContext(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = ?`, id))
}

func (q *Queries) ListGoals(ctx context.Context, userID int64) ([]core.Goal, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE user_id = ? ORDER BY deadline, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	goals := []core.Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (q *Queries) UpdateGoal(ctx context.Context, g core.Goal) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE goals
		 SET name = ?, target_cents = ?, current_amount_cents = ?, deadline = ?, category = ?, notes = ?, updated_at = ?
		 WHERE id = ?`,
		g.Name, g.Target.Cents, g.CurrentAmount.Cents, g.Deadline.String(), g.Category, g.Notes,
		formatTimestamp(g.UpdatedAt), g.ID)
	return err
}

func (q *Queries) DeleteGoal(ctx context.Context, id int64) (bool, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	return deleted(res)
}

func (r *SQLiteRepository) CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	now := r.stamp()
	g.CreatedAt, g.UpdatedAt = now, now

	id, err := r.queries.InsertGoal(ctx, g)
	if err != nil {
		return core.Goal{}, classify("create goal", err)
	}
	g.ID = id
	return g, nil
}

func (r *SQLiteRepository) GetGoal(ctx context.Context, id int64) (core.Goal, error) {
	g, err := r.queries.GetGoal(ctx, id)
	if err != nil {
		return core.Goal{}, classify("get goal", err)
	}
	return g, nil
}

func (r *SQLiteRepository) ListGoals(ctx context.Context, userID int64) ([]core.Goal, error) {
	goals, err := r.queries.ListGoals(ctx, userID)
	if err != nil {
		return nil, classify("list goals", err)
	}
	return goals, nil
}

func (r *SQLiteRepository) UpdateGoal(ctx context.Context, id int64, u core.GoalUpdate) (core.Goal, error) {
	var out core.Goal
	err := r.WithTx(ctx, func(tx *SQLiteRepository) error {
		g, err := tx.GetGoal(ctx, id)
		if err != nil {
			return err
		}
		u.Apply(&g)
		g.UpdatedAt = tx.stamp()
		if err := tx.queries.UpdateGoal(ctx, g); err != nil {
			return classify("update goal", err)
		}
		out = g
		return nil
	})
	return out, err
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, id int64) (bool, error) {
	ok, err := r.queries.DeleteGoal(ctx, id)
	if err != nil {
		return false, classify("delete goal", err)
	}
	return ok, nil
}
