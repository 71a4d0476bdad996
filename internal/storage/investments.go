package storage

import (
	"context"
	"database/sql"

	"ecobrain/internal/core"
)

const investmentColumns = `id, user_id, name, type, value_cents, initial_value_cents, initial_date, institution, return_rate, notes, created_at, updated_at`

func scanInvestment(s scanner) (core.Investment, error) {
	var (
		i                    core.Investment
		initialDate          string
		returnRate           sql.NullFloat64
		createdAt, updatedAt string
	)
	if err := s.Scan(&i.ID, &i.UserID, &i.Name, &i.Type, &i.Value.Cents, &i.InitialValue.Cents, &initialDate,
		&i.Institution, &returnRate, &i.Notes, &createdAt, &updatedAt); err != nil {
		return core.Investment{}, err
	}
	d, err := parseDate(initialDate)
	if err != nil {
		return core.Investment{}, err
	}
	i.InitialDate = d
	if returnRate.Valid {
		rate := returnRate.Float64
		i.ReturnRate = &rate
	}
	i.CreatedAt = parseTimestamp(createdAt)
	i.UpdatedAt = parseTimestamp(updatedAt)
	return i, nil
}

func nullRate(r *float64) sql.NullFloat64 {
	if r == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *r, Valid: true}
}

func (q *Queries) InsertInvestment(ctx context.Context, i core.Investment) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO investments (user_id, name, type, value_cents, initial_value_cents, initial_date, institution, return_rate, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		i.UserID, i.Name, i.Type, i.Value.Cents, i.InitialValue.Cents, i.InitialDate.String(), i.Institution,
		nullRate(i.ReturnRate), i.Notes, formatTimestamp(i.CreatedAt), formatTimestamp(i.UpdatedAt))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (q *Queries) GetInvestment(ctx context.Context, id int64) (core.Investment, error) {
	return scanInvestment(q.db.QueryRowContext(ctx, `SELECT `+investmentColumns+` FROM investments WHERE id = ?`, id))
}

func (q *Queries) ListInvestments(ctx context.Context, userID int64) ([]core.Investment, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+investmentColumns+` FROM investments WHERE user_id = ? ORDER BY initial_date, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	investments := []core.Investment{}
	for rows.Next() {
		i, err := scanInvestment(rows)
		if err != nil {
			return nil, err
		}
		investments = append(investments, i)
	}
	return investments, rows.Err()
}

func (q *Queries) UpdateInvestment(ctx context.Context, i core.Investment) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE investments
		 SET name = ?, type = ?, value_cents = ?, initial_value_cents = ?, initial_date = ?, institution = ?, return_rate = ?, notes = ?, updated_at = ?
		 WHERE id = ?`,
		i.Name, i.Type, i.Value.Cents, i.InitialValue.Cents, i.InitialDate.String(), i.Institution,
		nullRate(i.ReturnRate), i.Notes, formatTimestamp(i.UpdatedAt), i.ID)
	return err
}

func (q *Queries) DeleteInvestment(ctx context.Context, id int64) (bool, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM investments WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	return deleted(res)
}

func (r *SQLiteRepository) CreateInvestment(ctx context.Context, i core.Investment) (core.Investment, error) {
	now := r.stamp()
	i.CreatedAt, i.UpdatedAt = now, now

	id, err := r.queries.InsertInvestment(ctx, i)
	if err != nil {
		return core.Investment{}, classify("create investment", err)
	}
	i.ID = id
	return i, nil
}

func (r *SQLiteRepository) GetInvestment(ctx context.Context, id int64) (core.Investment, error) {
	i, err := r.queries.GetInvestment(ctx, id)
	if err != nil {
		return core.Investment{}, classify("get investment", err)
	}
	return i, nil
}

func (r *SQLiteRepository) ListInvestments(ctx context.Context, userID int64) ([]core.Investment, error) {
	investments, err := r.queries.ListInvestments(ctx, userID)
	if err != nil {
		return nil, classify("list investments", err)
	}
	return investments, nil
}

func (r *SQLiteRepository) UpdateInvestment(ctx context.Context, id int64, u core.InvestmentUpdate) (core.Investment, error) {
	var out core.Investment
	err := r.WithTx(ctx, func(tx *SQLiteRepository) error {
		i, err := tx.GetInvestment(ctx, id)
		if err != nil {
			return err
		}
		u.Apply(&i)
		i.UpdatedAt = tx.stamp()
		if err := tx.queries.UpdateInvestment(ctx, i); err != nil {
			return classify("update investment", err)
		}
		out = i
		return nil
	})
	return out, err
}

func (r *SQLiteRepository) DeleteInvestment(ctx context.Context, id int64) (bool, error) {
	ok, err := r.queries.DeleteInvestment(ctx, id)
	if err != nil {
		return false, classify("delete investment", err)
	}
	return ok, nil
}
