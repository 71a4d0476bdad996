package storage

import (
	"context"
	"fmt"
	"log/slog"

	"ecobrain/internal/core"
)

const userColumns = `id, username, email, password_hash, first_name, last_name, created_at, updated_at`

func scanUser(s scanner) (core.User, error) {
	var (
		u                    core.User
		createdAt, updatedAt string
	)
	if err := s.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &createdAt, &updatedAt); err != nil {
		return core.User{}, err
	}
	u.CreatedAt = parseTimestamp(createdAt)
	u.UpdatedAt = parseTimestamp(updatedAt)
	return u, nil
}

func (q *Queries) InsertUser(ctx context.Context, u core.User) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, first_name, last_name, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName,
		formatTimestamp(u.CreatedAt), formatTimestamp(u.UpdatedAt))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (q *Queries) GetUser(ctx context.Context, id int64) (core.User, error) {
	return scanUser(q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (core.User, error) {
	return scanUser(q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username))
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	now := r.stamp()
	u.CreatedAt, u.UpdatedAt = now, now

	id, err := r.queries.InsertUser(ctx, u)
	if err != nil {
		return core.User{}, classify("create user", err)
	}
	u.ID = id
	return u, nil
}

// RegisterUser creates u together with its starter categories, atomically.
func (r *SQLiteRepository) RegisterUser(ctx context.Context, u core.User, categories []core.NewCategory) (core.User, error) {
	var created core.User
	err := r.WithTx(ctx, func(tx *SQLiteRepository) error {
		var err error
		created, err = tx.CreateUser(ctx, u)
		if err != nil {
			return err
		}
		for _, c := range categories {
			if _, err := tx.CreateCategory(ctx, c.Category(created.ID)); err != nil {
				return fmt.Errorf("seed category %q: %w", c.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return core.User{}, err
	}

	slog.InfoContext(ctx, "User registered",
		"user_id", created.ID,
		"username", created.Username,
		"categories", len(categories))
	return created, nil
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id int64) (core.User, error) {
	u, err := r.queries.GetUser(ctx, id)
	if err != nil {
		return core.User{}, classify("get user", err)
	}
	return u, nil
}

func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (core.User, error) {
	u, err := r.queries.GetUserByUsername(ctx, username)
	if err != nil {
		return core.User{}, classify("get user by username", err)
	}
	return u, nil
}
