package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"ecobrain/internal/core"
)

const transactionColumns = `id, user_id, category_id, description, amount_cents, date, type, is_recurring, notes, source_id, created_at, updated_at`

func scanTransaction(s scanner) (core.Transaction, error) {
	var (
		t                    core.Transaction
		date, typ            string
		recurring            int64
		sourceID             sql.NullInt64
		createdAt, updatedAt string
	)
	if err := s.Scan(&t.ID, &t.UserID, &t.CategoryID, &t.Description, &t.Amount.Cents, &date, &typ,
		&recurring, &t.Notes, &sourceID, &createdAt, &updatedAt); err != nil {
		return core.Transaction{}, err
	}
	d, err := parseDate(date)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Date = d
	t.Type = core.TransactionType(typ)
	t.IsRecurring = recurring != 0
	if sourceID.Valid {
		id := sourceID.Int64
		t.SourceID = &id
	}
	t.CreatedAt = parseTimestamp(createdAt)
	t.UpdatedAt = parseTimestamp(updatedAt)
	return t, nil
}

func scanTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	defer rows.Close()
	txs := []core.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// transactionWhere renders f as a WHERE clause. SQLite LIKE is already
// case-insensitive for ASCII.
func transactionWhere(userID int64, f core.TransactionFilter) (string, []any) {
	clauses := []string{"user_id = ?"}
	args := []any{userID}

	if f.Type != "" {
		clauses = append(clauses, "type = ?")
		args = append(args, string(f.Type))
	}
	if f.CategoryID > 0 {
		clauses = append(clauses, "category_id = ?")
		args = append(args, f.CategoryID)
	}
	if !f.From.IsZero() {
		clauses = append(clauses, "date >= ?")
		args = append(args, f.From.String())
	}
	if !f.To.IsZero() {
		clauses = append(clauses, "date <= ?")
		args = append(args, f.To.String())
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		pattern := "%" + likeEscaper.Replace(s) + "%"
		clauses = append(clauses, `(description LIKE ? ESCAPE '\' OR notes LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (q *Queries) InsertTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	var sourceID sql.NullInt64
	if t.SourceID != nil {
		sourceID = sql.NullInt64{Int64: *t.SourceID, Valid: true}
	}
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, category_id, description, amount_cents, date, type, is_recurring, notes, source_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, t.CategoryID, t.Description, t.Amount.Cents, t.Date.String(), string(t.Type),
		boolToInt(t.IsRecurring), t.Notes, sourceID, formatTimestamp(t.CreatedAt), formatTimestamp(t.UpdatedAt))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (q *Queries) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	return scanTransaction(q.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id))
}

func (q *Queries) ListTransactions(ctx context.Context, userID int64, f core.TransactionFilter) ([]core.Transaction, error) {
	where, args := transactionWhere(userID, f)
	query := `SELECT ` + transactionColumns + ` FROM transactions` + where + ` ORDER BY date DESC, id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, f.Offset)
	}
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanTransactions(rows)
}

func (q *Queries) CountTransactions(ctx context.Context, userID int64, f core.TransactionFilter) (int, error) {
	where, args := transactionWhere(userID, f.Unpaged())
	var n int
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`+where, args...).Scan(&n)
	return n, err
}

func (q *Queries) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE transactions
		 SET category_id = ?, description = ?, amount_cents = ?, date = ?, type = ?, is_recurring = ?, notes = ?, updated_at = ?
		 WHERE id = ?`,
		t.CategoryID, t.Description, t.Amount.Cents, t.Date.String(), string(t.Type),
		boolToInt(t.IsRecurring), t.Notes, formatTimestamp(t.UpdatedAt), t.ID)
	return err
}

func (q *Queries) DeleteTransaction(ctx context.Context, id int64) (bool, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	return deleted(res)
}

// SpentByCategory sums expenses per category and month over [from, to].
func (q *Queries) SpentByCategory(ctx context.Context, userID int64, from, to core.Date) ([]spendRow, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT category_id, substr(date, 1, 7) AS period, SUM(amount_cents)
		 FROM transactions
		 WHERE user_id = ? AND type = 'expense' AND date >= ? AND date <= ?
		 GROUP BY category_id, period`,
		userID, from.String(), to.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []spendRow
	for rows.Next() {
		var r spendRow
		if err := rows.Scan(&r.CategoryID, &r.Period, &r.Cents); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type spendRow struct {
	CategoryID int64
	Period     string
	Cents      int64
}

// ListDueRecurring returns recurring transactions dated within [from, to]
// that have not been copied yet, across all users.
func (q *Queries) ListDueRecurring(ctx context.Context, from, to core.Date) ([]core.Transaction, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions t
		 WHERE t.is_recurring = 1 AND t.date >= ? AND t.date <= ?
		   AND NOT EXISTS (SELECT 1 FROM recurring_copies r WHERE r.source_id = t.id)
		 ORDER BY t.user_id, t.date, t.id`,
		from.String(), to.String())
	if err != nil {
		return nil, err
	}
	return scanTransactions(rows)
}

func (q *Queries) HasCopy(ctx context.Context, sourceID int64) (bool, error) {
	var exists int
	err := q.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM recurring_copies WHERE source_id = ?)`, sourceID).Scan(&exists)
	return exists == 1, err
}

func (q *Queries) MarkCopied(ctx context.Context, sourceID int64, period core.YearMonth) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO recurring_copies (source_id, period) VALUES (?, ?)`,
		sourceID, period.Start().String()[:7])
	return err
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	now := r.stamp()
	t.CreatedAt, t.UpdatedAt = now, now

	id, err := r.queries.InsertTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, classify("create transaction", err)
	}
	t.ID = id

	slog.DebugContext(ctx, "Transaction saved to SQLite",
		"id", t.ID,
		"user_id", t.UserID,
		"type", t.Type,
		"amount_cents", t.Amount.Cents,
		"date", t.Date.String())
	return t, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	t, err := r.queries.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, classify("get transaction", err)
	}
	return t, nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID int64, f core.TransactionFilter) ([]core.Transaction, error) {
	txs, err := r.queries.ListTransactions(ctx, userID, f)
	if err != nil {
		return nil, classify("list transactions", err)
	}
	return txs, nil
}

func (r *SQLiteRepository) CountTransactions(ctx context.Context, userID int64, f core.TransactionFilter) (int, error) {
	n, err := r.queries.CountTransactions(ctx, userID, f)
	if err != nil {
		return 0, classify("count transactions", err)
	}
	return n, nil
}

// RecentTransactions returns the n latest transactions by date.
func (r *SQLiteRepository) RecentTransactions(ctx context.Context, userID int64, n int) ([]core.Transaction, error) {
	return r.ListTransactions(ctx, userID, core.TransactionFilter{Limit: n})
}

// LatestIncome returns nil when the user never recorded an income.
func (r *SQLiteRepository) LatestIncome(ctx context.Context, userID int64) (*core.Transaction, error) {
	txs, err := r.ListTransactions(ctx, userID, core.TransactionFilter{Type: core.TypeIncome, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return nil, nil
	}
	return &txs[0], nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, id int64, u core.TransactionUpdate) (core.Transaction, error) {
	var out core.Transaction
	err := r.WithTx(ctx, func(tx *SQLiteRepository) error {
		t, err := tx.GetTransaction(ctx, id)
		if err != nil {
			return err
		}
		u.Apply(&t)
		t.UpdatedAt = tx.stamp()
		if err := tx.queries.UpdateTransaction(ctx, t); err != nil {
			return classify("update transaction", err)
		}
		out = t
		return nil
	})
	return out, err
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) (bool, error) {
	ok, err := r.queries.DeleteTransaction(ctx, id)
	if err != nil {
		return false, classify("delete transaction", err)
	}
	return ok, nil
}

// SpentByCategory keys expense totals by category and month for [from, to].
func (r *SQLiteRepository) SpentByCategory(ctx context.Context, userID int64, from, to core.Date) (map[core.SpendKey]core.Money, error) {
	rows, err := r.queries.SpentByCategory(ctx, userID, from, to)
	if err != nil {
		return nil, classify("sum spending by category", err)
	}
	out := make(map[core.SpendKey]core.Money, len(rows))
	for _, row := range rows {
		start, err := parseDate(row.Period + "-01")
		if err != nil {
			return nil, err
		}
		out[core.SpendKey{CategoryID: row.CategoryID, Period: core.MonthOf(start.Time)}] = core.Money{Cents: row.Cents}
	}
	return out, nil
}

// DueRecurring lists recurring transactions of period that were never copied.
func (r *SQLiteRepository) DueRecurring(ctx context.Context, period core.YearMonth) ([]core.Transaction, error) {
	txs, err := r.queries.ListDueRecurring(ctx, period.Start(), period.End())
	if err != nil {
		return nil, classify("list due recurring transactions", err)
	}
	return txs, nil
}

// CreateRecurringCopy inserts dup unless its source was already copied,
// and records the source in the same transaction. The record survives a
// later delete of the copy. created is false when another run got there
// first.
func (r *SQLiteRepository) CreateRecurringCopy(ctx context.Context, dup core.Transaction) (out core.Transaction, created bool, err error) {
	if dup.SourceID == nil {
		return core.Transaction{}, false, classify("create recurring copy", errors.New("missing source id"))
	}
	err = r.WithTx(ctx, func(tx *SQLiteRepository) error {
		exists, err := tx.queries.HasCopy(ctx, *dup.SourceID)
		if err != nil {
			return classify("check recurring copy", err)
		}
		if exists {
			return nil
		}
		out, err = tx.CreateTransaction(ctx, dup)
		if err != nil {
			return err
		}
		if err := tx.queries.MarkCopied(ctx, *dup.SourceID, core.MonthOf(dup.Date.Time)); err != nil {
			return classify("record recurring copy", err)
		}
		created = true
		return nil
	})
	return out, created, err
}
