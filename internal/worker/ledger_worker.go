// Package worker consumes ledger events off the broker: it keeps the
// spreadsheet mirror in step with the database and flags budgets that a new
// expense pushed past their limit.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ecobrain/internal/amqp"
	"ecobrain/internal/core"
	"ecobrain/internal/log"
	"ecobrain/internal/sheets"
)

// CategoryLookup resolves a category id to its row.
type CategoryLookup interface {
	GetCategory(ctx context.Context, id int64) (core.Category, error)
}

// BudgetReader reports budget usage. *services.LedgerService satisfies it.
type BudgetReader interface {
	BudgetStatuses(ctx context.Context, userID int64, f core.BudgetFilter) ([]core.BudgetStatus, error)
}

// Alert is a budget pushed over its limit by a transaction.
type Alert struct {
	UserID        int64
	TransactionID int64
	Status        core.BudgetStatus
}

type LedgerWorker struct {
	mirror     sheets.Mirror
	categories CategoryLookup
	budgets    BudgetReader
	onAlert    func(context.Context, Alert)
}

// NewLedgerWorker wires a worker. budgets may be nil to skip alerting.
func NewLedgerWorker(mirror sheets.Mirror, categories CategoryLookup, budgets BudgetReader) *LedgerWorker {
	w := &LedgerWorker{mirror: mirror, categories: categories, budgets: budgets}
	w.onAlert = w.logAlert
	return w
}

// OnAlert replaces the default alert sink, which logs at warn level.
func (w *LedgerWorker) OnAlert(fn func(context.Context, Alert)) {
	if fn != nil {
		w.onAlert = fn
	}
}

// HandleLedgerEvent applies one event. A returned error makes the consumer
// nack the delivery, so only mirror failures are reported; alerting is best
// effort.
func (w *LedgerWorker) HandleLedgerEvent(ctx context.Context, ev *amqp.LedgerEvent) error {
	logger := log.FromContext(ctx).WithComponent(log.ComponentWorker)
	tx := ev.Transaction

	fields := log.NewFields().
		WithOperation(log.OpConsume).
		WithUser(ev.UserID).
		WithTransaction(tx.ID, string(tx.Type), tx.Amount.Cents)
	fields[log.FieldEventOp] = string(ev.Op)
	logger.Fields(ctx, slog.LevelInfo, "Processing ledger event", fields)

	switch ev.Op {
	case amqp.OpDeleted:
		if err := w.mirror.Remove(ctx, tx.ID); err != nil {
			return fmt.Errorf("remove mirrored transaction %d: %w", tx.ID, err)
		}
		return nil

	case amqp.OpCreated, amqp.OpUpdated:
		name, err := w.categoryName(ctx, tx.CategoryID)
		if err != nil {
			return err
		}
		if err := w.mirror.Upsert(ctx, sheets.NewRow(tx, name)); err != nil {
			return fmt.Errorf("mirror transaction %d: %w", tx.ID, err)
		}
		if tx.Type == core.TypeExpense {
			w.checkBudget(ctx, tx)
		}
		return nil
	}
	return fmt.Errorf("unknown event op %q", ev.Op)
}

// categoryName returns "" for a category that no longer exists; the row
// then carries the bare id.
func (w *LedgerWorker) categoryName(ctx context.Context, id int64) (string, error) {
	if w.categories == nil {
		return "", nil
	}
	c, err := w.categories.GetCategory(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get category %d: %w", id, err)
	}
	return c.Name, nil
}

func (w *LedgerWorker) checkBudget(ctx context.Context, tx core.Transaction) {
	if w.budgets == nil {
		return
	}
	statuses, err := w.budgets.BudgetStatuses(ctx, tx.UserID, core.BudgetFilter{
		Month: tx.Date.Month(),
		Year:  tx.Date.Year(),
	})
	if err != nil {
		log.FromContext(ctx).WithComponent(log.ComponentWorker).WarnContext(ctx, "Budget check failed",
			log.FieldUserID, tx.UserID,
			log.FieldEntityID, tx.ID,
			log.FieldError, err)
		return
	}
	for _, st := range statuses {
		if st.CategoryID == tx.CategoryID && st.Exceeded() {
			w.onAlert(ctx, Alert{UserID: tx.UserID, TransactionID: tx.ID, Status: st})
		}
	}
}

func (w *LedgerWorker) logAlert(ctx context.Context, a Alert) {
	log.FromContext(ctx).WithComponent(log.ComponentBudget).WarnContext(ctx, "Budget exceeded",
		log.FieldUserID, a.UserID,
		log.FieldEntityID, a.TransactionID,
		"category", a.Status.CategoryName,
		"budget", a.Status.Amount.String(),
		"spent", a.Status.Spent.String(),
		"percentage", a.Status.Percentage)
}
