package services

import (
	"context"
	"fmt"
	"time"

	"ecobrain/internal/amqp"
	"ecobrain/internal/core"
	"ecobrain/internal/log"
)

// RecurringProcessor copies last month's recurring transactions into the
// current month and carries budgets forward. Both jobs are idempotent:
// running them twice in a month creates nothing the second time.
type RecurringProcessor struct {
	storage RecurringStore
	ledger  *LedgerService
}

func NewRecurringProcessor(storage RecurringStore, ledger *LedgerService) *RecurringProcessor {
	return &RecurringProcessor{storage: storage, ledger: ledger}
}

// ProcessDueTransactions copies every recurring transaction dated in the
// month before now that has no copy yet. A failed copy is logged and the
// rest still run.
func (p *RecurringProcessor) ProcessDueTransactions(ctx context.Context, now time.Time) (int, error) {
	if p.storage == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}
	logger := log.FromContext(ctx).WithComponent(log.ComponentScheduler)

	target := core.MonthOf(now)
	source := target.Add(-1)

	due, err := p.storage.DueRecurring(ctx, source)
	if err != nil {
		return 0, fmt.Errorf("list due recurring transactions: %w", err)
	}

	logger.InfoContext(ctx, "Processing recurring transactions",
		log.FieldOperation, log.OpRecur,
		log.FieldPeriod, target.Start().String()[:7],
		"due", len(due))

	created := 0
	for _, src := range due {
		dup, ok, err := p.storage.CreateRecurringCopy(ctx, RecurringCopy(src, target))
		if err != nil {
			logger.ErrorContext(ctx, "Failed to copy recurring transaction",
				log.FieldEntityID, src.ID,
				log.FieldUserID, src.UserID,
				log.FieldError, err)
			continue
		}
		if !ok {
			// another run got there first
			continue
		}
		created++
		if p.ledger != nil {
			p.ledger.publish(ctx, amqp.OpCreated, dup)
		}
	}

	logger.InfoContext(ctx, "Recurring transaction processing complete",
		log.FieldOperation, log.OpRecur,
		"created", created,
		"total_checked", len(due))

	return created, nil
}

// RolloverBudgets copies the previous month's budgets into the month of now
// where no row exists yet.
func (p *RecurringProcessor) RolloverBudgets(ctx context.Context, now time.Time) (int64, error) {
	if p.storage == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}
	to := core.MonthOf(now)
	n, err := p.storage.RolloverBudgets(ctx, to.Add(-1), to)
	if err != nil {
		return 0, fmt.Errorf("rollover budgets: %w", err)
	}
	return n, nil
}

// RecurringCopy is src moved to the same day of target, clamped to the
// month's last day, and linked back to src.
func RecurringCopy(src core.Transaction, target core.YearMonth) core.Transaction {
	day := src.Date.Day()
	if last := target.End().Day(); day > last {
		day = last
	}
	sourceID := src.ID
	return core.Transaction{
		UserID:      src.UserID,
		CategoryID:  src.CategoryID,
		Description: src.Description,
		Amount:      src.Amount,
		Date:        core.NewDate(target.Year, int(target.Month), day),
		Type:        src.Type,
		IsRecurring: true,
		Notes:       src.Notes,
		SourceID:    &sourceID,
	}
}
