package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ecobrain/internal/amqp"
	"ecobrain/internal/core"
	"ecobrain/internal/log"
)

// LedgerService owns every user-scoped write: categories, transactions,
// budgets, goals and investments. Each mutation loads the row first and
// refuses to touch it unless the caller owns it.
type LedgerService struct {
	store     Store
	publisher Publisher
	now       Clock
}

// NewLedgerService wires the store and an optional publisher. A nil
// publisher disables ledger events.
func NewLedgerService(store Store, publisher Publisher) *LedgerService {
	return &LedgerService{store: store, publisher: publisher, now: systemClock}
}

// WithClock replaces the time source used for date windows.
func (s *LedgerService) WithClock(now Clock) *LedgerService {
	s.now = now
	return s
}

func (s *LedgerService) today() time.Time {
	return s.now()
}

// publish never fails the caller: the write has already been committed.
func (s *LedgerService) publish(ctx context.Context, op amqp.EventOp, tx core.Transaction) {
	logger := log.FromContext(ctx).WithComponent(log.ComponentLedger)
	if s.publisher == nil {
		logger.DebugContext(ctx, "AMQP publisher not configured, skipping ledger event",
			log.FieldEventOp, string(op),
			log.FieldEntityID, tx.ID)
		return
	}
	if err := s.publisher.PublishLedgerEvent(ctx, amqp.NewLedgerEvent(op, tx)); err != nil {
		logger.Fields(ctx, slog.LevelError, "Failed to publish ledger event", log.NewFields().
			WithOperation(log.OpPublish).
			WithUser(tx.UserID).
			WithTransaction(tx.ID, string(tx.Type), tx.Amount.Cents).
			WithError(err))
	}
}

// Categories

func (s *LedgerService) ListCategories(ctx context.Context, userID int64) ([]core.Category, error) {
	cats, err := s.store.ListCategories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

func (s *LedgerService) CreateCategory(ctx context.Context, userID int64, in core.NewCategory) (core.Category, error) {
	if err := in.Validate(); err != nil {
		return core.Category{}, err
	}
	c, err := s.store.CreateCategory(ctx, in.Category(userID))
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func (s *LedgerService) UpdateCategory(ctx context.Context, userID, id int64, in core.CategoryUpdate) (core.Category, error) {
	if err := in.Validate(); err != nil {
		return core.Category{}, err
	}
	if _, err := owned(ctx, userID, id, "category", s.store.GetCategory); err != nil {
		return core.Category{}, err
	}
	c, err := s.store.UpdateCategory(ctx, id, in)
	if err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	return c, nil
}

// DeleteCategory fails with core.ErrConflict while a transaction or budget
// still references the category.
func (s *LedgerService) DeleteCategory(ctx context.Context, userID, id int64) error {
	if _, err := owned(ctx, userID, id, "category", s.store.GetCategory); err != nil {
		return err
	}
	ok, err := s.store.DeleteCategory(ctx, id)
	return removed(ok, err, "category")
}
