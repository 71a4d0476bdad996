package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"

	"ecobrain/internal/amqp"
	"ecobrain/internal/core"
	"ecobrain/internal/log"
)

type Pagination struct {
	Total       int `json:"total"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
	PageSize    int `json:"pageSize"`
}

// NewPagination derives the page count; a page size below one is treated as one.
func NewPagination(total, page, size int) Pagination {
	if size < 1 {
		size = 1
	}
	return Pagination{
		Total:       total,
		TotalPages:  (total + size - 1) / size,
		CurrentPage: page,
		PageSize:    size,
	}
}

type TransactionPage struct {
	Transactions []core.Transaction `json:"transactions"`
	Pagination   Pagination         `json:"pagination"`
}

// ListTransactions returns one page of f. The page query and the count run
// concurrently.
func (s *LedgerService) ListTransactions(ctx context.Context, userID int64, f core.TransactionFilter, page, size int) (TransactionPage, error) {
	if page < 1 {
		page = 1
	}
	if size > 0 && page > math.MaxInt/size {
		return TransactionPage{}, core.NewValidationError("page", "is too large")
	}
	f.Limit = size
	f.Offset = (page - 1) * size

	var (
		txs   []core.Transaction
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = s.store.ListTransactions(gctx, userID, f)
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		total, err = s.store.CountTransactions(gctx, userID, f.Unpaged())
		if err != nil {
			return fmt.Errorf("count transactions: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return TransactionPage{}, err
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	return TransactionPage{Transactions: txs, Pagination: NewPagination(total, page, size)}, nil
}

func (s *LedgerService) RecentTransactions(ctx context.Context, userID int64, n int) ([]core.Transaction, error) {
	txs, err := s.store.RecentTransactions(ctx, userID, n)
	if err != nil {
		return nil, fmt.Errorf("recent transactions: %w", err)
	}
	return txs, nil
}

// ExportTransactions returns every row matching f, ignoring paging, with the
// caller's category names for labelling.
func (s *LedgerService) ExportTransactions(ctx context.Context, userID int64, f core.TransactionFilter) ([]core.Transaction, map[int64]string, error) {
	var (
		txs   []core.Transaction
		names map[int64]string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = s.store.ListTransactions(gctx, userID, f.Unpaged())
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		names, err = categoryNames(gctx, s.store, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	log.FromContext(ctx).WithComponent(log.ComponentLedger).InfoContext(ctx, "Transactions exported",
		log.FieldOperation, log.OpExport,
		log.FieldUserID, userID,
		"rows", len(txs))
	return txs, names, nil
}

func (s *LedgerService) GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error) {
	return owned(ctx, userID, id, "transaction", s.store.GetTransaction)
}

func (s *LedgerService) CreateTransaction(ctx context.Context, userID int64, in core.NewTransaction) (core.Transaction, error) {
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if _, err := requireOwnedCategory(ctx, s.store, userID, in.CategoryID); err != nil {
		return core.Transaction{}, err
	}

	tx, err := s.store.CreateTransaction(ctx, in.Transaction(userID))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	log.FromContext(ctx).WithComponent(log.ComponentLedger).Fields(ctx, slog.LevelInfo, "Transaction created",
		log.NewFields().
			WithOperation(log.OpCreate).
			WithUser(userID).
			WithTransaction(tx.ID, string(tx.Type), tx.Amount.Cents))

	s.publish(ctx, amqp.OpCreated, tx)
	return tx, nil
}

func (s *LedgerService) UpdateTransaction(ctx context.Context, userID, id int64, in core.TransactionUpdate) (core.Transaction, error) {
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if _, err := owned(ctx, userID, id, "transaction", s.store.GetTransaction); err != nil {
		return core.Transaction{}, err
	}
	if in.CategoryID != nil {
		if _, err := requireOwnedCategory(ctx, s.store, userID, *in.CategoryID); err != nil {
			return core.Transaction{}, err
		}
	}

	tx, err := s.store.UpdateTransaction(ctx, id, in)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	s.publish(ctx, amqp.OpUpdated, tx)
	return tx, nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, userID, id int64) error {
	tx, err := owned(ctx, userID, id, "transaction", s.store.GetTransaction)
	if err != nil {
		return err
	}
	ok, err := s.store.DeleteTransaction(ctx, id)
	if err := removed(ok, err, "transaction"); err != nil {
		return err
	}
	s.publish(ctx, amqp.OpDeleted, tx)
	return nil
}
