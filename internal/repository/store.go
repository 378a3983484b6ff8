package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"banking-system/internal/domain"
	"banking-system/internal/errors"
)

// Store provides a unified interface for all repository operations with
// transaction support. Each engine operation runs against a Store bound to
// either the raw connection pool or a single open transaction.
type Store struct {
	executor SQLExecutor
	logger   *slog.Logger
}

// NewStore creates a new Store instance
func NewStore(db *sql.DB, logger *slog.Logger) *Store {
	return &Store{
		executor: db,
		logger:   logger,
	}
}

var _ domain.Store = (*Store)(nil)

// Account returns an AccountRepository using the current executor
func (s *Store) Account() domain.AccountRepository {
	return NewAccountRepository(s.executor, s.logger)
}

// Ledger returns a TransactionRepository using the current executor
func (s *Store) Ledger() domain.TransactionRepository {
	return NewTransactionRepository(s.executor, s.logger)
}

// Reference returns a ReferenceRepository using the current executor
func (s *Store) Reference() domain.ReferenceRepository {
	return NewReferenceRepository(s.executor, s.logger)
}

// WithTransaction executes a function within a database transaction. The
// transaction is bound to ctx, so caller cancellation rolls back any
// uncommitted work.
func (s *Store) WithTransaction(ctx context.Context, fn func(domain.Store) error) error {
	// Only sql.DB can begin transactions
	db, ok := s.executor.(*sql.DB)
	if !ok {
		return errors.ErrCannotBeginTransaction
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	txStore := &Store{
		executor: &TxWrapper{Tx: tx},
		logger:   s.logger,
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(txStore); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}
