package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"banking-system/internal/domain"
	"banking-system/internal/errors"
)

type transactionRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewTransactionRepository(db SQLExecutor, logger *slog.Logger) domain.TransactionRepository {
	return &transactionRepository{
		db:     db,
		logger: logger,
	}
}

// AppendTransaction writes one ledger entry. The store assigns the id in
// insertion order; rows are never updated or deleted afterwards.
func (r *transactionRepository) AppendTransaction(ctx context.Context, tx *domain.Transaction) error {
	query := `
		INSERT INTO transactions
		(transaction_type_id, amount, account_id, target_account_id, idempotency_key, transaction_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	// Handle optional columns
	var targetAccountID interface{}
	if tx.TargetAccountID != nil {
		targetAccountID = *tx.TargetAccountID
	}
	var idempotencyKey interface{}
	if tx.IdempotencyKey != nil {
		idempotencyKey = *tx.IdempotencyKey
	}

	err := r.db.QueryRowContext(
		ctx,
		query,
		tx.TransactionTypeID,
		tx.Amount.String(),
		tx.AccountID,
		targetAccountID,
		idempotencyKey,
		tx.TransactionDate,
	).Scan(&tx.ID)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" && pqErr.Constraint == "idx_transactions_idempotency_key" {
				r.logger.Warn("Duplicate idempotency key", "idempotency_key", tx.IdempotencyKey)
				return errors.NewAppError(errors.DuplicateTransaction, "transaction already processed")
			}
		}
		r.logger.Error("Failed to append transaction",
			"account_id", tx.AccountID,
			"amount", tx.Amount,
			"error", err)
		return errors.NewAppError(errors.InternalError, "failed to append transaction").WithDetails(err.Error())
	}

	r.logger.Info("Ledger entry appended", "transaction_id", tx.ID, "account_id", tx.AccountID)
	return nil
}

func (r *transactionRepository) GetTransactionByIdempotencyKey(ctx context.Context, key uuid.UUID) (*domain.Transaction, error) {
	query := `
		SELECT id, transaction_type_id, amount, account_id, target_account_id, idempotency_key, transaction_date
		FROM transactions WHERE idempotency_key = $1
	`

	rows, err := r.db.QueryContext(ctx, query, key)
	if err != nil {
		r.logger.Error("Failed to get transaction by idempotency key", "idempotency_key", key, "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to get transaction").WithDetails(err.Error())
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return r.scanTransaction(rows)
}

func (r *transactionRepository) ListByAccount(ctx context.Context, accountID int64) ([]*domain.Transaction, error) {
	query := `
		SELECT id, transaction_type_id, amount, account_id, target_account_id, idempotency_key, transaction_date
		FROM transactions
		WHERE account_id = $1 OR target_account_id = $1
		ORDER BY id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		r.logger.Error("Failed to list transactions", "account_id", accountID, "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to list transactions").WithDetails(err.Error())
	}
	defer rows.Close()

	var transactions []*domain.Transaction
	for rows.Next() {
		tx, err := r.scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewAppError(errors.InternalError, "failed to list transactions").WithDetails(err.Error())
	}

	return transactions, nil
}

func (r *transactionRepository) scanTransaction(rows *sql.Rows) (*domain.Transaction, error) {
	var transaction domain.Transaction
	var amountStr string
	var targetAccountID sql.NullInt64
	var idempotencyKey sql.NullString

	err := rows.Scan(
		&transaction.ID,
		&transaction.TransactionTypeID,
		&amountStr,
		&transaction.AccountID,
		&targetAccountID,
		&idempotencyKey,
		&transaction.TransactionDate,
	)
	if err != nil {
		r.logger.Error("Failed to scan transaction", "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to scan transaction").WithDetails(err.Error())
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, errors.NewAppError(errors.InternalError, "failed to parse amount").WithDetails(err.Error())
	}
	transaction.Amount = amount

	if targetAccountID.Valid {
		id := targetAccountID.Int64
		transaction.TargetAccountID = &id
	}

	if idempotencyKey.Valid {
		key, err := uuid.Parse(idempotencyKey.String)
		if err != nil {
			return nil, errors.NewAppError(errors.InternalError, "failed to parse idempotency key").WithDetails(err.Error())
		}
		transaction.IdempotencyKey = &key
	}

	return &transaction, nil
}
