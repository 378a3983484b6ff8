package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/shopspring/decimal"

	"banking-system/internal/domain"
	"banking-system/internal/errors"
)

type referenceRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewReferenceRepository(db SQLExecutor, logger *slog.Logger) domain.ReferenceRepository {
	return &referenceRepository{
		db:     db,
		logger: logger,
	}
}

func (r *referenceRepository) GetAccountType(ctx context.Context, id int64) (*domain.AccountType, error) {
	query := `SELECT id, name, interest_rate FROM account_types WHERE id = $1`

	var accountType domain.AccountType
	var rateStr string

	err := r.db.QueryRowContext(ctx, query, id).Scan(&accountType.ID, &accountType.Name, &rateStr)
	if err != nil {
		if err == sql.ErrNoRows {
			r.logger.Warn("Account type not found", "account_type_id", id)
			return nil, errors.ErrInvalidAccountTypeID
		}
		r.logger.Error("Failed to get account type", "account_type_id", id, "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to get account type").WithDetails(err.Error())
	}

	rate, err := decimal.NewFromString(rateStr)
	if err != nil {
		return nil, errors.NewAppError(errors.InternalError, "failed to parse interest rate").WithDetails(err.Error())
	}
	accountType.InterestRate = rate

	return &accountType, nil
}

func (r *referenceRepository) GetTransactionType(ctx context.Context, name string) (*domain.TransactionType, error) {
	query := `SELECT id, name FROM transaction_types WHERE name = $1`

	var transactionType domain.TransactionType

	err := r.db.QueryRowContext(ctx, query, name).Scan(&transactionType.ID, &transactionType.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			r.logger.Error("Transaction type not registered", "name", name)
			return nil, errors.ErrTransactionTypeMissing
		}
		r.logger.Error("Failed to get transaction type", "name", name, "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to get transaction type").WithDetails(err.Error())
	}

	return &transactionType, nil
}

// Seed installs the fixed reference rows. It is idempotent and safe to run
// on every startup.
func (r *referenceRepository) Seed(ctx context.Context) error {
	statements := []string{
		`INSERT INTO account_types (id, name, interest_rate) VALUES
			(1, 'Checking', 0),
			(2, 'Savings', 0.02)
		ON CONFLICT (id) DO NOTHING`,
		`INSERT INTO transaction_types (id, name) VALUES
			(1, 'deposit'),
			(2, 'withdraw'),
			(3, 'transfer'),
			(4, 'balance_check')
		ON CONFLICT (id) DO NOTHING`,
	}

	for _, stmt := range statements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			r.logger.Error("Failed to seed reference data", "error", err)
			return errors.NewAppError(errors.InternalError, "failed to seed reference data").WithDetails(err.Error())
		}
	}

	r.logger.Info("Reference data seeded")
	return nil
}
