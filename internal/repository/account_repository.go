package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"banking-system/internal/domain"
	"banking-system/internal/errors"
)

type accountRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewAccountRepository(db SQLExecutor, logger *slog.Logger) domain.AccountRepository {
	return &accountRepository{
		db:     db,
		logger: logger,
	}
}

func (r *accountRepository) CreateAccount(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (account_type_id, balance, overdraft_limit, last_interest_calculated, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	now := time.Now().UTC()

	var overdraft interface{}
	if account.OverdraftLimit != nil {
		overdraft = account.OverdraftLimit.String()
	}

	err := r.db.QueryRowContext(
		ctx,
		query,
		account.AccountTypeID,
		account.Balance.String(),
		overdraft,
		account.LastInterestCalculated,
		now,
		now,
	).Scan(&account.ID)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23503" { // foreign_key_violation
				r.logger.Warn("Account references unknown account type", "account_type_id", account.AccountTypeID)
				return errors.ErrInvalidAccountTypeID
			}
		}
		r.logger.Error("Failed to create account", "account_type_id", account.AccountTypeID, "error", err)
		return errors.NewAppError(errors.InternalError, "failed to create account").WithDetails(err.Error())
	}

	account.CreatedAt = now
	account.UpdatedAt = now
	r.logger.Info("Account created successfully", "account_id", account.ID)
	return nil
}

func (r *accountRepository) GetAccount(ctx context.Context, id int64) (*domain.Account, error) {
	query := `
		SELECT a.id, a.account_type_id, t.name, a.balance, a.overdraft_limit, a.last_interest_calculated, a.created_at, a.updated_at
		FROM accounts a
		JOIN account_types t ON t.id = a.account_type_id
		WHERE a.id = $1
	`

	return r.scanAccount(ctx, query, id)
}

func (r *accountRepository) GetAccountForUpdate(ctx context.Context, id int64) (*domain.Account, error) {
	// Row lock on accounts only; account_types is immutable reference data.
	query := `
		SELECT a.id, a.account_type_id, t.name, a.balance, a.overdraft_limit, a.last_interest_calculated, a.created_at, a.updated_at
		FROM accounts a
		JOIN account_types t ON t.id = a.account_type_id
		WHERE a.id = $1
		FOR UPDATE OF a
	`

	return r.scanAccount(ctx, query, id)
}

func (r *accountRepository) scanAccount(ctx context.Context, query string, id int64) (*domain.Account, error) {
	var account domain.Account
	var typeName string
	var balanceStr string
	var overdraftStr sql.NullString
	var lastInterest sql.NullTime

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&account.ID,
		&account.AccountTypeID,
		&typeName,
		&balanceStr,
		&overdraftStr,
		&lastInterest,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			r.logger.Warn("Account not found", "account_id", id)
			return nil, errors.ErrAccountNotFound
		}
		r.logger.Error("Failed to get account", "account_id", id, "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to get account").WithDetails(err.Error())
	}

	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		r.logger.Error("Failed to parse balance", "account_id", id, "balance_str", balanceStr, "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to parse balance").WithDetails(err.Error())
	}
	account.Balance = balance

	if overdraftStr.Valid {
		limit, err := decimal.NewFromString(overdraftStr.String)
		if err != nil {
			return nil, errors.NewAppError(errors.InternalError, "failed to parse overdraft limit").WithDetails(err.Error())
		}
		account.OverdraftLimit = &limit
	}

	if lastInterest.Valid {
		ts := lastInterest.Time
		account.LastInterestCalculated = &ts
	}

	account.Kind = domain.KindFromTypeName(typeName)
	return &account, nil
}

// UpdateAccount persists the mutable account fields: balance, overdraft
// limit, and the interest timestamp.
func (r *accountRepository) UpdateAccount(ctx context.Context, account *domain.Account) error {
	query := `
		UPDATE accounts
		SET balance = $1, overdraft_limit = $2, last_interest_calculated = $3, updated_at = $4
		WHERE id = $5
	`

	var overdraft interface{}
	if account.OverdraftLimit != nil {
		overdraft = account.OverdraftLimit.String()
	}

	result, err := r.db.ExecContext(ctx, query, account.Balance.String(), overdraft, account.LastInterestCalculated, time.Now().UTC(), account.ID)
	if err != nil {
		r.logger.Error("Failed to update account", "account_id", account.ID, "error", err)
		return errors.NewAppError(errors.InternalError, "failed to update account").WithDetails(err.Error())
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewAppError(errors.InternalError, "failed to get rows affected").WithDetails(err.Error())
	}

	if rowsAffected == 0 {
		r.logger.Warn("No account found to update", "account_id", account.ID)
		return errors.ErrAccountNotFound
	}

	r.logger.Info("Account updated", "account_id", account.ID, "new_balance", account.Balance)
	return nil
}
