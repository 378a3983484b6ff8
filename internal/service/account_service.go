package service

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"banking-system/internal/domain"
	"banking-system/internal/errors"
)

var maxInitialBalance = decimal.NewFromInt(10_000_000_000) // 10 billion

type AccountService struct {
	store  domain.Store
	logger *slog.Logger
}

func NewAccountService(store domain.Store, logger *slog.Logger) *AccountService {
	return &AccountService{
		store:  store,
		logger: logger,
	}
}

// CreateAccount validates the referenced account type and persists a new
// account. No ledger entry is written and no interest is stamped at
// creation time.
func (s *AccountService) CreateAccount(ctx context.Context, accountTypeID int64, initialBalance decimal.Decimal, overdraftLimit *decimal.Decimal) (*domain.Account, error) {
	s.logger.Info("Creating account", "account_type_id", accountTypeID, "initial_balance", initialBalance)

	if initialBalance.IsNegative() {
		return nil, errors.ErrNegativeInitialBalance
	}
	if initialBalance.GreaterThan(maxInitialBalance) {
		return nil, errors.ErrInitialBalanceOutOfBounds
	}
	if overdraftLimit != nil && overdraftLimit.IsNegative() {
		return nil, errors.ErrNegativeOverdraftLimit
	}

	var account *domain.Account
	err := s.store.WithTransaction(ctx, func(store domain.Store) error {
		accountType, err := store.Reference().GetAccountType(ctx, accountTypeID)
		if err != nil {
			return err
		}

		if overdraftLimit != nil && !accountType.Kind().AllowsOverdraft() {
			return errors.ErrOverdraftOnNonChecking
		}

		account = &domain.Account{
			AccountTypeID:  accountTypeID,
			Kind:           accountType.Kind(),
			Balance:        initialBalance,
			OverdraftLimit: overdraftLimit,
		}
		return store.Account().CreateAccount(ctx, account)
	})

	if err != nil {
		return nil, err
	}

	s.logger.Info("Account created successfully", "account_id", account.ID)
	return account, nil
}

// GetBalance returns the current raw balance. It never mutates state and
// never writes a ledger entry.
func (s *AccountService) GetBalance(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	s.logger.Info("Getting balance", "account_id", accountID)

	account, err := s.store.Account().GetAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	return account.Balance, nil
}

// ListTransactions returns the ledger history for an account, newest first.
func (s *AccountService) ListTransactions(ctx context.Context, accountID int64) ([]*domain.Transaction, error) {
	s.logger.Info("Listing transactions", "account_id", accountID)

	if _, err := s.store.Account().GetAccount(ctx, accountID); err != nil {
		return nil, err
	}

	return s.store.Ledger().ListByAccount(ctx, accountID)
}
