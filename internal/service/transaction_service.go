package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"banking-system/internal/domain"
	"banking-system/internal/errors"
)

// Default overdraft limit installed on a checking account the first time it
// withdraws or transfers out without an explicit limit.
var defaultOverdraftLimit = decimal.NewFromInt(500)

// TransactionService is the transaction engine: every balance-affecting
// operation runs as one unit of work against the store, loads the accounts
// it touches with row locks, and appends exactly one ledger entry.
type TransactionService struct {
	store  domain.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewTransactionService(store domain.Store, logger *slog.Logger) *TransactionService {
	return &TransactionService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

func (s *TransactionService) Deposit(ctx context.Context, accountID int64, amount decimal.Decimal) (*domain.Transaction, error) {
	s.logger.Info("Processing deposit", "account_id", accountID, "amount", amount)

	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	var transaction *domain.Transaction
	err := s.store.WithTransaction(ctx, func(store domain.Store) error {
		account, err := store.Account().GetAccountForUpdate(ctx, accountID)
		if err != nil {
			return err
		}

		transactionType, err := store.Reference().GetTransactionType(ctx, domain.TransactionTypeDeposit)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		accrueInterest(account, now)
		account.Balance = account.Balance.Add(amount)

		if err := store.Account().UpdateAccount(ctx, account); err != nil {
			return err
		}

		transaction = &domain.Transaction{
			TransactionTypeID: transactionType.ID,
			Amount:            amount,
			AccountID:         accountID,
			TransactionDate:   now,
		}
		return store.Ledger().AppendTransaction(ctx, transaction)
	})

	if err != nil {
		return nil, err
	}

	s.logger.Info("Deposit completed", "transaction_id", transaction.ID, "account_id", accountID)
	return transaction, nil
}

func (s *TransactionService) Withdraw(ctx context.Context, accountID int64, amount decimal.Decimal) (*domain.Transaction, error) {
	s.logger.Info("Processing withdrawal", "account_id", accountID, "amount", amount)

	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	var transaction *domain.Transaction
	err := s.store.WithTransaction(ctx, func(store domain.Store) error {
		account, err := store.Account().GetAccountForUpdate(ctx, accountID)
		if err != nil {
			return err
		}

		transactionType, err := store.Reference().GetTransactionType(ctx, domain.TransactionTypeWithdraw)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		accrueInterest(account, now)

		if err := debitAccount(account, amount); err != nil {
			return err
		}

		if err := store.Account().UpdateAccount(ctx, account); err != nil {
			return err
		}

		transaction = &domain.Transaction{
			TransactionTypeID: transactionType.ID,
			Amount:            amount,
			AccountID:         accountID,
			TransactionDate:   now,
		}
		return store.Ledger().AppendTransaction(ctx, transaction)
	})

	if err != nil {
		return nil, err
	}

	s.logger.Info("Withdrawal completed", "transaction_id", transaction.ID, "account_id", accountID)
	return transaction, nil
}

// Transfer moves amount from the source to the target account and appends a
// single ledger entry referencing both. Accounts are locked in ascending id
// order so concurrent opposing transfers cannot deadlock.
func (s *TransactionService) Transfer(ctx context.Context, sourceID, targetID int64, amount decimal.Decimal, idempotencyKey *uuid.UUID) (*domain.Transaction, error) {
	s.logger.Info("Processing transfer",
		"source_account_id", sourceID,
		"target_account_id", targetID,
		"amount", amount)

	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if sourceID == targetID {
		return nil, errors.ErrSameAccountTransfer
	}

	if idempotencyKey != nil {
		existing, err := s.store.Ledger().GetTransactionByIdempotencyKey(ctx, *idempotencyKey)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			s.logger.Info("Returning existing transaction for idempotency key",
				"idempotency_key", *idempotencyKey,
				"transaction_id", existing.ID)
			return existing, nil
		}
	}

	var transaction *domain.Transaction
	err := s.store.WithTransaction(ctx, func(store domain.Store) error {
		source, target, err := lockAccountPair(ctx, store.Account(), sourceID, targetID)
		if err != nil {
			return err
		}

		transactionType, err := store.Reference().GetTransactionType(ctx, domain.TransactionTypeTransfer)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		accrueInterest(source, now)
		accrueInterest(target, now)

		if err := debitAccount(source, amount); err != nil {
			return err
		}
		target.Balance = target.Balance.Add(amount)

		if err := store.Account().UpdateAccount(ctx, source); err != nil {
			return err
		}
		if err := store.Account().UpdateAccount(ctx, target); err != nil {
			return err
		}

		transaction = &domain.Transaction{
			TransactionTypeID: transactionType.ID,
			Amount:            amount,
			AccountID:         sourceID,
			TargetAccountID:   &targetID,
			IdempotencyKey:    idempotencyKey,
			TransactionDate:   now,
		}
		return store.Ledger().AppendTransaction(ctx, transaction)
	})

	if err != nil {
		return nil, err
	}

	s.logger.Info("Transfer completed",
		"transaction_id", transaction.ID,
		"source_account_id", sourceID,
		"target_account_id", targetID)
	return transaction, nil
}

// lockAccountPair loads both transfer accounts with row locks in ascending
// id order, then returns them as (source, target).
func lockAccountPair(ctx context.Context, accounts domain.AccountRepository, sourceID, targetID int64) (*domain.Account, *domain.Account, error) {
	firstID, secondID := sourceID, targetID
	if targetID < sourceID {
		firstID, secondID = targetID, sourceID
	}

	first, err := accounts.GetAccountForUpdate(ctx, firstID)
	if err != nil {
		return nil, nil, err
	}
	second, err := accounts.GetAccountForUpdate(ctx, secondID)
	if err != nil {
		return nil, nil, err
	}

	if first.ID == sourceID {
		return first, second, nil
	}
	return second, first, nil
}

// debitAccount enforces the per-kind sufficiency rule and decrements the
// balance. Checking accounts without an explicit overdraft limit get the
// default limit installed before the check.
func debitAccount(account *domain.Account, amount decimal.Decimal) error {
	if account.Kind.AllowsOverdraft() && account.OverdraftLimit == nil {
		limit := defaultOverdraftLimit
		account.OverdraftLimit = &limit
	}

	if amount.GreaterThan(account.AvailableFunds()) {
		return errors.ErrInsufficientFunds
	}

	account.Balance = account.Balance.Sub(amount)
	return nil
}

func validateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() || amount.IsZero() {
		return errors.ErrInvalidAmount
	}
	return nil
}
