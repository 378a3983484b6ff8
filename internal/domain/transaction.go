package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Names of the seeded transaction types.
const (
	TransactionTypeDeposit      = "deposit"
	TransactionTypeWithdraw     = "withdraw"
	TransactionTypeTransfer     = "transfer"
	TransactionTypeBalanceCheck = "balance_check"
)

// TransactionType is immutable reference data naming a kind of ledger entry.
type TransactionType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Transaction is one append-only ledger entry. IDs are assigned by the store
// in insertion order. A transfer produces a single entry referencing both
// accounts via AccountID and TargetAccountID.
type Transaction struct {
	ID                int64           `json:"id"`
	TransactionTypeID int64           `json:"transaction_type_id"`
	Amount            decimal.Decimal `json:"amount"`
	AccountID         int64           `json:"account_id"`
	TargetAccountID   *int64          `json:"target_account_id,omitempty"`
	IdempotencyKey    *uuid.UUID      `json:"idempotency_key,omitempty"`
	TransactionDate   time.Time       `json:"transaction_date"`
}

type TransactionRepository interface {
	AppendTransaction(ctx context.Context, tx *Transaction) error
	GetTransactionByIdempotencyKey(ctx context.Context, key uuid.UUID) (*Transaction, error)
	// ListByAccount returns ledger entries touching the account as source
	// or transfer target, newest first.
	ListByAccount(ctx context.Context, accountID int64) ([]*Transaction, error)
}
