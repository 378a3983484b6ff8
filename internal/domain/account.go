package domain

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AccountKind is the closed set of account classes the engine knows how to
// handle. It is derived from the seeded account-type name so balance rules
// attach to the variant instead of string comparisons at every call site.
type AccountKind int

const (
	KindOther AccountKind = iota
	KindChecking
	KindSavings
)

func (k AccountKind) String() string {
	switch k {
	case KindChecking:
		return "checking"
	case KindSavings:
		return "savings"
	default:
		return "other"
	}
}

// KindFromTypeName maps a seeded account-type name to its kind. Unknown
// names fall back to KindOther, which gets the strictest balance rules.
func KindFromTypeName(name string) AccountKind {
	switch strings.ToLower(name) {
	case "checking":
		return KindChecking
	case "savings":
		return KindSavings
	default:
		return KindOther
	}
}

// AllowsOverdraft reports whether accounts of this kind may carry a negative
// balance up to their overdraft limit.
func (k AccountKind) AllowsOverdraft() bool {
	return k == KindChecking
}

// AccruesInterest reports whether accounts of this kind earn time-based
// interest on their balance.
func (k AccountKind) AccruesInterest() bool {
	return k == KindSavings
}

// AccountType is immutable reference data describing a class of account.
// Rows are seeded once at bootstrap and never deleted.
type AccountType struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	InterestRate decimal.Decimal `json:"interest_rate"`
}

// Kind returns the behavior variant for this account type.
func (t *AccountType) Kind() AccountKind {
	return KindFromTypeName(t.Name)
}

type Account struct {
	ID                     int64            `json:"account_id"`
	AccountTypeID          int64            `json:"account_type_id"`
	Kind                   AccountKind      `json:"-"`
	Balance                decimal.Decimal  `json:"balance"`
	OverdraftLimit         *decimal.Decimal `json:"overdraft_limit,omitempty"`
	LastInterestCalculated *time.Time       `json:"last_interest_calculated,omitempty"`
	CreatedAt              time.Time        `json:"created_at"`
	UpdatedAt              time.Time        `json:"updated_at"`
}

// AvailableFunds is the amount that can leave the account without violating
// the balance invariant: balance plus overdraft headroom for kinds that
// allow it, plain balance otherwise.
func (a *Account) AvailableFunds() decimal.Decimal {
	if a.Kind.AllowsOverdraft() && a.OverdraftLimit != nil {
		return a.Balance.Add(*a.OverdraftLimit)
	}
	return a.Balance
}

type AccountRepository interface {
	CreateAccount(ctx context.Context, account *Account) error
	GetAccount(ctx context.Context, id int64) (*Account, error)
	// GetAccountForUpdate loads the account with a row lock so concurrent
	// balance mutations against the same account serialize.
	GetAccountForUpdate(ctx context.Context, id int64) (*Account, error)
	UpdateAccount(ctx context.Context, account *Account) error
}

type ReferenceRepository interface {
	GetAccountType(ctx context.Context, id int64) (*AccountType, error)
	GetTransactionType(ctx context.Context, name string) (*TransactionType, error)
	Seed(ctx context.Context) error
}
