package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"banking-system/internal/domain"
	"banking-system/internal/errors"
)

// fakeStore is an in-memory domain.Store. WithTransaction serializes units
// of work behind a mutex and restores a snapshot on error, mirroring the
// commit-or-rollback contract of the SQL store.
type fakeStore struct {
	mu               sync.Mutex
	accounts         map[int64]*domain.Account
	accountTypes     map[int64]*domain.AccountType
	transactionTypes map[string]*domain.TransactionType
	transactions     []*domain.Transaction
	nextAccountID    int64
	nextTxID         int64
}

func newFakeStore() *fakeStore {
	s := &fakeStore{
		accounts:         make(map[int64]*domain.Account),
		accountTypes:     make(map[int64]*domain.AccountType),
		transactionTypes: make(map[string]*domain.TransactionType),
		nextAccountID:    1,
		nextTxID:         1,
	}
	s.Reference().Seed(context.Background())
	return s
}

func (s *fakeStore) Account() domain.AccountRepository     { return &fakeAccountRepo{s} }
func (s *fakeStore) Ledger() domain.TransactionRepository  { return &fakeLedgerRepo{s} }
func (s *fakeStore) Reference() domain.ReferenceRepository { return &fakeReferenceRepo{s} }

func (s *fakeStore) WithTransaction(ctx context.Context, fn func(domain.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	accountsSnapshot := make(map[int64]*domain.Account, len(s.accounts))
	for id, account := range s.accounts {
		accountsSnapshot[id] = copyAccount(account)
	}
	txCount := len(s.transactions)
	nextAccountID := s.nextAccountID
	nextTxID := s.nextTxID

	if err := fn(s); err != nil {
		s.accounts = accountsSnapshot
		s.transactions = s.transactions[:txCount]
		s.nextAccountID = nextAccountID
		s.nextTxID = nextTxID
		return err
	}
	return nil
}

func copyAccount(a *domain.Account) *domain.Account {
	cp := *a
	if a.OverdraftLimit != nil {
		limit := *a.OverdraftLimit
		cp.OverdraftLimit = &limit
	}
	if a.LastInterestCalculated != nil {
		ts := *a.LastInterestCalculated
		cp.LastInterestCalculated = &ts
	}
	return &cp
}

func copyTransaction(t *domain.Transaction) *domain.Transaction {
	cp := *t
	if t.TargetAccountID != nil {
		id := *t.TargetAccountID
		cp.TargetAccountID = &id
	}
	if t.IdempotencyKey != nil {
		key := *t.IdempotencyKey
		cp.IdempotencyKey = &key
	}
	return &cp
}

type fakeAccountRepo struct{ s *fakeStore }

func (r *fakeAccountRepo) CreateAccount(_ context.Context, account *domain.Account) error {
	account.ID = r.s.nextAccountID
	r.s.nextAccountID++
	r.s.accounts[account.ID] = copyAccount(account)
	return nil
}

func (r *fakeAccountRepo) GetAccount(_ context.Context, id int64) (*domain.Account, error) {
	account, ok := r.s.accounts[id]
	if !ok {
		return nil, errors.ErrAccountNotFound
	}
	return copyAccount(account), nil
}

func (r *fakeAccountRepo) GetAccountForUpdate(ctx context.Context, id int64) (*domain.Account, error) {
	return r.GetAccount(ctx, id)
}

func (r *fakeAccountRepo) UpdateAccount(_ context.Context, account *domain.Account) error {
	if _, ok := r.s.accounts[account.ID]; !ok {
		return errors.ErrAccountNotFound
	}
	r.s.accounts[account.ID] = copyAccount(account)
	return nil
}

type fakeLedgerRepo struct{ s *fakeStore }

func (r *fakeLedgerRepo) AppendTransaction(_ context.Context, tx *domain.Transaction) error {
	tx.ID = r.s.nextTxID
	r.s.nextTxID++
	r.s.transactions = append(r.s.transactions, copyTransaction(tx))
	return nil
}

func (r *fakeLedgerRepo) GetTransactionByIdempotencyKey(_ context.Context, key uuid.UUID) (*domain.Transaction, error) {
	for _, tx := range r.s.transactions {
		if tx.IdempotencyKey != nil && *tx.IdempotencyKey == key {
			return copyTransaction(tx), nil
		}
	}
	return nil, nil
}

func (r *fakeLedgerRepo) ListByAccount(_ context.Context, accountID int64) ([]*domain.Transaction, error) {
	var out []*domain.Transaction
	for i := len(r.s.transactions) - 1; i >= 0; i-- {
		tx := r.s.transactions[i]
		if tx.AccountID == accountID || (tx.TargetAccountID != nil && *tx.TargetAccountID == accountID) {
			out = append(out, copyTransaction(tx))
		}
	}
	return out, nil
}

type fakeReferenceRepo struct{ s *fakeStore }

func (r *fakeReferenceRepo) GetAccountType(_ context.Context, id int64) (*domain.AccountType, error) {
	accountType, ok := r.s.accountTypes[id]
	if !ok {
		return nil, errors.ErrInvalidAccountTypeID
	}
	cp := *accountType
	return &cp, nil
}

func (r *fakeReferenceRepo) GetTransactionType(_ context.Context, name string) (*domain.TransactionType, error) {
	transactionType, ok := r.s.transactionTypes[name]
	if !ok {
		return nil, errors.ErrTransactionTypeMissing
	}
	cp := *transactionType
	return &cp, nil
}

func (r *fakeReferenceRepo) Seed(_ context.Context) error {
	r.s.accountTypes[1] = &domain.AccountType{ID: 1, Name: "Checking", InterestRate: decimal.Zero}
	r.s.accountTypes[2] = &domain.AccountType{ID: 2, Name: "Savings", InterestRate: decimal.NewFromFloat(0.02)}
	r.s.transactionTypes[domain.TransactionTypeDeposit] = &domain.TransactionType{ID: 1, Name: domain.TransactionTypeDeposit}
	r.s.transactionTypes[domain.TransactionTypeWithdraw] = &domain.TransactionType{ID: 2, Name: domain.TransactionTypeWithdraw}
	r.s.transactionTypes[domain.TransactionTypeTransfer] = &domain.TransactionType{ID: 3, Name: domain.TransactionTypeTransfer}
	r.s.transactionTypes[domain.TransactionTypeBalanceCheck] = &domain.TransactionType{ID: 4, Name: domain.TransactionTypeBalanceCheck}
	return nil
}
