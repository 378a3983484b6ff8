package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"banking-system/internal/domain"
	"banking-system/internal/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServices(t *testing.T) (*fakeStore, *AccountService, *TransactionService) {
	t.Helper()
	store := newFakeStore()
	logger := testLogger()
	return store, NewAccountService(store, logger), NewTransactionService(store, logger)
}

func mustCreateAccount(t *testing.T, accounts *AccountService, typeID int64, balance string, overdraft *decimal.Decimal) *domain.Account {
	t.Helper()
	account, err := accounts.CreateAccount(context.Background(), typeID, decimal.RequireFromString(balance), overdraft)
	require.NoError(t, err)
	return account
}

func TestDepositAddsAmountAndAppendsLedgerEntry(t *testing.T) {
	store, accounts, engine := newTestServices(t)
	account := mustCreateAccount(t, accounts, 1, "250", nil)

	tx, err := engine.Deposit(context.Background(), account.ID, decimal.RequireFromString("99.50"))
	require.NoError(t, err)

	assert.Equal(t, account.ID, tx.AccountID)
	assert.True(t, tx.Amount.Equal(decimal.RequireFromString("99.50")))
	assert.Nil(t, tx.TargetAccountID)
	assert.False(t, tx.TransactionDate.IsZero())

	updated, err := store.Account().GetAccount(context.Background(), account.ID)
	require.NoError(t, err)
	assert.True(t, updated.Balance.Equal(decimal.RequireFromString("349.50")))
	assert.Len(t, store.transactions, 1)
}

func TestDepositUnknownAccount(t *testing.T) {
	_, _, engine := newTestServices(t)

	_, err := engine.Deposit(context.Background(), 4242, decimal.NewFromInt(10))
	assert.ErrorIs(t, err, errors.ErrAccountNotFound)
}

func TestDepositRejectsNonPositiveAmount(t *testing.T) {
	_, accounts, engine := newTestServices(t)
	account := mustCreateAccount(t, accounts, 1, "100", nil)

	_, err := engine.Deposit(context.Background(), account.ID, decimal.Zero)
	assert.ErrorIs(t, err, errors.ErrInvalidAmount)

	_, err = engine.Deposit(context.Background(), account.ID, decimal.NewFromInt(-5))
	assert.ErrorIs(t, err, errors.ErrInvalidAmount)
}

func TestDepositThenWithdrawRoundTrip(t *testing.T) {
	store, accounts, engine := newTestServices(t)
	account := mustCreateAccount(t, accounts, 1, "123.45", nil)

	amount := decimal.RequireFromString("67.89")
	_, err := engine.Deposit(context.Background(), account.ID, amount)
	require.NoError(t, err)
	_, err = engine.Withdraw(context.Background(), account.ID, amount)
	require.NoError(t, err)

	updated, err := store.Account().GetAccount(context.Background(), account.ID)
	require.NoError(t, err)
	assert.True(t, updated.Balance.Equal(decimal.RequireFromString("123.45")),
		"expected exact decimal round-trip, got %s", updated.Balance)
}

func TestWithdrawDefaultsCheckingOverdraft(t *testing.T) {
	store, accounts, engine := newTestServices(t)
	account := mustCreateAccount(t, accounts, 1, "100", nil)

	// 100 balance + 500 default overdraft covers 550.
	_, err := engine.Withdraw(context.Background(), account.ID, decimal.NewFromInt(550))
	require.NoError(t, err)

	updated, err := store.Account().GetAccount(context.Background(), account.ID)
	require.NoError(t, err)
	assert.True(t, updated.Balance.Equal(decimal.NewFromInt(-450)))
	require.NotNil(t, updated.OverdraftLimit)
	assert.True(t, updated.OverdraftLimit.Equal(decimal.NewFromInt(500)))
}

func TestWithdrawBeyondOverdraftFailsAndLeavesBalance(t *testing.T) {
	store, accounts, engine := newTestServices(t)
	limit := decimal.NewFromInt(200)
	account := mustCreateAccount(t, accounts, 1, "100", &limit)

	_, err := engine.Withdraw(context.Background(), account.ID, decimal.NewFromInt(301))
	assert.ErrorIs(t, err, errors.ErrInsufficientFunds)

	updated, err := store.Account().GetAccount(context.Background(), account.ID)
	require.NoError(t, err)
	assert.True(t, updated.Balance.Equal(decimal.NewFromInt(100)))
	assert.Empty(t, store.transactions, "failed withdrawal must not write a ledger entry")
}

func TestWithdrawSavingsHasNoOverdraft(t *testing.T) {
	_, accounts, engine := newTestServices(t)
	account := mustCreateAccount(t, accounts, 2, "100", nil)

	_, err := engine.Withdraw(context.Background(), account.ID, decimal.RequireFromString("100.01"))
	assert.ErrorIs(t, err, errors.ErrInsufficientFunds)

	_, err = engine.Withdraw(context.Background(), account.ID, decimal.NewFromInt(100))
	assert.NoError(t, err)
}

func TestWithdrawFailsWhenTransactionTypeUnregistered(t *testing.T) {
	store, accounts, engine := newTestServices(t)
	account := mustCreateAccount(t, accounts, 1, "100", nil)

	delete(store.transactionTypes, domain.TransactionTypeWithdraw)

	_, err := engine.Withdraw(context.Background(), account.ID, decimal.NewFromInt(10))
	assert.ErrorIs(t, err, errors.ErrTransactionTypeMissing)
}

func TestSavingsDepositAccruesInterestFirst(t *testing.T) {
	store, accounts, engine := newTestServices(t)
	account := mustCreateAccount(t, accounts, 2, "1000", nil)

	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	last := now.Add(-365 * 24 * time.Hour)
	stored := store.accounts[account.ID]
	stored.LastInterestCalculated = &last

	engine.now = func() time.Time { return now }

	tx, err := engine.Deposit(context.Background(), account.ID, decimal.NewFromInt(100))
	require.NoError(t, err)

	// 1000 * 0.18 * 1.0 = 180 interest, applied before the 100 deposit.
	updated, err := store.Account().GetAccount(context.Background(), account.ID)
	require.NoError(t, err)
	assert.True(t, updated.Balance.Equal(decimal.NewFromInt(1280)),
		"expected 1280, got %s", updated.Balance)

	require.NotNil(t, updated.LastInterestCalculated)
	assert.True(t, updated.LastInterestCalculated.Equal(now))

	// The ledger entry reflects the deposit only; interest is balance-only.
	assert.True(t, tx.Amount.Equal(decimal.NewFromInt(100)))
	assert.Len(t, store.transactions, 1)
}

func TestSavingsFirstAccrualOnlyStampsTimestamp(t *testing.T) {
	store, accounts, engine := newTestServices(t)
	account := mustCreateAccount(t, accounts, 2, "1000", nil)
	require.Nil(t, account.LastInterestCalculated)

	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	engine.now = func() time.Time { return now }

	_, err := engine.Deposit(context.Background(), account.ID, decimal.NewFromInt(50))
	require.NoError(t, err)

	updated, err := store.Account().GetAccount(context.Background(), account.ID)
	require.NoError(t, err)
	assert.True(t, updated.Balance.Equal(decimal.NewFromInt(1050)))
	require.NotNil(t, updated.LastInterestCalculated)
	assert.True(t, updated.LastInterestCalculated.Equal(now))
}

func TestSavingsWithdrawAccruesInterestFirst(t *testing.T) {
	store, accounts, engine := newTestServices(t)
	account := mustCreateAccount(t, accounts, 2, "1000", nil)

	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	last := now.Add(-365 * 24 * time.Hour)
	store.accounts[account.ID].LastInterestCalculated = &last
	engine.now = func() time.Time { return now }

	// 1100 exceeds the stored balance but not the accrued 1180.
	_, err := engine.Withdraw(context.Background(), account.ID, decimal.NewFromInt(1100))
	require.NoError(t, err)

	updated, err := store.Account().GetAccount(context.Background(), account.ID)
	require.NoError(t, err)
	assert.True(t, updated.Balance.Equal(decimal.NewFromInt(80)))
}

func TestTransferMovesFundsWithSingleLedgerEntry(t *testing.T) {
	store, accounts, engine := newTestServices(t)
	source := mustCreateAccount(t, accounts, 1, "500", nil)
	target := mustCreateAccount(t, accounts, 1, "100", nil)

	amount := decimal.RequireFromString("120.25")
	tx, err := engine.Transfer(context.Background(), source.ID, target.ID, amount, nil)
	require.NoError(t, err)

	assert.Equal(t, source.ID, tx.AccountID)
	require.NotNil(t, tx.TargetAccountID)
	assert.Equal(t, target.ID, *tx.TargetAccountID)
	assert.True(t, tx.Amount.Equal(amount))

	updatedSource, err := store.Account().GetAccount(context.Background(), source.ID)
	require.NoError(t, err)
	updatedTarget, err := store.Account().GetAccount(context.Background(), target.ID)
	require.NoError(t, err)
	assert.True(t, updatedSource.Balance.Equal(decimal.RequireFromString("379.75")))
	assert.True(t, updatedTarget.Balance.Equal(decimal.RequireFromString("220.25")))

	assert.Len(t, store.transactions, 1, "a transfer appends exactly one ledger entry")
}

func TestTransferInsufficientFundsLeavesBothBalances(t *testing.T) {
	store, accounts, engine := newTestServices(t)
	source := mustCreateAccount(t, accounts, 2, "50", nil)
	target := mustCreateAccount(t, accounts, 1, "10", nil)

	_, err := engine.Transfer(context.Background(), source.ID, target.ID, decimal.NewFromInt(60), nil)
	assert.ErrorIs(t, err, errors.ErrInsufficientFunds)

	updatedSource, err := store.Account().GetAccount(context.Background(), source.ID)
	require.NoError(t, err)
	updatedTarget, err := store.Account().GetAccount(context.Background(), target.ID)
	require.NoError(t, err)
	assert.True(t, updatedSource.Balance.Equal(decimal.NewFromInt(50)))
	assert.True(t, updatedTarget.Balance.Equal(decimal.NewFromInt(10)))
	assert.Empty(t, store.transactions)
}

func TestTransferUnknownAccounts(t *testing.T) {
	_, accounts, engine := newTestServices(t)
	account := mustCreateAccount(t, accounts, 1, "100", nil)

	_, err := engine.Transfer(context.Background(), account.ID, 999, decimal.NewFromInt(10), nil)
	assert.ErrorIs(t, err, errors.ErrAccountNotFound)

	_, err = engine.Transfer(context.Background(), 999, account.ID, decimal.NewFromInt(10), nil)
	assert.ErrorIs(t, err, errors.ErrAccountNotFound)
}

func TestTransferRejectsSameAccount(t *testing.T) {
	_, accounts, engine := newTestServices(t)
	account := mustCreateAccount(t, accounts, 1, "100", nil)

	_, err := engine.Transfer(context.Background(), account.ID, account.ID, decimal.NewFromInt(10), nil)
	assert.ErrorIs(t, err, errors.ErrSameAccountTransfer)
}

func TestTransferIdempotentReplayReturnsOriginal(t *testing.T) {
	store, accounts, engine := newTestServices(t)
	source := mustCreateAccount(t, accounts, 1, "500", nil)
	target := mustCreateAccount(t, accounts, 1, "0", nil)

	key := uuid.New()
	first, err := engine.Transfer(context.Background(), source.ID, target.ID, decimal.NewFromInt(100), &key)
	require.NoError(t, err)

	second, err := engine.Transfer(context.Background(), source.ID, target.ID, decimal.NewFromInt(100), &key)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	updatedSource, err := store.Account().GetAccount(context.Background(), source.ID)
	require.NoError(t, err)
	assert.True(t, updatedSource.Balance.Equal(decimal.NewFromInt(400)),
		"replay must not move funds twice")
	assert.Len(t, store.transactions, 1)
}

func TestConcurrentWithdrawalsSerialize(t *testing.T) {
	store, accounts, engine := newTestServices(t)
	account := mustCreateAccount(t, accounts, 2, "1000", nil)

	// Two 600-unit withdrawals against 1000 with no overdraft: at most one
	// can be satisfied.
	const workers = 2
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = engine.Withdraw(context.Background(), account.ID, decimal.NewFromInt(600))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, errors.ErrInsufficientFunds)
		}
	}
	assert.Equal(t, 1, succeeded)

	updated, err := store.Account().GetAccount(context.Background(), account.ID)
	require.NoError(t, err)
	assert.True(t, updated.Balance.Equal(decimal.NewFromInt(400)))
}
