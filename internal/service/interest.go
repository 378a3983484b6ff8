package service

import (
	"time"

	"github.com/shopspring/decimal"

	"banking-system/internal/domain"
)

// Nominal annual rate applied to savings balances. The seeded account-type
// interest_rate column is reference data only; accrual uses this fixed rate.
var savingsAnnualRate = decimal.NewFromFloat(0.18)

const daysPerYear = 365

// accrueInterest applies time-proportional interest to a savings balance and
// stamps LastInterestCalculated. It runs as a precondition of every
// balance-affecting operation; the very first call only stamps the timestamp.
// Accrual mutates the balance in place and never writes a ledger entry.
func accrueInterest(account *domain.Account, now time.Time) {
	if !account.Kind.AccruesInterest() {
		return
	}

	if account.LastInterestCalculated != nil {
		elapsed := now.Sub(*account.LastInterestCalculated)
		if elapsed > 0 {
			elapsedYears := decimal.NewFromFloat(elapsed.Hours() / (24 * daysPerYear))
			interest := account.Balance.Mul(savingsAnnualRate).Mul(elapsedYears)
			account.Balance = account.Balance.Add(interest)
		}
	}

	stamp := now
	account.LastInterestCalculated = &stamp
}
