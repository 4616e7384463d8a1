// Package ledger is the only code path allowed to mutate wallet balances.
// Every transaction lifecycle event reduces to a credit or a debit here,
// both when applying an effect and when reversing it with roles swapped.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/Shavkat07/Moneta/internal/domain"
)

// Direction of a balance delta.
type Direction int

const (
	// Credit increases the balance unconditionally.
	Credit Direction = iota
	// Debit decreases the balance, subject to the funds policy.
	Debit
)

func (d Direction) String() string {
	if d == Credit {
		return "credit"
	}
	return "debit"
}

// Opposite returns the reversing direction.
func (d Direction) Opposite() Direction {
	if d == Credit {
		return Debit
	}
	return Credit
}

// DirectionFor maps a persisted transaction type to the direction of its
// balance effect: income legs credit, expense legs debit. Transfer requests
// never reach the ledger as their own type; they are applied as a debit on
// the source wallet and a credit of the converted amount on the target.
func DirectionFor(t domain.TransactionType) Direction {
	if t == domain.TransactionIncome {
		return Credit
	}
	return Debit
}

// Apply mutates w.Balance in place by amount in the given direction.
// A debit on a non-card wallet fails with InsufficientFundsError and leaves
// the balance untouched. Amount must already be validated positive.
func Apply(w *domain.Wallet, amount decimal.Decimal, d Direction) error {
	if d == Credit {
		w.Balance = w.Balance.Add(amount)
		return nil
	}

	if !w.AllowsNegative() && w.Balance.LessThan(amount) {
		return &domain.InsufficientFundsError{
			WalletID:  w.ID,
			Required:  amount,
			Available: w.Balance,
		}
	}
	w.Balance = w.Balance.Sub(amount)
	return nil
}

// Reverse undoes a previously applied effect: the same amount is replayed in
// the opposite direction. Reversing an income is a debit, so the funds policy
// applies (the money may already have been spent).
func Reverse(w *domain.Wallet, amount decimal.Decimal, applied Direction) error {
	return Apply(w, amount, applied.Opposite())
}
