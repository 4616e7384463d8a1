package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletType classifies a wallet. Only card wallets may hold a negative
// balance (credit-line semantics).
type WalletType string

const (
	WalletCash        WalletType = "cash"
	WalletCard        WalletType = "card"
	WalletBankAccount WalletType = "bank_account"
	WalletCrypto      WalletType = "crypto"
	WalletOther       WalletType = "other"
)

// ValidWalletType reports whether t is one of the known wallet types.
func ValidWalletType(t WalletType) bool {
	switch t {
	case WalletCash, WalletCard, WalletBankAccount, WalletCrypto, WalletOther:
		return true
	}
	return false
}

// Wallet holds one user's balance in one currency. The balance is mutated
// only by the ledger, as a side effect of transaction lifecycle events.
type Wallet struct {
	ID         uuid.UUID       `json:"id"`
	UserID     uuid.UUID       `json:"user_id"`
	Name       string          `json:"name"`
	CurrencyID int64           `json:"currency_id"`
	Balance    decimal.Decimal `json:"balance"`
	Type       WalletType      `json:"type"`
	CreatedAt  time.Time       `json:"created_at"`
}

// AllowsNegative reports whether debits may drive this wallet below zero.
func (w *Wallet) AllowsNegative() bool {
	return w.Type == WalletCard
}
