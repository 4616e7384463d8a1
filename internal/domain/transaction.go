package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType is the kind of operation a transaction row records.
// Transfers never persist as their own type: a transfer produces an expense
// leg on the source wallet and an income leg on the target wallet, linked
// via RelatedTransactionID.
type TransactionType string

const (
	TransactionIncome   TransactionType = "income"
	TransactionExpense  TransactionType = "expense"
	TransactionTransfer TransactionType = "transfer"
)

// ValidTransactionType reports whether t is a known request type.
func ValidTransactionType(t TransactionType) bool {
	switch t {
	case TransactionIncome, TransactionExpense, TransactionTransfer:
		return true
	}
	return false
}

// Transaction is one persisted ledger event on a wallet. Amount is always
// stored positive; the type decides the sign of the balance effect.
type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	WalletID    uuid.UUID       `json:"wallet_id"`
	Amount      decimal.Decimal `json:"amount"`
	Type        TransactionType `json:"type"`
	CategoryID  *int64          `json:"category_id,omitempty"`
	Description *string         `json:"description,omitempty"`
	RawText     *string         `json:"raw_text,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`

	// RelatedTransactionID points at the mirror leg of a transfer. The link
	// is symmetric once both legs are persisted.
	RelatedTransactionID *uuid.UUID `json:"related_transaction_id,omitempty"`
}

// IsTransferLeg reports whether this row is one half of a transfer pair.
func (t *Transaction) IsTransferLeg() bool {
	return t.RelatedTransactionID != nil
}

// TransactionPatch is a typed partial update. Nil fields are left untouched.
type TransactionPatch struct {
	Amount      *decimal.Decimal
	Type        *TransactionType
	WalletID    *uuid.UUID
	CategoryID  *int64
	Description *string
	RawText     *string
	CreatedAt   *time.Time
}

// Empty reports whether the patch changes nothing.
func (p TransactionPatch) Empty() bool {
	return p.Amount == nil && p.Type == nil && p.WalletID == nil &&
		p.CategoryID == nil && p.Description == nil && p.RawText == nil && p.CreatedAt == nil
}

// TouchesBalance reports whether applying the patch to tx would change the
// fields that drive wallet balances.
func (p TransactionPatch) TouchesBalance(tx *Transaction) bool {
	if p.Amount != nil && !p.Amount.Equal(tx.Amount) {
		return true
	}
	if p.Type != nil && *p.Type != tx.Type {
		return true
	}
	if p.WalletID != nil && *p.WalletID != tx.WalletID {
		return true
	}
	return false
}
