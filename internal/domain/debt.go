package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DebtType says which way the money went.
type DebtType string

const (
	DebtGiven DebtType = "given" // I lent, they owe me
	DebtTaken DebtType = "taken" // I borrowed, I owe them
)

// DebtStatus tracks a debt's lifecycle.
type DebtStatus string

const (
	DebtActive   DebtStatus = "active"
	DebtPaid     DebtStatus = "paid"
	DebtOverdue  DebtStatus = "overdue"
	DebtForgiven DebtStatus = "forgiven"
)

// Debtor is a contact in one user's personal debt book. Phone numbers are
// unique per user, not globally.
type Debtor struct {
	ID          int64     `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Name        string    `json:"name"`
	PhoneNumber *string   `json:"phone_number,omitempty"`
}

// Debt is one peer debt, with partial repayment tracked in RepaidAmount.
type Debt struct {
	ID           int64           `json:"id"`
	UserID       uuid.UUID       `json:"user_id"`
	DebtorID     int64           `json:"debtor_id"`
	CurrencyID   int64           `json:"currency_id"`
	Amount       decimal.Decimal `json:"amount"`
	RepaidAmount decimal.Decimal `json:"repaid_amount"`
	Type         DebtType        `json:"type"`
	Status       DebtStatus      `json:"status"`
	Comment      *string         `json:"comment,omitempty"`
	DueDate      *time.Time      `json:"due_date,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Outstanding returns the amount still owed.
func (d *Debt) Outstanding() decimal.Decimal {
	return d.Amount.Sub(d.RepaidAmount)
}
