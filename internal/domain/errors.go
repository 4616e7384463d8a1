package domain

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount indicates a transaction amount that is zero or negative.
	ErrInvalidAmount = fmt.Errorf("amount must be greater than zero")
	// ErrMissingTarget indicates a transfer request without a target wallet.
	ErrMissingTarget = fmt.Errorf("transfer requires a target wallet")
	// ErrSameWallet indicates a transfer where source and target are the same wallet.
	ErrSameWallet = fmt.Errorf("cannot transfer to the same wallet")
	// ErrInvalidType indicates an unknown transaction type.
	ErrInvalidType = fmt.Errorf("transaction type must be income, expense or transfer")
	// ErrCategoryRequired indicates an income/expense without a category.
	ErrCategoryRequired = fmt.Errorf("category is required for income and expense")
	// ErrWalletNotFound indicates the referenced wallet does not exist.
	ErrWalletNotFound = fmt.Errorf("wallet not found")
	// ErrCurrencyNotFound indicates the referenced currency does not exist.
	ErrCurrencyNotFound = fmt.Errorf("currency not found")
	// ErrTransactionNotFound indicates the referenced transaction does not exist.
	ErrTransactionNotFound = fmt.Errorf("transaction not found")
	// ErrForbidden indicates the caller does not own the entity.
	ErrForbidden = fmt.Errorf("access denied")
	// ErrUnsupportedOperation indicates an edit that is not allowed on transfer legs.
	ErrUnsupportedOperation = fmt.Errorf("transfers cannot be edited this way, delete and recreate instead")
)

// InsufficientFundsError is returned when a debit would drive a non-card
// wallet balance negative. It carries enough context for a useful 400 body.
type InsufficientFundsError struct {
	WalletID  uuid.UUID
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds on wallet %s: required %s, available %s",
		e.WalletID, e.Required.StringFixed(2), e.Available.StringFixed(2))
}

// RateNotFoundError is returned when no usable exchange rate exists for a
// currency, optionally scoped to an as-of date.
type RateNotFoundError struct {
	CharCode string
	AsOf     string // empty when the latest rate was requested
}

func (e *RateNotFoundError) Error() string {
	if e.AsOf == "" {
		return fmt.Sprintf("no exchange rate found for %s", e.CharCode)
	}
	return fmt.Sprintf("no exchange rate found for %s on or before %s", e.CharCode, e.AsOf)
}
