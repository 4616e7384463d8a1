package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BaseCurrencyCode is the reference currency all rates are quoted against.
// It never has a rate row; its rate is implicitly 1.
const BaseCurrencyCode = "UZS"

// Currency is a reference-data row describing one tracked currency.
type Currency struct {
	ID       int64  `json:"id"`
	Code     string `json:"code"`      // ISO numeric, e.g. "840"
	CharCode string `json:"char_code"` // ISO alpha, e.g. "USD", unique
	Name     string `json:"name"`
	Nominal  int64  `json:"nominal"` // unit size the external feed quotes against
}

// IsBase reports whether this is the base currency.
func (c Currency) IsBase() bool {
	return c.CharCode == BaseCurrencyCode
}

// CurrencyRate is one point of the per-currency rate time series.
// Rate is always the price of 1 unit of the currency in the base currency
// (feed quotes are divided by Nominal before they get here).
// At most one row exists per (currency, date).
type CurrencyRate struct {
	ID         int64           `json:"id"`
	CurrencyID int64           `json:"currency_id"`
	Rate       decimal.Decimal `json:"rate"`
	Date       time.Time       `json:"date"`
}
