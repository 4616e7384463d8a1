// Package currency provides exchange-rate lookups and cross-currency
// conversion. All rates are stored as the price of 1 unit in the base
// currency, so any pair converts transitively through the base without a
// full rate matrix.
package currency

import (
	"context"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Shavkat07/Moneta/internal/domain"
)

// RateStore reads currencies and their rate time series.
type RateStore interface {
	GetCurrency(ctx context.Context, id int64) (*domain.Currency, error)
	// LatestRate returns the most recent rate row for the currency, or
	// domain.RateNotFoundError when the currency has no rates at all.
	LatestRate(ctx context.Context, currencyID int64) (decimal.Decimal, error)
	// RateOnOrBefore returns the most recent rate with date <= the given day.
	RateOnOrBefore(ctx context.Context, currencyID int64, date time.Time) (decimal.Decimal, error)
}

// Service computes conversions against the base currency.
type Service struct {
	store  RateStore
	latest *gocache.Cache
	log    *zap.Logger
}

// NewService creates a conversion service. Latest-rate lookups are cached for
// a short TTL; a slightly stale latest rate is acceptable, historical lookups
// always hit the store.
func NewService(store RateStore, log *zap.Logger) *Service {
	return &Service{
		store:  store,
		latest: gocache.New(30*time.Second, time.Minute),
		log:    log,
	}
}

// RateToBase returns the price of 1 unit of the currency in the base
// currency. The base currency itself is always exactly 1, regardless of date.
// With asOf set, the most recent rate on or before that day is used;
// otherwise the globally most recent one.
func (s *Service) RateToBase(ctx context.Context, currencyID int64, asOf *time.Time) (decimal.Decimal, error) {
	cur, err := s.store.GetCurrency(ctx, currencyID)
	if err != nil {
		return decimal.Zero, err
	}
	if cur.IsBase() {
		return decimal.NewFromInt(1), nil
	}

	if asOf != nil {
		rate, err := s.store.RateOnOrBefore(ctx, currencyID, *asOf)
		if err != nil {
			return decimal.Zero, err
		}
		return rate, nil
	}

	key := strconv.FormatInt(currencyID, 10)
	if cached, ok := s.latest.Get(key); ok {
		return cached.(decimal.Decimal), nil
	}

	rate, err := s.store.LatestRate(ctx, currencyID)
	if err != nil {
		return decimal.Zero, err
	}
	s.latest.SetDefault(key, rate)
	return rate, nil
}

// Convert turns amount from one currency into another via the base currency.
// Same-currency conversion is the identity and performs no rate lookups.
// The result is rounded half-up to 2 decimal places exactly once, at the end.
func (s *Service) Convert(ctx context.Context, amount decimal.Decimal, fromID, toID int64, asOf *time.Time) (decimal.Decimal, error) {
	if fromID == toID {
		return amount, nil
	}

	rateFrom, err := s.RateToBase(ctx, fromID, asOf)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "source rate")
	}
	rateTo, err := s.RateToBase(ctx, toID, asOf)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "target rate")
	}

	converted := amount.Mul(rateFrom).Div(rateTo).Round(2)
	s.log.Debug("converted amount",
		zap.String("amount", amount.String()),
		zap.Int64("from", fromID),
		zap.Int64("to", toID),
		zap.String("result", converted.String()))
	return converted, nil
}
