package currency

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/Shavkat07/Moneta/internal/domain"
)

// Store is the Postgres-backed RateStore plus the write side used by rate
// ingestion. Reads are lock-free; ingestion dedupes on (currency, date).
type Store struct {
	Pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{Pool: pool}
}

func (s *Store) GetCurrency(ctx context.Context, id int64) (*domain.Currency, error) {
	var cur domain.Currency
	err := s.Pool.QueryRow(ctx,
		`SELECT id, code, char_code, name, nominal FROM currencies WHERE id = $1`,
		id,
	).Scan(&cur.ID, &cur.Code, &cur.CharCode, &cur.Name, &cur.Nominal)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrCurrencyNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get currency")
	}
	return &cur, nil
}

func (s *Store) GetCurrencyByCharCode(ctx context.Context, charCode string) (*domain.Currency, error) {
	var cur domain.Currency
	err := s.Pool.QueryRow(ctx,
		`SELECT id, code, char_code, name, nominal FROM currencies WHERE char_code = $1`,
		charCode,
	).Scan(&cur.ID, &cur.Code, &cur.CharCode, &cur.Name, &cur.Nominal)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrCurrencyNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get currency by char code")
	}
	return &cur, nil
}

func (s *Store) LatestRate(ctx context.Context, currencyID int64) (decimal.Decimal, error) {
	var rate decimal.Decimal
	err := s.Pool.QueryRow(ctx,
		`SELECT rate FROM currency_rates
		 WHERE currency_id = $1
		 ORDER BY date DESC
		 LIMIT 1`,
		currencyID,
	).Scan(&rate)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, s.rateNotFound(ctx, currencyID, "")
	}
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "latest rate")
	}
	return rate, nil
}

func (s *Store) RateOnOrBefore(ctx context.Context, currencyID int64, date time.Time) (decimal.Decimal, error) {
	var rate decimal.Decimal
	err := s.Pool.QueryRow(ctx,
		`SELECT rate FROM currency_rates
		 WHERE currency_id = $1 AND date <= $2
		 ORDER BY date DESC
		 LIMIT 1`,
		currencyID, date,
	).Scan(&rate)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, s.rateNotFound(ctx, currencyID, date.Format("2006-01-02"))
	}
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "rate on or before")
	}
	return rate, nil
}

func (s *Store) rateNotFound(ctx context.Context, currencyID int64, asOf string) error {
	charCode := "?"
	if cur, err := s.GetCurrency(ctx, currencyID); err == nil {
		charCode = cur.CharCode
	}
	return &domain.RateNotFoundError{CharCode: charCode, AsOf: asOf}
}

// EnsureCurrency inserts the currency if its alpha code is unknown and
// returns the stored row either way.
func (s *Store) EnsureCurrency(ctx context.Context, cur domain.Currency) (*domain.Currency, error) {
	var out domain.Currency
	err := s.Pool.QueryRow(ctx,
		`INSERT INTO currencies (code, char_code, name, nominal)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (char_code) DO UPDATE SET nominal = EXCLUDED.nominal
		 RETURNING id, code, char_code, name, nominal`,
		cur.Code, cur.CharCode, cur.Name, cur.Nominal,
	).Scan(&out.ID, &out.Code, &out.CharCode, &out.Name, &out.Nominal)
	if err != nil {
		return nil, errors.Wrap(err, "ensure currency")
	}
	return &out, nil
}

// InsertRate appends one normalized rate row. Rows are append-only and
// deduplicated per (currency, date); reports whether a row was written.
func (s *Store) InsertRate(ctx context.Context, currencyID int64, rate decimal.Decimal, date time.Time) (bool, error) {
	ct, err := s.Pool.Exec(ctx,
		`INSERT INTO currency_rates (currency_id, rate, date)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (currency_id, date) DO NOTHING`,
		currencyID, rate, date,
	)
	if err != nil {
		return false, errors.Wrap(err, "insert rate")
	}
	return ct.RowsAffected() > 0, nil
}

// LatestRateRow pairs a currency with its freshest rate for the listing API.
type LatestRateRow struct {
	Currency string          `json:"currency"`
	Name     string          `json:"name"`
	Rate     decimal.Decimal `json:"rate"`
	Date     time.Time       `json:"date"`
}

// ListLatestRates returns the most recent rate per currency.
func (s *Store) ListLatestRates(ctx context.Context) ([]LatestRateRow, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT DISTINCT ON (r.currency_id) c.char_code, c.name, r.rate, r.date
		 FROM currency_rates r
		 JOIN currencies c ON c.id = r.currency_id
		 ORDER BY r.currency_id, r.date DESC`,
	)
	if err != nil {
		return nil, errors.Wrap(err, "list latest rates")
	}
	defer rows.Close()

	var out []LatestRateRow
	for rows.Next() {
		var r LatestRateRow
		if err := rows.Scan(&r.Currency, &r.Name, &r.Rate, &r.Date); err != nil {
			return nil, errors.Wrap(err, "scan latest rate")
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
