// Package analytics computes spending summaries. Totals are aggregated per
// wallet currency in SQL, then converted to the base currency in Go so mixed
// currency wallets sum correctly.
package analytics

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/Shavkat07/Moneta/internal/domain"
)

// CurrencyTotal is one aggregate bucket: total of one transaction type in one
// wallet currency.
type CurrencyTotal struct {
	CurrencyID int64
	Type       domain.TransactionType
	Total      decimal.Decimal
}

// CategoryTotal is one expense bucket per category and currency. Transfer
// legs carry no category and never show up here.
type CategoryTotal struct {
	CategoryID   int64
	CategoryName string
	CurrencyID   int64
	Total        decimal.Decimal
}

type Repo struct {
	Pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{Pool: pool}
}

// MonthlyTotals aggregates income and expense per currency for one month.
// Month is YYYY-MM; empty means all time.
func (r *Repo) MonthlyTotals(ctx context.Context, userID uuid.UUID, month string) ([]CurrencyTotal, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT w.currency_id, t.type, COALESCE(SUM(t.amount), 0)
		 FROM transactions t
		 JOIN wallets w ON w.id = t.wallet_id
		 WHERE w.user_id = $1
		   AND t.related_transaction_id IS NULL
		   AND ($2 = '' OR to_char(t.created_at, 'YYYY-MM') = $2)
		 GROUP BY w.currency_id, t.type`,
		userID, month,
	)
	if err != nil {
		return nil, errors.Wrap(err, "monthly totals")
	}
	defer rows.Close()

	out := make([]CurrencyTotal, 0, 4)
	for rows.Next() {
		var t CurrencyTotal
		if err := rows.Scan(&t.CurrencyID, &t.Type, &t.Total); err != nil {
			return nil, errors.Wrap(err, "scan currency total")
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ExpensesByCategory aggregates the month's expenses per category and
// currency.
func (r *Repo) ExpensesByCategory(ctx context.Context, userID uuid.UUID, month string) ([]CategoryTotal, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT t.category_id, c.name, w.currency_id, COALESCE(SUM(t.amount), 0)
		 FROM transactions t
		 JOIN wallets w ON w.id = t.wallet_id
		 JOIN categories c ON c.id = t.category_id
		 WHERE w.user_id = $1
		   AND t.type = 'expense'
		   AND t.category_id IS NOT NULL
		   AND ($2 = '' OR to_char(t.created_at, 'YYYY-MM') = $2)
		 GROUP BY t.category_id, c.name, w.currency_id
		 ORDER BY c.name`,
		userID, month,
	)
	if err != nil {
		return nil, errors.Wrap(err, "expenses by category")
	}
	defer rows.Close()

	out := make([]CategoryTotal, 0, 8)
	for rows.Next() {
		var t CategoryTotal
		if err := rows.Scan(&t.CategoryID, &t.CategoryName, &t.CurrencyID, &t.Total); err != nil {
			return nil, errors.Wrap(err, "scan category total")
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
