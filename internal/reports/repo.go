// Package reports renders downloadable wallet statements.
package reports

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/Shavkat07/Moneta/internal/domain"
)

type StatementItem struct {
	ID          uuid.UUID
	Type        domain.TransactionType
	Amount      decimal.Decimal
	Description string
	Date        string // YYYY-MM-DD
}

// StatementData is everything the PDF needs for one wallet and period.
type StatementData struct {
	WalletName   string
	CurrencyCode string
	Balance      decimal.Decimal
	From, To     string
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	Items        []StatementItem
}

type Repo struct {
	Pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{Pool: pool}
}

// Statement loads a wallet's transactions for the period, newest first.
func (r *Repo) Statement(ctx context.Context, userID, walletID uuid.UUID, from, to string) (*StatementData, error) {
	data := StatementData{From: from, To: to}

	var owner uuid.UUID
	err := r.Pool.QueryRow(ctx,
		`SELECT w.user_id, w.name, w.balance, c.char_code
		 FROM wallets w
		 JOIN currencies c ON c.id = w.currency_id
		 WHERE w.id = $1`,
		walletID,
	).Scan(&owner, &data.WalletName, &data.Balance, &data.CurrencyCode)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrWalletNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "load wallet")
	}
	if owner != userID {
		return nil, domain.ErrForbidden
	}

	rows, err := r.Pool.Query(ctx,
		`SELECT id, type, amount, COALESCE(description, ''), to_char(created_at, 'YYYY-MM-DD')
		 FROM transactions
		 WHERE wallet_id = $1 AND created_at::date BETWEEN $2::date AND $3::date
		 ORDER BY created_at DESC
		 LIMIT 2000`,
		walletID, from, to,
	)
	if err != nil {
		return nil, errors.Wrap(err, "load statement rows")
	}
	defer rows.Close()

	data.TotalIncome = decimal.Zero
	data.TotalExpense = decimal.Zero
	for rows.Next() {
		var it StatementItem
		if err := rows.Scan(&it.ID, &it.Type, &it.Amount, &it.Description, &it.Date); err != nil {
			return nil, errors.Wrap(err, "scan statement row")
		}
		switch it.Type {
		case domain.TransactionIncome:
			data.TotalIncome = data.TotalIncome.Add(it.Amount)
		case domain.TransactionExpense:
			data.TotalExpense = data.TotalExpense.Add(it.Amount)
		}
		data.Items = append(data.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "statement rows")
	}
	return &data, nil
}
