// Package wallet provides wallet CRUD. Balance mutation lives in the
// transactions package only; this repo writes balances exclusively at
// creation time.
package wallet

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/Shavkat07/Moneta/internal/domain"
)

type Repo struct {
	Pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{Pool: pool}
}

// WalletRow is a wallet joined with its currency code for API responses.
type WalletRow struct {
	domain.Wallet
	CurrencyCode string `json:"currency_code"`
}

func (r *Repo) Create(ctx context.Context, userID uuid.UUID, name, charCode string, wt domain.WalletType, initial decimal.Decimal) (*WalletRow, error) {
	var currencyID int64
	var code string
	err := r.Pool.QueryRow(ctx,
		`SELECT id, char_code FROM currencies WHERE char_code = $1`, charCode,
	).Scan(&currencyID, &code)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrCurrencyNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "resolve currency")
	}

	w := WalletRow{
		Wallet: domain.Wallet{
			ID:         uuid.New(),
			UserID:     userID,
			Name:       name,
			CurrencyID: currencyID,
			Balance:    initial,
			Type:       wt,
		},
		CurrencyCode: code,
	}
	err = r.Pool.QueryRow(ctx,
		`INSERT INTO wallets (id, user_id, name, currency_id, balance, type)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at`,
		w.ID, w.UserID, w.Name, w.CurrencyID, w.Balance, w.Type,
	).Scan(&w.CreatedAt)
	if err != nil {
		return nil, errors.Wrap(err, "insert wallet")
	}
	return &w, nil
}

func (r *Repo) List(ctx context.Context, userID uuid.UUID) ([]WalletRow, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT w.id, w.user_id, w.name, w.currency_id, w.balance, w.type, w.created_at, c.char_code
		 FROM wallets w
		 JOIN currencies c ON c.id = w.currency_id
		 WHERE w.user_id = $1
		 ORDER BY w.created_at`,
		userID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "list wallets")
	}
	defer rows.Close()

	out := make([]WalletRow, 0, 8)
	for rows.Next() {
		var w WalletRow
		if err := rows.Scan(&w.ID, &w.UserID, &w.Name, &w.CurrencyID, &w.Balance, &w.Type, &w.CreatedAt, &w.CurrencyCode); err != nil {
			return nil, errors.Wrap(err, "scan wallet")
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, userID, id uuid.UUID) (*WalletRow, error) {
	var w WalletRow
	err := r.Pool.QueryRow(ctx,
		`SELECT w.id, w.user_id, w.name, w.currency_id, w.balance, w.type, w.created_at, c.char_code
		 FROM wallets w
		 JOIN currencies c ON c.id = w.currency_id
		 WHERE w.id = $1`,
		id,
	).Scan(&w.ID, &w.UserID, &w.Name, &w.CurrencyID, &w.Balance, &w.Type, &w.CreatedAt, &w.CurrencyCode)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrWalletNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get wallet")
	}
	if w.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return &w, nil
}

// Rename changes the wallet name only. Currency and type are immutable after
// creation because historical transactions depend on them.
func (r *Repo) Rename(ctx context.Context, userID, id uuid.UUID, name string) error {
	ct, err := r.Pool.Exec(ctx,
		`UPDATE wallets SET name = $3 WHERE id = $1 AND user_id = $2`,
		id, userID, name,
	)
	if err != nil {
		return errors.Wrap(err, "rename wallet")
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrWalletNotFound
	}
	return nil
}

// Delete removes a wallet with no transactions. Wallets with history are
// rejected so the ledger stays replayable.
func (r *Repo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	var count int
	if err := r.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM transactions WHERE wallet_id = $1`, id,
	).Scan(&count); err != nil {
		return errors.Wrap(err, "count wallet transactions")
	}
	if count > 0 {
		return domain.ErrUnsupportedOperation
	}

	ct, err := r.Pool.Exec(ctx,
		`DELETE FROM wallets WHERE id = $1 AND user_id = $2`, id, userID,
	)
	if err != nil {
		return errors.Wrap(err, "delete wallet")
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrWalletNotFound
	}
	return nil
}
