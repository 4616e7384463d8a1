package transactions

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/Shavkat07/Moneta/internal/domain"
)

// PostgresStore implements Store on a pgx pool. Each WithinTx call maps to
// one database transaction; rollback on any error guarantees no partial
// balance mutation ever becomes visible.
type PostgresStore struct {
	Pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{Pool: pool}
}

func (s *PostgresStore) WithinTx(ctx context.Context, fn func(uow UnitOfWork) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback(ctx)

	if err := fn(&pgUnitOfWork{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "commit tx")
	}
	return nil
}

type pgUnitOfWork struct {
	tx pgx.Tx
}

const walletColumns = `id, user_id, name, currency_id, balance, type, created_at`

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	var w domain.Wallet
	err := row.Scan(&w.ID, &w.UserID, &w.Name, &w.CurrencyID, &w.Balance, &w.Type, &w.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// LockWallets selects the wallet rows FOR UPDATE in ascending id order. The
// ORDER BY inside the locking query is what makes concurrent transfers over
// overlapping wallet pairs deadlock-free.
func (u *pgUnitOfWork) LockWallets(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*domain.Wallet, error) {
	rows, err := u.tx.Query(ctx,
		`SELECT `+walletColumns+`
		 FROM wallets
		 WHERE id = ANY($1)
		 ORDER BY id
		 FOR UPDATE`,
		ids,
	)
	if err != nil {
		return nil, errors.Wrap(err, "lock wallets")
	}
	defer rows.Close()

	wallets := make(map[uuid.UUID]*domain.Wallet, len(ids))
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan locked wallet")
		}
		wallets[w.ID] = w
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "lock wallets rows")
	}

	for _, id := range ids {
		w, ok := wallets[id]
		if !ok {
			return nil, domain.ErrWalletNotFound
		}
		if w.UserID != ownerID {
			return nil, domain.ErrForbidden
		}
	}
	return wallets, nil
}

func (u *pgUnitOfWork) GetWallet(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	w, err := scanWallet(u.tx.QueryRow(ctx,
		`SELECT `+walletColumns+` FROM wallets WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrWalletNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get wallet")
	}
	return w, nil
}

func (u *pgUnitOfWork) SaveWalletBalance(ctx context.Context, w *domain.Wallet) error {
	ct, err := u.tx.Exec(ctx,
		`UPDATE wallets SET balance = $2 WHERE id = $1`,
		w.ID, w.Balance,
	)
	if err != nil {
		return errors.Wrap(err, "save wallet balance")
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrWalletNotFound
	}
	return nil
}

const txColumns = `id, wallet_id, amount, type, category_id, description, raw_text, created_at, related_transaction_id`

// LockTransactions selects the rows FOR UPDATE in ascending id order, the
// same discipline LockWallets uses. Ids with no row are absent from the map.
func (u *pgUnitOfWork) LockTransactions(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Transaction, error) {
	rows, err := u.tx.Query(ctx,
		`SELECT `+txColumns+`
		 FROM transactions
		 WHERE id = ANY($1)
		 ORDER BY id
		 FOR UPDATE`,
		ids,
	)
	if err != nil {
		return nil, errors.Wrap(err, "lock transactions")
	}
	defer rows.Close()

	out := make(map[uuid.UUID]*domain.Transaction, len(ids))
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan locked transaction")
		}
		out[t.ID] = t
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "lock transactions rows")
	}
	return out, nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var t domain.Transaction
	err := row.Scan(&t.ID, &t.WalletID, &t.Amount, &t.Type, &t.CategoryID,
		&t.Description, &t.RawText, &t.CreatedAt, &t.RelatedTransactionID)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (u *pgUnitOfWork) GetTransaction(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	t, err := scanTransaction(u.tx.QueryRow(ctx,
		`SELECT `+txColumns+` FROM transactions WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTransactionNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get transaction")
	}
	return t, nil
}

func (u *pgUnitOfWork) InsertTransaction(ctx context.Context, t *domain.Transaction) error {
	_, err := u.tx.Exec(ctx,
		`INSERT INTO transactions (id, wallet_id, amount, type, category_id, description, raw_text, created_at, related_transaction_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		t.ID, t.WalletID, t.Amount, t.Type, t.CategoryID, t.Description, t.RawText, t.CreatedAt, t.RelatedTransactionID,
	)
	return errors.Wrap(err, "insert transaction")
}

func (u *pgUnitOfWork) UpdateTransaction(ctx context.Context, t *domain.Transaction) error {
	ct, err := u.tx.Exec(ctx,
		`UPDATE transactions
		 SET wallet_id = $2, amount = $3, type = $4, category_id = $5,
		     description = $6, raw_text = $7, created_at = $8, related_transaction_id = $9
		 WHERE id = $1`,
		t.ID, t.WalletID, t.Amount, t.Type, t.CategoryID, t.Description, t.RawText, t.CreatedAt, t.RelatedTransactionID,
	)
	if err != nil {
		return errors.Wrap(err, "update transaction")
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

func (u *pgUnitOfWork) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	ct, err := u.tx.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "delete transaction")
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// List returns the caller's transactions, newest first, optionally filtered
// to one wallet. Read-only, so it runs on the pool outside any unit of work.
func (s *PostgresStore) List(ctx context.Context, ownerID uuid.UUID, walletID *uuid.UUID, limit, offset int) ([]domain.Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := `SELECT t.id, t.wallet_id, t.amount, t.type, t.category_id, t.description, t.raw_text, t.created_at, t.related_transaction_id
		 FROM transactions t
		 JOIN wallets w ON w.id = t.wallet_id
		 WHERE w.user_id = $1 AND ($2::uuid IS NULL OR t.wallet_id = $2)
		 ORDER BY t.created_at DESC
		 LIMIT $3 OFFSET $4`

	rows, err := s.Pool.Query(ctx, query, ownerID, walletID, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "list transactions")
	}
	defer rows.Close()

	out := make([]domain.Transaction, 0, limit)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan transaction")
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// GetOwned loads one transaction and checks wallet ownership in the same
// query.
func (s *PostgresStore) GetOwned(ctx context.Context, ownerID uuid.UUID, id uuid.UUID) (*domain.Transaction, error) {
	var t domain.Transaction
	var walletOwner uuid.UUID
	err := s.Pool.QueryRow(ctx,
		`SELECT t.id, t.wallet_id, t.amount, t.type, t.category_id, t.description, t.raw_text, t.created_at, t.related_transaction_id, w.user_id
		 FROM transactions t
		 JOIN wallets w ON w.id = t.wallet_id
		 WHERE t.id = $1`,
		id,
	).Scan(&t.ID, &t.WalletID, &t.Amount, &t.Type, &t.CategoryID,
		&t.Description, &t.RawText, &t.CreatedAt, &t.RelatedTransactionID, &walletOwner)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTransactionNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get transaction")
	}
	if walletOwner != ownerID {
		return nil, domain.ErrForbidden
	}
	return &t, nil
}
