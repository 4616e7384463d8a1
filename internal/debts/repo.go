// Package debts tracks peer debts and their repayment lifecycle.
package debts

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/Shavkat07/Moneta/internal/domain"
)

var (
	ErrDebtorNotFound = errors.New("debtor not found")
	ErrDebtNotFound   = errors.New("debt not found")
	ErrOverRepayment  = errors.New("repayment exceeds outstanding amount")
	ErrDebtClosed     = errors.New("debt is already closed")
)

type Repo struct {
	Pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{Pool: pool}
}

func (r *Repo) CreateDebtor(ctx context.Context, userID uuid.UUID, name string, phone *string) (*domain.Debtor, error) {
	d := domain.Debtor{UserID: userID, Name: name, PhoneNumber: phone}
	err := r.Pool.QueryRow(ctx,
		`INSERT INTO debtors (user_id, name, phone_number) VALUES ($1, $2, $3) RETURNING id`,
		userID, name, phone,
	).Scan(&d.ID)
	if err != nil {
		return nil, errors.Wrap(err, "insert debtor")
	}
	return &d, nil
}

func (r *Repo) ListDebtors(ctx context.Context, userID uuid.UUID) ([]domain.Debtor, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT id, user_id, name, phone_number FROM debtors WHERE user_id = $1 ORDER BY name`,
		userID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "list debtors")
	}
	defer rows.Close()

	out := make([]domain.Debtor, 0, 8)
	for rows.Next() {
		var d domain.Debtor
		if err := rows.Scan(&d.ID, &d.UserID, &d.Name, &d.PhoneNumber); err != nil {
			return nil, errors.Wrap(err, "scan debtor")
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

const debtColumns = `id, user_id, debtor_id, currency_id, amount, repaid_amount, type, status, comment, due_date, created_at`

func scanDebt(row pgx.Row) (*domain.Debt, error) {
	var d domain.Debt
	err := row.Scan(&d.ID, &d.UserID, &d.DebtorID, &d.CurrencyID, &d.Amount, &d.RepaidAmount,
		&d.Type, &d.Status, &d.Comment, &d.DueDate, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

type CreateDebtParams struct {
	DebtorID   int64
	CurrencyID int64
	Amount     decimal.Decimal
	Type       domain.DebtType
	Comment    *string
	DueDate    *string // YYYY-MM-DD, nil when open-ended
}

func (r *Repo) CreateDebt(ctx context.Context, userID uuid.UUID, p CreateDebtParams) (*domain.Debt, error) {
	var owner uuid.UUID
	err := r.Pool.QueryRow(ctx,
		`SELECT user_id FROM debtors WHERE id = $1`, p.DebtorID,
	).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDebtorNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "resolve debtor")
	}
	if owner != userID {
		return nil, domain.ErrForbidden
	}

	d, err := scanDebt(r.Pool.QueryRow(ctx,
		`INSERT INTO debts (user_id, debtor_id, currency_id, amount, type, comment, due_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7::date)
		 RETURNING `+debtColumns,
		userID, p.DebtorID, p.CurrencyID, p.Amount, p.Type, p.Comment, p.DueDate,
	))
	if err != nil {
		return nil, errors.Wrap(err, "insert debt")
	}
	return d, nil
}

func (r *Repo) ListDebts(ctx context.Context, userID uuid.UUID, status *domain.DebtStatus) ([]domain.Debt, error) {
	var statusFilter *string
	if status != nil {
		s := string(*status)
		statusFilter = &s
	}

	rows, err := r.Pool.Query(ctx,
		`SELECT `+debtColumns+`
		 FROM debts
		 WHERE user_id = $1 AND ($2::text IS NULL OR status = $2)
		 ORDER BY created_at DESC`,
		userID, statusFilter,
	)
	if err != nil {
		return nil, errors.Wrap(err, "list debts")
	}
	defer rows.Close()

	out := make([]domain.Debt, 0, 8)
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan debt")
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// Repay records a partial or full repayment. The row is locked so two
// concurrent repayments cannot both pass the over-repayment check, and the
// status flips to paid exactly when the outstanding amount reaches zero.
func (r *Repo) Repay(ctx context.Context, userID uuid.UUID, debtID int64, amount decimal.Decimal) (*domain.Debt, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback(ctx)

	d, err := scanDebt(tx.QueryRow(ctx,
		`SELECT `+debtColumns+` FROM debts WHERE id = $1 FOR UPDATE`, debtID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDebtNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "lock debt")
	}
	if d.UserID != userID {
		return nil, domain.ErrForbidden
	}
	if d.Status == domain.DebtPaid || d.Status == domain.DebtForgiven {
		return nil, ErrDebtClosed
	}
	if amount.GreaterThan(d.Outstanding()) {
		return nil, ErrOverRepayment
	}

	d.RepaidAmount = d.RepaidAmount.Add(amount)
	if d.Outstanding().IsZero() {
		d.Status = domain.DebtPaid
	}

	_, err = tx.Exec(ctx,
		`UPDATE debts SET repaid_amount = $2, status = $3 WHERE id = $1`,
		d.ID, d.RepaidAmount, d.Status,
	)
	if err != nil {
		return nil, errors.Wrap(err, "update debt")
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "commit tx")
	}
	return d, nil
}

// Forgive closes a debt without repayment.
func (r *Repo) Forgive(ctx context.Context, userID uuid.UUID, debtID int64) error {
	ct, err := r.Pool.Exec(ctx,
		`UPDATE debts SET status = $3
		 WHERE id = $1 AND user_id = $2 AND status IN ($4, $5)`,
		debtID, userID, domain.DebtForgiven, domain.DebtActive, domain.DebtOverdue,
	)
	if err != nil {
		return errors.Wrap(err, "forgive debt")
	}
	if ct.RowsAffected() == 0 {
		return ErrDebtNotFound
	}
	return nil
}

// MarkOverdue flips active debts whose due date has passed. Intended for a
// periodic job or an admin trigger.
func (r *Repo) MarkOverdue(ctx context.Context) (int64, error) {
	ct, err := r.Pool.Exec(ctx,
		`UPDATE debts SET status = $1
		 WHERE status = $2 AND due_date IS NOT NULL AND due_date < CURRENT_DATE`,
		domain.DebtOverdue, domain.DebtActive,
	)
	if err != nil {
		return 0, errors.Wrap(err, "mark overdue debts")
	}
	return ct.RowsAffected(), nil
}
