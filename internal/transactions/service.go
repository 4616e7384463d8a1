// Package transactions owns the transaction lifecycle: create, update and
// delete, including balance effects, transfer mirroring and the wallet
// locking discipline. Wallet balances are written nowhere else.
package transactions

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Shavkat07/Moneta/internal/domain"
	"github.com/Shavkat07/Moneta/internal/ledger"
)

// Converter computes cross-currency amounts. Implemented by currency.Service.
type Converter interface {
	Convert(ctx context.Context, amount decimal.Decimal, fromID, toID int64, asOf *time.Time) (decimal.Decimal, error)
}

// Store opens one atomic unit of work per operation. Either every effect of
// the callback becomes visible or none does.
type Store interface {
	WithinTx(ctx context.Context, fn func(uow UnitOfWork) error) error
}

// UnitOfWork is the transactional surface the orchestrator runs against.
// Lock acquisition order is fixed: transaction rows first, then wallets,
// each batch in ascending id order.
type UnitOfWork interface {
	// LockWallets acquires row-level write locks on every id, always in
	// ascending id order regardless of the order ids were passed in, and
	// verifies each wallet exists and belongs to ownerID.
	LockWallets(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*domain.Wallet, error)
	// LockTransactions acquires row-level write locks on the given
	// transaction rows in ascending id order. Ids with no row are simply
	// absent from the result.
	LockTransactions(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Transaction, error)
	// GetWallet reads a wallet without locking it.
	GetWallet(ctx context.Context, id uuid.UUID) (*domain.Wallet, error)
	// SaveWalletBalance persists the balance of an already-locked wallet.
	SaveWalletBalance(ctx context.Context, w *domain.Wallet) error

	GetTransaction(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	InsertTransaction(ctx context.Context, tx *domain.Transaction) error
	UpdateTransaction(ctx context.Context, tx *domain.Transaction) error
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
}

// CreateRequest is a validated-on-entry transaction create.
type CreateRequest struct {
	WalletID       uuid.UUID
	Amount         decimal.Decimal
	Type           domain.TransactionType
	TargetWalletID *uuid.UUID
	CategoryID     *int64
	Description    *string
	RawText        *string
}

// Service is the transaction orchestrator.
type Service struct {
	store     Store
	converter Converter
	log       *zap.Logger
}

func NewService(store Store, converter Converter, log *zap.Logger) *Service {
	return &Service{store: store, converter: converter, log: log}
}

// Create validates the request, locks the involved wallets, applies the
// balance effect and persists the transaction row(s). For transfers two
// cross-linked rows are written: an expense leg on the source wallet and an
// income leg (of the converted amount) on the target wallet.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, req CreateRequest) (*domain.Transaction, error) {
	if !req.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	if !domain.ValidTransactionType(req.Type) {
		return nil, domain.ErrInvalidType
	}

	if req.Type == domain.TransactionTransfer {
		if req.TargetWalletID == nil {
			return nil, domain.ErrMissingTarget
		}
		if *req.TargetWalletID == req.WalletID {
			return nil, domain.ErrSameWallet
		}
	} else if req.CategoryID == nil {
		return nil, domain.ErrCategoryRequired
	}

	var created *domain.Transaction
	err := s.store.WithinTx(ctx, func(uow UnitOfWork) error {
		ids := []uuid.UUID{req.WalletID}
		if req.Type == domain.TransactionTransfer {
			ids = append(ids, *req.TargetWalletID)
		}

		wallets, err := uow.LockWallets(ctx, ownerID, sortedUnique(ids))
		if err != nil {
			return err
		}
		source := wallets[req.WalletID]

		switch req.Type {
		case domain.TransactionIncome, domain.TransactionExpense:
			if err := ledger.Apply(source, req.Amount, ledger.DirectionFor(req.Type)); err != nil {
				return err
			}
			if err := uow.SaveWalletBalance(ctx, source); err != nil {
				return err
			}

			created = s.buildTransaction(source.ID, req.Amount, req.Type, req, nil)
			return uow.InsertTransaction(ctx, created)

		case domain.TransactionTransfer:
			target := wallets[*req.TargetWalletID]
			created, err = s.createTransfer(ctx, uow, source, target, req)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("transaction created",
		zap.String("transaction_id", created.ID.String()),
		zap.String("wallet_id", created.WalletID.String()),
		zap.String("type", string(created.Type)),
		zap.String("amount", created.Amount.String()))
	return created, nil
}

// createTransfer debits the source, credits the target with the converted
// amount, and persists both legs linked to each other. Callers hold locks on
// both wallets already.
func (s *Service) createTransfer(ctx context.Context, uow UnitOfWork, source, target *domain.Wallet, req CreateRequest) (*domain.Transaction, error) {
	if err := ledger.Apply(source, req.Amount, ledger.Debit); err != nil {
		return nil, err
	}

	converted, err := s.converter.Convert(ctx, req.Amount, source.CurrencyID, target.CurrencyID, nil)
	if err != nil {
		return nil, err
	}

	if err := ledger.Apply(target, converted, ledger.Credit); err != nil {
		return nil, err
	}
	if err := uow.SaveWalletBalance(ctx, source); err != nil {
		return nil, err
	}
	if err := uow.SaveWalletBalance(ctx, target); err != nil {
		return nil, err
	}

	// source leg: expense in the source currency
	sourceLeg := s.buildTransaction(source.ID, req.Amount, domain.TransactionExpense, req, nil)
	if sourceLeg.Description == nil {
		desc := "Transfer to " + target.Name
		sourceLeg.Description = &desc
	}
	sourceLeg.CategoryID = nil
	if err := uow.InsertTransaction(ctx, sourceLeg); err != nil {
		return nil, err
	}

	// mirror leg: income of the converted amount, category always empty so
	// incoming transfers never pollute spending stats
	mirrorDesc := "Transfer from " + source.Name
	mirror := s.buildTransaction(target.ID, converted, domain.TransactionIncome, req, &sourceLeg.ID)
	mirror.Description = &mirrorDesc
	mirror.CategoryID = nil
	if err := uow.InsertTransaction(ctx, mirror); err != nil {
		return nil, err
	}

	// close the loop: both legs point at each other
	sourceLeg.RelatedTransactionID = &mirror.ID
	if err := uow.UpdateTransaction(ctx, sourceLeg); err != nil {
		return nil, err
	}
	return sourceLeg, nil
}

// Update applies a partial update. Metadata-only changes are written
// directly; changes to amount, type or wallet revert the old balance effect
// and apply the new one inside a single unit of work. Transfer legs reject
// any balance-affecting change: delete and recreate instead.
func (s *Service) Update(ctx context.Context, ownerID uuid.UUID, txID uuid.UUID, patch domain.TransactionPatch) (*domain.Transaction, error) {
	var updated *domain.Transaction
	err := s.store.WithinTx(ctx, func(uow UnitOfWork) error {
		tx, err := s.getOwned(ctx, uow, ownerID, txID)
		if err != nil {
			return err
		}

		if patch.Empty() {
			updated = tx
			return nil
		}
		if patch.Amount != nil && !patch.Amount.IsPositive() {
			return domain.ErrInvalidAmount
		}
		if patch.Type != nil && !domain.ValidTransactionType(*patch.Type) {
			return domain.ErrInvalidType
		}
		// rows persist only as income or expense legs; retyping one into a
		// transfer would leave a lone leg with no mirror
		if patch.Type != nil && *patch.Type == domain.TransactionTransfer {
			return domain.ErrInvalidType
		}

		// re-read under lock so two concurrent updates cannot both revert
		// the same stale balance effect
		locked, err := uow.LockTransactions(ctx, []uuid.UUID{tx.ID})
		if err != nil {
			return err
		}
		fresh, ok := locked[tx.ID]
		if !ok {
			return domain.ErrTransactionNotFound
		}
		tx = fresh

		// transfer legs keep their NULL category; amount, type and wallet
		// belong to the pair as a whole
		if tx.IsTransferLeg() && (patch.TouchesBalance(tx) || patch.CategoryID != nil) {
			return domain.ErrUnsupportedOperation
		}

		if !patch.TouchesBalance(tx) {
			applyMetadata(tx, patch)
			updated = tx
			return uow.UpdateTransaction(ctx, tx)
		}

		// revert-then-reapply; lock the old and (possibly different) new
		// wallet in one sorted batch so the global lock order holds
		oldWalletID := tx.WalletID
		newWalletID := oldWalletID
		if patch.WalletID != nil {
			newWalletID = *patch.WalletID
		}

		wallets, err := uow.LockWallets(ctx, ownerID, sortedUnique([]uuid.UUID{oldWalletID, newWalletID}))
		if err != nil {
			return err
		}

		if err := ledger.Reverse(wallets[oldWalletID], tx.Amount, ledger.DirectionFor(tx.Type)); err != nil {
			return err
		}

		if patch.Amount != nil {
			tx.Amount = *patch.Amount
		}
		if patch.Type != nil {
			tx.Type = *patch.Type
		}
		tx.WalletID = newWalletID
		applyMetadata(tx, patch)

		if err := ledger.Apply(wallets[newWalletID], tx.Amount, ledger.DirectionFor(tx.Type)); err != nil {
			return err
		}

		for _, w := range wallets {
			if err := uow.SaveWalletBalance(ctx, w); err != nil {
				return err
			}
		}
		updated = tx
		return uow.UpdateTransaction(ctx, tx)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete unwinds the balance effect of the transaction and, for transfers,
// of its mirror leg, then removes both rows.
func (s *Service) Delete(ctx context.Context, ownerID uuid.UUID, txID uuid.UUID) error {
	return s.store.WithinTx(ctx, func(uow UnitOfWork) error {
		tx, err := s.getOwned(ctx, uow, ownerID, txID)
		if err != nil {
			return err
		}

		// lock the leg pair in one sorted batch and work from the locked
		// rows; concurrent deletes of either leg serialize here
		rowIDs := []uuid.UUID{tx.ID}
		if tx.RelatedTransactionID != nil {
			rowIDs = append(rowIDs, *tx.RelatedTransactionID)
		}
		locked, err := uow.LockTransactions(ctx, sortedUnique(rowIDs))
		if err != nil {
			return err
		}
		fresh, ok := locked[tx.ID]
		if !ok {
			return domain.ErrTransactionNotFound
		}
		tx = fresh

		var mirror *domain.Transaction
		walletIDs := []uuid.UUID{tx.WalletID}
		if tx.RelatedTransactionID != nil {
			if mirror = locked[*tx.RelatedTransactionID]; mirror != nil {
				walletIDs = append(walletIDs, mirror.WalletID)
			}
		}

		wallets, err := uow.LockWallets(ctx, ownerID, sortedUnique(walletIDs))
		if err != nil {
			return err
		}

		if mirror != nil {
			if err := ledger.Reverse(wallets[mirror.WalletID], mirror.Amount, ledger.DirectionFor(mirror.Type)); err != nil {
				return err
			}

			// unlink both sides before deleting so no dangling reference
			// survives even momentarily
			mirror.RelatedTransactionID = nil
			tx.RelatedTransactionID = nil
			if err := uow.UpdateTransaction(ctx, mirror); err != nil {
				return err
			}
			if err := uow.UpdateTransaction(ctx, tx); err != nil {
				return err
			}
			if err := uow.DeleteTransaction(ctx, mirror.ID); err != nil {
				return err
			}
		}

		if err := ledger.Reverse(wallets[tx.WalletID], tx.Amount, ledger.DirectionFor(tx.Type)); err != nil {
			return err
		}
		for _, w := range wallets {
			if err := uow.SaveWalletBalance(ctx, w); err != nil {
				return err
			}
		}

		if err := uow.DeleteTransaction(ctx, tx.ID); err != nil {
			return err
		}

		s.log.Info("transaction deleted",
			zap.String("transaction_id", tx.ID.String()),
			zap.Bool("was_transfer", mirror != nil))
		return nil
	})
}

// getOwned loads a transaction and verifies the caller owns its wallet.
func (s *Service) getOwned(ctx context.Context, uow UnitOfWork, ownerID uuid.UUID, txID uuid.UUID) (*domain.Transaction, error) {
	tx, err := uow.GetTransaction(ctx, txID)
	if err != nil {
		return nil, err
	}
	w, err := uow.GetWallet(ctx, tx.WalletID)
	if err != nil {
		return nil, err
	}
	if w.UserID != ownerID {
		return nil, domain.ErrForbidden
	}
	return tx, nil
}

func (s *Service) buildTransaction(walletID uuid.UUID, amount decimal.Decimal, t domain.TransactionType, req CreateRequest, relatedID *uuid.UUID) *domain.Transaction {
	return &domain.Transaction{
		ID:                   uuid.New(),
		WalletID:             walletID,
		Amount:               amount,
		Type:                 t,
		CategoryID:           req.CategoryID,
		Description:          req.Description,
		RawText:              req.RawText,
		CreatedAt:            time.Now().UTC(),
		RelatedTransactionID: relatedID,
	}
}

func applyMetadata(tx *domain.Transaction, patch domain.TransactionPatch) {
	if patch.CategoryID != nil {
		tx.CategoryID = patch.CategoryID
	}
	if patch.Description != nil {
		tx.Description = patch.Description
	}
	if patch.RawText != nil {
		tx.RawText = patch.RawText
	}
	if patch.CreatedAt != nil {
		tx.CreatedAt = *patch.CreatedAt
	}
}

// sortedUnique returns ids deduplicated and in ascending order, the global
// lock acquisition order.
func sortedUnique(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}
