package transactions

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Shavkat07/Moneta/internal/domain"
)

type createTransactionRequest struct {
	WalletID       string          `json:"wallet_id"`
	Amount         decimal.Decimal `json:"amount"`
	Type           string          `json:"type"`
	TargetWalletID *string         `json:"target_wallet_id,omitempty"`
	CategoryID     *int64          `json:"category_id,omitempty"`
	Description    *string         `json:"description,omitempty"`
	RawText        *string         `json:"raw_text,omitempty"`
}

func (r createTransactionRequest) toCreateRequest() (CreateRequest, error) {
	walletID, err := uuid.Parse(r.WalletID)
	if err != nil {
		return CreateRequest{}, domain.ErrWalletNotFound
	}

	req := CreateRequest{
		WalletID:    walletID,
		Amount:      r.Amount,
		Type:        domain.TransactionType(r.Type),
		CategoryID:  r.CategoryID,
		Description: r.Description,
		RawText:     r.RawText,
	}
	if r.TargetWalletID != nil {
		target, err := uuid.Parse(*r.TargetWalletID)
		if err != nil {
			return CreateRequest{}, domain.ErrWalletNotFound
		}
		req.TargetWalletID = &target
	}
	return req, nil
}

type updateTransactionRequest struct {
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Type        *string          `json:"type,omitempty"`
	WalletID    *string          `json:"wallet_id,omitempty"`
	CategoryID  *int64           `json:"category_id,omitempty"`
	Description *string          `json:"description,omitempty"`
	RawText     *string          `json:"raw_text,omitempty"`
	CreatedAt   *time.Time       `json:"created_at,omitempty"`
}

func (r updateTransactionRequest) toPatch() (domain.TransactionPatch, error) {
	patch := domain.TransactionPatch{
		Amount:      r.Amount,
		CategoryID:  r.CategoryID,
		Description: r.Description,
		RawText:     r.RawText,
		CreatedAt:   r.CreatedAt,
	}
	if r.Type != nil {
		t := domain.TransactionType(*r.Type)
		patch.Type = &t
	}
	if r.WalletID != nil {
		id, err := uuid.Parse(*r.WalletID)
		if err != nil {
			return domain.TransactionPatch{}, domain.ErrWalletNotFound
		}
		patch.WalletID = &id
	}
	return patch, nil
}
