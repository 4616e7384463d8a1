package transactions

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Shavkat07/Moneta/internal/audit"
	"github.com/Shavkat07/Moneta/internal/domain"
)

type Handler struct {
	Service *Service
	Store   *PostgresStore
	DB      *pgxpool.Pool
	Log     *zap.Logger
}

func NewHandler(svc *Service, store *PostgresStore, db *pgxpool.Pool, log *zap.Logger) *Handler {
	return &Handler{Service: svc, Store: store, DB: db, Log: log}
}

func getUserID(c *fiber.Ctx) (uuid.UUID, bool) {
	v := c.Locals("user_id")
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func userContext(c *fiber.Ctx) context.Context {
	if ctx := c.UserContext(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// statusFor maps domain errors onto HTTP statuses so the service layer never
// has to know about fiber.
func statusFor(err error) *fiber.Error {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidType),
		errors.Is(err, domain.ErrMissingTarget),
		errors.Is(err, domain.ErrSameWallet),
		errors.Is(err, domain.ErrCategoryRequired):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrWalletNotFound),
		errors.Is(err, domain.ErrTransactionNotFound),
		errors.Is(err, domain.ErrCurrencyNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrUnsupportedOperation):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}

	var insufficient *domain.InsufficientFundsError
	if errors.As(err, &insufficient) {
		return fiber.NewError(fiber.StatusBadRequest, insufficient.Error())
	}
	var noRate *domain.RateNotFoundError
	if errors.As(err, &noRate) {
		return fiber.NewError(fiber.StatusUnprocessableEntity, noRate.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, "internal error")
}

func (h *Handler) Create(c *fiber.Ctx) error {
	userID, ok := getUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var body createTransactionRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	req, err := body.toCreateRequest()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid wallet id")
	}

	tx, err := h.Service.Create(userContext(c), userID, req)
	if err != nil {
		h.Log.Warn("create transaction failed", zap.Error(err))
		return statusFor(err)
	}

	h.writeAudit(c, userID, "transaction.create", tx.ID)
	return c.Status(fiber.StatusCreated).JSON(tx)
}

func (h *Handler) List(c *fiber.Ctx) error {
	userID, ok := getUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var walletID *uuid.UUID
	if raw := c.Query("wallet_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid wallet_id filter")
		}
		walletID = &id
	}

	items, err := h.Store.List(userContext(c), userID, walletID, c.QueryInt("limit", 20), c.QueryInt("offset", 0))
	if err != nil {
		h.Log.Error("list transactions failed", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load transactions")
	}
	return c.JSON(fiber.Map{"items": items})
}

func (h *Handler) Get(c *fiber.Ctx) error {
	userID, ok := getUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	txID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid transaction id")
	}

	tx, err := h.Store.GetOwned(userContext(c), userID, txID)
	if err != nil {
		return statusFor(err)
	}
	return c.JSON(tx)
}

func (h *Handler) Patch(c *fiber.Ctx) error {
	userID, ok := getUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	txID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid transaction id")
	}

	var body updateTransactionRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	patch, err := body.toPatch()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid wallet id")
	}

	tx, err := h.Service.Update(userContext(c), userID, txID, patch)
	if err != nil {
		h.Log.Warn("update transaction failed", zap.Error(err), zap.String("transaction_id", txID.String()))
		return statusFor(err)
	}

	h.writeAudit(c, userID, "transaction.update", tx.ID)
	return c.JSON(tx)
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	userID, ok := getUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	txID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid transaction id")
	}

	if err := h.Service.Delete(userContext(c), userID, txID); err != nil {
		h.Log.Warn("delete transaction failed", zap.Error(err), zap.String("transaction_id", txID.String()))
		return statusFor(err)
	}

	h.writeAudit(c, userID, "transaction.delete", txID)
	return c.SendStatus(fiber.StatusNoContent)
}

// writeAudit is best effort; a failed audit row never fails the request.
func (h *Handler) writeAudit(c *fiber.Ctx, userID uuid.UUID, action string, entityID uuid.UUID) {
	uid := userID.String()
	eid := entityID.String()
	ip := c.IP()
	ua := c.Get(fiber.HeaderUserAgent)

	if err := audit.Write(userContext(c), h.DB, audit.Entry{
		UserID:     &uid,
		Action:     action,
		EntityType: "transaction",
		EntityID:   &eid,
		IP:         &ip,
		UserAgent:  &ua,
	}); err != nil {
		h.Log.Warn("audit write failed", zap.Error(err), zap.String("action", action))
	}
}
