package debts

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Shavkat07/Moneta/internal/auth"
	"github.com/Shavkat07/Moneta/internal/domain"
)

type Handler struct {
	Repo *Repo
	Log  *zap.Logger
}

func NewHandler(repo *Repo, log *zap.Logger) *Handler {
	return &Handler{Repo: repo, Log: log}
}

type createDebtorRequest struct {
	Name        string  `json:"name"`
	PhoneNumber *string `json:"phone_number,omitempty"`
}

func (h *Handler) CreateDebtor(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var body createDebtorRequest
	if err := c.BodyParser(&body); err != nil || body.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}

	d, err := h.Repo.CreateDebtor(c.UserContext(), userID, body.Name, body.PhoneNumber)
	if err != nil {
		h.Log.Error("create debtor failed", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "could not create debtor")
	}
	return c.Status(fiber.StatusCreated).JSON(d)
}

func (h *Handler) ListDebtors(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	debtors, err := h.Repo.ListDebtors(c.UserContext(), userID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not load debtors")
	}
	return c.JSON(fiber.Map{"items": debtors})
}

type createDebtRequest struct {
	DebtorID   int64           `json:"debtor_id"`
	CurrencyID int64           `json:"currency_id"`
	Amount     decimal.Decimal `json:"amount"`
	Type       string          `json:"type"`
	Comment    *string         `json:"comment,omitempty"`
	DueDate    *string         `json:"due_date,omitempty"`
}

func (h *Handler) CreateDebt(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var body createDebtRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if !body.Amount.IsPositive() {
		return fiber.NewError(fiber.StatusBadRequest, "amount must be greater than zero")
	}
	dt := domain.DebtType(body.Type)
	if dt != domain.DebtGiven && dt != domain.DebtTaken {
		return fiber.NewError(fiber.StatusBadRequest, "type must be given or taken")
	}

	d, err := h.Repo.CreateDebt(c.UserContext(), userID, CreateDebtParams{
		DebtorID:   body.DebtorID,
		CurrencyID: body.CurrencyID,
		Amount:     body.Amount,
		Type:       dt,
		Comment:    body.Comment,
		DueDate:    body.DueDate,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrDebtorNotFound):
			return fiber.NewError(fiber.StatusNotFound, "debtor not found")
		case errors.Is(err, domain.ErrForbidden):
			return fiber.NewError(fiber.StatusForbidden, "access denied")
		}
		h.Log.Error("create debt failed", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "could not create debt")
	}
	return c.Status(fiber.StatusCreated).JSON(d)
}

func (h *Handler) ListDebts(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var status *domain.DebtStatus
	if raw := c.Query("status"); raw != "" {
		s := domain.DebtStatus(raw)
		status = &s
	}

	debts, err := h.Repo.ListDebts(c.UserContext(), userID, status)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not load debts")
	}
	return c.JSON(fiber.Map{"items": debts})
}

type repayRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *Handler) Repay(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	debtID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid debt id")
	}

	var body repayRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	d, err := h.Repo.Repay(c.UserContext(), userID, debtID, body.Amount)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidAmount), errors.Is(err, ErrOverRepayment):
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		case errors.Is(err, ErrDebtNotFound):
			return fiber.NewError(fiber.StatusNotFound, "debt not found")
		case errors.Is(err, ErrDebtClosed):
			return fiber.NewError(fiber.StatusConflict, "debt is already closed")
		case errors.Is(err, domain.ErrForbidden):
			return fiber.NewError(fiber.StatusForbidden, "access denied")
		}
		h.Log.Error("repay debt failed", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "could not record repayment")
	}
	return c.JSON(d)
}

func (h *Handler) Forgive(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	debtID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid debt id")
	}

	if err := h.Repo.Forgive(c.UserContext(), userID, debtID); err != nil {
		if errors.Is(err, ErrDebtNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "debt not found or already closed")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "could not forgive debt")
	}
	return c.JSON(fiber.Map{"status": "success"})
}
