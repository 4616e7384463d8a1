package wallet

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
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

type createWalletRequest struct {
	Name         string          `json:"name"`
	CurrencyCode string          `json:"currency_code"`
	Type         string          `json:"type"`
	Balance      decimal.Decimal `json:"balance"`
}

func (h *Handler) Create(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var body createWalletRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if body.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}
	wt := domain.WalletType(body.Type)
	if body.Type == "" {
		wt = domain.WalletCash
	}
	if !domain.ValidWalletType(wt) {
		return fiber.NewError(fiber.StatusBadRequest, "unknown wallet type")
	}
	if body.Balance.IsNegative() && wt != domain.WalletCard {
		return fiber.NewError(fiber.StatusBadRequest, "initial balance cannot be negative")
	}
	if body.CurrencyCode == "" {
		body.CurrencyCode = domain.BaseCurrencyCode
	}

	w, err := h.Repo.Create(c.UserContext(), userID, body.Name, body.CurrencyCode, wt, body.Balance)
	if errors.Is(err, domain.ErrCurrencyNotFound) {
		return fiber.NewError(fiber.StatusBadRequest, "unknown currency code")
	}
	if err != nil {
		h.Log.Error("create wallet failed", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "could not create wallet")
	}
	return c.Status(fiber.StatusCreated).JSON(w)
}

func (h *Handler) List(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	wallets, err := h.Repo.List(c.UserContext(), userID)
	if err != nil {
		h.Log.Error("list wallets failed", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "could not load wallets")
	}
	return c.JSON(fiber.Map{"items": wallets})
}

func (h *Handler) Get(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid wallet id")
	}

	w, err := h.Repo.Get(c.UserContext(), userID, id)
	if errors.Is(err, domain.ErrWalletNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "wallet not found")
	}
	if errors.Is(err, domain.ErrForbidden) {
		return fiber.NewError(fiber.StatusForbidden, "access denied")
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not load wallet")
	}
	return c.JSON(w)
}

type renameWalletRequest struct {
	Name string `json:"name"`
}

func (h *Handler) Rename(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid wallet id")
	}

	var body renameWalletRequest
	if err := c.BodyParser(&body); err != nil || body.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}

	if err := h.Repo.Rename(c.UserContext(), userID, id, body.Name); err != nil {
		if errors.Is(err, domain.ErrWalletNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "wallet not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "could not rename wallet")
	}
	return c.JSON(fiber.Map{"status": "success"})
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid wallet id")
	}

	if err := h.Repo.Delete(c.UserContext(), userID, id); err != nil {
		switch {
		case errors.Is(err, domain.ErrWalletNotFound):
			return fiber.NewError(fiber.StatusNotFound, "wallet not found")
		case errors.Is(err, domain.ErrUnsupportedOperation):
			return fiber.NewError(fiber.StatusConflict, "wallet has transactions, delete them first")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "could not delete wallet")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
