package currency

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/Shavkat07/Moneta/internal/domain"
)

type Handler struct {
	Store  *Store
	Syncer *Syncer
}

func NewHandler(store *Store, syncer *Syncer) *Handler {
	return &Handler{Store: store, Syncer: syncer}
}

// Refresh pulls the central-bank feed and appends any new rate rows.
func (h *Handler) Refresh(c *fiber.Ctx) error {
	added, err := h.Syncer.Sync(c.UserContext())
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, "rate refresh failed: "+err.Error())
	}
	return c.JSON(fiber.Map{"status": "success", "new_rates_added": added})
}

// Latest returns the freshest rate per currency, with the base currency
// prepended at rate 1 (the frontend expects it even though it has no rows).
func (h *Handler) Latest(c *fiber.Ctx) error {
	rates, err := h.Store.ListLatestRates(c.UserContext())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch rates")
	}

	out := make([]LatestRateRow, 0, len(rates)+1)
	out = append(out, LatestRateRow{
		Currency: domain.BaseCurrencyCode,
		Name:     "Uzbek Som",
		Rate:     decimal.NewFromInt(1),
		Date:     time.Now().UTC().Truncate(24 * time.Hour),
	})
	out = append(out, rates...)

	return c.JSON(out)
}
