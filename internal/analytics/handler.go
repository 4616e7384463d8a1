package analytics

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Shavkat07/Moneta/internal/auth"
)

var monthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

type Handler struct {
	Service *Service
	Log     *zap.Logger
}

func NewHandler(svc *Service, log *zap.Logger) *Handler {
	return &Handler{Service: svc, Log: log}
}

func monthParam(c *fiber.Ctx) (string, error) {
	month := strings.TrimSpace(c.Query("month"))
	if month != "" && !monthPattern.MatchString(month) {
		return "", fiber.NewError(fiber.StatusBadRequest, "month must be YYYY-MM")
	}
	return month, nil
}

func (h *Handler) Summary(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	month, err := monthParam(c)
	if err != nil {
		return err
	}

	s, err := h.Service.MonthlySummary(c.UserContext(), userID, month)
	if err != nil {
		h.Log.Error("summary failed", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "failed to compute summary")
	}
	return c.JSON(s)
}

func (h *Handler) ByCategory(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	month, err := monthParam(c)
	if err != nil {
		return err
	}

	items, err := h.Service.CategoryBreakdown(c.UserContext(), userID, month)
	if err != nil {
		h.Log.Error("category breakdown failed", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "failed to compute breakdown")
	}
	return c.JSON(fiber.Map{"items": items})
}
