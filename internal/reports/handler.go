package reports

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
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

// StatementPDF streams a PDF statement for one wallet. Period defaults to
// the last 30 days.
func (h *Handler) StatementPDF(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	walletID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid wallet id")
	}

	from := strings.TrimSpace(c.Query("from"))
	to := strings.TrimSpace(c.Query("to"))
	if from == "" || to == "" {
		end := time.Now()
		from = end.AddDate(0, 0, -29).Format("2006-01-02")
		to = end.Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", from); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "from must be YYYY-MM-DD")
	}
	if _, err := time.Parse("2006-01-02", to); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "to must be YYYY-MM-DD")
	}

	data, err := h.Repo.Statement(c.UserContext(), userID, walletID, from, to)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrWalletNotFound):
			return fiber.NewError(fiber.StatusNotFound, "wallet not found")
		case errors.Is(err, domain.ErrForbidden):
			return fiber.NewError(fiber.StatusForbidden, "access denied")
		}
		h.Log.Error("statement query failed", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "failed to build statement")
	}

	pdf, err := RenderStatementPDF(data)
	if err != nil {
		h.Log.Error("statement render failed", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "failed to render statement")
	}

	filename := "moneta-statement-" + from + "-to-" + to + ".pdf"
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdf)
}
