package categories

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Handler struct {
	Repo *Repo
	Log  *zap.Logger
}

func NewHandler(repo *Repo, log *zap.Logger) *Handler {
	return &Handler{Repo: repo, Log: log}
}

// Tree returns the full category forest, nested.
func (h *Handler) Tree(c *fiber.Ctx) error {
	flat, err := h.Repo.List(c.UserContext())
	if err != nil {
		h.Log.Error("list categories failed", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "could not load categories")
	}
	return c.JSON(fiber.Map{"items": BuildTree(flat)})
}

type createCategoryRequest struct {
	Name     string  `json:"name"`
	IconSlug *string `json:"icon_slug,omitempty"`
	ParentID *int64  `json:"parent_id,omitempty"`
}

// Create adds a category. Admin only, enforced by route middleware.
func (h *Handler) Create(c *fiber.Ctx) error {
	var body createCategoryRequest
	if err := c.BodyParser(&body); err != nil || body.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}

	if body.ParentID != nil {
		if _, err := h.Repo.Get(c.UserContext(), *body.ParentID); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "unknown parent category")
		}
	}

	created, err := h.Repo.Create(c.UserContext(), body.Name, body.IconSlug, body.ParentID)
	if err != nil {
		h.Log.Error("create category failed", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "could not create category")
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}
