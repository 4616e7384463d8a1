// Package admin exposes operator endpoints: user management and instance
// stats. Routes are guarded by the admin role middleware.
package admin

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Shavkat07/Moneta/internal/domain"
)

type Handler struct {
	Pool *pgxpool.Pool
	Log  *zap.Logger
}

func NewHandler(pool *pgxpool.Pool, log *zap.Logger) *Handler {
	return &Handler{Pool: pool, Log: log}
}

func (h *Handler) ListUsers(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := h.Pool.Query(c.UserContext(),
		`SELECT id, email, full_name, role, is_active, created_at
		 FROM users
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`,
		limit, c.QueryInt("offset", 0),
	)
	if err != nil {
		h.Log.Error("list users failed", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load users")
	}
	defer rows.Close()

	users := make([]domain.User, 0, limit)
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Email, &u.FullName, &u.Role, &u.IsActive, &u.CreatedAt); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to scan user")
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load users")
	}
	return c.JSON(fiber.Map{"items": users})
}

type setActiveRequest struct {
	IsActive bool `json:"is_active"`
}

// SetActive enables or disables an account. Disabled users cannot log in.
func (h *Handler) SetActive(c *fiber.Ctx) error {
	userID := c.Params("id")

	var body setActiveRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	ct, err := h.Pool.Exec(c.UserContext(),
		`UPDATE users SET is_active = $2 WHERE id = $1::uuid`,
		userID, body.IsActive,
	)
	if err != nil {
		h.Log.Error("set active failed", zap.Error(err), zap.String("user_id", userID))
		return fiber.NewError(fiber.StatusInternalServerError, "failed to update user")
	}
	if ct.RowsAffected() == 0 {
		return fiber.NewError(fiber.StatusNotFound, "user not found")
	}
	return c.JSON(fiber.Map{"status": "success"})
}

type StatsResponse struct {
	UsersTotal        int64 `json:"users_total"`
	WalletsTotal      int64 `json:"wallets_total"`
	TransactionsTotal int64 `json:"transactions_total"`
	DebtsActive       int64 `json:"debts_active"`
	CurrenciesTracked int64 `json:"currencies_tracked"`
}

func (h *Handler) Stats(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var resp StatsResponse
	counts := []struct {
		query string
		dest  *int64
	}{
		{`SELECT COUNT(*) FROM users`, &resp.UsersTotal},
		{`SELECT COUNT(*) FROM wallets`, &resp.WalletsTotal},
		{`SELECT COUNT(*) FROM transactions`, &resp.TransactionsTotal},
		{`SELECT COUNT(*) FROM debts WHERE status = 'active'`, &resp.DebtsActive},
		{`SELECT COUNT(*) FROM currencies`, &resp.CurrenciesTracked},
	}
	for _, q := range counts {
		if err := h.Pool.QueryRow(ctx, q.query).Scan(q.dest); err != nil {
			h.Log.Error("stats query failed", zap.Error(err), zap.String("query", q.query))
			return fiber.NewError(fiber.StatusInternalServerError, "failed to compute stats")
		}
	}
	return c.JSON(resp)
}

// AuditLog returns recent audit entries, newest first.
func (h *Handler) AuditLog(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := h.Pool.Query(c.UserContext(),
		`SELECT id, user_id::text, action, entity_type, entity_id, ip, created_at::text
		 FROM audit_logs
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		h.Log.Error("audit log query failed", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load audit log")
	}
	defer rows.Close()

	type entry struct {
		ID         int64   `json:"id"`
		UserID     *string `json:"user_id,omitempty"`
		Action     string  `json:"action"`
		EntityType string  `json:"entity_type"`
		EntityID   *string `json:"entity_id,omitempty"`
		IP         *string `json:"ip,omitempty"`
		CreatedAt  string  `json:"created_at"`
	}

	items := make([]entry, 0, limit)
	for rows.Next() {
		var e entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.EntityType, &e.EntityID, &e.IP, &e.CreatedAt); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to scan audit entry")
		}
		items = append(items, e)
	}
	return c.JSON(fiber.Map{"items": items, "count": len(items)})
}
