// Package router wires handlers to routes and owns the HTTP middleware
// chain: CORS, auth, rate limits and the admin guards.
package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Shavkat07/Moneta/internal/admin"
	"github.com/Shavkat07/Moneta/internal/analytics"
	"github.com/Shavkat07/Moneta/internal/auth"
	"github.com/Shavkat07/Moneta/internal/categories"
	"github.com/Shavkat07/Moneta/internal/currency"
	"github.com/Shavkat07/Moneta/internal/debts"
	"github.com/Shavkat07/Moneta/internal/reports"
	"github.com/Shavkat07/Moneta/internal/transactions"
	"github.com/Shavkat07/Moneta/internal/wallet"
)

type Router struct {
	AuthHandler        *auth.Handler
	WalletHandler      *wallet.Handler
	TransactionHandler *transactions.Handler
	CategoryHandler    *categories.Handler
	CurrencyHandler    *currency.Handler
	DebtHandler        *debts.Handler
	AnalyticsHandler   *analytics.Handler
	ReportHandler      *reports.Handler
	AdminHandler       *admin.Handler

	AuthMW     fiber.Handler
	AdminKeyMW fiber.Handler
}

func (r *Router) RegisterRoutes(app *fiber.App) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	authLimit := RateLimitAuth()
	api.Post("/auth/signup", authLimit, r.AuthHandler.Signup)
	api.Post("/auth/login", authLimit, r.AuthHandler.Login)
	api.Get("/me", r.AuthMW, r.AuthHandler.Me)

	writeLimit := RateLimitWrite()

	wallets := api.Group("/wallets", r.AuthMW)
	wallets.Post("/", writeLimit, r.WalletHandler.Create)
	wallets.Get("/", r.WalletHandler.List)
	wallets.Get("/:id", r.WalletHandler.Get)
	wallets.Patch("/:id", writeLimit, r.WalletHandler.Rename)
	wallets.Delete("/:id", writeLimit, r.WalletHandler.Delete)
	wallets.Get("/:id/statement.pdf", r.ReportHandler.StatementPDF)

	txs := api.Group("/transactions", r.AuthMW)
	txs.Post("/", writeLimit, r.TransactionHandler.Create)
	txs.Get("/", r.TransactionHandler.List)
	txs.Get("/:id", r.TransactionHandler.Get)
	txs.Patch("/:id", writeLimit, r.TransactionHandler.Patch)
	txs.Delete("/:id", writeLimit, r.TransactionHandler.Delete)

	api.Get("/categories", r.AuthMW, r.CategoryHandler.Tree)
	api.Post("/categories", r.AuthMW, auth.RequireAdmin(), r.CategoryHandler.Create)

	api.Get("/currencies/rates", r.AuthMW, r.CurrencyHandler.Latest)
	api.Post("/currencies/refresh", r.AdminKeyMW, r.CurrencyHandler.Refresh)

	api.Post("/debtors", r.AuthMW, writeLimit, r.DebtHandler.CreateDebtor)
	api.Get("/debtors", r.AuthMW, r.DebtHandler.ListDebtors)
	api.Post("/debts", r.AuthMW, writeLimit, r.DebtHandler.CreateDebt)
	api.Get("/debts", r.AuthMW, r.DebtHandler.ListDebts)
	api.Post("/debts/:id/repay", r.AuthMW, writeLimit, r.DebtHandler.Repay)
	api.Post("/debts/:id/forgive", r.AuthMW, writeLimit, r.DebtHandler.Forgive)

	api.Get("/analytics/summary", r.AuthMW, r.AnalyticsHandler.Summary)
	api.Get("/analytics/by-category", r.AuthMW, r.AnalyticsHandler.ByCategory)

	adminGroup := api.Group("/admin", r.AuthMW, auth.RequireAdmin())
	adminGroup.Get("/users", r.AdminHandler.ListUsers)
	adminGroup.Patch("/users/:id/active", r.AdminHandler.SetActive)
	adminGroup.Get("/stats", r.AdminHandler.Stats)
	adminGroup.Get("/audit", r.AdminHandler.AuditLog)
}
