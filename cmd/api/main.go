package main

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Shavkat07/Moneta/internal/admin"
	"github.com/Shavkat07/Moneta/internal/analytics"
	"github.com/Shavkat07/Moneta/internal/auth"
	"github.com/Shavkat07/Moneta/internal/categories"
	"github.com/Shavkat07/Moneta/internal/config"
	"github.com/Shavkat07/Moneta/internal/currency"
	"github.com/Shavkat07/Moneta/internal/debts"
	"github.com/Shavkat07/Moneta/internal/reports"
	"github.com/Shavkat07/Moneta/internal/router"
	"github.com/Shavkat07/Moneta/internal/transactions"
	"github.com/Shavkat07/Moneta/internal/wallet"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := buildLogger(cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx := context.Background()
	pool, err := openPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer pool.Close()

	app := fiber.New(fiber.Config{
		AppName:      "moneta",
		ErrorHandler: errorHandler,
	})
	app.Use(router.CorsMiddleware(cfg.CORSOrigin))
	app.Use(requestLogger(log))

	currencyStore := currency.NewStore(pool)
	currencySvc := currency.NewService(currencyStore, log.Named("currency"))
	syncer := currency.NewSyncer(currencyStore, cfg.RateFeedURL, log.Named("ratesync"))

	txStore := transactions.NewPostgresStore(pool)
	txService := transactions.NewService(txStore, currencySvc, log.Named("transactions"))

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	analyticsSvc := analytics.NewService(analytics.NewRepo(pool), currencySvc, log.Named("analytics"))

	r := &router.Router{
		AuthHandler:        auth.NewHandler(pool, issuer, log.Named("auth")),
		WalletHandler:      wallet.NewHandler(wallet.NewRepo(pool), log.Named("wallet")),
		TransactionHandler: transactions.NewHandler(txService, txStore, pool, log.Named("transactions")),
		CategoryHandler:    categories.NewHandler(categories.NewRepo(pool), log.Named("categories")),
		CurrencyHandler:    currency.NewHandler(currencyStore, syncer),
		DebtHandler:        debts.NewHandler(debts.NewRepo(pool), log.Named("debts")),
		AnalyticsHandler:   analytics.NewHandler(analyticsSvc, log.Named("analytics")),
		ReportHandler:      reports.NewHandler(reports.NewRepo(pool), log.Named("reports")),
		AdminHandler:       admin.NewHandler(pool, log.Named("admin")),
		AuthMW:             auth.Middleware(cfg.JWTSecret),
		AdminKeyMW:         admin.RequireAPIKey(cfg.AdminAPIKey),
	}
	r.RegisterRoutes(app)

	log.Info("listening", zap.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

// openPool builds a pgx pool with the shopspring decimal codec, so numeric
// columns scan straight into decimal.Decimal.
func openPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func buildLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	}
	return c.Status(code).JSON(fiber.Map{"error": message})
}

func requestLogger(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.Info("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("duration", time.Since(start)))
		return err
	}
}
