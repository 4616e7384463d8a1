// Command ratesync pulls the central bank exchange rate feed once and exits.
// Intended for cron.
package main

import (
	"context"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Shavkat07/Moneta/internal/config"
	"github.com/Shavkat07/Moneta/internal/currency"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("invalid DATABASE_URL", zap.Error(err))
	}
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer pool.Close()

	store := currency.NewStore(pool)
	syncer := currency.NewSyncer(store, cfg.RateFeedURL, log)

	added, err := syncer.Sync(ctx)
	if err != nil {
		log.Fatal("rate sync failed", zap.Error(err))
	}
	log.Info("rate sync complete", zap.Int("new_rates", added))
}
