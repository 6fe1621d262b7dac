package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Spok95/parts-inventory/internal/config"
	"github.com/Spok95/parts-inventory/internal/infra/db"
	httpx "github.com/Spok95/parts-inventory/internal/infra/http"
	"github.com/Spok95/parts-inventory/internal/infra/logger"
	promsink "github.com/Spok95/parts-inventory/internal/infra/metrics"
	"github.com/Spok95/parts-inventory/internal/infra/telegram"
	"github.com/Spok95/parts-inventory/internal/notify"
	"github.com/Spok95/parts-inventory/internal/service"
	"github.com/Spok95/parts-inventory/internal/storage"
	"github.com/Spok95/parts-inventory/internal/storage/memory"
	"github.com/Spok95/parts-inventory/migrations"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus"
)

func runMigrations(dsn string) error {
	sqlDB, err := goose.OpenDBWithDriver("postgres", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	goose.SetBaseFS(migrations.FS)
	return goose.Up(sqlDB, ".")
}

func main() {
	path := "config/example.yaml"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	cfg, err := config.Load(path)
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store storage.Store
	if cfg.Postgres.DSN != "" {
		if err := runMigrations(cfg.Postgres.DSN); err != nil {
			log.Error("migrations failed", "err", err)
			return
		}
		log.Info("migrations applied")

		pool, err := db.Connect(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
		if err != nil {
			log.Error("db connect failed", "err", err)
			return
		}
		defer pool.Close()
		log.Info("db connected")
		store = storage.NewPostgres(pool)
	} else {
		log.Warn("postgres.dsn is empty, using in-memory storage; data is lost on exit")
		store = memory.New()
	}

	var notifier notify.Notifier = notify.Nop{}
	if cfg.Telegram.Token != "" {
		n, err := telegram.New(cfg.Telegram.Token, cfg.Telegram.AdminChatID)
		if err != nil {
			log.Error("telegram init failed", "err", err)
			return
		}
		notifier = n
		log.Info("telegram notifications enabled", "chat_id", cfg.Telegram.AdminChatID)
	}

	deps := service.Deps{
		Store:    store,
		Log:      log,
		Metrics:  promsink.NewSink(prometheus.DefaultRegisterer),
		Notifier: notifier,
	}
	api := httpx.NewAPI(httpx.Services{
		Catalog:   service.NewCatalog(deps),
		Inventory: service.NewInventory(deps, cfg.Inventory.HistoryLimit),
		Kits:      service.NewKits(deps),
		PickLists: service.NewPickLists(deps),
		Shopping:  service.NewShopping(deps),
	}, log)

	srv := httpx.New(cfg.HTTP.Addr, cfg.Metrics.Enabled, api)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "err", err)
			stop()
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "err", err)
	}
	log.Info("graceful shutdown complete")
}
