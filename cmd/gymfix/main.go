package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/subosito/gotenv"

	"github.com/jacekopitek-cloud/gymfix/internal/accounts"
	"github.com/jacekopitek-cloud/gymfix/internal/advisor"
	"github.com/jacekopitek-cloud/gymfix/internal/auth"
	"github.com/jacekopitek-cloud/gymfix/internal/bot"
	"github.com/jacekopitek-cloud/gymfix/internal/config"
	"github.com/jacekopitek-cloud/gymfix/internal/dialog"
	"github.com/jacekopitek-cloud/gymfix/internal/infra/db"
	httpx "github.com/jacekopitek-cloud/gymfix/internal/infra/http"
	"github.com/jacekopitek-cloud/gymfix/internal/infra/logger"
	"github.com/jacekopitek-cloud/gymfix/internal/infra/metrics"
	"github.com/jacekopitek-cloud/gymfix/internal/ledger"
	"github.com/jacekopitek-cloud/gymfix/internal/registry"
	"github.com/jacekopitek-cloud/gymfix/internal/stock"
	"github.com/jacekopitek-cloud/gymfix/internal/storage"
	"github.com/jacekopitek-cloud/gymfix/internal/store"
)

func runMigrations(dsn string) error {
	sqlDB, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	return goose.Up(sqlDB, "migrations")
}

// newPersister picks the snapshot backend from config: per-collection
// JSON files by default, or a postgres snapshots table.
func newPersister(ctx context.Context, cfg config.Config, log *slog.Logger) (store.Persister, func(), error) {
	switch cfg.Storage.Driver {
	case "file", "":
		fs, err := storage.NewFileStore(cfg.Storage.Dir)
		if err != nil {
			return nil, nil, err
		}
		return fs, func() {}, nil
	case "postgres":
		if err := runMigrations(cfg.Storage.DSN); err != nil {
			return nil, nil, fmt.Errorf("migrations: %w", err)
		}
		log.Info("migrations applied")
		pool, err := db.Connect(ctx, cfg.Storage.DSN)
		if err != nil {
			return nil, nil, err
		}
		log.Info("db connected")
		return storage.NewPostgresStore(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func main() {
	_ = gotenv.Load()

	cfg, err := config.Load("config/example.yaml")
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	persister, closePersister, err := newPersister(ctx, cfg, log)
	if err != nil {
		log.Error("storage init failed", "err", err)
		return
	}
	defer closePersister()

	st := store.New(persister, log)
	if err := st.Load(ctx); err != nil {
		log.Error("data load failed", "err", err)
		return
	}
	log.Info("data loaded", "driver", cfg.Storage.Driver)

	met := metrics.Default()
	stockEng := stock.NewEngine(st, log, met)
	ledgerSvc := ledger.NewService(st, log, met)
	registrySvc := registry.NewService(st, log, met)
	accountsSvc := accounts.NewService(st, log, met)
	authMgr := auth.NewManager(st)

	var adv advisor.Advisor = advisor.Disabled{}
	if cfg.Advisor.APIKey != "" {
		adv = advisor.NewGemini(cfg.Advisor.APIKey, cfg.Advisor.Model, log)
	}

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		log.Error("telegram init failed", "err", err)
		return
	}
	log.Info("telegram authorized", "bot", api.Self.UserName)

	b := bot.New(api, log, authMgr, dialog.NewRepo(), stockEng, ledgerSvc, registrySvc, accountsSvc, adv, st)
	go func() {
		if err := b.Run(ctx, 30); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("bot stopped", "err", err)
		}
	}()

	srv := httpx.New(cfg.HTTP.Addr, cfg.Metrics.Enabled)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "err", err)
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("graceful shutdown complete")
}
