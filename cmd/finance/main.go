package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/campus-finance/finance/internal/accounts"
	"github.com/campus-finance/finance/internal/app"
	"github.com/campus-finance/finance/internal/invoices"
	"github.com/campus-finance/finance/internal/observability"
	"github.com/campus-finance/finance/internal/platform/cache"
	"github.com/campus-finance/finance/internal/platform/db"
	"github.com/campus-finance/finance/internal/platform/memstore"
	"github.com/campus-finance/finance/internal/portal"
	"github.com/campus-finance/finance/internal/shared"
	"github.com/campus-finance/finance/internal/users"
	"github.com/campus-finance/finance/internal/view"
)

// stores bundles the repository implementations selected by STORE_DRIVER.
type stores struct {
	accounts interface {
		accounts.RepositoryPort
		invoices.AccountLookup
	}
	invoices interface {
		invoices.RepositoryPort
		accounts.BalanceReader
	}
	users  users.RepositoryPort
	health app.HealthCheck
	close  func()
}

func openStores(ctx context.Context, cfg *app.Config, logger *slog.Logger) (*stores, error) {
	if cfg.StoreDriver == app.StoreDriverMemory {
		logger.Warn("using in-memory store; data is lost on restart")
		mem := memstore.New()
		return &stores{
			accounts: mem.Accounts(),
			invoices: mem.Invoices(),
			users:    mem.Users(),
			close:    func() {},
		}, nil
	}

	if cfg.PGMigrate {
		if err := db.Migrate(cfg.PGDSN, logger); err != nil {
			return nil, err
		}
	}
	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		return nil, err
	}
	return &stores{
		accounts: accounts.NewRepository(pool),
		invoices: invoices.NewRepository(pool),
		users:    users.NewRepository(pool),
		health:   func(ctx context.Context) error { return pool.Ping(ctx) },
		close:    pool.Close,
	}, nil
}

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Default().Warn("load .env", slog.Any("error", err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Error("open stores", slog.String("driver", cfg.StoreDriver), slog.Any("error", err))
		os.Exit(1)
	}
	defer st.close()

	redisClient, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "finance_session", cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}
	messages, err := portal.NewMessages(cfg.PortalLocale)
	if err != nil {
		logger.Error("load portal messages", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()
	validate := validator.New()

	accountService := accounts.NewService(st.accounts, st.invoices)
	invoiceService := invoices.NewService(st.invoices, st.accounts, invoices.ServiceConfig{
		MaxReferenceAttempts: cfg.ReferenceMaxAttempts,
		Metrics:              invoices.NewMetrics(metrics.Registerer()),
	})
	userService := users.NewService(st.users)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		SessionManager:  sessionManager,
		CSRFManager:     csrfManager,
		AccountsHandler: accounts.NewHandler(logger, accountService, validate),
		InvoicesHandler: invoices.NewHandler(logger, invoiceService, validate),
		UsersHandler:    users.NewHandler(logger, userService, validate),
		PortalHandler:   portal.NewHandler(logger, invoiceService, templates, csrfManager, messages),
		Metrics:         metrics,
		Health:          st.health,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("store", cfg.StoreDriver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
