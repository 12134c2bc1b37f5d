package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/MrJamesThe3rd/pocketly/internal/auth"
	"github.com/MrJamesThe3rd/pocketly/internal/category"
	categoryStore "github.com/MrJamesThe3rd/pocketly/internal/category/store"
	"github.com/MrJamesThe3rd/pocketly/internal/config"
	"github.com/MrJamesThe3rd/pocketly/internal/database"
	"github.com/MrJamesThe3rd/pocketly/internal/export"
	pocketlyHttp "github.com/MrJamesThe3rd/pocketly/internal/http"
	categoryHandler "github.com/MrJamesThe3rd/pocketly/internal/http/category"
	entryHandler "github.com/MrJamesThe3rd/pocketly/internal/http/entry"
	exportHandler "github.com/MrJamesThe3rd/pocketly/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/pocketly/internal/http/importcsv"
	insightsHandler "github.com/MrJamesThe3rd/pocketly/internal/http/insights"
	needHandler "github.com/MrJamesThe3rd/pocketly/internal/http/need"
	notificationHandler "github.com/MrJamesThe3rd/pocketly/internal/http/notification"
	pocketHandler "github.com/MrJamesThe3rd/pocketly/internal/http/pocket"
	streakHandler "github.com/MrJamesThe3rd/pocketly/internal/http/streak"
	"github.com/MrJamesThe3rd/pocketly/internal/insights"
	"github.com/MrJamesThe3rd/pocketly/internal/insights/gemini"
	"github.com/MrJamesThe3rd/pocketly/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/pocketly/internal/ledger/store"
	"github.com/MrJamesThe3rd/pocketly/internal/need"
	needStore "github.com/MrJamesThe3rd/pocketly/internal/need/store"
	"github.com/MrJamesThe3rd/pocketly/internal/notification"
	notificationStore "github.com/MrJamesThe3rd/pocketly/internal/notification/store"
	"github.com/MrJamesThe3rd/pocketly/internal/pocket"
	pocketStore "github.com/MrJamesThe3rd/pocketly/internal/pocket/store"
	"github.com/MrJamesThe3rd/pocketly/internal/statement"
	"github.com/MrJamesThe3rd/pocketly/internal/streak"
	streakStore "github.com/MrJamesThe3rd/pocketly/internal/streak/store"
)

func main() {
	_ = godotenv.Load()

	decimal.MarshalJSONWithoutQuotes = true

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	loc, err := cfg.Location()
	if err != nil {
		slog.Error("failed to load timezone", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString(), database.Options{
		MaxOpenConns: cfg.DB.MaxOpenConns,
		MaxIdleConns: cfg.DB.MaxIdleConns,
		ConnLifetime: cfg.DB.ConnLifetime,
	})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.DB.Migrate {
		if err := database.Migrate(context.Background(), db); err != nil {
			slog.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
	}

	emitter := notification.NewEmitter(notificationStore.New(db), notification.EmitterConfig{
		QueueSize:    cfg.Notifications.QueueSize,
		WriteTimeout: cfg.Notifications.WriteTimeout,
	})

	var (
		pocketService       = pocket.NewService(pocketStore.New(db), emitter)
		ledgerService       = ledger.NewService(ledgerStore.New(db), emitter)
		needService         = need.NewService(needStore.New(db), emitter)
		notificationService = notification.NewService(notificationStore.New(db))
		streakService       = streak.NewService(streakStore.New(db), loc)
		categoryService     = category.NewService(categoryStore.New(db))
		insightsService     = insights.NewService(ledgerService, pocketService, categoryService, insightsConfig(cfg, loc))
		exportService       = export.NewService(ledgerService, pocketService, categoryService, loc)
	)

	authenticator := auth.New(cfg.Auth.JWTSecret, cfg.Auth.Issuer)

	router := pocketlyHttp.New(pocketlyHttp.Handlers{
		Pockets:       pocketHandler.NewHandler(pocketService, ledgerService),
		Expenses:      entryHandler.NewHandler(ledgerService, ledger.KindExpense),
		Income:        entryHandler.NewHandler(ledgerService, ledger.KindIncome),
		Activity:      entryHandler.Activity(ledgerService),
		Import:        importHandler.NewHandler(statement.NewParser(loc), ledgerService, categoryService, loc),
		Export:        exportHandler.NewHandler(exportService, loc),
		Needs:         needHandler.NewHandler(needService),
		Notifications: notificationHandler.NewHandler(notificationService),
		Streak:        streakHandler.NewHandler(streakService),
		Insights:      insightsHandler.NewHandler(insightsService),
		Categories:    categoryHandler.NewHandler(categoryService),
	}, pocketlyHttp.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Timeout:        cfg.Server.Timeout,
		Authenticate:   authenticator.Middleware,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)

	go func() {
		slog.Info("starting server", "addr", srv.Addr, "timezone", loc.String())
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}

	// requests are drained, so nothing emits after this point
	if err := emitter.Close(shutdownCtx); err != nil {
		slog.Error("notification emitter did not drain", "error", err)
	}
}

func insightsConfig(cfg *config.Config, loc *time.Location) insights.Config {
	ic := insights.Config{Location: loc}

	if cfg.Gemini.APIKey == "" {
		slog.Info("GEMINI_API_KEY not set, insights use local analysis only")
		return ic
	}

	ic.Generator = gemini.New(gemini.Config{
		APIKey:  cfg.Gemini.APIKey,
		Model:   cfg.Gemini.Model,
		BaseURL: cfg.Gemini.BaseURL,
		Timeout: cfg.Gemini.Timeout,
	})

	if n := cfg.Gemini.RequestsPerMinute; n > 0 {
		ic.Limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), n)
	}

	return ic
}
