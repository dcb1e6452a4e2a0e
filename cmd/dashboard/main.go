package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lucerolu/Dshb-dm/internal/app"
	"github.com/lucerolu/Dshb-dm/internal/auth"
	"github.com/lucerolu/Dshb-dm/internal/compras"
	comprashttp "github.com/lucerolu/Dshb-dm/internal/compras/http"
	"github.com/lucerolu/Dshb-dm/internal/platform/cache"
	"github.com/lucerolu/Dshb-dm/internal/refdata"
	"github.com/lucerolu/Dshb-dm/internal/shared"
	statementhttp "github.com/lucerolu/Dshb-dm/internal/statement/http"
	"github.com/lucerolu/Dshb-dm/internal/view"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "dashboard_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	styles, err := refdata.Load(cfg.StylesPath, refdata.UnmappedPolicy(cfg.UnmappedCodePolicy))
	if err != nil {
		logger.Error("load styles config", slog.Any("error", err))
		os.Exit(1)
	}

	users, err := auth.ParseUsers(cfg.DashUsers)
	if err != nil {
		logger.Error("parse dashboard users", slog.Any("error", err))
		os.Exit(1)
	}
	authService := auth.NewService(users)
	authHandler := auth.NewHandler(logger, authService, templates, sessionManager, csrfManager)

	apiClient := compras.NewClient(cfg.APIBase, cfg.APIToken)
	dataCache := cache.NewTTL(redisClient, cfg.CacheTTL)
	comprasService := compras.NewService(apiClient, dataCache, logger)

	comprasHandler := comprashttp.NewHandler(logger, comprasService, styles, templates)
	statementHandler := statementhttp.NewHandler(logger, comprasService, styles, templates, cfg.CreditLimitAmount())

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Templates:        templates,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		AuthHandler:      authHandler,
		ComprasHandler:   comprasHandler,
		StatementHandler: statementHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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
