// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dukalabs/duka-server/internal/admin"
	"github.com/dukalabs/duka-server/internal/audit"
	"github.com/dukalabs/duka-server/internal/auth"
	"github.com/dukalabs/duka-server/internal/catalog"
	"github.com/dukalabs/duka-server/internal/config"
	"github.com/dukalabs/duka-server/internal/core"
	"github.com/dukalabs/duka-server/internal/email"
	"github.com/dukalabs/duka-server/internal/health"
	"github.com/dukalabs/duka-server/internal/identity"
	"github.com/dukalabs/duka-server/internal/middleware"
	"github.com/dukalabs/duka-server/internal/order"
	"github.com/dukalabs/duka-server/internal/payment"
	"github.com/dukalabs/duka-server/internal/server"
	"github.com/dukalabs/duka-server/internal/settings"
	"github.com/dukalabs/duka-server/internal/shipping"
	"github.com/dukalabs/duka-server/internal/store"
	"github.com/dukalabs/duka-server/internal/token"
)

const drainDelay = 5 * time.Second

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	st, err := store.Open(cfg.Store.DataDir)
	if err != nil {
		return err
	}
	logger.Info("document store opened", "data_dir", cfg.Store.DataDir)

	cipher, err := core.NewFieldCipher(cfg.Auth.FieldEncryptionKey)
	if err != nil {
		return err
	}
	if !cipher.Enabled() {
		logger.Warn("field encryption disabled, PII stored as plaintext")
	}

	tokens, err := token.NewManager(cfg.Auth)
	if err != nil {
		return err
	}

	auditLog, err := audit.New(cfg.Audit.FilePath)
	if err != nil {
		return err
	}

	users := identity.NewUsers(st, cipher)
	admins := identity.NewAdmins(st)

	isProd := cfg.IsProduction()

	authSvc := auth.NewService(users, admins, tokens, auditLog, cfg.Admin)
	authHandler := auth.NewHandler(authSvc, cfg.Auth.SessionTTL, isProd)

	cat := catalog.New(st)
	catalogHandler := catalog.NewHandler(cat)

	rates := shipping.NewRates(st)
	shippingHandler := shipping.NewHandler(rates)

	settingsHandler := settings.NewHandler(settings.NewService(st))

	orders := order.NewOrders(st)
	orderSvc := order.NewService(
		orders,
		cat,
		rates,
		cipher,
		payment.NewClient(cfg.Payment),
		email.NewMailer(cfg.Email),
	)
	orderHandler := order.NewHandler(orderSvc)

	adminHandler := admin.NewHandler(admins, st, auditLog)

	healthHandler := health.NewHandler(st)

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	csrf := middleware.NewCSRFGuard(cfg.Auth.CSRFTokenTTL, isProd)
	origin := middleware.NewOriginGuard(cfg.Admin.AllowedOrigins)
	loginLimiter := middleware.NewLoginRateLimiter(
		cfg.Auth.LoginRatePerMinute,
		cfg.Auth.LoginRateBurst,
	)

	requireUser := middleware.RequireUser(tokens)
	optionalUser := middleware.OptionalUser(tokens)
	requireAdmin := middleware.RequireAdmin(tokens)

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.SecurityHeaders(isProd))
	router.Use(middleware.CORS(cfg.CORS))
	router.Use(csrf.EnsureToken)

	healthHandler.RegisterRoutes(router)

	router.Route("/api", func(r chi.Router) {
		r.Use(csrf.RequireForWrite)
		r.Use(optionalUser)

		r.Group(func(r chi.Router) {
			r.Use(loginLimiter.Handler)
			r.Post("/auth/signup", authHandler.Signup)
			r.Post("/auth/login", authHandler.Login)
		})
		r.Post("/auth/logout", authHandler.Logout)
		r.With(requireUser).Get("/auth/me", authHandler.Me)

		catalogHandler.RegisterStoreRoutes(r)
		shippingHandler.RegisterStoreRoutes(r)
		settingsHandler.RegisterStoreRoutes(r)
		orderHandler.RegisterStoreRoutes(r, requireUser)
	})

	router.Route("/api/admin", func(r chi.Router) {
		r.Use(origin.RequireOrigin)
		r.Use(csrf.RequireForWrite)

		r.Group(func(r chi.Router) {
			r.Use(loginLimiter.Handler)
			r.Post("/auth/login", authHandler.AdminLogin)
		})
		r.Post("/auth/logout", authHandler.AdminLogout)

		r.Group(func(r chi.Router) {
			r.Use(requireAdmin)

			r.Get("/auth/me", authHandler.AdminMe)

			catalogHandler.RegisterAdminRoutes(r)
			shippingHandler.RegisterAdminRoutes(r)
			settingsHandler.RegisterAdminRoutes(r)
			orderHandler.RegisterAdminRoutes(r)

			adminHandler.RegisterRoutes(r, middleware.RequireSuperAdmin)
		})
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := auditLog.Close(); err != nil {
		logger.Error("audit log close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
