package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jdangi/portfolio-api/internal/auth"
	"github.com/jdangi/portfolio-api/internal/background"
	"github.com/jdangi/portfolio-api/internal/config"
	"github.com/jdangi/portfolio-api/internal/database"
	"github.com/jdangi/portfolio-api/internal/handlers"
	"github.com/jdangi/portfolio-api/internal/middleware"
	"github.com/jdangi/portfolio-api/internal/models"
	"github.com/jdangi/portfolio-api/internal/repositories"
	"github.com/jdangi/portfolio-api/internal/routes"
	"github.com/jdangi/portfolio-api/internal/services"
	pkghttp "github.com/jdangi/portfolio-api/pkg/http"
	pkglogger "github.com/jdangi/portfolio-api/pkg/logger"
	"github.com/redis/go-redis/v9"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Repositories
	adminRepo := repositories.NewAdminRepository(db)
	messageRepo := repositories.NewMessageRepository(db)
	profileRepo := repositories.NewProfileRepository(db)

	// Token codec: distinct keys for the access and refresh token kinds.
	tokenManager := auth.NewTokenManager(
		cfg.Auth.AccessSecret,
		cfg.Auth.RefreshSecret,
		cfg.Auth.AccessTokenExpiry,
		cfg.Auth.RefreshTokenExpiry,
	)

	auditLogger := pkglogger.NewAuditLogger(logger)

	// Login limiter: Redis-backed when configured, process-local otherwise.
	var loginLimiter services.LoginLimiter
	if cfg.RateLimit.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RateLimit.RedisAddr})
		defer redisClient.Close()
		loginLimiter = services.NewRedisLoginLimiter(
			redisClient, cfg.RateLimit.LoginMaxAttempts, cfg.RateLimit.LoginWindow, logger)
		logger.Info("using redis login limiter", slog.String("addr", cfg.RateLimit.RedisAddr))
	} else {
		memLimiter := services.NewMemoryLoginLimiter(
			cfg.RateLimit.LoginMaxAttempts, cfg.RateLimit.LoginWindow)
		defer memLimiter.Stop()
		loginLimiter = memLimiter
	}

	// Services
	authService := services.NewAuthService(adminRepo, tokenManager, logger, auditLogger)
	setupService := services.NewSetupService(adminRepo, logger, auditLogger)
	messageService := services.NewMessageService(messageRepo, logger)
	profileService := services.NewProfileService(profileRepo, logger)

	// Handlers
	cookieCfg := auth.CookieConfig{Production: cfg.Server.IsProduction()}
	ipConfig := &pkghttp.IPConfig{}
	authHandler := handlers.NewAuthHandler(authService, cookieCfg, ipConfig, logger)
	setupHandler := handlers.NewSetupHandler(setupService)
	messageHandler := handlers.NewMessageHandler(messageService)
	profileHandler := handlers.NewProfileHandler(profileService)

	cleanupManager := background.NewCleanupManager(adminRepo, logger, cfg.Auth.CleanupInterval)

	// Router
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.SecurityHeaders(middleware.SecurityHeadersConfig{Production: cfg.Server.IsProduction()}))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.Server.AllowedOrigins)))
	router.Use(middleware.SecureLogger(logger))
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.Timeout(60 * time.Second))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		pkghttp.WriteNotFound(w, models.CodeNotFound, "Route not found")
	})

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"portfolio-api","status":"running"}`))
	})

	router.Route("/api", func(r chi.Router) {
		routes.RegisterRoutes(r, routes.Deps{
			AuthHandler:    authHandler,
			SetupHandler:   setupHandler,
			MessageHandler: messageHandler,
			ProfileHandler: profileHandler,
			TokenManager:   tokenManager,
			AdminRepo:      adminRepo,
			LoginLimiter:   loginLimiter,
			IPConfig:       ipConfig,
		})

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()

			if err := db.HealthCheck(ctx); err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
				return
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"healthy","database":"up"}`))
		})
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()
	go cleanupManager.Start(cleanupCtx)

	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}
