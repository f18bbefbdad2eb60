package main

import (
	"database/sql"
	"flag"
	"log"
	"net/http"
	"time"

	httpapi "gatehouse-backend/internal/api/http"
	"gatehouse-backend/internal/config"
	"gatehouse-backend/internal/logger"
	"gatehouse-backend/internal/repository/postgres"
	"gatehouse-backend/internal/security"
	"gatehouse-backend/internal/service"
	"gatehouse-backend/internal/settings"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

const settingsCacheTTL = 30 * time.Second

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Gatehouse Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	// Mutable site settings live in the database; the provider caches them.
	settingsProvider := settings.NewProvider(store.SettingsRepository, settingsCacheTTL)

	// Rate limiting backend. Nil when unconfigured; the limiter fails open.
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		logger.Info("Redis rate limiting enabled", "addr", cfg.Redis.Addr)
	} else {
		logger.Warn("Redis not configured, rate limiting disabled")
	}

	// Initialize Services
	auditSvc := service.NewAuditService(store.AuditRepository, settingsProvider)
	emailSender := service.NewSendGridSender(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	notifier := service.NewNotifier(store.NotificationRepository, emailSender)

	checkerHTTP := &http.Client{Timeout: time.Duration(cfg.Checker.TimeoutSeconds) * time.Second}
	checker := service.NewCheckerClient(checkerHTTP, settingsProvider)

	authSvc := service.NewAuthService(store.UserRepository, tokenManager, auditSvc)
	appSvc := service.NewPreApplicationService(store.PreApplicationRepository, settingsProvider, auditSvc)
	reviewSvc := service.NewReviewService(store.PreApplicationRepository, store.UserRepository, auditSvc, notifier)
	codeSvc := service.NewInviteCodeService(store.InviteCodeRepository, store.QueryTokenRepository, auditSvc, checker)
	querySvc := service.NewQueryService(store.QueryTokenRepository, store.InviteCodeRepository, store.PreApplicationRepository)

	// Initialize HTTP handlers and router
	router := httpapi.NewRouter(httpapi.RouterDeps{
		Auth:   httpapi.NewAuthHandler(authSvc),
		Apps:   httpapi.NewPreApplicationHandler(appSvc, reviewSvc),
		Codes:  httpapi.NewInviteCodeHandler(codeSvc),
		Query:  httpapi.NewQueryHandler(querySvc),
		Tokens: tokenManager,
		Redis:  rdb,
	})

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
	if err := server.ListenAndServe(); err != nil {
		logger.Error("Failed to serve HTTP", "error", err)
		log.Fatalf("Failed to serve: %v", err)
	}
}
