package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pharma-elog-backend/config"
	"pharma-elog-backend/internal/api"
	"pharma-elog-backend/internal/audit"
	"pharma-elog-backend/internal/auth"
	"pharma-elog-backend/internal/db"
	"pharma-elog-backend/internal/lifecycle"
	"pharma-elog-backend/internal/metrics"
	"pharma-elog-backend/internal/model"
	"pharma-elog-backend/internal/mutation"
	"pharma-elog-backend/internal/store"
)

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "elog-backend ", log.LstdFlags)

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	if cfg.Auth.TokenSecret == "" {
		logger.Fatalf("auth.token_secret must be configured")
	}

	metrics.MustRegister()

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	appStore := store.NewGormStore(gormDB)
	recorder := audit.NewRecorder()
	verifier := auth.NewVerifier(appStore)
	tokens := auth.NewTokenManager(auth.TokenConfig{
		Issuer:     cfg.Auth.TokenIssuer,
		TTL:        cfg.Auth.SessionTTL,
		SigningKey: []byte(cfg.Auth.TokenSecret),
	})
	engine := lifecycle.NewEngine(appStore, verifier, recorder)
	interceptor := mutation.NewInterceptor(appStore, recorder, cfg.Auth.BcryptCost)

	if err := seedAdmin(gormDB, cfg, logger); err != nil {
		logger.Fatalf("failed to seed admin user: %v", err)
	}

	handler := api.NewHandler(appStore, engine, interceptor, tokens, recorder,
		int(cfg.Auth.SessionTTL.Seconds()))
	router := api.NewRouter(appStore, handler, tokens, api.RouterOptions{
		RateLimitPerSec: cfg.Server.RateLimitPerSec,
		RateBurst:       cfg.Server.RateBurst,
		CacheTTL:        time.Duration(cfg.Server.CacheTTLSeconds) * time.Second,
		ClientIPHeader:  cfg.Server.RequestIPHeader,
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}

// seedAdmin creates the initial Admin account when no account with the
// configured username exists yet.
func seedAdmin(gormDB *gorm.DB, cfg *config.Config, logger *log.Logger) error {
	var existing model.User
	err := gormDB.First(&existing, "username = ?", cfg.Auth.SeedAdminUser).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := auth.HashPassword(cfg.Auth.SeedAdminPass, cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}

	admin := &model.User{
		ID:           uuid.NewString(),
		Username:     cfg.Auth.SeedAdminUser,
		PasswordHash: hash,
		FullName:     "System Administrator",
		Role:         model.RoleAdmin,
		Department:   "IT",
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := gormDB.Create(admin).Error; err != nil {
		return err
	}
	logger.Printf("Admin user created (username: %s)", cfg.Auth.SeedAdminUser)
	return nil
}
