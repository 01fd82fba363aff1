package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xelth-com/pantrywms/internal/buildinfo"
	"github.com/xelth-com/pantrywms/internal/config"
	"github.com/xelth-com/pantrywms/internal/database"
	"github.com/xelth-com/pantrywms/internal/handlers"
	"github.com/xelth-com/pantrywms/internal/inventory"
	"github.com/xelth-com/pantrywms/internal/metrics"
	"github.com/xelth-com/pantrywms/internal/middleware"
	"github.com/xelth-com/pantrywms/internal/websocket"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting pantry inventory server",
		zap.String("version", buildinfo.String()),
		zap.String("env", cfg.NodeEnv),
	)

	// 2. Initialize database (embedded or external)
	db, err := database.Connect(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	// Note: db.Close() is called in the shutdown path below

	// 3. Auto-migrate schema
	logger.Info("Synchronizing database schema")
	if err := database.Migrate(db.DB); err != nil {
		db.Close()
		logger.Fatal("Failed to migrate schema", zap.Error(err))
	}
	logger.Info("Schema synchronized")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// 4. Live updates and metrics
	m := metrics.New()
	hub := websocket.NewHub(logger, m)
	go hub.Run(ctx)

	// 5. Inventory core
	manager := inventory.NewManager(db.DB, inventory.NewRules(cfg.Inventory), logger,
		inventory.WithPublisher(hub),
		inventory.WithRecorder(m),
	)

	router := handlers.NewRouter(handlers.Deps{
		Inventory: manager,
		DB:        db.DB,
		Hub:       hub,
		Metrics:   m,
		Log:       logger,
		Version:   buildinfo.String(),
	})

	// 6. Start server with graceful shutdown
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           middleware.CaseInsensitive(middleware.RequestID(router)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	sig := <-shutdown
	logger.Info("Received signal, shutting down gracefully", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// Stop the websocket hub
	stop()

	// Close database (this also stops embedded PostgreSQL)
	logger.Info("Closing database connection")
	if err := db.Close(); err != nil {
		logger.Error("Database close error", zap.Error(err))
	}

	logger.Info("Shutdown complete")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}
