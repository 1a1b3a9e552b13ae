package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/lendops/query-management-api/internal/cache"
	"github.com/lendops/query-management-api/internal/config"
	"github.com/lendops/query-management-api/internal/dao"
	"github.com/lendops/query-management-api/internal/database"
	"github.com/lendops/query-management-api/internal/notify"
	"github.com/lendops/query-management-api/internal/router"
	"github.com/lendops/query-management-api/internal/service"
)

// Version information (set by build script)
var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	// Set Gin to release mode by default (can be overridden by GIN_MODE env var)
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	logger.WithFields(logrus.Fields{
		"version":    version,
		"build_date": buildDate,
	}).Info("Starting Query Management API Server...")

	// Load configuration
	// Priority: CONFIG_PATH env var > repository/conf/deployment.yaml > cmd/server/repository/conf/deployment.yaml
	configPath := os.Getenv("CONFIG_PATH")

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	// Set log level from config
	if level, err := logrus.ParseLevel(cfg.Logging.Level); err == nil {
		logger.SetLevel(level)
	}
	if cfg.Logging.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	logger.WithFields(logrus.Fields{
		"config_path": configPath,
		"log_level":   logger.GetLevel().String(),
	}).Info("Configuration loaded successfully")

	// Initialize database
	db, err := database.Initialize(&cfg.Database, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	// Initialize DAOs
	groupDAO := dao.NewQueryGroupDAO(db)
	itemDAO := dao.NewQueryItemDAO(db)
	chatDAO := dao.NewChatDAO(db)
	remarkDAO := dao.NewRemarkDAO(db)
	sanctionDAO := dao.NewSanctionDAO(db)
	applicationDAO := dao.NewApplicationDAO(db)
	auditDAO := dao.NewStatusAuditDAO(db)

	logger.Info("DAOs initialized successfully")

	// Shared in-process infrastructure
	fallback := cache.NewFallbackStore(logger)
	hub := notify.NewHub(cfg.Updates.LogCapacity, logger)

	// Initialize services
	queryService := service.NewQueryService(
		groupDAO,
		itemDAO,
		sanctionDAO,
		applicationDAO,
		auditDAO,
		db,
		fallback,
		hub,
		logger,
	)

	chatService := service.NewChatService(
		chatDAO,
		remarkDAO,
		groupDAO,
		hub,
		cfg.Chat.ReadDedupWindow,
		cfg.Chat.WriteDedupWindow,
		logger,
	)

	logger.Info("Services initialized successfully")

	// Setup router
	ginRouter := router.SetupRouter(queryService, chatService, hub, db)

	// Configure HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Hostname, cfg.Server.Port)
	server := &http.Server{
		Addr:           serverAddr,
		Handler:        ginRouter,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout, // zero by default; the event stream holds connections open
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	// Start server in a goroutine
	go func() {
		logger.WithFields(logrus.Fields{
			"hostname": cfg.Server.Hostname,
			"port":     cfg.Server.Port,
			"addr":     serverAddr,
		}).Info("Starting HTTP server...")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	logger.WithField("address", serverAddr).Info("✓ Server is running")
	logger.Info("Press Ctrl+C to stop the server")

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}

	logger.Info("Server exited gracefully")
}
