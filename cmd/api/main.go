// @title           Project Tracker API
// @version         1.0
// @description     Project, work item and organization tracking API with realtime change events.
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8000
// @BasePath  /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	_ "project-tracker-api/docs" // Swagger docs import

	"project-tracker-api/internal/client"
	"project-tracker-api/internal/config"
	"project-tracker-api/internal/database"
	"project-tracker-api/internal/events"
	"project-tracker-api/internal/job"
	"project-tracker-api/internal/metrics"
	"project-tracker-api/internal/router"
	"project-tracker-api/internal/service"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the yaml configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.Logger.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Set Gin mode
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("Starting Project Tracker API",
		zap.String("port", cfg.Server.Port),
		zap.String("mode", cfg.Server.Mode),
		zap.String("base_path", cfg.Server.BasePath),
		zap.String("db_driver", cfg.Database.Driver),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Initialize metrics
	m := metrics.NewWithLogger(logger)
	logger.Info("Metrics initialized")

	db, ok := connectDatabase(cfg, logger, quit)
	if !ok {
		logger.Info("Shutdown requested before the database was reachable")
		return
	}

	if err := database.SafeAutoMigrate(db, logger); err != nil {
		logger.Warn("Failed to run database migrations", zap.Error(err))
	} else {
		logger.Info("Database migrations completed")
	}

	if err := database.RegisterMetricsCallbacks(db, m); err != nil {
		logger.Warn("Failed to register database metrics callbacks", zap.Error(err))
	}
	statsDone := database.StartDBStatsCollector(db, m, 15*time.Second)

	collector := metrics.NewBusinessMetricsCollector(db, m, logger)
	collector.Start()

	// Redis is optional; without it events only reach clients of this replica
	var redisClient *redis.Client
	if cfg.Redis.URL != "" || cfg.Redis.Addr != "" {
		redisClient, err = database.InitRedis(cfg.Redis, logger)
		if err != nil {
			logger.Warn("Failed to connect to redis, events stay local to this instance", zap.Error(err))
			redisClient = nil
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := events.NewHub(events.HubConfig{
		ClientBuffer:    cfg.Realtime.ClientBuffer,
		BroadcastBuffer: cfg.Realtime.BroadcastBuffer,
	}, logger, m)
	go hub.Run(ctx)

	bridge := events.NewRedisBridge(redisClient, cfg.Redis.Channel, hub, logger, m)
	go func() {
		if err := bridge.Run(ctx); err != nil {
			logger.Error("Event bridge stopped", zap.Error(err))
		}
	}()

	// Initialize S3 client
	var s3Client client.S3ClientInterface
	if cfg.S3.Bucket != "" && cfg.S3.Region != "" {
		c, err := client.NewS3Client(ctx, cfg.S3, m)
		if err != nil {
			logger.Warn("Failed to initialize S3 client, attachment features disabled", zap.Error(err))
		} else {
			s3Client = c
			logger.Info("S3 client initialized",
				zap.String("bucket", cfg.S3.Bucket),
				zap.String("region", cfg.S3.Region),
			)
		}
	} else {
		logger.Warn("S3 configuration incomplete, attachment features disabled")
	}

	services := service.NewServices(db, bridge, s3Client, m, logger)

	// Setup router with all dependencies
	r := router.Setup(router.Config{
		DB:          db,
		Redis:       redisClient,
		Logger:      logger,
		JWTSecret:   cfg.JWT.Secret,
		BasePath:    cfg.Server.BasePath,
		CORSOrigins: cfg.Server.CORSOrigins,
		Metrics:     m,
		Publisher:   bridge,
		Hub:         hub,
		S3Client:    s3Client,
		Services:    services,
	})

	scheduler := startJobs(cfg, services, m, logger)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Project Tracker API started successfully",
			zap.String("address", srv.Addr),
			zap.String("swagger", fmt.Sprintf("http://localhost:%s/swagger/index.html", cfg.Server.Port)),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	<-quit
	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	scheduler.Stop(shutdownCtx)
	cancel()
	collector.Stop()
	close(statsDone)

	if redisClient != nil {
		_ = redisClient.Close()
	}
	if err := database.Close(db); err != nil {
		logger.Warn("Failed to close database", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}

// connectDatabase connects once and, on failure, keeps retrying in the
// background until connected or a shutdown signal arrives.
func connectDatabase(cfg *config.Config, logger *zap.Logger, quit <-chan os.Signal) (*gorm.DB, bool) {
	dbConfig := database.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.GetDSN(),
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}

	db, err := database.New(dbConfig)
	if err == nil {
		database.SetDB(db)
		logger.Info("Database connected successfully")
		return db, true
	}

	logger.Warn("Failed to connect to database on startup, will retry in background", zap.Error(err))
	ready := make(chan *gorm.DB, 1)
	database.NewAsync(dbConfig, 5*time.Second, logger, func(db *gorm.DB) { ready <- db })

	select {
	case db := <-ready:
		return db, true
	case <-quit:
		return nil, false
	}
}

func startJobs(cfg *config.Config, services *service.Services, m *metrics.Metrics, logger *zap.Logger) *job.Scheduler {
	scheduler := job.NewScheduler(logger)

	if services.Attachments != nil {
		cleanup := job.NewCleanupJob(services.Attachments, m, logger)
		if err := scheduler.Add(job.AttachmentCleanupName, cfg.Jobs.AttachmentCleanupCron, cleanup); err != nil {
			logger.Error("Failed to schedule job", zap.Error(err))
		}
	}

	retention := job.NewRetentionJob(services.Notifications, cfg.Jobs.NotificationRetentionDays, m, logger)
	if err := scheduler.Add(job.NotificationRetentionName, cfg.Jobs.NotificationRetentionCron, retention); err != nil {
		logger.Error("Failed to schedule job", zap.Error(err))
	}

	scheduler.Start()
	return scheduler
}

// initLogger initializes the zap logger with the specified level
func initLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      zapLevel == zapcore.DebugLevel,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}
