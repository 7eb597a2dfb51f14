package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"site-lens/field-portal/field-portal-backend/internal/auth"
	"site-lens/field-portal/field-portal-backend/internal/classifier"
	"site-lens/field-portal/field-portal-backend/internal/config"
	"site-lens/field-portal/field-portal-backend/internal/inventory"
	"site-lens/field-portal/field-portal-backend/internal/notifications"
	"site-lens/field-portal/field-portal-backend/internal/notifications/websocket"
	"site-lens/field-portal/field-portal-backend/internal/projects"
	"site-lens/field-portal/field-portal-backend/internal/reports"
	"site-lens/field-portal/field-portal-backend/internal/settings"
	"site-lens/field-portal/field-portal-backend/internal/tasks"
	"site-lens/field-portal/field-portal-backend/internal/verification"
	"site-lens/field-portal/field-portal-backend/pkg/storage"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.GetDatabaseURL()), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		if cfg.Database.MaxConnections > 0 {
			sqlDB.SetMaxOpenConns(cfg.Database.MaxConnections)
		}
		if cfg.Database.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		}
		if cfg.Database.MaxLifetime > 0 {
			sqlDB.SetConnMaxLifetime(cfg.Database.MaxLifetime)
		}
	}

	ctx := context.Background()

	// AWS clients: S3 for photo blobs, SNS for push, SES for email.
	s3Client, err := storage.NewS3Client(ctx, cfg.AWS.Region)
	if err != nil {
		logger.Fatal("Failed to create S3 client", zap.Error(err))
	}
	photoStore := storage.NewPhotoStore(s3Client, cfg.AWS.PhotoBucket)

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		logger.Fatal("Failed to load AWS config", zap.Error(err))
	}

	// Auth
	authRepo, err := auth.NewRepository(db)
	if err != nil {
		logger.Fatal("Failed to initialize auth repository", zap.Error(err))
	}
	authService := auth.NewService(authRepo, cfg.Security.JWTSecret)
	authHandler := auth.NewHandler(authService)

	// Notification channels: in-app websocket always, push and email
	// only when configured.
	hub := websocket.NewManager(logger)
	defer hub.Close()

	channels := []notifications.Channel{notifications.NewWebSocketChannel(hub)}
	if cfg.AWS.SNSTopicARN != "" {
		channels = append(channels, notifications.NewPushChannel(sns.NewFromConfig(awsCfg), cfg.AWS.SNSTopicARN))
	}
	if cfg.AWS.SESSender != "" {
		channels = append(channels, notifications.NewEmailChannel(sesv2.NewFromConfig(awsCfg), cfg.AWS.SESSender, authService))
	}

	settingsRepo, err := settings.NewRepository(db)
	if err != nil {
		logger.Fatal("Failed to initialize settings repository", zap.Error(err))
	}
	settingsService := settings.NewService(settingsRepo)
	settingsHandler := settings.NewHandler(settingsService)

	dispatcher, err := notifications.NewService(db, logger, channels...)
	if err != nil {
		logger.Fatal("Failed to initialize notifications", zap.Error(err))
	}
	dispatcher.WithPreferences(settingsService)

	// Tasks
	taskRepo, err := tasks.NewRepository(db)
	if err != nil {
		logger.Fatal("Failed to initialize task repository", zap.Error(err))
	}
	taskService := tasks.NewService(taskRepo, dispatcher, logger)
	taskHandler := tasks.NewHandler(taskService)

	// Inventory
	invRepo, err := inventory.NewRepository(db)
	if err != nil {
		logger.Fatal("Failed to initialize inventory repository", zap.Error(err))
	}
	invService := inventory.NewService(invRepo, logger)
	invHandler := inventory.NewHandler(invService)

	// Classifier: a lazy handle over the inference sidecar, so a missing
	// or broken sidecar degrades submissions instead of failing startup.
	model := classifier.NewHandle(func() (classifier.Runtime, error) {
		if cfg.Classifier.Endpoint == "" {
			return nil, errors.New("classifier endpoint not configured")
		}
		return classifier.NewHTTPRuntime(cfg.Classifier.Endpoint, cfg.Classifier.Timeout), nil
	}, logger)

	// Verification
	verRepo, err := verification.NewRepository(db)
	if err != nil {
		logger.Fatal("Failed to initialize verification repository", zap.Error(err))
	}
	verService := verification.NewService(
		verification.NewGate(verRepo, logger),
		verRepo,
		taskRepo,
		photoStore,
		model,
		classifier.NewEngine(logger),
		dispatcher,
		logger,
	)
	reviewWorkflow := verification.NewReviewWorkflow(verRepo, logger)
	effectRunner := verification.NewEffectRunner(taskService, invService, dispatcher, logger)
	verHandler := verification.NewHandler(verService, reviewWorkflow, effectRunner)

	// Projects
	projectRepo, err := projects.NewRepository(db)
	if err != nil {
		logger.Fatal("Failed to initialize project repository", zap.Error(err))
	}
	projectService := projects.NewService(projectRepo, dispatcher, logger)
	projectHandler := projects.NewHandler(projectService)

	// Reports
	reportsService := reports.NewService(verRepo, logger)
	reportsHandler := reports.NewHandler(reportsService)

	// Setup Router
	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()

	// CORS Middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	auth.RegisterRoutes(router, authHandler, authService)

	// In-app notification stream. The token rides the query string
	// because browsers cannot set headers on websocket handshakes.
	router.GET("/ws", func(c *gin.Context) {
		userID, _, err := authService.VerifyToken(c.Query("token"))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if _, err := hub.HandleConnection(c.Writer, c.Request, userID.String()); err != nil {
			logger.Warn("websocket handshake failed", zap.Error(err))
		}
	})

	// Register Routes
	api := router.Group("/api/v1", auth.RequireAuth(authService))
	{
		verHandler.RegisterRoutes(api, auth.RequireRole(auth.RoleReviewer, auth.RoleManager))
		taskHandler.RegisterRoutes(api)
		invHandler.RegisterRoutes(api)
		projectHandler.RegisterRoutes(api)
		reportsHandler.RegisterRoutes(api)
		settingsHandler.RegisterRoutes(api)
	}

	// Health Check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
		})
	})

	// Start Server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.Int("port", cfg.Server.Port))

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}
