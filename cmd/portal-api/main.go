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
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"subsurface-atlas/borehole-portal/borehole-portal-backend/internal/auth"
	"subsurface-atlas/borehole-portal/borehole-portal-backend/internal/boreholes"
	"subsurface-atlas/borehole-portal/borehole-portal-backend/internal/config"
	"subsurface-atlas/borehole-portal/borehole-portal-backend/internal/users"
	"subsurface-atlas/borehole-portal/borehole-portal-backend/internal/workflow"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging.Level)
	defer logger.Sync()

	db, err := gorm.Open(postgres.Open(cfg.Database.GetDatabaseURL()), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("Failed to access database pool", zap.Error(err))
	}
	defer sqlDB.Close()
	sqlDB.SetMaxOpenConns(cfg.Database.MaxConnections)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	if cfg.Database.MaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.Database.MaxLifetime)
	}

	if err := db.AutoMigrate(
		&workflow.TabStatus{},
		&workflow.Workflow{},
		&workflow.WorkflowChange{},
		&boreholes.Borehole{},
		&boreholes.SectionStatus{},
		&users.User{},
	); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	// Wire modules
	boreholeStore := boreholes.NewStore(db)
	boreholeHandler := boreholes.NewHandler(boreholeStore)

	directory := users.NewDirectory(db)
	authHandler := auth.NewHandler(directory, cfg.Security.JWTSecret, cfg.Security.TokenTTL, logger)

	workflowRepo := workflow.NewRepository(db)
	workflowService := workflow.NewService(
		workflowRepo,
		boreholeStore,
		directory,
		boreholeStore,
		requiredSections(cfg.Workflow.RequiredSections),
		logger,
	)
	workflowHandler := workflow.NewHandler(workflowService)

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
	router.Use(auth.Middleware(cfg.Security.JWTSecret))

	// Register Routes
	authHandler.RegisterRoutes(router)
	api := router.Group("/api/v1")
	{
		boreholeHandler.RegisterRoutes(api)
		workflowHandler.RegisterRoutes(api)
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
		Addr:    cfg.Server.GetServerAddr(),
		Handler: router,
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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}

func newLogger(level string) *zap.Logger {
	var logger *zap.Logger
	var err error
	if level == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

func requiredSections(names []string) []workflow.Section {
	sections := make([]workflow.Section, 0, len(names))
	for _, name := range names {
		sections = append(sections, workflow.Section(name))
	}
	return sections
}
