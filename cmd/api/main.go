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

	"papertrade/internal/server/config"
	delivery "papertrade/internal/server/delivery/http"
	"papertrade/internal/server/repository"
	"papertrade/internal/server/service"
	"papertrade/pkg/logger"
	"papertrade/pkg/postgres"
	"papertrade/pkg/redis"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"google.golang.org/genai"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the trading API service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Trading API Service", logger.Field("name", cfg.App.Name))

	// Initialize database
	postgresCfg := postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		TimeZone:        cfg.Database.TimeZone,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}
	db, err := postgres.NewDB(postgresCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		defer sqlDB.Close()
	}

	// Initialize Redis. The last-price fallback tier degrades gracefully
	// without it.
	var redisClient *redis.Client
	redisCfg := redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	}
	redisClient, err = redis.NewClient(redisCfg)
	if err != nil {
		appLogger.Error("Redis unavailable, last-price fallback disabled", logger.ErrorField(err))
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.DB)
	ledgerRepo := repository.NewLedgerRepository(db.DB)
	socialRepo := repository.NewSocialRepository(db.DB)
	snapshotRepo := repository.NewQuoteSnapshotRepository(db.DB)
	yahooRepo := repository.NewYahooFinanceRepository(cfg, appLogger)

	// The AI advisor is optional; without a key the endpoint reports itself
	// unavailable.
	var aiRepo repository.AIRepository
	if cfg.Gemini.APIKey != "" && cfg.Gemini.APIKey != "your_gemini_api_key_here" {
		genAiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey: cfg.Gemini.APIKey,
		})
		if err != nil {
			appLogger.Fatal("Failed to initialize Gemini AI client", logger.ErrorField(err))
		}
		aiRepo, err = repository.NewGeminiAIRepository(cfg, appLogger, genAiClient)
		if err != nil {
			appLogger.Fatal("Failed to initialize Gemini AI repository", logger.ErrorField(err))
		}
	} else {
		appLogger.Info("No Gemini API key configured, AI advisor disabled")
	}

	// Initialize services
	quoteSvc := service.NewQuoteService(cfg, yahooRepo, snapshotRepo, redisClient, appLogger)
	authSvc := service.NewAuthService(cfg, userRepo, appLogger)
	tradingSvc := service.NewTradingService(cfg, ledgerRepo, quoteSvc, appLogger)
	portfolioSvc := service.NewPortfolioService(ledgerRepo, userRepo, quoteSvc, appLogger)
	socialSvc := service.NewSocialService(socialRepo, userRepo, appLogger)
	adviceSvc := service.NewAdviceService(aiRepo, portfolioSvc, appLogger)

	if err := quoteSvc.StartRefresher(); err != nil {
		appLogger.Fatal("Failed to start quote refresher", logger.ErrorField(err))
	}
	defer quoteSvc.StopRefresher()

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true
	e.Use(echomiddleware.Recover())

	apiV1 := e.Group("/api/v1")

	authHandler := delivery.NewAuthHandler(authSvc, appLogger)
	authHandler.RegisterPublicRoutes(apiV1)

	protected := apiV1.Group("", delivery.JWTMiddleware(cfg.Auth.JWTSecret))
	authHandler.RegisterRoutes(protected)
	delivery.NewAccountHandler(portfolioSvc, tradingSvc, appLogger).RegisterRoutes(protected)
	delivery.NewTradeHandler(tradingSvc, appLogger).RegisterRoutes(protected)
	delivery.NewStockHandler(quoteSvc, appLogger).RegisterRoutes(protected)
	delivery.NewSocialHandler(socialSvc, appLogger).RegisterRoutes(protected)
	delivery.NewAIHandler(adviceSvc, appLogger).RegisterRoutes(protected)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop()
		}
	}()

	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

func main() {
	rootCmd := &cobra.Command{Use: "api"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing api CLI: %s\n", err)
		os.Exit(1)
	}
}
