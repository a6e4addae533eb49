package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/jadenfix/DF-sub000/internal/analysis"
	"github.com/jadenfix/DF-sub000/internal/api/handlers"
	"github.com/jadenfix/DF-sub000/internal/cache/redis"
	"github.com/jadenfix/DF-sub000/internal/feedback"
	"github.com/jadenfix/DF-sub000/internal/llm"
	"github.com/jadenfix/DF-sub000/internal/metrics"
	"github.com/jadenfix/DF-sub000/internal/middleware/adminauth"
	"github.com/jadenfix/DF-sub000/internal/middleware/ratelimit"
	"github.com/jadenfix/DF-sub000/internal/middleware/security"
	"github.com/jadenfix/DF-sub000/internal/reward"
	"github.com/jadenfix/DF-sub000/internal/storage/sqlite"
	"github.com/jadenfix/DF-sub000/internal/vlm"
	"github.com/jadenfix/DF-sub000/pkg/config"
	appLogger "github.com/jadenfix/DF-sub000/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting DreamForge API Server")

	metrics.Init()

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	err = sqliteClient.InitSchema()
	if err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	var cacheClient *redis.Client
	if cfg.Redis.Enabled {
		cacheClient, err = redis.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			appLogger.Warn("Redis unavailable, continuing without cache", zap.Error(err))
			cacheClient = nil
		} else {
			defer cacheClient.Close()
		}
	}

	vlmClient := vlm.NewClient(
		cfg.VLM.APIKey,
		cfg.VLM.Model,
		cfg.VLM.Temperature,
		cfg.VLM.MaxTokens,
		cfg.VLM.TimeoutSec,
	)

	llmClient := llm.NewClient(
		cfg.LLM.APIKey,
		cfg.LLM.Model,
		cfg.LLM.Temperature,
		cfg.LLM.MaxTokens,
		cfg.LLM.TimeoutSec,
	)

	// A typed-nil *redis.Client must not reach the Cache interface.
	var analysisCache analysis.Cache
	if cacheClient != nil {
		analysisCache = cacheClient
	}

	analysisService := analysis.NewService(
		sqliteClient,
		analysisCache,
		vlmClient,
		cfg.Guest.MaxAnalyses,
		cfg.Guest.WindowSec,
		cfg.Redis.CacheTTL,
	)
	feedbackService := feedback.NewService(sqliteClient)
	rewardUpdater := reward.NewUpdater(sqliteClient, reward.Weights{
		Accuracy:    cfg.Reward.DefaultAccuracy,
		Helpfulness: cfg.Reward.DefaultHelpfulness,
		Latency:     cfg.Reward.DefaultLatency,
	})

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, X-Session-ID, X-Admin-Secret",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{}))

	rateLimiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: cfg.RateLimit.MaxRequestsPerMinute,
		Logger:               appLogger.GetLogger(),
	})
	defer rateLimiter.Stop()

	analyzeHandler := handlers.NewAnalyzeHandler(analysisService)
	feedbackHandler := handlers.NewFeedbackHandler(feedbackService)
	chatHandler := handlers.NewChatHandler(llmClient)
	adminHandler := handlers.NewAdminHandler(sqliteClient, rewardUpdater, cfg.Reward.UpdateLimit)
	wsHandler := handlers.NewWebSocketHandler(llmClient)

	api := app.Group("/api/v1", rateLimiter.Middleware())

	api.Post("/analyze", analyzeHandler.HandleAnalyze)
	api.Get("/analyses", analyzeHandler.GetHistory)
	api.Post("/feedback", feedbackHandler.HandleFeedback)
	api.Post("/chat", chatHandler.HandleChat)

	admin := api.Group("/admin", adminauth.Middleware(adminauth.Config{
		Secret: cfg.Admin.Secret,
		Logger: appLogger.GetLogger(),
	}))
	admin.Get("/reward-config", adminHandler.GetRewardConfig)
	admin.Put("/reward-config", adminHandler.PutRewardConfig)
	admin.Post("/reward-update", adminHandler.PostRewardUpdate)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/chat", websocket.New(wsHandler.HandleConnection))

	app.Get("/metrics", metrics.MetricsHandler())

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
