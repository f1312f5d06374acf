package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/vid2scene/api/internal/config"
	"github.com/vid2scene/api/internal/dataset"
	"github.com/vid2scene/api/internal/handler"
	"github.com/vid2scene/api/internal/logging"
	"github.com/vid2scene/api/internal/middleware"
	"github.com/vid2scene/api/internal/model"
	"github.com/vid2scene/api/internal/service"
	"github.com/vid2scene/api/internal/session"
	"github.com/vid2scene/api/internal/simulator"
	"github.com/vid2scene/api/internal/validation"
	ws "github.com/vid2scene/api/internal/websocket"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logging.New(logging.Config{
		Level:   cfg.Server.LogLevel,
		Service: "vid2scene-api",
	})
	defer log.Close()
	zl := log.Zerolog()

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	// Test Redis connection
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		zl.Warn().Err(err).Msg("Redis not available, rate limiting is disabled until it is reachable")
	}

	// Check the mock dataset up front so a broken file shows in the logs at boot
	source := dataset.NewSource(cfg.Dataset.Path)
	if _, err := source.Load(ctx); err != nil {
		zl.Warn().Err(err).Str("path", cfg.Dataset.Path).Msg("Mock dataset failed to load; sessions will start without one")
	}

	validate := validator.New()
	gate := validation.NewGate(cfg.MaxUploadBytes())
	supervisor := session.NewSupervisor(log.WithComponent("supervisor"))

	// Initialize WebSocket hub
	hub := ws.NewHub(log.WithComponent("hub"))
	go hub.Run()

	// Initialize services
	uploadService := service.NewUploadService(cfg.Upload.Dir, gate, log.WithComponent("upload"))
	sessionService := service.NewSessionService(service.SessionOptions{
		Stages: model.DefaultStages(),
		Gate:   gate,
		Source: source,
		Simulator: simulator.Config{
			TickInterval: cfg.Simulator.TickInterval,
			GraceDelay:   cfg.Simulator.GraceDelay,
		},
		Notifier: hub,
		Logger:   log.WithComponent("session"),
		Storage:  uploadService,
	})
	exportService := service.NewExportService()

	// Initialize handlers
	stageHandler := handler.NewStageHandler(sessionService.Stages())
	sessionHandler := handler.NewSessionHandler(sessionService, supervisor, validate)
	uploadHandler := handler.NewUploadHandler(sessionService, uploadService, supervisor, validate)
	exportHandler := handler.NewExportHandler(exportService, sessionService, supervisor, validate)
	streamHandler := handler.NewStreamHandler(sessionService, hub)

	rateLimiter := middleware.NewRateLimiter(redisClient, log.WithComponent("ratelimit"))

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: handler.ErrorHandler(log, uploadHandler),
		BodyLimit:    cfg.BodyLimitBytes(),
	})

	// Global middleware
	app.Use(recover.New(recover.Config{EnableStackTrace: cfg.Server.Env == "development"}))
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"sessions": sessionService.Count(),
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// API routes
	api := app.Group("/api")
	api.Get("/stages", stageHandler.List)
	api.Post("/sessions", rateLimiter.SessionLimit(cfg.RateLimit.SessionPerHour), sessionHandler.Create)

	sessions := api.Group("/sessions/:sessionId")
	sessions.Get("", sessionHandler.Status)
	sessions.Delete("", sessionHandler.Delete)
	sessions.Post("/upload", rateLimiter.UploadLimit(cfg.RateLimit.UploadPerHour), uploadHandler.Upload)
	sessions.Post("/cancel", sessionHandler.Cancel)
	sessions.Post("/results", sessionHandler.Results)
	sessions.Get("/video", sessionHandler.Video)
	sessions.Get("/scene", exportHandler.Scene)
	sessions.Get("/export", exportHandler.Payload)
	sessions.Get("/export/camera-paths", exportHandler.CameraPaths)
	sessions.Get("/export/artifact", exportHandler.Artifact)

	// WebSocket routes
	app.Get("/ws/sessions/:sessionId", streamHandler.Upgrade, streamHandler.Stream())

	// Drop sessions nobody has touched for a while
	sweepCtx, stopSweep := context.WithCancel(ctx)
	go sweepSessions(sweepCtx, sessionService, cfg.Session, log)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		zl.Info().Msg("Shutting down server...")
		stopSweep()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			zl.Error().Err(err).Msg("Server shutdown error")
		}
	}()

	// Start server
	addr := ":" + cfg.Server.Port
	zl.Info().Str("addr", addr).Str("env", cfg.Server.Env).Msg("Server starting")
	if err := app.Listen(addr); err != nil {
		zl.Error().Err(err).Msg("Server error")
	}

	sessionService.Close()
	hub.Close()
}

func sweepSessions(ctx context.Context, sessions *service.SessionService, cfg config.SessionConfig, log logging.Logger) {
	if cfg.IdleTTL <= 0 || cfg.SweepInterval <= 0 {
		return
	}
	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := sessions.Expire(now, cfg.IdleTTL); n > 0 {
				log.Log(logging.LevelInfo, "Expired idle sessions", logging.Fields{"count": n})
			}
		}
	}
}
