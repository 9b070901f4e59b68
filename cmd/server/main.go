package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/dnalifesong/api/internal/client"
	"github.com/dnalifesong/api/internal/config"
	"github.com/dnalifesong/api/internal/cover"
	"github.com/dnalifesong/api/internal/dna"
	"github.com/dnalifesong/api/internal/handler"
	"github.com/dnalifesong/api/internal/middleware"
	"github.com/dnalifesong/api/internal/render"
	"github.com/dnalifesong/api/internal/service"
	"github.com/dnalifesong/api/internal/storage"
	ws "github.com/dnalifesong/api/internal/websocket"
	"github.com/dnalifesong/api/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Test Redis connection
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis not available: %v", err)
	}

	// Initialize Asynq client
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer asynqClient.Close()

	// Initialize validator
	validate := validator.New()

	// Initialize WebSocket hub
	hub := ws.NewHub()
	go hub.Run()

	// Initialize artifact store
	store, err := storage.NewLocalStore(cfg.Output.Dir)
	if err != nil {
		log.Fatalf("Failed to create output dir: %v", err)
	}

	// Initialize services
	sequenceService := service.NewSequenceService(dna.NewGenerator())
	songService := service.NewSongService(render.NewMIDIRenderer(), render.NewAudioConverter(), store)
	coverService := service.NewCoverService(redisClient, asynqClient, store)

	// Initialize handlers
	sequenceHandler := handler.NewSequenceHandler(sequenceService, validate)
	songHandler := handler.NewSongHandler(songService, validate)
	coverHandler := handler.NewCoverHandler(coverService, validate)
	audioHandler := handler.NewAudioHandler(store)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, cfg.JWT.Expiration)
	rateLimiter := middleware.NewRateLimiter(redisClient)
	authHandler := handler.NewAuthHandler(authMiddleware, cfg.Access.Key, validate)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    50 * 1024 * 1024, // 50MB
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Access key exchange, outside the authenticated group
	app.Post("/api/validate-key", rateLimiter.APILimit(cfg.RateLimit.RequestsPerMin), authHandler.ValidateKey)

	// API routes
	api := app.Group("/api", authMiddleware.Authenticate(), rateLimiter.APILimit(cfg.RateLimit.RequestsPerMin))

	// Sequence routes
	api.Post("/analyze", sequenceHandler.Analyze)
	api.Post("/sequence/random", sequenceHandler.Random)

	// Song generation
	api.Post("/generate", songHandler.Generate)

	// Cover routes
	coverGroup := api.Group("/cover")
	coverGroup.Post("/start", coverHandler.Start)
	coverGroup.Get("/status/:jobId", coverHandler.Status)
	coverGroup.Get("/result/:jobId", coverHandler.Result)
	coverGroup.Post("/cancel/:jobId", coverHandler.Cancel)

	// Audio serving
	api.Get("/audio/:filename", audioHandler.Stream)
	api.Get("/download-file/:filename", audioHandler.Download)

	// WebSocket routes
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/jobs/:jobId", websocket.New(func(c *websocket.Conn) {
		jobID := c.Params("jobId")
		hub.HandleConnection(c, jobID)
	}))

	// Start Asynq worker server
	go startWorkerServer(cfg, coverService, store, hub)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// Start server
	addr := ":" + cfg.Server.Port
	log.Printf("Server starting on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func startWorkerServer(cfg *config.Config, coverService *service.CoverService, store *storage.LocalStore, hub *ws.Hub) {
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"cover": 10,
			},
		},
	)

	musicClient := client.NewMusicAPIClient(&cfg.MusicAPI)
	if !musicClient.IsConfigured() {
		log.Println("Warning: MusicAPI key not set, cover jobs will fail")
	}

	poller := cover.NewPoller(musicClient,
		cover.WithInterval(cfg.Cover.PollInterval),
		cover.WithMaxAttempts(cfg.Cover.MaxAttempts),
	)

	var mirror storage.ArtifactStore
	if r2, err := storage.NewR2Store(&cfg.R2); err != nil {
		log.Printf("R2 mirroring disabled: %v", err)
	} else {
		mirror = r2
	}

	coverWorker := worker.NewCoverWorker(coverService, musicClient, poller, store, mirror, hub)

	mux := asynq.NewServeMux()
	mux.HandleFunc(service.TaskTypeCover, coverWorker.ProcessTask)

	if err := srv.Run(mux); err != nil {
		log.Printf("Asynq worker error: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "SERVICE_ERROR",
			"message": message,
		},
	})
}
