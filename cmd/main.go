package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pdf-qa-backend/internal/ai"
	"pdf-qa-backend/internal/cache"
	"pdf-qa-backend/internal/config"
	"pdf-qa-backend/internal/logger"
	"pdf-qa-backend/internal/qa"
	"pdf-qa-backend/internal/storage"
	"pdf-qa-backend/internal/telemetry"
	"pdf-qa-backend/middleware"
	"pdf-qa-backend/models"
	"pdf-qa-backend/routes"
	"pdf-qa-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	// Telemetry is opt-in; without it spans go to the default no-op
	// provider and metrics stay nil.
	var metrics *telemetry.Metrics
	if cfg.TelemetryEnabled {
		shutdown, err := telemetry.InitTracer("pdf-qa-backend", cfg.OTLPEndpoint)
		if err != nil {
			log.Fatal("Failed to init tracer:", err)
		}
		defer shutdown()

		metrics, err = telemetry.InitMetrics()
		if err != nil {
			log.Fatal("Failed to init metrics:", err)
		}
	}

	// Connect to MongoDB
	mongoClient, err := config.ConnectMongoDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		mongoClient.Disconnect(ctx)
	}()
	store := storage.NewMongoStore(mongoClient, cfg.DBName)

	// Redis backs the answer cache and HTTP rate limiting; both are
	// optional and disabled when no REDIS_URL is set.
	var rdb *redis.Client
	var answerCache qa.AnswerCache
	if cfg.RedisURL != "" {
		rdb, err = config.NewRedisClient(cfg)
		if err != nil {
			log.Fatal("Failed to connect to Redis:", err)
		}
		defer rdb.Close()
		answerCache = cache.NewAnswerCache(rdb, cfg.AnswerCacheTTL)
	}

	// Gemini capability client (embeddings + generation)
	gemini, err := ai.NewGeminiClient(context.Background(), cfg, metrics)
	if err != nil {
		log.Fatal("Failed to create Gemini client:", err)
	}
	defer gemini.Close()

	svc := qa.NewService(gemini, store, answerCache, metrics, qa.Options{
		Chunking: models.ChunkingConfig{
			TargetChunkSize: cfg.TargetChunkSize,
			Overlap:         cfg.ChunkOverlap,
			MinChunkSize:    cfg.MinChunkSize,
		},
		TopK:              cfg.TopK,
		MaxContextChars:   cfg.MaxContextChars,
		CapabilityTimeout: cfg.CapabilityTimeout,
	})

	extractor := services.NewPDFExtractor()

	// Initialize Gin router
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.TracingMiddleware())
	if metrics != nil {
		router.Use(middleware.MetricsMiddleware(metrics))
	}
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	// Multipart encoding adds overhead on top of the file itself.
	router.Use(middleware.RequestSizeLimit(cfg.MaxFileSize + 1<<20))
	if rdb != nil {
		router.Use(middleware.RateLimitMiddleware(rdb, cfg))
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		status := gin.H{"status": "healthy", "timestamp": time.Now()}
		if doc := svc.State().CurrentDocument(); doc != nil {
			status["active_document"] = doc.Filename
		}
		c.JSON(http.StatusOK, status)
	})

	// Setup routes
	routes.SetupQARoutes(router, cfg, svc, store, extractor)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
