package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dkaraca/briefly/internal/api"
	"github.com/dkaraca/briefly/internal/cache"
	"github.com/dkaraca/briefly/internal/config"
	"github.com/dkaraca/briefly/internal/digest"
	"github.com/dkaraca/briefly/internal/email"
	"github.com/dkaraca/briefly/internal/fetch"
	"github.com/dkaraca/briefly/internal/jobs"
	"github.com/dkaraca/briefly/internal/logger"
	"github.com/dkaraca/briefly/internal/middleware"
	"github.com/dkaraca/briefly/internal/pipeline"
	"github.com/dkaraca/briefly/internal/storage"
	"github.com/dkaraca/briefly/internal/summarize"
)

func main() {
	// Load and validate configuration
	cfg := config.Load()

	// Initialize logger
	output := "stdout"
	if cfg.LogFile != "" {
		output = cfg.LogFile
	}
	if err := logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Output: output,
		Pretty: cfg.Env == "development",
	}); err != nil {
		panic(err)
	}

	log := logger.Get()
	log.Info().Msg("Starting application...")

	// Freshness cache backend
	var store cache.Store
	switch cfg.CacheBackend {
	case "redis":
		redisStore, err := cache.NewRedisStore(cfg.RedisURL, cfg.RedisPrefix)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis cache")
		}
		defer func() {
			if err := redisStore.Close(); err != nil {
				log.Error().Err(err).Msg("Error closing Redis client")
			}
		}()
		store = redisStore
	default:
		store = cache.NewFileStore(cfg.CacheFile)
	}
	contentCache := cache.New(store, cfg.CacheTTL)

	// Content fetchers
	web := fetch.NewWebFetcher(contentCache, cfg.ScrapeTimeout)
	rss := fetch.NewRSSFetcher(web, 5)
	rss.SetDelay(cfg.ScrapeDelay)
	video := fetch.NewVideoFetcher(
		fetch.NewYouTubeDataAPI(cfg.YouTubeAPIKey, cfg.HTTPTimeout),
		fetch.NewTimedTextAPI(cfg.HTTPTimeout),
	)
	social := fetch.NewSocialFetcher(cfg.TwitterBearerToken, cfg.HTTPTimeout)

	// LLM, assembly and delivery
	llm := summarize.NewGroqClient(cfg.GroqAPIKey, cfg.GroqModel, cfg.LLMTimeout)
	summarizer := summarize.New(llm, cfg.Temperature, cfg.LLMMaxTok)
	assembler := digest.NewAssembler(llm, cfg.LLMCompose)
	mailer := email.NewSender(cfg.ResendAPIKey, cfg.FromEmail, cfg.HTTPTimeout)

	p := pipeline.New(web, rss, video, social, summarizer, assembler, mailer)

	// Digest archive, optionally mirrored to R2
	archive, err := storage.NewStorage(cfg.StoragePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize digest archive")
	}
	if cfg.R2Endpoint != "" {
		uploader, err := storage.NewR2Uploader(context.Background(),
			cfg.R2Endpoint, cfg.R2AccessKey, cfg.R2SecretKey, cfg.R2Bucket)
		if err != nil {
			log.Warn().Err(err).Msg("R2 mirroring disabled")
		} else {
			archive.SetUploader(uploader)
			log.Info().Str("bucket", cfg.R2Bucket).Msg("R2 mirroring enabled")
		}
	}

	// Scheduled runs re-enter the pipeline through the handlers, so the
	// job store is wired with a late-bound callback.
	var handlers *api.Handlers
	jobStore := jobs.NewStore(func(jobID string, payload any) {
		handlers.RunFromPayload(jobID, payload)
	})
	defer jobStore.Stop()

	handlers = api.NewHandlers(p, archive, contentCache, jobStore)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
		IdleTimeout:  120 * time.Second,
		ErrorHandler: middleware.ErrorHandler,
	})

	api.SetupRoutes(app, handlers, cfg.AdminAPIKey)

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
