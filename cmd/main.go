package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auto_publish_social/config"
	"auto_publish_social/internal/delivery/cron"
	"auto_publish_social/internal/delivery/httpapi"
	"auto_publish_social/internal/infrastructure/downloader"
	"auto_publish_social/internal/infrastructure/ffmpeg"
	"auto_publish_social/internal/infrastructure/gemini"
	httpclient "auto_publish_social/internal/infrastructure/http"
	"auto_publish_social/internal/infrastructure/instagram"
	"auto_publish_social/internal/infrastructure/openai"
	"auto_publish_social/internal/infrastructure/rss"
	"auto_publish_social/internal/infrastructure/topmediai"
	"auto_publish_social/internal/infrastructure/youtube"
	"auto_publish_social/internal/logger"
	sqliterepo "auto_publish_social/internal/repository/sqlite"
	"auto_publish_social/internal/usecase"
)

func main() {
	// Load configuration from YAML file
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if _, err := logger.Initialize(cfg); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer func() {
		if err := logger.Close(); err != nil {
			log.Printf("Failed to close log files: %v", err)
		}
	}()

	// Validate required configuration
	if cfg.GeminiAPIKey == "" {
		logger.Error().Fatal("gemini.api_key is required")
	}
	if cfg.OpenAIAPIKey == "" {
		logger.Error().Fatal("openai.api_key is required")
	}
	if cfg.InstagramMediaBaseURL == "" {
		logger.Error().Fatal("instagram.media_base_url is required (public URL under which /media is reachable)")
	}

	// Initialize HTTP client
	httpClient := httpclient.NewHTTPClient(cfg)

	// Initialize persistent repositories
	db, err := sqliterepo.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Error().Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	cronRepo := sqliterepo.NewCronRepository(db)
	executionRepo := sqliterepo.NewExecutionRepository(db)
	presetRepo := sqliterepo.NewPresetRepository(db)
	instagramAccountRepo := sqliterepo.NewInstagramAccountRepository(db)
	youtubeAccountRepo := sqliterepo.NewYouTubeAccountRepository(db)
	setupStore := sqliterepo.NewSetupStore(db)

	// Initialize infrastructure services
	downloadService, err := downloader.NewService(cfg, httpClient)
	if err != nil {
		logger.Error().Fatalf("Failed to create download service: %v", err)
	}

	geminiClient, err := gemini.NewClient(context.Background(), cfg)
	if err != nil {
		logger.Error().Fatalf("Failed to create Gemini client: %v", err)
	}

	openaiClient := openai.NewClient(cfg, httpClient)
	feedClient := rss.NewClient()
	ttsClient := topmediai.NewClient(cfg, httpClient, downloadService)
	instagramClient := instagram.NewClient(cfg, httpClient)
	youtubePublisher := youtube.NewPublisher(cfg)
	merger := ffmpeg.NewMerger(cfg)

	// Initialize use cases
	transcriber := usecase.NewTranscriber(downloadService, openaiClient, feedClient)
	pipeline := usecase.NewContentPipeline(geminiClient, geminiClient, geminiClient, ttsClient, merger, cfg.MediaDir)
	tokenPolicy := usecase.NewTokenPolicy(instagramAccountRepo, instagramClient)
	fanout := usecase.NewFanout(executionRepo, youtubeAccountRepo, tokenPolicy, youtubePublisher, instagramClient, cfg.InstagramMediaBaseURL)
	orchestrator := usecase.NewOrchestrator(cronRepo, executionRepo, presetRepo, transcriber, pipeline, fanout)
	cronSetup := usecase.NewCronSetup(setupStore, presetRepo, instagramAccountRepo, youtubeAccountRepo)

	// Initialize and start cron scheduler
	scheduler := cron.NewScheduler(cfg, orchestrator, downloadService)
	if err := scheduler.Start(); err != nil {
		logger.Error().Fatalf("Failed to start scheduler: %v", err)
	}

	// Start HTTP API server for runtime management and public media serving
	apiServer := httpapi.NewServer(cfg, cronSetup, cronRepo, executionRepo, presetRepo, instagramAccountRepo, youtubeAccountRepo)
	if err := apiServer.Start(); err != nil {
		logger.Error().Fatalf("Failed to start HTTP API server: %v", err)
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info().Println("Application started. Press Ctrl+C to stop.")
	<-sigChan

	// Graceful shutdown
	logger.Info().Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	scheduler.Stop()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Printf("HTTP API shutdown error: %v", err)
	}
	logger.Info().Println("Application stopped.")
}
