package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/phambaophuc/photo-normalizer/internal/config"
	"github.com/phambaophuc/photo-normalizer/internal/http/handlers"
	"github.com/phambaophuc/photo-normalizer/internal/http/routes"
	"github.com/phambaophuc/photo-normalizer/internal/models"
	"github.com/phambaophuc/photo-normalizer/internal/services/normalizer"
	"github.com/phambaophuc/photo-normalizer/internal/services/pipeline"
	"github.com/phambaophuc/photo-normalizer/internal/services/queue"
	"github.com/phambaophuc/photo-normalizer/internal/services/settings"
	"github.com/phambaophuc/photo-normalizer/internal/services/storage"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Initialize services
	redisClient := storage.NewRedisClient(cfg)
	defer redisClient.Close()

	storageService := storage.NewStorageService(cfg, redisClient)

	n := normalizer.New(normalizer.Options{
		MaxWidth:         cfg.Normalizer.MaxWidth,
		MaxHeight:        cfg.Normalizer.MaxHeight,
		Quality:          cfg.Normalizer.Quality,
		ThumbnailQuality: cfg.Normalizer.ThumbnailQuality,
		MaxPixels:        cfg.Normalizer.MaxPixels,
	})
	uploads := pipeline.New(n, storageService, cfg.Normalizer.ThumbnailSize, logger)

	siteSettings := settings.NewStore(
		settings.NewRedisSource(redisClient, cfg.Settings.Key),
		cfg.Settings.RefreshInterval,
		logger,
	)
	siteSettings.Start(ctx)

	var jobs handlers.JobQueue
	queueService, err := queue.NewQueueService(queue.Options{
		URL:       cfg.RabbitMQ.URL,
		QueueName: cfg.RabbitMQ.QueueName,
		CacheParams: models.ResizeRequest{
			MaxWidth:  cfg.Normalizer.MaxWidth,
			MaxHeight: cfg.Normalizer.MaxHeight,
			Quality:   cfg.Normalizer.Quality,
		},
		ThumbnailSize: cfg.Normalizer.ThumbnailSize,
	}, uploads, storageService, logger)
	if err != nil {
		// Continue without the queue; job endpoints answer 503.
		logger.Warn("Failed to initialize queue service", zap.Error(err))
	} else {
		defer queueService.Close()
		for i := 1; i <= cfg.RabbitMQ.Workers; i++ {
			if err := queueService.StartWorker(ctx, i); err != nil {
				logger.Error("Failed to start worker", zap.Int("worker_id", i), zap.Error(err))
			}
		}
		jobs = queueService
	}

	// Initialize handlers
	imageHandler := handlers.NewImageHandler(n, uploads, storageService, jobs, siteSettings, logger, cfg)

	router := routes.NewRouter(imageHandler, logger, cfg.Storage.MaxFileSize)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Handler:      router.SetupRoutes(),
	}

	// Start server
	go func() {
		logger.Info("Starting server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	// Interrupted jobs are requeued; wait for workers before the channel closes.
	stop()
	if queueService != nil {
		queueService.Wait()
	}

	logger.Info("Server exited")
}
