package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/api"
	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/brain"
	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/config"
	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/logger"
	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/repository"
	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/service"
	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/storage"
)

func main() {
	// Initialize logger from environment so deployments control rotation
	appLogger := logger.NewFromEnv(nil)
	logger.SetDefaultLogger(appLogger)

	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	store := repository.NewStore(db)

	ctx := context.Background()

	// Optional vector index
	var vectors brain.VectorIndex
	if cfg.Qdrant.Enabled {
		qdrantIndex, err := repository.NewQdrantIndex(&repository.QdrantConnectionConfig{
			Host:            cfg.Qdrant.Host,
			Port:            cfg.Qdrant.Port,
			Collection:      cfg.Qdrant.Collection,
			APIKey:          cfg.Qdrant.APIKey,
			UseTLS:          cfg.Qdrant.UseTLS,
			VectorDimension: cfg.Qdrant.Dimensions,
		})
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to initialize Qdrant index")
		}
		defer qdrantIndex.Close()

		if err := qdrantIndex.EnsureCollection(ctx); err != nil {
			appLogger.WithError(err).Fatal("Failed to ensure Qdrant collection")
		}
		vectors = qdrantIndex
	}

	// Optional raw-record archive
	var archive *storage.Archive
	if cfg.Archive.Enabled {
		objectStorage, err := storage.NewS3Storage(&storage.S3Config{
			Type:      storage.StorageType(cfg.Archive.Type),
			Endpoint:  cfg.Archive.Endpoint,
			AccessKey: cfg.Archive.AccessKey,
			SecretKey: cfg.Archive.SecretKey,
			UseSSL:    cfg.Archive.UseSSL,
			Bucket:    cfg.Archive.Bucket,
			Region:    cfg.Archive.Region,
			PublicURL: cfg.Archive.PublicURL,
		})
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to initialize archive storage")
		}
		if err := objectStorage.EnsureBucket(ctx); err != nil {
			appLogger.WithError(err).Fatal("Failed to ensure archive bucket")
		}
		archive = storage.NewArchive(objectStorage)
	}

	// Initialize services
	enrichmentService := service.NewEnrichmentService(&service.EnrichmentServiceConfig{
		Endpoint: cfg.Enrichment.Endpoint,
		APIKey:   cfg.Enrichment.APIKey,
		Timeout:  cfg.Enrichment.Timeout,
	}, appLogger)

	var embeddingService *service.EmbeddingService
	if cfg.Embedding.Enabled {
		embeddingService = service.NewEmbeddingService(&service.EmbeddingConfig{
			Provider:   cfg.Embedding.Provider,
			Model:      cfg.Embedding.Model,
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Dimensions: cfg.Embedding.Dimensions,
		})
	}

	resolver := brain.NewResolver(store, vectors, brain.NewTagCache(), brain.Config{
		TSame:           cfg.Brain.TSame,
		TMaybe:          cfg.Brain.TMaybe,
		NameWeight:      cfg.Brain.NameWeight,
		RelevanceWeight: cfg.Brain.RelevanceWeight,
		JaccardWeight:   cfg.Brain.JaccardWeight,
		SequenceWeight:  cfg.Brain.SequenceWeight,
		CandidatePool:   cfg.Brain.CandidatePool,
	})

	ingestService := service.NewIngestService(
		resolver,
		enrichmentService,
		embeddingService,
		archive,
		store.Jobs,
		appLogger,
		&service.IngestServiceConfig{
			BatchSize:              cfg.Ingest.BatchSize,
			MaxConsecutiveFailures: cfg.Ingest.MaxConsecutiveFailures,
		},
	)

	searchService := service.NewSearchService(
		store,
		vectors,
		embeddingService,
		appLogger,
		&service.SearchConfig{},
	)

	// Setup router
	router := api.SetupRouter(&cfg.Server, appLogger, store, ingestService, searchService)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		appLogger.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Fatal("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}
