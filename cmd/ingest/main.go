package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/brain"
	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/config"
	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/logger"
	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/repository"
	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/service"
	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/source"
	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/source/kagglecsv"
	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/source/userform"
	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/storage"
)

func main() {
	// Initialize logger first (with defaults)
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "meal-taxonomy-ingest",
	})
	logger.SetDefaultLogger(appLogger)

	// Parse command line flags
	sourceName := flag.String("source", "kagglecsv", "Data source to ingest from (kagglecsv, userform)")
	limit := flag.Int("limit", 0, "Maximum number of records to ingest (0 = all)")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	appLogger.WithFields(logger.Fields{
		"source": *sourceName,
		"limit":  *limit,
	}).Info("Starting ingestion")

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	store := repository.NewStore(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Received shutdown signal, canceling...")
		cancel()
	}()

	// Get data source
	var src source.Source
	switch *sourceName {
	case "kagglecsv":
		src = kagglecsv.NewAdapter(cfg.Sources.KaggleCSV.Path, cfg.Sources.KaggleCSV.SourceType)
	case "userform":
		src = userform.NewAdapter(cfg.Sources.UserForm.StagingDir)
	default:
		appLogger.WithField("source", *sourceName).Fatal("Unknown source type")
	}

	// Run ingestion
	stats, err := ingestService.IngestFromSource(ctx, src, *limit)
	if err != nil {
		appLogger.WithError(err).WithFields(logger.Fields{
			"processed": stats.ProcessedItems,
			"failed":    stats.FailedItems,
			"aborted":   stats.Aborted,
		}).Fatal("Ingestion did not complete")
	}
	appLogger.WithFields(logger.Fields{
		"total":         stats.TotalItems,
		"processed":     stats.ProcessedItems,
		"new_canonical": stats.NewCanonical,
		"attached":      stats.Attached,
		"needs_review":  stats.NeedsReview,
		"existing":      stats.Existing,
		"failed":        stats.FailedItems,
		"duration":      stats.EndTime.Sub(stats.StartTime).String(),
	}).Info("Ingestion completed")
}
