package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/brain"
	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/domain"
	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/logger"
	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/repository"
	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/source"
	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/storage"
)

// IngestService drives batch ingestion: fetch raw records from a source,
// enrich each one and hand it to the resolution brain. Records are processed
// strictly one at a time in source order so replays are deterministic and a
// failure can be attributed to exactly one record.
type IngestService struct {
	resolver   *brain.Resolver
	enrichment *EnrichmentService
	embedding  *EmbeddingService // optional
	archive    *storage.Archive  // optional
	jobs       *repository.JobRepository
	logger     *logger.Logger

	batchSize              int
	maxConsecutiveFailures int
}

// IngestServiceConfig holds configuration for the ingest service.
type IngestServiceConfig struct {
	BatchSize              int
	MaxConsecutiveFailures int
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	resolver *brain.Resolver,
	enrichment *EnrichmentService,
	embedding *EmbeddingService,
	archive *storage.Archive,
	jobs *repository.JobRepository,
	log *logger.Logger,
	cfg *IngestServiceConfig,
) *IngestService {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	maxFailures := cfg.MaxConsecutiveFailures
	if maxFailures <= 0 {
		maxFailures = 5
	}
	return &IngestService{
		resolver:               resolver,
		enrichment:             enrichment,
		embedding:              embedding,
		archive:                archive,
		jobs:                   jobs,
		logger:                 log,
		batchSize:              batchSize,
		maxConsecutiveFailures: maxFailures,
	}
}

// log returns a logger from context if available, otherwise returns the default logger
func (s *IngestService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}

// IngestStats holds statistics for an ingestion run.
type IngestStats struct {
	TotalItems     int
	ProcessedItems int
	NewCanonical   int
	Attached       int
	NeedsReview    int
	Existing       int
	FailedItems    int
	Aborted        bool
	StartTime      time.Time
	EndTime        time.Time
}

// IngestFromSource ingests all records from a data source, up to limit.
// A limit of 0 or less means no limit. Each record is isolated: a failure is
// counted and logged, and the run only aborts after maxConsecutiveFailures
// records fail back to back, which signals a systemic problem rather than
// one bad row.
func (s *IngestService) IngestFromSource(ctx context.Context, src source.Source, limit int) (*IngestStats, error) {
	stats := &IngestStats{StartTime: time.Now()}

	job := &domain.IngestJob{
		ID:        uuid.New().String(),
		SourceID:  src.GetSourceType(),
		Status:    domain.JobStatusRunning,
		StartedAt: &stats.StartTime,
		CreatedAt: stats.StartTime,
		UpdatedAt: stats.StartTime,
	}
	if s.jobs != nil {
		if err := s.jobs.Create(ctx, job); err != nil {
			s.log(ctx).WithError(err).Warn("Failed to create ingest job record")
		}
	}

	ctx = logger.SetRunID(ctx, job.ID)
	s.log(ctx).WithFields(logger.Fields{
		logger.FieldJobID:  job.ID,
		logger.FieldSource: src.GetSourceType(),
		"limit":            limit,
	}).Info("Starting ingestion")

	consecutiveFailures := 0
	var abortErr error
	var errorLines []string
	cursor := ""

fetch:
	for {
		if err := ctx.Err(); err != nil {
			abortErr = err
			break
		}

		batchLimit := s.batchSize
		if limit > 0 {
			remaining := limit - stats.TotalItems
			if remaining <= 0 {
				break
			}
			if batchLimit > remaining {
				batchLimit = remaining
			}
		}

		items, nextCursor, err := src.FetchBatch(ctx, cursor, batchLimit)
		if err != nil {
			abortErr = fmt.Errorf("failed to fetch batch: %w", err)
			break
		}
		if len(items) == 0 {
			break
		}
		stats.TotalItems += len(items)

		for i := range items {
			if err := ctx.Err(); err != nil {
				abortErr = err
				break fetch
			}

			raw := items[i]
			res, err := s.processRecord(ctx, &raw)
			stats.ProcessedItems++
			if err != nil {
				stats.FailedItems++
				consecutiveFailures++
				errorLines = appendErrorLine(errorLines, raw.SourceID, err)
				s.log(ctx).WithFields(logger.Fields{
					logger.FieldSource:   raw.SourceType,
					logger.FieldSourceID: raw.SourceID,
				}).WithError(err).Error("Failed to process record")

				if consecutiveFailures >= s.maxConsecutiveFailures {
					stats.Aborted = true
					abortErr = fmt.Errorf("aborting after %d consecutive failures: %w", consecutiveFailures, err)
					break fetch
				}
				continue
			}

			consecutiveFailures = 0
			switch res.Status {
			case domain.StatusNewCanonical:
				stats.NewCanonical++
			case domain.StatusAttachedAsVariant:
				stats.Attached++
			case domain.StatusNeedsReview:
				stats.NeedsReview++
			case domain.StatusExistingVariant:
				stats.Existing++
			}

			// Milestone logging so long dataset runs show progress.
			if stats.ProcessedItems%50 == 0 {
				s.log(ctx).WithFields(logger.Fields{
					"processed": stats.ProcessedItems,
					"last":      raw.Name,
				}).Info("Ingestion milestone")
			}
		}

		if nextCursor == "" {
			break
		}
		cursor = nextCursor
	}

	stats.EndTime = time.Now()
	s.finishJob(ctx, job, stats, errorLines, abortErr)

	s.log(ctx).WithFields(logger.Fields{
		logger.FieldJobID: job.ID,
		"total":           stats.TotalItems,
		"processed":       stats.ProcessedItems,
		"new_canonical":   stats.NewCanonical,
		"attached":        stats.Attached,
		"needs_review":    stats.NeedsReview,
		"existing":        stats.Existing,
		"failed":          stats.FailedItems,
		"duration":        stats.EndTime.Sub(stats.StartTime).String(),
	}).Info("Ingestion completed")

	if abortErr != nil {
		return stats, abortErr
	}
	return stats, nil
}

// IngestRecord runs the pipeline for one raw record outside a batch run,
// for API submissions.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - raw: raw meal record.
// Returns:
//   - *domain.Resolution: the brain's decision for the record.
//   - error: non-nil if enrichment or resolution fails.
func (s *IngestService) IngestRecord(ctx context.Context, raw *domain.RawMeal) (*domain.Resolution, error) {
	return s.processRecord(ctx, raw)
}

// processRecord runs the full pipeline for a single raw record: archive
// snapshot, enrichment, optional embedding, then resolution. Archive and
// embedding failures degrade with a warning; enrichment and resolution
// failures fail the record.
func (s *IngestService) processRecord(ctx context.Context, raw *domain.RawMeal) (*domain.Resolution, error) {
	if s.archive != nil {
		url, err := s.archive.PutRecord(ctx, raw)
		if err != nil {
			s.log(ctx).WithFields(logger.Fields{
				logger.FieldSourceID: raw.SourceID,
			}).WithError(err).Warn("Failed to archive raw record")
		} else {
			if raw.Extra == nil {
				raw.Extra = domain.JSONMap{}
			}
			raw.Extra["archive_url"] = url
		}
	}

	enriched, err := s.enrichment.Enrich(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("enrichment failed: %w", err)
	}

	if s.embedding != nil && len(enriched.Embedding) == 0 {
		vector, err := s.embedding.Embed(ctx, embeddingText(enriched))
		if err != nil {
			s.log(ctx).WithFields(logger.Fields{
				logger.FieldSourceID: raw.SourceID,
			}).WithError(err).Warn("Failed to embed record")
		} else {
			enriched.Embedding = vector
		}
	}

	return s.resolver.Resolve(ctx, enriched)
}

// embeddingText builds the passage text embedded for a record.
func embeddingText(enriched *domain.EnrichedMeal) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{enriched.CanonicalName, enriched.Raw.Description, enriched.IngredientsNorm} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n")
}

// finishJob persists the terminal job state. Error lines are capped so a
// pathological run cannot grow the row without bound.
func (s *IngestService) finishJob(ctx context.Context, job *domain.IngestJob, stats *IngestStats, errorLines []string, abortErr error) {
	job.TotalItems = stats.TotalItems
	job.ProcessedItems = stats.ProcessedItems
	job.NewCanonical = stats.NewCanonical
	job.Attached = stats.Attached
	job.NeedsReview = stats.NeedsReview
	job.Existing = stats.Existing
	job.FailedItems = stats.FailedItems
	job.ErrorLog = strings.Join(errorLines, "\n")
	job.CompletedAt = &stats.EndTime
	job.UpdatedAt = stats.EndTime

	switch {
	case stats.Aborted:
		job.Status = domain.JobStatusAborted
	case abortErr != nil:
		job.Status = domain.JobStatusFailed
		if job.ErrorLog == "" {
			job.ErrorLog = abortErr.Error()
		}
	default:
		job.Status = domain.JobStatusCompleted
	}

	if s.jobs != nil {
		if err := s.jobs.Update(ctx, job); err != nil {
			s.log(ctx).WithError(err).Warn("Failed to update ingest job record")
		}
	}
}

const maxErrorLines = 50

func appendErrorLine(lines []string, sourceID string, err error) []string {
	if len(lines) >= maxErrorLines {
		return lines
	}
	return append(lines, fmt.Sprintf("%s: %v", sourceID, err))
}
