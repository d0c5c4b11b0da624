package brain

import (
	"context"
	"errors"
	"fmt"

	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/domain"
	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/logger"
)

// Input validation errors. The record is skipped with no partial writes.
var (
	ErrMissingName   = errors.New("enriched meal has no name")
	ErrMissingSource = errors.New("enriched meal has no source_type/source_id")
)

// Resolver decides, for every incoming enriched record, whether it is a new
// dish or a variant of one already known, and persists the outcome. Safe to
// re-run over the same input stream: the (source_type, source_id) key makes
// the second pass a no-op with respect to canonical/variant counts.
type Resolver struct {
	store     Store
	retriever *Retriever
	scorer    *Scorer
	cfg       Config
	writer    *writer
}

// NewResolver creates a Resolver. vectors may be nil to disable the embedding
// candidate path; cache must be shared across records of one batch run.
func NewResolver(store Store, vectors VectorIndex, cache *TagCache, cfg Config) *Resolver {
	if cache == nil {
		cache = NewTagCache()
	}
	return &Resolver{
		store:     store,
		retriever: NewRetriever(store, vectors, cfg.CandidatePool),
		scorer:    NewScorer(cfg),
		cfg:       cfg,
		writer:    &writer{store: store, vectors: vectors, cache: cache},
	}
}

// Resolve runs the full pipeline for one record: idempotency check, candidate
// retrieval, scoring, decision, canonical/variant writes, tag attachment.
// The returned triple is the sole hand-off to downstream steps.
func (r *Resolver) Resolve(ctx context.Context, enriched *domain.EnrichedMeal) (*domain.Resolution, error) {
	if enriched == nil || coalesce(enriched.CanonicalName, enriched.Raw.Name) == "" {
		return nil, ErrMissingName
	}
	if enriched.Raw.SourceType == "" || enriched.Raw.SourceID == "" {
		return nil, ErrMissingSource
	}

	ctx = logger.WithFields(ctx, logger.Fields{
		logger.FieldSource:   enriched.Raw.SourceType,
		logger.FieldSourceID: enriched.Raw.SourceID,
	})
	log := logger.FromContext(ctx)

	// 0) Idempotency: if this source record was already resolved, return the
	// prior ids without scoring or writing.
	if ref := r.existingVariant(ctx, enriched); ref != nil {
		log.WithFields(logger.Fields{
			logger.FieldMealID:     ref.MealID,
			logger.FieldVariantID:  ref.VariantID,
			logger.FieldResolution: domain.StatusExistingVariant,
		}).Info("Variant already exists, returning existing ids")
		return &domain.Resolution{
			MealID:    ref.MealID,
			VariantID: ref.VariantID,
			Status:    domain.StatusExistingVariant,
		}, nil
	}

	// 1) Candidates, 2) best match, 3) decision.
	retrieval := r.retriever.Retrieve(ctx, enriched)
	best := r.scorer.PickBest(enriched, retrieval.Candidates)
	d := decide(r.cfg, best)

	mealID := d.attachTo
	if d.status == domain.StatusNewCanonical {
		var err error
		mealID, err = r.writer.insertNewCanonical(ctx, enriched)
		if err != nil {
			return nil, err
		}
	}

	// 4) Variant row, keyed to stay idempotent under re-execution.
	merged := MergeTagCandidates(enriched.TagCandidates)
	variantID, err := r.writer.upsertVariant(ctx, mealID, enriched, merged, d.needsReview)
	if err != nil {
		return nil, err
	}

	// 5) Synonyms (optional table) and 6) tags.
	r.writer.attachSynonyms(ctx, mealID, enriched)
	if err := r.writer.attachTags(ctx, mealID, merged); err != nil {
		return nil, err
	}

	log.WithFields(logger.Fields{
		logger.FieldMealID:     mealID,
		logger.FieldVariantID:  variantID,
		logger.FieldResolution: d.status,
		"best_score":           fmt.Sprintf("%.3f", d.bestScore),
		"retrieval_path":       retrieval.Path,
	}).Info("Resolution complete")

	return &domain.Resolution{
		MealID:    mealID,
		VariantID: variantID,
		Status:    d.status,
		BestScore: d.bestScore,
	}, nil
}

// existingVariant looks up the idempotency key. A lookup failure degrades to
// "not found": the later upsert is keyed by the same unique pair, so at worst
// this costs a redundant scoring pass, never a duplicate row.
func (r *Resolver) existingVariant(ctx context.Context, enriched *domain.EnrichedMeal) *VariantRef {
	ref, err := r.store.FindVariantBySource(ctx, enriched.Raw.SourceType, enriched.Raw.SourceID)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Warn("Idempotency lookup failed, continuing without shortcut")
		return nil
	}
	return ref
}
