// Package brain is the canonicalization + de-duplication layer. Given an
// enriched meal record it decides whether the record becomes a new canonical
// meal or a variant of an existing one, then persists the outcome. It answers
// two questions: "which canonical dish is this?" (identity) and "store the
// source-specific variant" (provenance, dedupe, audit).
package brain

import (
	"context"

	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/domain"
)

// VariantRef identifies an already-resolved variant and its canonical meal.
type VariantRef struct {
	VariantID string
	MealID    string
}

// Candidate is an existing canonical meal retrieved as a possible match for
// an incoming record, prior to scoring. Relevance is the store index's opaque
// rank value; HasRelevance is false on the fallback scan path.
type Candidate struct {
	ID              string
	Title           string
	TitleNormalized string
	Relevance       float64
	HasRelevance    bool
}

// CandidateFilters narrows the primary candidate search by predicted
// attributes. Empty fields are unset.
type CandidateFilters struct {
	Diet   string
	Course string
	Region string
}

// Store is the persistence contract the brain requires. Read-path failures
// are degraded by the brain (fallback or empty result); write-path failures
// get one reduced-payload retry and are then surfaced for the record.
type Store interface {
	// FindVariantBySource returns the variant for an exact (source_type,
	// source_id) pair, or nil when none exists.
	FindVariantBySource(ctx context.Context, sourceType, sourceID string) (*VariantRef, error)

	// SearchCandidates is the primary retrieval path: indexed text/rank
	// search over canonical meals.
	SearchCandidates(ctx context.Context, query string, filters CandidateFilters, limit int) ([]Candidate, error)

	// ScanByNamePrefix is the fallback retrieval path: a naive substring
	// scan over canonical meal titles, no relevance rank.
	ScanByNamePrefix(ctx context.Context, token string, limit int) ([]Candidate, error)

	// InsertCanonical creates a new canonical meal row and returns its id.
	InsertCanonical(ctx context.Context, meal *domain.Meal) (string, error)

	// UpsertVariant creates or refreshes the variant row keyed by
	// (source_type, source_id) and returns its id.
	UpsertVariant(ctx context.Context, variant *domain.MealVariant) (string, error)

	// UpsertSynonyms stores alternate names keyed (meal_id, synonym_normalized).
	UpsertSynonyms(ctx context.Context, rows []domain.MealSynonym) error

	// EnsureTagType returns the id of the named tag type, creating it if needed.
	EnsureTagType(ctx context.Context, name, description string) (string, error)

	// EnsureTag returns the id of the (tag_type, value) tag, creating it if needed.
	EnsureTag(ctx context.Context, tagTypeID string, cand domain.TagCandidate) (string, error)

	// UpsertMealTags attaches merged tag candidates to a canonical meal.
	UpsertMealTags(ctx context.Context, rows []domain.MealTag) error
}

// VectorIndex supplements the primary retrieval path with embedding
// similarity when the incoming record carries a vector. Optional; a nil index
// disables the vector path.
type VectorIndex interface {
	SearchByEmbedding(ctx context.Context, vector []float32, limit int) ([]Candidate, error)
	UpsertEmbedding(ctx context.Context, mealID string, vector []float32, payload map[string]string) error
}
