package brain

import (
	"context"

	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/domain"
	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/logger"
	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/normalize"
)

// RetrievalPath records which lookup strategy produced the candidate set.
// The fallback is an ordinary branch of the retriever, not an error.
type RetrievalPath string

const (
	PathPrimary  RetrievalPath = "primary"
	PathFallback RetrievalPath = "fallback"
	PathNone     RetrievalPath = "none"
)

// Retrieval is the retriever's result: a bounded candidate set plus the path
// that produced it.
type Retrieval struct {
	Candidates []Candidate
	Path       RetrievalPath
}

// Retriever finds a bounded set of existing canonical meals that might match
// an incoming record. It never fails past itself: on total failure it returns
// an empty set, which drives the decision engine down the new-canonical path.
type Retriever struct {
	store   Store
	vectors VectorIndex // optional
	pool    int
}

// NewRetriever creates a Retriever. vectors may be nil.
func NewRetriever(store Store, vectors VectorIndex, pool int) *Retriever {
	if pool <= 0 {
		pool = DefaultConfig().CandidatePool
	}
	return &Retriever{store: store, vectors: vectors, pool: pool}
}

// Retrieve looks up candidate canonical meals for the enriched record.
// Primary path: indexed search filtered by predicted diet/course/region,
// supplemented by a vector lookup when an embedding is present. Fallback
// path: substring scan on the first token of the normalized name.
func (r *Retriever) Retrieve(ctx context.Context, enriched *domain.EnrichedMeal) Retrieval {
	log := logger.FromContext(ctx)
	query := normalize.Title(coalesce(enriched.CanonicalName, enriched.Raw.Name))

	filters := CandidateFilters{
		Diet:   normalize.Value(coalesce(enriched.PredictedDiet, enriched.Raw.Diet)),
		Course: normalize.Value(coalesce(enriched.PredictedCourse, enriched.Raw.Course)),
	}
	if len(enriched.RegionTags) > 0 {
		filters.Region = normalize.Value(enriched.RegionTags[0])
	}

	candidates, err := r.store.SearchCandidates(ctx, query, filters, r.pool)
	if err == nil {
		if r.vectors != nil && len(enriched.Embedding) > 0 {
			candidates = r.supplementByVector(ctx, enriched.Embedding, candidates)
		}
		return Retrieval{Candidates: candidates, Path: PathPrimary}
	}
	log.WithError(err).Debug("Primary candidate search unavailable, falling back to prefix scan")

	tokens := normalize.Tokens(query)
	if len(tokens) == 0 {
		return Retrieval{Path: PathNone}
	}

	scanned, err := r.store.ScanByNamePrefix(ctx, tokens[0], r.pool)
	if err != nil {
		log.WithError(err).Warn("Fallback candidate scan failed, returning no candidates")
		return Retrieval{Path: PathNone}
	}
	return Retrieval{Candidates: scanned, Path: PathFallback}
}

// supplementByVector merges embedding-similarity hits into the primary
// candidate set, keeping the primary ordering and skipping duplicates.
// Vector failures degrade to the text-only candidate set.
func (r *Retriever) supplementByVector(ctx context.Context, vector []float32, primary []Candidate) []Candidate {
	hits, err := r.vectors.SearchByEmbedding(ctx, vector, r.pool)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Debug("Vector candidate lookup failed, keeping text candidates only")
		return primary
	}

	seen := make(map[string]struct{}, len(primary))
	for _, c := range primary {
		seen[c.ID] = struct{}{}
	}
	merged := primary
	for _, h := range hits {
		if _, dup := seen[h.ID]; dup {
			continue
		}
		if len(merged) >= r.pool {
			break
		}
		merged = append(merged, h)
		seen[h.ID] = struct{}{}
	}
	return merged
}
