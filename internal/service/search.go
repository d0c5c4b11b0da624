package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/brain"
	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/domain"
	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/logger"
	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/normalize"
	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/repository"
)

// SearchConfig holds configuration for the search service.
type SearchConfig struct {
	DefaultLimit int
	MaxLimit     int
}

// SearchService answers read-side meal queries: text search over canonical
// meals with an optional vector leg when embeddings are configured.
type SearchService struct {
	store     *repository.Store
	vectors   brain.VectorIndex // optional
	embedding *EmbeddingService // optional
	logger    *logger.Logger

	defaultLimit int
	maxLimit     int
}

// NewSearchService creates a new search service.
// Parameters:
//   - store: composed repository store.
//   - vectors: optional vector index for embedding search.
//   - embedding: optional embedding provider for query vectors.
//   - log: logger instance.
//   - cfg: search configuration settings.
// Returns:
//   - *SearchService: initialized search service.
func NewSearchService(
	store *repository.Store,
	vectors brain.VectorIndex,
	embedding *EmbeddingService,
	log *logger.Logger,
	cfg *SearchConfig,
) *SearchService {
	defaultLimit, maxLimit := 20, 100
	if cfg != nil {
		if cfg.DefaultLimit > 0 {
			defaultLimit = cfg.DefaultLimit
		}
		if cfg.MaxLimit > 0 {
			maxLimit = cfg.MaxLimit
		}
	}
	return &SearchService{
		store:        store,
		vectors:      vectors,
		embedding:    embedding,
		logger:       log,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// SearchResult is one meal hit with its retrieval score.
type SearchResult struct {
	Meal  domain.Meal `json:"meal"`
	Score float64     `json:"score"`
	Via   string      `json:"via"` // text | vector
}

// Search runs a text search over canonical meals. When a query embedding can
// be produced, vector hits supplement the text hits; a vector-side failure
// degrades to text-only results.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - query: user query text.
//   - filters: optional attribute filters.
//   - limit: maximum results; 0 uses the default.
// Returns:
//   - []SearchResult: ranked results, deduplicated across legs.
//   - error: non-nil if the text search fails.
func (s *SearchService) Search(ctx context.Context, query string, filters brain.CandidateFilters, limit int) ([]SearchResult, error) {
	normalized := normalize.Title(query)
	if normalized == "" {
		return nil, fmt.Errorf("empty query")
	}
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}

	candidates, err := s.store.SearchCandidates(ctx, normalized, filters, limit)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	via := make(map[string]string, len(candidates))
	scores := make(map[string]float64, len(candidates))
	order := make([]string, 0, len(candidates))
	for _, c := range candidates {
		via[c.ID] = "text"
		scores[c.ID] = c.Relevance
		order = append(order, c.ID)
	}

	if s.vectors != nil && s.embedding != nil {
		s.supplementByVector(ctx, normalized, limit, via, scores, &order)
	}

	if len(order) > limit {
		order = order[:limit]
	}

	meals, err := s.store.Meals.GetByIDs(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("failed to load meals: %w", err)
	}
	byID := make(map[string]domain.Meal, len(meals))
	for _, m := range meals {
		byID[m.ID] = m
	}

	results := make([]SearchResult, 0, len(order))
	for _, id := range order {
		meal, ok := byID[id]
		if !ok {
			continue
		}
		results = append(results, SearchResult{
			Meal:  meal,
			Score: scores[id],
			Via:   via[id],
		})
	}
	return results, nil
}

// supplementByVector appends vector hits not already present in the text leg.
func (s *SearchService) supplementByVector(ctx context.Context, query string, limit int, via map[string]string, scores map[string]float64, order *[]string) {
	vector, err := s.embedding.EmbedQuery(ctx, query)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Debug("Skipping vector search leg")
		return
	}
	hits, err := s.vectors.SearchByEmbedding(ctx, vector, limit)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Debug("Vector search failed")
		return
	}
	for _, hit := range hits {
		if _, seen := via[hit.ID]; seen {
			continue
		}
		via[hit.ID] = "vector"
		scores[hit.ID] = hit.Relevance
		*order = append(*order, hit.ID)
	}
}

// Suggest returns meals whose normalized title starts with the query prefix,
// for typeahead surfaces.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - prefix: user input prefix.
//   - limit: maximum results; 0 uses the default.
// Returns:
//   - []domain.Meal: matching meals.
//   - error: non-nil if the scan fails.
func (s *SearchService) Suggest(ctx context.Context, prefix string, limit int) ([]domain.Meal, error) {
	tokens := normalize.Tokens(prefix)
	if len(tokens) == 0 {
		return []domain.Meal{}, nil
	}
	if limit <= 0 {
		limit = s.defaultLimit
	}

	candidates, err := s.store.ScanByNamePrefix(ctx, tokens[0], limit*2)
	if err != nil {
		return nil, fmt.Errorf("suggest scan failed: %w", err)
	}

	full := strings.Join(tokens, " ")
	ids := make([]string, 0, limit)
	for _, c := range candidates {
		if strings.HasPrefix(c.TitleNormalized, full) {
			ids = append(ids, c.ID)
		}
		if len(ids) >= limit {
			break
		}
	}
	return s.store.Meals.GetByIDs(ctx, ids)
}
