package repository

import (
	"context"

	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/brain"
	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/domain"
	"gorm.io/gorm"
)

// Store composes the individual repositories into the persistence surface the
// resolution brain works against.
type Store struct {
	Meals    *MealRepository
	Variants *VariantRepository
	Tags     *TagRepository
	Jobs     *JobRepository
}

// NewStore creates a Store over a single database handle.
// Parameters:
//   - db: GORM database handle shared by all repositories.
// Returns:
//   - *Store: composed store.
func NewStore(db *gorm.DB) *Store {
	return &Store{
		Meals:    NewMealRepository(db),
		Variants: NewVariantRepository(db),
		Tags:     NewTagRepository(db),
		Jobs:     NewJobRepository(db),
	}
}

// FindVariantBySource implements brain.Store.
func (s *Store) FindVariantBySource(ctx context.Context, sourceType, sourceID string) (*brain.VariantRef, error) {
	return s.Variants.FindBySource(ctx, sourceType, sourceID)
}

// SearchCandidates implements brain.Store.
func (s *Store) SearchCandidates(ctx context.Context, query string, filters brain.CandidateFilters, limit int) ([]brain.Candidate, error) {
	return s.Meals.SearchCandidates(ctx, query, filters, limit)
}

// ScanByNamePrefix implements brain.Store.
func (s *Store) ScanByNamePrefix(ctx context.Context, token string, limit int) ([]brain.Candidate, error) {
	return s.Meals.ScanByNamePrefix(ctx, token, limit)
}

// InsertCanonical implements brain.Store.
func (s *Store) InsertCanonical(ctx context.Context, meal *domain.Meal) (string, error) {
	if err := s.Meals.Create(ctx, meal); err != nil {
		return "", err
	}
	return meal.ID, nil
}

// UpsertVariant implements brain.Store.
func (s *Store) UpsertVariant(ctx context.Context, variant *domain.MealVariant) (string, error) {
	return s.Variants.Upsert(ctx, variant)
}

// UpsertSynonyms implements brain.Store.
func (s *Store) UpsertSynonyms(ctx context.Context, rows []domain.MealSynonym) error {
	return s.Tags.UpsertSynonyms(ctx, rows)
}

// EnsureTagType implements brain.Store.
func (s *Store) EnsureTagType(ctx context.Context, name, description string) (string, error) {
	return s.Tags.EnsureTagType(ctx, name, description)
}

// EnsureTag implements brain.Store.
func (s *Store) EnsureTag(ctx context.Context, tagTypeID string, cand domain.TagCandidate) (string, error) {
	return s.Tags.EnsureTag(ctx, tagTypeID, cand)
}

// UpsertMealTags implements brain.Store.
func (s *Store) UpsertMealTags(ctx context.Context, rows []domain.MealTag) error {
	return s.Tags.UpsertMealTags(ctx, rows)
}

var _ brain.Store = (*Store)(nil)
