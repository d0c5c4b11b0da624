package repository

import (
	"context"
	"errors"

	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/brain"
	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VariantRepository handles meal variant data operations.
type VariantRepository struct {
	db *gorm.DB
}

// NewVariantRepository creates a new VariantRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *VariantRepository: repository instance bound to db.
func NewVariantRepository(db *gorm.DB) *VariantRepository {
	return &VariantRepository{db: db}
}

// FindBySource looks up the variant for a source record. A missing row is not
// an error: it returns (nil, nil) so the caller can distinguish "never seen"
// from a store failure.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - sourceType: source type identifier.
//   - sourceID: source-specific ID.
// Returns:
//   - *brain.VariantRef: variant and meal ids if the source row was ingested before.
//   - error: non-nil if the lookup fails.
func (r *VariantRepository) FindBySource(ctx context.Context, sourceType, sourceID string) (*brain.VariantRef, error) {
	var variant domain.MealVariant
	err := r.db.WithContext(ctx).
		Select("id", "meal_id").
		First(&variant, "source_type = ? AND source_id = ?", sourceType, sourceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &brain.VariantRef{VariantID: variant.ID, MealID: variant.MealID}, nil
}

// Upsert creates or refreshes a variant keyed by (source_type, source_id) and
// returns the durable row id. On conflict the existing row keeps its id and
// created_at; everything else is overwritten.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - variant: variant record to create or update.
// Returns:
//   - string: id of the stored row.
//   - error: non-nil if the upsert fails.
func (r *VariantRepository) Upsert(ctx context.Context, variant *domain.MealVariant) (string, error) {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "source_type"}, {Name: "source_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"meal_id", "title_original", "title_normalized",
			"ingredients_raw", "ingredients_norm",
			"instructions_raw", "instructions_norm",
			"cuisine", "course", "diet",
			"prep_time_mins", "cook_time_mins", "servings",
			"needs_review", "meta", "embedding", "updated_at",
		}),
	}).Create(variant).Error
	if err != nil {
		return "", err
	}

	// The conflict path keeps the pre-existing id; read it back.
	var stored domain.MealVariant
	if err := r.db.WithContext(ctx).
		Select("id").
		First(&stored, "source_type = ? AND source_id = ?", variant.SourceType, variant.SourceID).Error; err != nil {
		return "", err
	}
	return stored.ID, nil
}

// GetByID retrieves a variant by its ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: variant ID.
// Returns:
//   - *domain.MealVariant: variant record if found.
//   - error: non-nil if lookup fails.
func (r *VariantRepository) GetByID(ctx context.Context, id string) (*domain.MealVariant, error) {
	var variant domain.MealVariant
	if err := r.db.WithContext(ctx).First(&variant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &variant, nil
}

// ListByMeal retrieves all variants attached to a canonical meal.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - mealID: canonical meal ID.
// Returns:
//   - []domain.MealVariant: variants ordered by creation time.
//   - error: non-nil if the query fails.
func (r *VariantRepository) ListByMeal(ctx context.Context, mealID string) ([]domain.MealVariant, error) {
	var variants []domain.MealVariant
	if err := r.db.WithContext(ctx).
		Where("meal_id = ?", mealID).
		Order("created_at ASC").
		Find(&variants).Error; err != nil {
		return nil, err
	}
	return variants, nil
}

// ListNeedingReview retrieves variants flagged for human review, oldest first.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - limit: maximum number of records to return.
//   - offset: number of records to skip.
// Returns:
//   - []domain.MealVariant: flagged variants.
//   - error: non-nil if the query fails.
func (r *VariantRepository) ListNeedingReview(ctx context.Context, limit, offset int) ([]domain.MealVariant, error) {
	var variants []domain.MealVariant
	if err := r.db.WithContext(ctx).
		Where("needs_review = ?", true).
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&variants).Error; err != nil {
		return nil, err
	}
	return variants, nil
}

// Resolve clears the review flag on a variant and optionally reattaches it to
// a different canonical meal.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: variant ID.
//   - mealID: canonical meal to attach to; empty keeps the current one.
// Returns:
//   - error: non-nil if the update fails.
func (r *VariantRepository) Resolve(ctx context.Context, id, mealID string) error {
	updates := map[string]interface{}{"needs_review": false}
	if mealID != "" {
		updates["meal_id"] = mealID
	}
	result := r.db.WithContext(ctx).
		Model(&domain.MealVariant{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountByReview counts variants by review flag.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - needsReview: flag value to count.
// Returns:
//   - int64: number of matching records.
//   - error: non-nil if the query fails.
func (r *VariantRepository) CountByReview(ctx context.Context, needsReview bool) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&domain.MealVariant{}).
		Where("needs_review = ?", needsReview).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Count returns the total number of variants.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - int64: number of variant records.
//   - error: non-nil if the query fails.
func (r *VariantRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.MealVariant{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
