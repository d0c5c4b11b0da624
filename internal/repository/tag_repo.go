package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/domain"
	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/normalize"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TagRepository handles tag taxonomy and meal tag link operations.
type TagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a new TagRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *TagRepository: repository instance bound to db.
func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{db: db}
}

// EnsureTagType returns the id of the tag type with the given name, creating
// it when missing. Names are matched on their normalized form.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - name: tag type name.
//   - description: description used only when the type is created.
// Returns:
//   - string: tag type id.
//   - error: non-nil if the lookup or insert fails.
func (r *TagRepository) EnsureTagType(ctx context.Context, name, description string) (string, error) {
	key := normalize.Value(name)
	var tagType domain.TagType
	err := r.db.WithContext(ctx).First(&tagType, "name = ?", key).Error
	if err == nil {
		return tagType.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	tagType = domain.TagType{
		ID:          uuid.New().String(),
		Name:        key,
		Description: description,
		CreatedAt:   time.Now(),
	}
	// A concurrent ingester may create the same type; fall back to the row
	// that won the race.
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&tagType).Error; err != nil {
		return "", err
	}
	var stored domain.TagType
	if err := r.db.WithContext(ctx).First(&stored, "name = ?", key).Error; err != nil {
		return "", err
	}
	return stored.ID, nil
}

// EnsureTag returns the id of the tag (tag_type_id, value), creating it when
// missing. Labels are written on create only; the first spelling wins.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - tagTypeID: owning tag type id.
//   - cand: tag candidate carrying value and display labels.
// Returns:
//   - string: tag id.
//   - error: non-nil if the lookup or insert fails.
func (r *TagRepository) EnsureTag(ctx context.Context, tagTypeID string, cand domain.TagCandidate) (string, error) {
	value := normalize.Value(cand.Value)
	var tag domain.Tag
	err := r.db.WithContext(ctx).First(&tag, "tag_type_id = ? AND value = ?", tagTypeID, value).Error
	if err == nil {
		return tag.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	tag = domain.Tag{
		ID:            uuid.New().String(),
		TagTypeID:     tagTypeID,
		Value:         value,
		LabelEn:       cand.LabelEn,
		LabelHi:       cand.LabelHi,
		LabelHinglish: cand.LabelHinglish,
		CreatedAt:     time.Now(),
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tag_type_id"}, {Name: "value"}},
		DoNothing: true,
	}).Create(&tag).Error; err != nil {
		return "", err
	}
	var stored domain.Tag
	if err := r.db.WithContext(ctx).First(&stored, "tag_type_id = ? AND value = ?", tagTypeID, value).Error; err != nil {
		return "", err
	}
	return stored.ID, nil
}

// UpsertMealTags writes meal tag links, overwriting confidence, primary flag
// and source on conflict. Replays therefore converge instead of accumulating.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - rows: meal tag links to write.
// Returns:
//   - error: non-nil if the upsert fails.
func (r *TagRepository) UpsertMealTags(ctx context.Context, rows []domain.MealTag) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "meal_id"}, {Name: "tag_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"confidence", "is_primary", "source", "updated_at"}),
	}).Create(&rows).Error
}

// UpsertSynonyms writes meal synonyms, ignoring rows that already exist for
// the same (meal_id, synonym_normalized).
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - rows: synonym rows to write.
// Returns:
//   - error: non-nil if the insert fails.
func (r *TagRepository) UpsertSynonyms(ctx context.Context, rows []domain.MealSynonym) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "meal_id"}, {Name: "synonym_normalized"}},
		DoNothing: true,
	}).Create(&rows).Error
}

// ListByMeal retrieves the tags attached to a canonical meal joined with
// their type names.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - mealID: canonical meal ID.
// Returns:
//   - []MealTagDetail: tag links with type and value detail.
//   - error: non-nil if the query fails.
func (r *TagRepository) ListByMeal(ctx context.Context, mealID string) ([]MealTagDetail, error) {
	var out []MealTagDetail
	err := r.db.WithContext(ctx).
		Table("meal_tags").
		Select(`meal_tags.meal_id, meal_tags.confidence, meal_tags.is_primary, meal_tags.source,
			tags.value, tags.label_en, tags.label_hi, tags.label_hinglish,
			tag_types.name AS tag_type`).
		Joins("JOIN tags ON tags.id = meal_tags.tag_id").
		Joins("JOIN tag_types ON tag_types.id = tags.tag_type_id").
		Where("meal_tags.meal_id = ?", mealID).
		Order("tag_types.name, tags.value").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MealTagDetail is a denormalized view of one meal tag link for API responses.
type MealTagDetail struct {
	MealID        string  `json:"meal_id"`
	TagType       string  `json:"tag_type"`
	Value         string  `json:"value"`
	LabelEn       string  `json:"label_en,omitempty"`
	LabelHi       string  `json:"label_hi,omitempty"`
	LabelHinglish string  `json:"label_hinglish,omitempty"`
	Confidence    float64 `json:"confidence"`
	IsPrimary     bool    `json:"is_primary"`
	Source        string  `json:"source,omitempty"`
}
