package brain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/domain"
	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/logger"
	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/normalize"
)

// writer owns creation and mutation of meal and meal_variant rows. Both write
// operations tolerate the store rejecting optional fields (for example a
// not-yet-migrated embedding column) by retrying once with those fields
// stripped before surfacing a hard error.
type writer struct {
	store   Store
	vectors VectorIndex // optional
	cache   *TagCache
}

// insertNewCanonical builds a canonical meal row from the enriched record and
// returns the new id. The meta document records provenance so later tooling
// can trace why the entity exists.
func (w *writer) insertNewCanonical(ctx context.Context, enriched *domain.EnrichedMeal) (string, error) {
	title := coalesce(enriched.CanonicalName, enriched.Raw.Name)
	now := time.Now()
	meal := &domain.Meal{
		ID:              uuid.New().String(),
		Title:           title,
		TitleNormalized: normalize.Title(title),
		Description:     enriched.Raw.Description,
		Instructions:    coalesce(enriched.InstructionsNorm, enriched.Raw.InstructionsText),
		LanguageCode:    coalesce(enriched.Raw.LanguageCode, "en"),
		PrepTimeMins:    enriched.PrepTimeMins,
		CookTimeMins:    enriched.CookTimeMins,
		TotalTimeMins:   enriched.TotalTimeMins,
		Servings:        enriched.Servings,
		RegionTags:      domain.StringArray(enriched.RegionTags),
		Meta: domain.JSONMap{
			"canonical": true,
			"created_from": map[string]interface{}{
				"source_type": enriched.Raw.SourceType,
				"source_id":   enriched.Raw.SourceID,
			},
			"cuisine":       enriched.Raw.Cuisine,
			"course":        coalesce(enriched.PredictedCourse, enriched.Raw.Course),
			"diet":          coalesce(enriched.PredictedDiet, enriched.Raw.Diet),
			"spice_level":   enriched.SpiceLevel,
			"difficulty":    enriched.Difficulty,
			"kids_friendly": enriched.KidsFriendly,
			"occasion_tags": enriched.OccasionTags,
			"health_tags":   enriched.HealthTags,
			"utensil_tags":  enriched.UtensilTags,
			"extra":         enriched.Extra,
			"debug":         enriched.Debug,
		},
		Embedding:  enriched.Embedding,
		SearchText: buildSearchText(enriched),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	id, err := w.store.InsertCanonical(ctx, meal)
	if err != nil {
		// Optional fields may predate the store's schema; retry without them.
		logger.FromContext(ctx).WithError(err).Warn("Canonical insert rejected, retrying with reduced payload")
		reduced := *meal
		reduced.Embedding = nil
		reduced.SearchText = ""
		id, err = w.store.InsertCanonical(ctx, &reduced)
		if err != nil {
			return "", fmt.Errorf("failed to insert canonical meal: %w", err)
		}
	}

	if w.vectors != nil && len(enriched.Embedding) > 0 {
		payload := map[string]string{
			"title":       title,
			"source_type": enriched.Raw.SourceType,
		}
		if err := w.vectors.UpsertEmbedding(ctx, id, enriched.Embedding, payload); err != nil {
			logger.FromContext(ctx).WithError(err).Warn("Failed to index canonical meal embedding")
		}
	}
	return id, nil
}

// upsertVariant builds or refreshes the variant row for this source record,
// keyed (source_type, source_id), and returns its id.
func (w *writer) upsertVariant(ctx context.Context, mealID string, enriched *domain.EnrichedMeal, mergedTags []domain.TagCandidate, needsReview bool) (string, error) {
	now := time.Now()
	variant := &domain.MealVariant{
		ID:               uuid.New().String(),
		MealID:           mealID,
		SourceType:       enriched.Raw.SourceType,
		SourceID:         enriched.Raw.SourceID,
		TitleOriginal:    enriched.Raw.Name,
		TitleNormalized:  normalize.Title(enriched.Raw.Name),
		IngredientsRaw:   enriched.Raw.IngredientsText,
		IngredientsNorm:  enriched.IngredientsNorm,
		InstructionsRaw:  enriched.Raw.InstructionsText,
		InstructionsNorm: enriched.InstructionsNorm,
		Cuisine:          enriched.Raw.Cuisine,
		Course:           coalesce(enriched.PredictedCourse, enriched.Raw.Course),
		Diet:             coalesce(enriched.PredictedDiet, enriched.Raw.Diet),
		PrepTimeMins:     enriched.PrepTimeMins,
		CookTimeMins:     enriched.CookTimeMins,
		Servings:         enriched.Servings,
		NeedsReview:      needsReview,
		Meta: domain.JSONMap{
			"tag_candidates": mergedTags,
			"region_tags":    enriched.RegionTags,
			"spice_level":    enriched.SpiceLevel,
			"difficulty":     enriched.Difficulty,
			"kids_friendly":  enriched.KidsFriendly,
			"occasion_tags":  enriched.OccasionTags,
			"health_tags":    enriched.HealthTags,
			"utensil_tags":   enriched.UtensilTags,
			"extra":          mergedExtra(enriched),
		},
		Embedding: enriched.Embedding,
		CreatedAt: now,
		UpdatedAt: now,
	}

	id, err := w.store.UpsertVariant(ctx, variant)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Warn("Variant upsert rejected, retrying with reduced payload")
		reduced := *variant
		reduced.Embedding = nil
		id, err = w.store.UpsertVariant(ctx, &reduced)
		if err != nil {
			return "", fmt.Errorf("failed to upsert meal variant: %w", err)
		}
	}
	return id, nil
}

// attachSynonyms upserts alternate names for the canonical meal. The synonym
// table is optional; a store failure here is logged and swallowed.
func (w *writer) attachSynonyms(ctx context.Context, mealID string, enriched *domain.EnrichedMeal) {
	rows := make([]domain.MealSynonym, 0, len(enriched.AltNames))
	seen := make(map[string]struct{}, len(enriched.AltNames))
	for _, name := range enriched.AltNames {
		norm := normalize.Title(name)
		if norm == "" {
			continue
		}
		if _, dup := seen[norm]; dup {
			continue
		}
		seen[norm] = struct{}{}
		rows = append(rows, domain.MealSynonym{
			ID:                uuid.New().String(),
			MealID:            mealID,
			Synonym:           name,
			SynonymNormalized: norm,
			LanguageCode:      "en",
			Source:            "enrichment",
			CreatedAt:         time.Now(),
		})
	}
	if len(rows) == 0 {
		return
	}
	if err := w.store.UpsertSynonyms(ctx, rows); err != nil {
		logger.FromContext(ctx).WithError(err).Debug("Skipping synonym upsert")
	}
}

// attachTags ensures tag types and tags exist for the merged candidates and
// links them to the canonical meal.
func (w *writer) attachTags(ctx context.Context, mealID string, merged []domain.TagCandidate) error {
	rows := make([]domain.MealTag, 0, len(merged))
	now := time.Now()
	for _, cand := range merged {
		typeID, err := w.cache.TagTypeID(ctx, w.store, cand.TagType, "Auto-created tag_type: "+cand.TagType)
		if err != nil {
			return fmt.Errorf("failed to ensure tag type %q: %w", cand.TagType, err)
		}
		tagID, err := w.cache.TagID(ctx, w.store, typeID, cand)
		if err != nil {
			return fmt.Errorf("failed to ensure tag %q/%q: %w", cand.TagType, cand.Value, err)
		}
		rows = append(rows, domain.MealTag{
			MealID:     mealID,
			TagID:      tagID,
			Confidence: cand.Confidence,
			IsPrimary:  cand.IsPrimary,
			Source:     cand.Source,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}
	if len(rows) == 0 {
		return nil
	}
	if err := w.store.UpsertMealTags(ctx, rows); err != nil {
		return fmt.Errorf("failed to attach meal tags: %w", err)
	}
	return nil
}

// mergedExtra folds the raw record's extra attributes (archive_url, dataset
// leftovers like region or flavor) into the enrichment extras. The variant
// meta must keep raw-level provenance; enrichment wins on key conflicts.
func mergedExtra(enriched *domain.EnrichedMeal) domain.JSONMap {
	if len(enriched.Raw.Extra) == 0 {
		return enriched.Extra
	}
	out := make(domain.JSONMap, len(enriched.Raw.Extra)+len(enriched.Extra))
	for k, v := range enriched.Raw.Extra {
		out[k] = v
	}
	for k, v := range enriched.Extra {
		out[k] = v
	}
	return out
}

// buildSearchText denormalizes the fields worth indexing into one document.
func buildSearchText(enriched *domain.EnrichedMeal) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{
		coalesce(enriched.CanonicalName, enriched.Raw.Name),
		enriched.Raw.Description,
		enriched.IngredientsNorm,
	} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	parts = append(parts, enriched.AltNames...)
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "\n"
		}
		out += p
	}
	return out
}
