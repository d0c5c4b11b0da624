package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"

	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/domain"
	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/logger"
	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/normalize"
)

// EnrichmentService turns a raw meal record into an enriched record: cleaned
// names, normalized text and tag candidates. When a remote enrichment
// endpoint is configured it is tried first; the deterministic local enricher
// is both the fallback and the offline default, so ingestion never depends on
// an external service being up.
type EnrichmentService struct {
	client   *resty.Client
	endpoint string
	logger   *logger.Logger
}

// EnrichmentServiceConfig holds configuration for the enrichment service.
type EnrichmentServiceConfig struct {
	Endpoint string // empty = local enrichment only
	APIKey   string
	Timeout  time.Duration
}

// NewEnrichmentService creates a new enrichment service.
func NewEnrichmentService(cfg *EnrichmentServiceConfig, log *logger.Logger) *EnrichmentService {
	client := resty.New()
	client.SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	}
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	return &EnrichmentService{
		client:   client,
		endpoint: cfg.Endpoint,
		logger:   log,
	}
}

// Enrich produces the enriched record for one raw meal.
func (s *EnrichmentService) Enrich(ctx context.Context, raw *domain.RawMeal) (*domain.EnrichedMeal, error) {
	if raw == nil {
		return nil, fmt.Errorf("raw record is nil")
	}

	if s.endpoint != "" {
		enriched, err := s.enrichRemote(ctx, raw)
		if err == nil {
			return enriched, nil
		}
		logger.FromContext(ctx).WithError(err).Warn("Remote enrichment failed, using local enrichment")
	}

	return s.enrichLocal(raw), nil
}

// enrichRemote posts the raw record to the configured enrichment endpoint.
func (s *EnrichmentService) enrichRemote(ctx context.Context, raw *domain.RawMeal) (*domain.EnrichedMeal, error) {
	var enriched domain.EnrichedMeal
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(raw).
		SetResult(&enriched).
		Post(s.endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to call enrichment endpoint: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("enrichment endpoint error: status %d", resp.StatusCode())
	}

	// The remote service may echo a partial record; the raw payload always
	// travels with the enrichment.
	enriched.Raw = *raw
	if enriched.CanonicalName == "" {
		enriched.CanonicalName = cleanTitle(raw.Name)
	}
	return &enriched, nil
}

// enrichLocal is the deterministic enricher: title cleanup, text
// normalization, dataset-derived tags and keyword rule tags.
func (s *EnrichmentService) enrichLocal(raw *domain.RawMeal) *domain.EnrichedMeal {
	enriched := &domain.EnrichedMeal{
		Raw:              *raw,
		CanonicalName:    cleanTitle(raw.Name),
		IngredientsNorm:  normalizeText(raw.IngredientsText),
		InstructionsNorm: normalizeText(raw.InstructionsText),
		PredictedCourse:  normalize.Value(raw.Course),
		PredictedDiet:    normalize.Value(raw.Diet),
	}

	if region := extraString(raw, "region"); region != "" {
		enriched.RegionTags = []string{normalize.Value(region)}
	}

	tags := datasetTags(raw)
	tags = append(tags, ruleBasedTags(combinedText(raw))...)
	enriched.TagCandidates = tags

	return enriched
}

// cleanTitle produces the display form of a meal name: normalized tokens with
// leading capitals, junk words removed.
func cleanTitle(name string) string {
	tokens := normalize.Tokens(normalize.Title(name))
	if len(tokens) == 0 {
		return strings.TrimSpace(name)
	}
	for i, tok := range tokens {
		tokens[i] = capitalize(tok)
	}
	return strings.Join(tokens, " ")
}

// capitalize upper-cases the first rune of a token. Scripts without letter
// case (Devanagari meal names) pass through unchanged.
func capitalize(tok string) string {
	r, size := utf8.DecodeRuneInString(tok)
	if r == utf8.RuneError && size <= 1 {
		return tok
	}
	return string(unicode.ToUpper(r)) + tok[size:]
}

func normalizeText(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

func extraString(raw *domain.RawMeal, key string) string {
	if raw.Extra == nil {
		return ""
	}
	if v, ok := raw.Extra[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func combinedText(raw *domain.RawMeal) string {
	parts := []string{raw.Name, raw.Description, raw.IngredientsText, raw.InstructionsText}
	return strings.ToLower(strings.Join(parts, "\n"))
}

// datasetTags derives tag candidates from the structured columns a dataset
// already provides. These carry the highest confidence: the dataset author
// asserted them.
func datasetTags(raw *domain.RawMeal) []domain.TagCandidate {
	var tags []domain.TagCandidate

	if region := extraString(raw, "region"); region != "" {
		tags = append(tags, domain.TagCandidate{
			TagType:    "cuisine_region",
			Value:      normalize.Value(region),
			LabelEn:    titleCase(region),
			Confidence: 1.0,
			IsPrimary:  true,
			Source:     "dataset",
		})
	}

	if cuisine := strings.TrimSpace(raw.Cuisine); cuisine != "" {
		tags = append(tags, domain.TagCandidate{
			TagType:    "cuisine_national",
			Value:      normalize.Value(cuisine),
			LabelEn:    titleCase(cuisine),
			Confidence: 1.0,
			Source:     "dataset",
		})
	}

	if diet := strings.TrimSpace(raw.Diet); diet != "" {
		tags = append(tags, domain.TagCandidate{
			TagType:    "diet",
			Value:      normalize.Value(diet),
			LabelEn:    titleCase(diet),
			Confidence: 1.0,
			Source:     "dataset",
		})
	}

	if flavor := extraString(raw, "flavor"); flavor != "" {
		tags = append(tags, domain.TagCandidate{
			TagType:    "taste_profile",
			Value:      normalize.Value(flavor),
			LabelEn:    titleCase(flavor),
			Confidence: 0.8,
			Source:     "dataset",
		})
	}

	mealType := strings.TrimSpace(raw.Course)
	if mealType == "" {
		// Title heuristic for the common breakfast dishes.
		t := strings.ToLower(raw.Name)
		for _, kw := range []string{"breakfast", "idli", "dosa", "poha"} {
			if strings.Contains(t, kw) {
				mealType = "breakfast"
				break
			}
		}
	}
	if mealType != "" {
		tags = append(tags, domain.TagCandidate{
			TagType:    "meal_type",
			Value:      normalize.Value(mealType),
			LabelEn:    titleCase(mealType),
			Confidence: 0.9,
			IsPrimary:  true,
			Source:     "dataset",
		})
	}

	if tag := timeBucketTag(raw); tag != nil {
		tags = append(tags, *tag)
	}

	return tags
}

// timeBucketTag buckets total cook + prep time into coarse ranges.
func timeBucketTag(raw *domain.RawMeal) *domain.TagCandidate {
	total := 0.0
	known := false
	if raw.PrepTimeMins != nil {
		total += *raw.PrepTimeMins
		known = true
	}
	if raw.CookTimeMins != nil {
		total += *raw.CookTimeMins
		known = true
	}
	if !known && raw.TotalTimeMins != nil {
		total = *raw.TotalTimeMins
		known = true
	}
	if !known {
		return nil
	}

	value, label := "over_60_min", "Over 60 min"
	switch {
	case total <= 15:
		value, label = "under_15_min", "Under 15 min"
	case total <= 30:
		value, label = "under_30_min", "Under 30 min"
	case total <= 60:
		value, label = "under_60_min", "Under 60 min"
	}

	return &domain.TagCandidate{
		TagType:    "time_bucket",
		Value:      value,
		LabelEn:    label,
		Confidence: 1.0,
		Source:     "dataset",
	}
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(s)))
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}
