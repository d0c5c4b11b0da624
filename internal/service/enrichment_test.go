package service

import (
	"context"
	"testing"

	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/domain"
	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/logger"
)

func testEnrichment() *EnrichmentService {
	return NewEnrichmentService(&EnrichmentServiceConfig{}, logger.NewDefault())
}

func floatPtr(v float64) *float64 { return &v }

func TestEnrichLocalCanonicalName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "chole bhature", "Chole Bhature"},
		{"junk words stripped", "Easy Paneer Tikka Recipe", "Paneer Tikka"},
		{"punctuation", "Aloo-Gobi (dry)", "Aloo Gobi Dry"},
		{"devanagari kept intact", "पनीर टिक्का", "पनीर टिक्का"},
		{"mixed script", "मसाला dosa", "मसाला Dosa"},
	}

	svc := testEnrichment()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enriched, err := svc.Enrich(context.Background(), &domain.RawMeal{
				SourceType: "test", SourceID: "1", Name: tt.in,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if enriched.CanonicalName != tt.want {
				t.Errorf("CanonicalName = %q, want %q", enriched.CanonicalName, tt.want)
			}
		})
	}
}

func TestEnrichLocalDatasetTags(t *testing.T) {
	svc := testEnrichment()
	raw := &domain.RawMeal{
		SourceType:   "kaggle:indian_food",
		SourceID:     "42",
		Name:         "Masala Dosa",
		Diet:         "Vegetarian",
		Cuisine:      "Indian",
		PrepTimeMins: floatPtr(10),
		CookTimeMins: floatPtr(15),
		Extra:        domain.JSONMap{"region": "South India", "flavor": "spicy"},
	}

	enriched, err := svc.Enrich(context.Background(), raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	byKey := map[string]domain.TagCandidate{}
	for _, tag := range enriched.TagCandidates {
		byKey[tag.TagType+"/"+tag.Value] = tag
	}

	region, ok := byKey["cuisine_region/south_india"]
	if !ok {
		t.Fatalf("missing cuisine_region tag, got %v", keys(byKey))
	}
	if !region.IsPrimary || region.Confidence != 1.0 || region.LabelEn != "South India" {
		t.Errorf("region tag wrong: %+v", region)
	}

	if _, ok := byKey["diet/vegetarian"]; !ok {
		t.Errorf("missing diet tag, got %v", keys(byKey))
	}
	if _, ok := byKey["cuisine_national/indian"]; !ok {
		t.Errorf("missing cuisine tag, got %v", keys(byKey))
	}
	if _, ok := byKey["taste_profile/spicy"]; !ok {
		t.Errorf("missing taste tag, got %v", keys(byKey))
	}

	// 10 + 15 minutes lands in the under-30 bucket.
	if _, ok := byKey["time_bucket/under_30_min"]; !ok {
		t.Errorf("missing time bucket tag, got %v", keys(byKey))
	}

	// "dosa" in the title implies breakfast when no course is given.
	mealType, ok := byKey["meal_type/breakfast"]
	if !ok {
		t.Fatalf("missing meal_type tag, got %v", keys(byKey))
	}
	if !mealType.IsPrimary {
		t.Error("meal_type from dataset should be primary")
	}
}

func TestEnrichLocalRuleTags(t *testing.T) {
	svc := testEnrichment()
	raw := &domain.RawMeal{
		SourceType:       "user_form",
		SourceID:         "7",
		Name:             "Paneer Tikka",
		IngredientsText:  "paneer, red chilli powder, curd",
		InstructionsText: "marinate and grill in tandoor until charred",
	}

	enriched, err := svc.Enrich(context.Background(), raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	byKey := map[string]domain.TagCandidate{}
	for _, tag := range enriched.TagCandidates {
		byKey[tag.TagType+"/"+tag.Value] = tag
	}

	for _, want := range []string{
		"diet/vegetarian",     // "paneer " keyword
		"taste_profile/spicy", // "red chilli"
		"technique/grilled",   // "tandoor"
	} {
		if _, ok := byKey[want]; !ok {
			t.Errorf("missing rule tag %s, got %v", want, keys(byKey))
		}
	}

	for _, tag := range enriched.TagCandidates {
		if tag.Source != "dataset" && tag.Source != "rules" {
			t.Errorf("unexpected tag source %q in %+v", tag.Source, tag)
		}
	}
}

func TestTimeBucketBoundaries(t *testing.T) {
	tests := []struct {
		total float64
		want  string
	}{
		{15, "under_15_min"},
		{16, "under_30_min"},
		{30, "under_30_min"},
		{60, "under_60_min"},
		{61, "over_60_min"},
	}
	for _, tt := range tests {
		tag := timeBucketTag(&domain.RawMeal{TotalTimeMins: floatPtr(tt.total)})
		if tag == nil || tag.Value != tt.want {
			t.Errorf("timeBucketTag(%v) = %+v, want value %q", tt.total, tag, tt.want)
		}
	}
	if tag := timeBucketTag(&domain.RawMeal{}); tag != nil {
		t.Errorf("no time info should give no tag, got %+v", tag)
	}
}

func keys(m map[string]domain.TagCandidate) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
