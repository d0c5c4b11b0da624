package brain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/domain"
)

// fakeStore is an in-memory Store for resolver tests. Error fields force
// specific failure modes on individual paths.
type fakeStore struct {
	meals    map[string]*domain.Meal
	variants map[string]*domain.MealVariant // keyed source_type|source_id
	tagTypes map[string]string
	tags     map[string]string
	mealTags []domain.MealTag
	synonyms []domain.MealSynonym

	searchResults []Candidate
	searchErr     error
	scanErr       error
	findErr       error

	rejectCanonicalWithOptional bool
	rejectVariantWithOptional   bool

	insertCanonicalCalls int
	upsertVariantCalls   int
	scanCalls            int
	nextID               int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		meals:    make(map[string]*domain.Meal),
		variants: make(map[string]*domain.MealVariant),
		tagTypes: make(map[string]string),
		tags:     make(map[string]string),
	}
}

func (f *fakeStore) genID(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeStore) FindVariantBySource(ctx context.Context, sourceType, sourceID string) (*VariantRef, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	v, ok := f.variants[sourceType+"|"+sourceID]
	if !ok {
		return nil, nil
	}
	return &VariantRef{VariantID: v.ID, MealID: v.MealID}, nil
}

func (f *fakeStore) SearchCandidates(ctx context.Context, query string, filters CandidateFilters, limit int) ([]Candidate, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.searchResults, nil
}

func (f *fakeStore) ScanByNamePrefix(ctx context.Context, token string, limit int) ([]Candidate, error) {
	f.scanCalls++
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	var out []Candidate
	for _, m := range f.meals {
		if strings.Contains(m.TitleNormalized, token) {
			out = append(out, Candidate{ID: m.ID, Title: m.Title, TitleNormalized: m.TitleNormalized})
		}
	}
	return out, nil
}

func (f *fakeStore) InsertCanonical(ctx context.Context, meal *domain.Meal) (string, error) {
	f.insertCanonicalCalls++
	if f.rejectCanonicalWithOptional && (meal.Embedding != nil || meal.SearchText != "") {
		return "", errors.New("column embedding does not exist")
	}
	stored := *meal
	f.meals[meal.ID] = &stored
	return meal.ID, nil
}

func (f *fakeStore) UpsertVariant(ctx context.Context, variant *domain.MealVariant) (string, error) {
	f.upsertVariantCalls++
	if f.rejectVariantWithOptional && variant.Embedding != nil {
		return "", errors.New("column embedding does not exist")
	}
	key := variant.SourceType + "|" + variant.SourceID
	if existing, ok := f.variants[key]; ok {
		updated := *variant
		updated.ID = existing.ID
		f.variants[key] = &updated
		return existing.ID, nil
	}
	stored := *variant
	f.variants[key] = &stored
	return variant.ID, nil
}

func (f *fakeStore) UpsertSynonyms(ctx context.Context, rows []domain.MealSynonym) error {
	f.synonyms = append(f.synonyms, rows...)
	return nil
}

func (f *fakeStore) EnsureTagType(ctx context.Context, name, description string) (string, error) {
	if id, ok := f.tagTypes[name]; ok {
		return id, nil
	}
	id := f.genID("tt")
	f.tagTypes[name] = id
	return id, nil
}

func (f *fakeStore) EnsureTag(ctx context.Context, tagTypeID string, cand domain.TagCandidate) (string, error) {
	key := tagTypeID + "|" + cand.Value
	if id, ok := f.tags[key]; ok {
		return id, nil
	}
	id := f.genID("tag")
	f.tags[key] = id
	return id, nil
}

func (f *fakeStore) UpsertMealTags(ctx context.Context, rows []domain.MealTag) error {
	f.mealTags = append(f.mealTags, rows...)
	return nil
}

func newTestResolver(store Store) *Resolver {
	return NewResolver(store, nil, NewTagCache(), DefaultConfig())
}

func enrichedRecord(sourceType, sourceID, name string) *domain.EnrichedMeal {
	return &domain.EnrichedMeal{
		Raw: domain.RawMeal{
			SourceType:       sourceType,
			SourceID:         sourceID,
			Name:             name,
			IngredientsText:  "chickpeas, onion, tomato",
			InstructionsText: "cook everything",
		},
		CanonicalName: name,
	}
}

func TestResolveStoresRegionTagsOnCanonical(t *testing.T) {
	store := newFakeStore()
	r := newTestResolver(store)

	enriched := enrichedRecord("datasetA", "91", "Masala Dosa")
	enriched.RegionTags = []string{"south_india", "karnataka"}

	res, err := r.Resolve(context.Background(), enriched)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	meal := store.meals[res.MealID]
	if meal == nil {
		t.Fatal("canonical meal not stored")
	}
	if len(meal.RegionTags) != 2 || meal.RegionTags[0] != "south_india" || meal.RegionTags[1] != "karnataka" {
		t.Errorf("region tags = %v, want [south_india karnataka]", meal.RegionTags)
	}
}

func TestResolveEmptyPoolCreatesNewCanonical(t *testing.T) {
	store := newFakeStore()
	r := newTestResolver(store)

	res, err := r.Resolve(context.Background(), enrichedRecord("datasetA", "17", "Chole"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != domain.StatusNewCanonical {
		t.Errorf("status = %q, want new_canonical", res.Status)
	}
	if res.MealID == "" || res.VariantID == "" {
		t.Errorf("expected non-empty ids, got %+v", res)
	}
	if len(store.meals) != 1 {
		t.Errorf("meal count = %d, want 1", len(store.meals))
	}
	v := store.variants["datasetA|17"]
	if v == nil {
		t.Fatal("variant not stored under its source key")
	}
	if !v.NeedsReview {
		t.Error("new canonical meals must be provisional (needs_review=true)")
	}
}

func TestResolveIdempotence(t *testing.T) {
	store := newFakeStore()
	r := newTestResolver(store)
	ctx := context.Background()

	first, err := r.Resolve(ctx, enrichedRecord("datasetA", "17", "Chole"))
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	second, err := r.Resolve(ctx, enrichedRecord("datasetA", "17", "Chole"))
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}

	if second.Status != domain.StatusExistingVariant {
		t.Errorf("second status = %q, want existing_variant", second.Status)
	}
	if second.MealID != first.MealID || second.VariantID != first.VariantID {
		t.Errorf("ids changed between runs: first=%+v second=%+v", first, second)
	}
	if len(store.meals) != 1 {
		t.Errorf("meal count = %d after replay, want 1", len(store.meals))
	}
	if len(store.variants) != 1 {
		t.Errorf("variant count = %d after replay, want 1", len(store.variants))
	}
}

func TestResolveAttachesConfidentMatch(t *testing.T) {
	store := newFakeStore()
	r := newTestResolver(store)
	ctx := context.Background()

	first, err := r.Resolve(ctx, enrichedRecord("datasetA", "17", "Chole"))
	if err != nil {
		t.Fatalf("seed resolve: %v", err)
	}

	// A different source for the same dish: the index ranks the existing
	// canonical meal first with clear relevance spread over a decoy.
	store.searchResults = []Candidate{
		{ID: first.MealID, Title: "Chole", TitleNormalized: "chole", Relevance: 8.5, HasRelevance: true},
		{ID: "decoy", Title: "Banana Smoothie", TitleNormalized: "banana smoothie", Relevance: 0.3, HasRelevance: true},
	}

	res, err := r.Resolve(ctx, enrichedRecord("datasetB", "901", "Chole!"))
	if err != nil {
		t.Fatalf("attach resolve: %v", err)
	}
	if res.Status != domain.StatusAttachedAsVariant {
		t.Errorf("status = %q, want attached_as_variant (score %f)", res.Status, res.BestScore)
	}
	if res.MealID != first.MealID {
		t.Errorf("attached to %q, want the canonical meal %q", res.MealID, first.MealID)
	}
	if v := store.variants["datasetB|901"]; v == nil || v.NeedsReview {
		t.Errorf("confident attach must not need review: %+v", v)
	}
	if len(store.meals) != 1 {
		t.Errorf("meal count = %d, want 1 (no duplicate canonical)", len(store.meals))
	}
}

func TestResolveUncertainMatchNeedsReview(t *testing.T) {
	store := newFakeStore()
	r := newTestResolver(store)
	ctx := context.Background()

	// Near-spelling of an existing dish ranked first by the index: the blend
	// lands between the two thresholds.
	store.searchResults = []Candidate{
		{ID: "meal-1", Title: "Chole Bhature", TitleNormalized: "chole bhature", Relevance: 7.0, HasRelevance: true},
		{ID: "decoy", Title: "Dosa", TitleNormalized: "dosa", Relevance: 0.5, HasRelevance: true},
	}

	res, err := r.Resolve(ctx, enrichedRecord("datasetB", "77", "Chole Bhatura"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != domain.StatusNeedsReview {
		t.Errorf("status = %q (score %f), want needs_review", res.Status, res.BestScore)
	}
	if res.MealID != "meal-1" {
		t.Errorf("attached to %q, want meal-1", res.MealID)
	}
	if v := store.variants["datasetB|77"]; v == nil || !v.NeedsReview {
		t.Errorf("uncertain attach must carry needs_review: %+v", v)
	}
}

func TestResolveFallsBackWhenPrimarySearchFails(t *testing.T) {
	store := newFakeStore()
	r := newTestResolver(store)
	ctx := context.Background()

	first, err := r.Resolve(ctx, enrichedRecord("datasetA", "17", "Chole"))
	if err != nil {
		t.Fatalf("seed resolve: %v", err)
	}

	store.searchErr = errors.New("search_meals_v2 unavailable")

	res, err := r.Resolve(ctx, enrichedRecord("datasetB", "18", "Chole"))
	if err != nil {
		t.Fatalf("fallback resolve: %v", err)
	}
	if store.scanCalls == 0 {
		t.Fatal("expected the prefix scan fallback to be used")
	}
	// Fallback candidates carry no relevance; an exact name still only
	// reaches the name weight, so the match is filed for review or new.
	if res.Status == domain.StatusAttachedAsVariant {
		t.Errorf("fallback path cannot produce a confident attach, got %q", res.Status)
	}
	_ = first
}

func TestResolveTotalRetrievalFailureCreatesNewCanonical(t *testing.T) {
	store := newFakeStore()
	store.searchErr = errors.New("search down")
	store.scanErr = errors.New("scan down")
	r := newTestResolver(store)

	res, err := r.Resolve(context.Background(), enrichedRecord("datasetA", "21", "Rajma"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != domain.StatusNewCanonical {
		t.Errorf("status = %q, want new_canonical on total retrieval failure", res.Status)
	}
}

func TestResolveIdempotencyLookupFailureDegrades(t *testing.T) {
	store := newFakeStore()
	store.findErr = errors.New("store unavailable for this query")
	r := newTestResolver(store)

	res, err := r.Resolve(context.Background(), enrichedRecord("datasetA", "17", "Chole"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Degrades to a redundant scoring pass, never a duplicate row.
	if res.Status != domain.StatusNewCanonical {
		t.Errorf("status = %q, want new_canonical", res.Status)
	}
	if len(store.variants) != 1 {
		t.Errorf("variant count = %d, want 1", len(store.variants))
	}
}

func TestResolveMissingNameRejectedWithoutWrites(t *testing.T) {
	store := newFakeStore()
	r := newTestResolver(store)

	_, err := r.Resolve(context.Background(), enrichedRecord("datasetA", "17", ""))
	if !errors.Is(err, ErrMissingName) {
		t.Fatalf("err = %v, want ErrMissingName", err)
	}
	if len(store.meals) != 0 || len(store.variants) != 0 {
		t.Error("input errors must not produce partial writes")
	}

	_, err = r.Resolve(context.Background(), enrichedRecord("", "", "Chole"))
	if !errors.Is(err, ErrMissingSource) {
		t.Fatalf("err = %v, want ErrMissingSource", err)
	}
}

func TestResolveRetriesWritesWithReducedPayload(t *testing.T) {
	store := newFakeStore()
	store.rejectCanonicalWithOptional = true
	store.rejectVariantWithOptional = true
	r := newTestResolver(store)

	enriched := enrichedRecord("datasetA", "17", "Chole")
	enriched.Embedding = []float32{0.1, 0.2, 0.3}

	res, err := r.Resolve(context.Background(), enriched)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != domain.StatusNewCanonical {
		t.Errorf("status = %q, want new_canonical", res.Status)
	}
	if store.insertCanonicalCalls != 2 {
		t.Errorf("insert calls = %d, want 2 (reject then reduced retry)", store.insertCanonicalCalls)
	}
	if store.upsertVariantCalls != 2 {
		t.Errorf("variant upsert calls = %d, want 2 (reject then reduced retry)", store.upsertVariantCalls)
	}
	if m := store.meals[res.MealID]; m == nil || m.Embedding != nil {
		t.Errorf("reduced canonical payload should omit the embedding: %+v", m)
	}
}

func TestResolveTagsMergedAndAttached(t *testing.T) {
	store := newFakeStore()
	r := newTestResolver(store)

	enriched := enrichedRecord("datasetA", "17", "Chole")
	enriched.TagCandidates = []domain.TagCandidate{
		{TagType: "diet", Value: "vegetarian", Confidence: 0.7, Source: "dataset"},
		{TagType: "diet", Value: "vegetarian", Confidence: 0.95, IsPrimary: true, Source: "llm"},
		{TagType: "cuisine_region", Value: "punjabi", Confidence: 1.0, IsPrimary: true, Source: "dataset"},
	}

	res, err := r.Resolve(context.Background(), enriched)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.mealTags) != 2 {
		t.Fatalf("meal tag rows = %d, want 2 after merging", len(store.mealTags))
	}
	for _, row := range store.mealTags {
		if row.MealID != res.MealID {
			t.Errorf("tag attached to %q, want %q", row.MealID, res.MealID)
		}
	}
	var dietRow *domain.MealTag
	for i := range store.mealTags {
		if store.mealTags[i].Source == "llm" {
			dietRow = &store.mealTags[i]
		}
	}
	if dietRow == nil || dietRow.Confidence != 0.95 || !dietRow.IsPrimary {
		t.Errorf("merged diet tag row wrong: %+v", dietRow)
	}
}

func TestResolveEndToEndScenario(t *testing.T) {
	store := newFakeStore()
	r := newTestResolver(store)
	ctx := context.Background()

	// No similar canonical meal exists: new_canonical.
	first, err := r.Resolve(ctx, enrichedRecord("datasetA", "17", "Chole"))
	if err != nil {
		t.Fatalf("step 1: %v", err)
	}
	if first.Status != domain.StatusNewCanonical {
		t.Fatalf("step 1 status = %q, want new_canonical", first.Status)
	}

	// Same source row again: existing_variant with identical ids.
	replay, err := r.Resolve(ctx, enrichedRecord("datasetA", "17", "Chole"))
	if err != nil {
		t.Fatalf("step 2: %v", err)
	}
	if replay.Status != domain.StatusExistingVariant || replay.MealID != first.MealID || replay.VariantID != first.VariantID {
		t.Fatalf("step 2 = %+v, want existing_variant with ids of step 1", replay)
	}

	// A different source whose search relevance puts the step-1 canonical at
	// rank 1 with strong name agreement: attached to the same canonical id.
	store.searchResults = []Candidate{
		{ID: first.MealID, Title: "Chole", TitleNormalized: "chole", Relevance: 12.0, HasRelevance: true},
		{ID: "decoy", Title: "Banana Smoothie", TitleNormalized: "banana smoothie", Relevance: 0.2, HasRelevance: true},
	}
	third, err := r.Resolve(ctx, enrichedRecord("datasetB", "42", "Chole"))
	if err != nil {
		t.Fatalf("step 3: %v", err)
	}
	if third.Status != domain.StatusAttachedAsVariant {
		t.Fatalf("step 3 status = %q (score %f), want attached_as_variant", third.Status, third.BestScore)
	}
	if third.MealID != first.MealID {
		t.Fatalf("step 3 attached to %q, want %q", third.MealID, first.MealID)
	}
	if len(store.meals) != 1 || len(store.variants) != 2 {
		t.Fatalf("store = %d meals / %d variants, want 1 / 2", len(store.meals), len(store.variants))
	}
}
