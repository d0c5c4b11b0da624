package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"testing"

	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/brain"
	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/domain"
	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/logger"
	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/storage"
)

// memStore is a minimal in-memory brain.Store for driving the ingest loop.
type memStore struct {
	meals    map[string]*domain.Meal
	variants map[string]*domain.MealVariant
	tagTypes map[string]string
	tags     map[string]string

	failInsertFor map[string]bool // title_normalized -> always fail
	nextID        int
}

func newMemStore() *memStore {
	return &memStore{
		meals:         make(map[string]*domain.Meal),
		variants:      make(map[string]*domain.MealVariant),
		tagTypes:      make(map[string]string),
		tags:          make(map[string]string),
		failInsertFor: make(map[string]bool),
	}
}

func (m *memStore) FindVariantBySource(ctx context.Context, sourceType, sourceID string) (*brain.VariantRef, error) {
	if v, ok := m.variants[sourceType+"|"+sourceID]; ok {
		return &brain.VariantRef{VariantID: v.ID, MealID: v.MealID}, nil
	}
	return nil, nil
}

func (m *memStore) SearchCandidates(ctx context.Context, query string, filters brain.CandidateFilters, limit int) ([]brain.Candidate, error) {
	return nil, nil
}

func (m *memStore) ScanByNamePrefix(ctx context.Context, token string, limit int) ([]brain.Candidate, error) {
	return nil, nil
}

func (m *memStore) InsertCanonical(ctx context.Context, meal *domain.Meal) (string, error) {
	if m.failInsertFor[meal.TitleNormalized] {
		return "", errors.New("store rejects this row")
	}
	stored := *meal
	m.meals[meal.ID] = &stored
	return meal.ID, nil
}

func (m *memStore) UpsertVariant(ctx context.Context, variant *domain.MealVariant) (string, error) {
	key := variant.SourceType + "|" + variant.SourceID
	if existing, ok := m.variants[key]; ok {
		updated := *variant
		updated.ID = existing.ID
		m.variants[key] = &updated
		return existing.ID, nil
	}
	stored := *variant
	m.variants[key] = &stored
	return variant.ID, nil
}

func (m *memStore) UpsertSynonyms(ctx context.Context, rows []domain.MealSynonym) error { return nil }

func (m *memStore) EnsureTagType(ctx context.Context, name, description string) (string, error) {
	if id, ok := m.tagTypes[name]; ok {
		return id, nil
	}
	m.nextID++
	id := fmt.Sprintf("tt-%d", m.nextID)
	m.tagTypes[name] = id
	return id, nil
}

func (m *memStore) EnsureTag(ctx context.Context, tagTypeID string, cand domain.TagCandidate) (string, error) {
	key := tagTypeID + "|" + cand.Value
	if id, ok := m.tags[key]; ok {
		return id, nil
	}
	m.nextID++
	id := fmt.Sprintf("tag-%d", m.nextID)
	m.tags[key] = id
	return id, nil
}

func (m *memStore) UpsertMealTags(ctx context.Context, rows []domain.MealTag) error { return nil }

// sliceSource serves a fixed record slice with index cursors.
type sliceSource struct {
	records []domain.RawMeal
}

func (s *sliceSource) GetSourceType() string     { return "test:fixture" }
func (s *sliceSource) GetDisplayName() string    { return "Fixture" }
func (s *sliceSource) SupportsIncremental() bool { return false }

func (s *sliceSource) FetchBatch(ctx context.Context, cursor string, limit int) ([]domain.RawMeal, string, error) {
	start := 0
	if cursor != "" {
		var err error
		start, err = strconv.Atoi(cursor)
		if err != nil {
			return nil, "", err
		}
	}
	if start >= len(s.records) {
		return nil, "", nil
	}
	end := start + limit
	if end > len(s.records) {
		end = len(s.records)
	}
	next := ""
	if end < len(s.records) {
		next = strconv.Itoa(end)
	}
	return s.records[start:end], next, nil
}

func record(id, name string) domain.RawMeal {
	return domain.RawMeal{
		SourceType:      "test:fixture",
		SourceID:        id,
		Name:            name,
		IngredientsText: "something",
	}
}

func newTestIngest(store brain.Store, cfg *IngestServiceConfig) *IngestService {
	resolver := brain.NewResolver(store, nil, brain.NewTagCache(), brain.DefaultConfig())
	if cfg == nil {
		cfg = &IngestServiceConfig{BatchSize: 2, MaxConsecutiveFailures: 3}
	}
	return NewIngestService(resolver, testEnrichment(), nil, nil, nil, logger.NewDefault(), cfg)
}

func TestIngestFromSourceCountsResolutions(t *testing.T) {
	store := newMemStore()
	svc := newTestIngest(store, nil)

	src := &sliceSource{records: []domain.RawMeal{
		record("1", "Chole"),
		record("2", "Rajma Chawal"),
		record("1", "Chole"), // replay of the first row
	}}

	stats, err := svc.IngestFromSource(context.Background(), src, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalItems != 3 || stats.ProcessedItems != 3 {
		t.Errorf("totals = %d/%d, want 3/3", stats.TotalItems, stats.ProcessedItems)
	}
	if stats.NewCanonical != 2 {
		t.Errorf("new_canonical = %d, want 2", stats.NewCanonical)
	}
	if stats.Existing != 1 {
		t.Errorf("existing = %d, want 1", stats.Existing)
	}
	if stats.FailedItems != 0 || stats.Aborted {
		t.Errorf("unexpected failures: %+v", stats)
	}
	if len(store.meals) != 2 || len(store.variants) != 2 {
		t.Errorf("store = %d meals / %d variants, want 2 / 2", len(store.meals), len(store.variants))
	}
}

func TestIngestFromSourceRespectsLimit(t *testing.T) {
	store := newMemStore()
	svc := newTestIngest(store, nil)

	src := &sliceSource{records: []domain.RawMeal{
		record("1", "Chole"),
		record("2", "Rajma"),
		record("3", "Dosa"),
	}}

	stats, err := svc.IngestFromSource(context.Background(), src, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalItems != 2 || stats.ProcessedItems != 2 {
		t.Errorf("totals = %d/%d, want 2/2", stats.TotalItems, stats.ProcessedItems)
	}
}

func TestIngestFromSourceIsolatesRecordFailures(t *testing.T) {
	store := newMemStore()
	// One poisoned row: its canonical insert always fails, including the
	// reduced-payload retry.
	store.failInsertFor["poisoned row"] = true
	svc := newTestIngest(store, nil)

	src := &sliceSource{records: []domain.RawMeal{
		record("1", "Chole"),
		record("2", "Poisoned Row"),
		record("3", "Dosa"),
	}}

	stats, err := svc.IngestFromSource(context.Background(), src, 0)
	if err != nil {
		t.Fatalf("one bad row must not fail the run: %v", err)
	}
	if stats.FailedItems != 1 {
		t.Errorf("failed = %d, want 1", stats.FailedItems)
	}
	if stats.NewCanonical != 2 {
		t.Errorf("new_canonical = %d, want 2 (rows around the failure)", stats.NewCanonical)
	}
	if stats.Aborted {
		t.Error("a single failure must not abort the run")
	}
}

func TestIngestFromSourceAbortsOnConsecutiveFailures(t *testing.T) {
	store := newMemStore()
	for _, title := range []string{"bad one", "bad two", "bad three"} {
		store.failInsertFor[title] = true
	}
	svc := newTestIngest(store, &IngestServiceConfig{BatchSize: 10, MaxConsecutiveFailures: 3})

	src := &sliceSource{records: []domain.RawMeal{
		record("1", "Bad One"),
		record("2", "Bad Two"),
		record("3", "Bad Three"),
		record("4", "Never Reached"),
	}}

	stats, err := svc.IngestFromSource(context.Background(), src, 0)
	if err == nil {
		t.Fatal("expected an abort error")
	}
	if !stats.Aborted {
		t.Error("stats should mark the run aborted")
	}
	if stats.ProcessedItems != 3 {
		t.Errorf("processed = %d, want 3 (abort before the fourth row)", stats.ProcessedItems)
	}
	if len(store.meals) != 0 {
		t.Errorf("no canonical meals should exist, got %d", len(store.meals))
	}
}

func TestIngestFromSourceSkipsEmptyNames(t *testing.T) {
	store := newMemStore()
	svc := newTestIngest(store, nil)

	src := &sliceSource{records: []domain.RawMeal{
		record("1", ""),
		record("2", "Dosa"),
	}}

	stats, err := svc.IngestFromSource(context.Background(), src, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.FailedItems != 1 {
		t.Errorf("nameless record should count as failed, got %d", stats.FailedItems)
	}
	if stats.NewCanonical != 1 {
		t.Errorf("new_canonical = %d, want 1", stats.NewCanonical)
	}
}

// memObjects is an in-memory ObjectStorage for archive tests.
type memObjects struct {
	objects map[string][]byte
}

func (m *memObjects) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	m.objects[key] = data
	return nil
}

func (m *memObjects) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	return nil, errors.New("not implemented")
}

func (m *memObjects) GetURL(key string) string { return "https://archive.test/" + key }

func (m *memObjects) Delete(ctx context.Context, key string) error { return nil }

func (m *memObjects) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.objects[key]
	return ok, nil
}

func TestIngestRecordCarriesArchiveURLIntoVariantMeta(t *testing.T) {
	store := newMemStore()
	objects := &memObjects{objects: map[string][]byte{}}
	resolver := brain.NewResolver(store, nil, brain.NewTagCache(), brain.DefaultConfig())
	svc := NewIngestService(resolver, testEnrichment(), nil, storage.NewArchive(objects),
		nil, logger.NewDefault(), &IngestServiceConfig{})

	raw := record("77", "Chole Bhature")
	res, err := svc.IngestRecord(context.Background(), &raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != domain.StatusNewCanonical {
		t.Fatalf("status = %q, want %q", res.Status, domain.StatusNewCanonical)
	}

	key := "raw/test/fixture/77.json"
	if _, ok := objects.objects[key]; !ok {
		t.Fatalf("raw record snapshot %q was not uploaded", key)
	}

	variant := store.variants["test:fixture|77"]
	if variant == nil {
		t.Fatal("variant not stored")
	}
	extra, ok := variant.Meta["extra"].(domain.JSONMap)
	if !ok {
		t.Fatalf("variant meta extra = %#v, want a JSONMap", variant.Meta["extra"])
	}
	wantURL := "https://archive.test/" + key
	if extra["archive_url"] != wantURL {
		t.Errorf("archive_url = %v, want %q", extra["archive_url"], wantURL)
	}
}
