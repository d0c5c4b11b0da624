package kagglecsv

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/domain"
)

const (
	SourceName = "Kaggle CSV"
)

// Column aliases seen across the public recipe datasets. Headers are matched
// lowercase and trimmed; the first alias present wins.
var (
	titleCols       = []string{"name", "recipe_name", "title"}
	ingredientCols  = []string{"ingredients", "ingredient", "ingredient_list", "ingr"}
	instructionCols = []string{"instructions", "steps", "directions", "method"}
	descriptionCols = []string{"description", "summary"}
	regionCols      = []string{"region", "cuisine_region", "state"}
	courseCols      = []string{"course", "meal_type"}
	dietCols        = []string{"diet", "diet_type"}
	flavorCols      = []string{"flavor", "flavour", "flavor_profile"}
	prepTimeCols    = []string{"prep_time", "preptime", "preparation_time"}
	cookTimeCols    = []string{"cook_time", "cooktime", "cooking_time"}
	totalTimeCols   = []string{"total_time", "totaltime"}
	servingCols     = []string{"servings", "serves", "yield"}
	cuisineCols     = []string{"cuisine"}
	idCols          = []string{"id", "recipe_id"}
)

// Adapter implements the Source interface for a recipe dataset exported as a
// single CSV file.
type Adapter struct {
	path       string
	sourceType string
	items      []domain.RawMeal // Cached records
	loaded     bool
}

// NewAdapter creates a new Kaggle CSV adapter.
func NewAdapter(path, sourceType string) *Adapter {
	return &Adapter{
		path:       path,
		sourceType: sourceType,
	}
}

// GetSourceType returns the stable source type identifier for this dataset
func (a *Adapter) GetSourceType() string {
	return a.sourceType
}

// GetDisplayName returns a human-readable name for this source
func (a *Adapter) GetDisplayName() string {
	return SourceName
}

// SupportsIncremental returns true if this source supports incremental updates
func (a *Adapter) SupportsIncremental() bool {
	return false // Static file, no incremental updates
}

// FetchBatch fetches a batch of raw meal records
func (a *Adapter) FetchBatch(ctx context.Context, cursor string, limit int) ([]domain.RawMeal, string, error) {
	// Load all records on first call
	if !a.loaded {
		if err := a.loadItems(); err != nil {
			return nil, "", fmt.Errorf("failed to load records: %w", err)
		}
		a.loaded = true
	}

	// Parse cursor (index)
	startIndex := 0
	if cursor != "" {
		var err error
		startIndex, err = strconv.Atoi(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("invalid cursor: %w", err)
		}
	}

	if startIndex >= len(a.items) {
		return []domain.RawMeal{}, "", nil // No more records
	}

	endIndex := startIndex + limit
	if endIndex > len(a.items) {
		endIndex = len(a.items)
	}

	batch := a.items[startIndex:endIndex]

	nextCursor := ""
	if endIndex < len(a.items) {
		nextCursor = strconv.Itoa(endIndex)
	}

	return batch, nextCursor, nil
}

// loadItems reads and parses the whole CSV file into raw meal records.
func (a *Adapter) loadItems() error {
	data, err := os.ReadFile(a.path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", a.path, err)
	}

	// Strip UTF-8 BOM; the public exports carry one.
	text := strings.TrimPrefix(string(data), "\ufeff")

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("CSV file is empty: %s", a.path)
	}

	header := newHeaderIndex(rows[0])
	if _, ok := header.find(titleCols); !ok {
		return fmt.Errorf("could not find a title column, available columns: %v", header.names)
	}

	a.items = make([]domain.RawMeal, 0, len(rows)-1)
	for i, row := range rows[1:] {
		record := a.rowToRecord(header, row, i)
		if record.Name == "" {
			continue
		}
		a.items = append(a.items, record)
	}

	return nil
}

func (a *Adapter) rowToRecord(header *headerIndex, row []string, rowIndex int) domain.RawMeal {
	get := func(aliases []string) string {
		idx, ok := header.find(aliases)
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	sourceID := get(idCols)
	if sourceID == "" {
		// Stable fallback: the row position within the file.
		sourceID = strconv.Itoa(rowIndex)
	}

	record := domain.RawMeal{
		SourceType:       a.sourceType,
		SourceID:         sourceID,
		Name:             get(titleCols),
		Description:      get(descriptionCols),
		IngredientsText:  get(ingredientCols),
		InstructionsText: get(instructionCols),
		Cuisine:          get(cuisineCols),
		Course:           get(courseCols),
		Diet:             get(dietCols),
		LanguageCode:     "en",
		PrepTimeMins:     parseMinutes(get(prepTimeCols)),
		CookTimeMins:     parseMinutes(get(cookTimeCols)),
		TotalTimeMins:    parseMinutes(get(totalTimeCols)),
		Servings:         parseMinutes(get(servingCols)),
	}

	extra := domain.JSONMap{}
	if region := get(regionCols); region != "" {
		extra["region"] = region
	}
	if flavor := get(flavorCols); flavor != "" {
		extra["flavor"] = flavor
	}
	if len(extra) > 0 {
		record.Extra = extra
	}

	return record
}

// parseMinutes parses a numeric cell; -1 sentinels and unparseable text map
// to nil.
func parseMinutes(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return nil
	}
	return &v
}

// headerIndex maps normalized column names to their positions.
type headerIndex struct {
	names   []string
	byAlias map[string]int
}

func newHeaderIndex(header []string) *headerIndex {
	idx := &headerIndex{
		names:   make([]string, 0, len(header)),
		byAlias: make(map[string]int, len(header)),
	}
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		idx.names = append(idx.names, key)
		if _, dup := idx.byAlias[key]; !dup {
			idx.byAlias[key] = i
		}
	}
	return idx
}

func (h *headerIndex) find(aliases []string) (int, bool) {
	for _, alias := range aliases {
		if i, ok := h.byAlias[alias]; ok {
			return i, true
		}
	}
	return 0, false
}

// GetTotalCount returns the total number of records
func (a *Adapter) GetTotalCount() (int, error) {
	if !a.loaded {
		if err := a.loadItems(); err != nil {
			return 0, err
		}
		a.loaded = true
	}
	return len(a.items), nil
}
