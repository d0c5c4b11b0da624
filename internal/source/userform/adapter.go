package userform

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/domain"
)

const (
	// SourceType is the stable source type stamped on user submissions.
	SourceType = "user_form"
	SourceName = "User Form Submissions"
)

// Submission is one staged user form file. The submission id defaults to the
// file name without extension when the payload doesn't carry one.
type Submission struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	Ingredients   string            `json:"ingredients"`
	Instructions  string            `json:"instructions"`
	Cuisine       string            `json:"cuisine"`
	Course        string            `json:"course"`
	Diet          string            `json:"diet"`
	LanguageCode  string            `json:"language_code"`
	PrepTimeMins  *float64          `json:"prep_time_mins"`
	CookTimeMins  *float64          `json:"cook_time_mins"`
	TotalTimeMins *float64          `json:"total_time_mins"`
	Servings      *float64          `json:"servings"`
	SubmittedAt   string            `json:"submitted_at"`
	Extra         map[string]string `json:"extra"`
}

// Adapter implements the Source interface for a staging directory of user
// form submissions, one JSON file per submission.
type Adapter struct {
	stagingDir string
	items      []domain.RawMeal
	loaded     bool
}

// NewAdapter creates a new user form adapter.
// Parameters:
//   - stagingDir: directory holding one JSON file per submission.
// Returns:
//   - *Adapter: initialized adapter.
func NewAdapter(stagingDir string) *Adapter {
	return &Adapter{
		stagingDir: stagingDir,
	}
}

// GetSourceType returns the stable source type identifier.
// Parameters: none.
// Returns:
//   - string: the user form source type.
func (a *Adapter) GetSourceType() string {
	return SourceType
}

// GetDisplayName returns a human-readable name for this source.
// Parameters: none.
// Returns:
//   - string: display-friendly source name.
func (a *Adapter) GetDisplayName() string {
	return SourceName
}

// SupportsIncremental returns true: new submission files can land between runs
// and replays of already-ingested files are absorbed by the idempotency key.
// Parameters: none.
// Returns:
//   - bool: always true.
func (a *Adapter) SupportsIncremental() bool {
	return true
}

// FetchBatch fetches a batch of raw meal records from the staging directory.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - cursor: pagination cursor or empty for first page.
//   - limit: maximum number of records to fetch.
// Returns:
//   - []domain.RawMeal: batch of raw meal records.
//   - string: cursor for the next batch or empty if done.
//   - error: non-nil if loading fails.
func (a *Adapter) FetchBatch(ctx context.Context, cursor string, limit int) ([]domain.RawMeal, string, error) {
	if !a.loaded {
		if err := a.loadItems(); err != nil {
			return nil, "", fmt.Errorf("failed to load submissions: %w", err)
		}
		a.loaded = true
	}

	startIndex := 0
	if cursor != "" {
		var err error
		startIndex, err = strconv.Atoi(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("invalid cursor: %w", err)
		}
	}

	if startIndex >= len(a.items) {
		return []domain.RawMeal{}, "", nil
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

// loadItems reads every .json file in the staging directory. A malformed file
// is skipped, not fatal: one bad submission must not block the rest.
func (a *Adapter) loadItems() error {
	entries, err := os.ReadDir(a.stagingDir)
	if err != nil {
		return fmt.Errorf("failed to read staging dir %s: %w", a.stagingDir, err)
	}

	a.items = []domain.RawMeal{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(a.stagingDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var sub Submission
		if err := json.Unmarshal(data, &sub); err != nil {
			continue
		}
		if strings.TrimSpace(sub.Name) == "" {
			continue
		}
		a.items = append(a.items, a.toRecord(&sub, entry.Name()))
	}

	// Sort by source id for consistent ordering across runs.
	sort.Slice(a.items, func(i, j int) bool {
		return a.items[i].SourceID < a.items[j].SourceID
	})

	return nil
}

func (a *Adapter) toRecord(sub *Submission, filename string) domain.RawMeal {
	sourceID := sub.ID
	if sourceID == "" {
		sourceID = strings.TrimSuffix(filename, filepath.Ext(filename))
	}

	language := sub.LanguageCode
	if language == "" {
		language = "en"
	}

	record := domain.RawMeal{
		SourceType:       SourceType,
		SourceID:         sourceID,
		Name:             sub.Name,
		Description:      sub.Description,
		IngredientsText:  sub.Ingredients,
		InstructionsText: sub.Instructions,
		Cuisine:          sub.Cuisine,
		Course:           sub.Course,
		Diet:             sub.Diet,
		LanguageCode:     language,
		PrepTimeMins:     sub.PrepTimeMins,
		CookTimeMins:     sub.CookTimeMins,
		TotalTimeMins:    sub.TotalTimeMins,
		Servings:         sub.Servings,
	}

	extra := domain.JSONMap{}
	if sub.SubmittedAt != "" {
		extra["submitted_at"] = sub.SubmittedAt
	}
	for k, v := range sub.Extra {
		extra[k] = v
	}
	if len(extra) > 0 {
		record.Extra = extra
	}

	return record
}
