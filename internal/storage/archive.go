package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/domain"
)

// Archive snapshots raw source records into object storage before they enter
// the pipeline, so any ingestion outcome can be traced back to the exact
// payload that produced it.
type Archive struct {
	storage ObjectStorage
}

// NewArchive creates an Archive over the given object storage.
// Parameters:
//   - storage: object storage client.
// Returns:
//   - *Archive: archive instance.
func NewArchive(storage ObjectStorage) *Archive {
	return &Archive{storage: storage}
}

// PutRecord uploads a JSON snapshot of the raw record and returns its URL.
// Replays overwrite the previous snapshot for the same source row, matching
// the last-write-wins semantics of the variant upsert.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - raw: raw meal record to snapshot.
// Returns:
//   - string: public URL of the stored snapshot.
//   - error: non-nil if marshalling or upload fails.
func (a *Archive) PutRecord(ctx context.Context, raw *domain.RawMeal) (string, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return "", fmt.Errorf("failed to marshal raw record: %w", err)
	}

	key := recordKey(raw.SourceType, raw.SourceID)
	if err := a.storage.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), "application/json"); err != nil {
		return "", fmt.Errorf("failed to archive raw record: %w", err)
	}

	return a.storage.GetURL(key), nil
}

// recordKey builds the object key for a source record. Source types may carry
// a namespace separator (kaggle:indian_food) which becomes a path segment.
func recordKey(sourceType, sourceID string) string {
	safeType := strings.ReplaceAll(sourceType, ":", "/")
	safeID := strings.ReplaceAll(sourceID, "/", "_")
	return fmt.Sprintf("raw/%s/%s.json", safeType, safeID)
}
