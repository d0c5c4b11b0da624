package source

import (
	"context"

	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/domain"
)

// Source defines the interface for raw meal record sources.
type Source interface {
	// GetSourceType returns the stable source type identifier stamped onto
	// every record this source produces (for example "kaggle:indian_food").
	// Parameters: none.
	// Returns:
	//   - string: stable source type identifier.
	GetSourceType() string

	// GetDisplayName returns a human-readable name for this source.
	// Parameters: none.
	// Returns:
	//   - string: display-friendly source name.
	GetDisplayName() string

	// FetchBatch fetches a batch of raw meal records starting from the given cursor.
	// Parameters:
	//   - ctx: context for cancellation and deadlines.
	//   - cursor: pagination cursor or empty for first page.
	//   - limit: maximum number of records to fetch.
	// Returns:
	//   - items: batch of raw meal records.
	//   - nextCursor: cursor for the next batch or empty if done.
	//   - err: non-nil if fetching fails.
	FetchBatch(ctx context.Context, cursor string, limit int) (items []domain.RawMeal, nextCursor string, err error)

	// SupportsIncremental returns true if this source supports incremental updates.
	// Parameters: none.
	// Returns:
	//   - bool: true when incremental updates are supported.
	SupportsIncremental() bool
}
