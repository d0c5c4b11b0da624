package domain

// ResolutionStatus is the outcome of resolving one enriched record against the
// existing canonical set. Outcomes are mutually exclusive per call.
type ResolutionStatus string

const (
	// StatusNewCanonical: no plausible match; a new canonical meal was created.
	StatusNewCanonical ResolutionStatus = "new_canonical"
	// StatusAttachedAsVariant: confident match; variant attached to an existing meal.
	StatusAttachedAsVariant ResolutionStatus = "attached_as_variant"
	// StatusNeedsReview: plausible but uncertain match; attached and flagged for audit.
	StatusNeedsReview ResolutionStatus = "needs_review"
	// StatusExistingVariant: this exact source record was already resolved earlier.
	StatusExistingVariant ResolutionStatus = "existing_variant"
)

// Resolution is the triple handed to downstream steps for every ingested record.
type Resolution struct {
	MealID    string           `json:"meal_id"`
	VariantID string           `json:"variant_id"`
	Status    ResolutionStatus `json:"status"`
	BestScore float64          `json:"best_score"`
}
