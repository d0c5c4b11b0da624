package domain

// RawMeal is the unified input payload for a meal: one dataset row, user form
// submission or chat parse. Produced once per ingested record by a source
// adapter and never mutated or persisted directly.
type RawMeal struct {
	// Provenance / source identity
	SourceType string `json:"source_type"` // e.g. "kaggle:indian_food" or "user_form"
	SourceID   string `json:"source_id"`   // dataset-specific key / external id

	// Core text fields
	Name             string `json:"name"`
	Description      string `json:"description,omitempty"`
	IngredientsText  string `json:"ingredients_text"`
	InstructionsText string `json:"instructions_text"`

	// Optional structured metadata
	Cuisine      string `json:"cuisine,omitempty"`
	Course       string `json:"course,omitempty"`
	Diet         string `json:"diet,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`

	PrepTimeMins  *float64 `json:"prep_time_mins,omitempty"`
	CookTimeMins  *float64 `json:"cook_time_mins,omitempty"`
	TotalTimeMins *float64 `json:"total_time_mins,omitempty"`
	Servings      *float64 `json:"servings,omitempty"`

	// Any additional info from the dataset/user (region, flavor, urls, ...)
	Extra JSONMap `json:"extra,omitempty"`
}
