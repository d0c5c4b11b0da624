package domain

// TagCandidate is a weighted (type, value) attribute proposal from any
// enrichment origin: dataset metadata, rule-based inference, ML or LLM.
// After merging there is at most one candidate per (type, value) pair.
type TagCandidate struct {
	TagType       string  `json:"tag_type"`
	Value         string  `json:"value"`
	LabelEn       string  `json:"label_en,omitempty"`
	LabelHi       string  `json:"label_hi,omitempty"`
	LabelHinglish string  `json:"label_hinglish,omitempty"`
	Confidence    float64 `json:"confidence"`
	IsPrimary     bool    `json:"is_primary"`
	Source        string  `json:"source,omitempty"` // dataset | rules | ml | llm
}

// EnrichedMeal is the output of the enrichment collaborator for a RawMeal.
// It is consumed exactly once by the brain; its derived values are copied
// into the persisted meal/variant rows and the struct is then discarded.
type EnrichedMeal struct {
	Raw RawMeal `json:"raw"`

	// Canonicalization results
	CanonicalName string   `json:"canonical_name"`
	AltNames      []string `json:"alt_names,omitempty"`

	// Cleaned/normalized fields
	IngredientsNorm  string `json:"ingredients_norm"`
	InstructionsNorm string `json:"instructions_norm"`

	// Derived features / predictions
	PredictedCourse string   `json:"predicted_course,omitempty"`
	PredictedDiet   string   `json:"predicted_diet,omitempty"`
	RegionTags      []string `json:"region_tags,omitempty"`

	SpiceLevel   *int   `json:"spice_level,omitempty"`
	Difficulty   string `json:"difficulty,omitempty"`
	KidsFriendly *bool  `json:"kids_friendly,omitempty"`

	OccasionTags []string `json:"occasion_tags,omitempty"`
	HealthTags   []string `json:"health_tags,omitempty"`
	UtensilTags  []string `json:"utensil_tags,omitempty"`

	// Time signals (filled from the dataset or predicted)
	PrepTimeMins  *float64 `json:"prep_time_mins,omitempty"`
	CookTimeMins  *float64 `json:"cook_time_mins,omitempty"`
	TotalTimeMins *float64 `json:"total_time_mins,omitempty"`
	Servings      *float64 `json:"servings,omitempty"`

	// Tagging outputs, unified across enrichment origins
	TagCandidates []TagCandidate `json:"tag_candidates,omitempty"`

	// Embedding for similarity search/dedupe (optional)
	Embedding []float32 `json:"embedding,omitempty"`

	// Free-form extra info (nutrition, goes-well-with, ...)
	Extra JSONMap `json:"extra,omitempty"`

	// For observability / debugging
	Debug JSONMap `json:"debug,omitempty"`
}
