package domain

import "time"

// Meal is a canonical meal row: the single durable record representing one
// distinct dish concept. Created exactly once per distinct dish as decided by
// the brain; never deleted by this system.
type Meal struct {
	ID              string       `gorm:"type:text;primaryKey" json:"id"`
	Title           string       `gorm:"type:text;not null" json:"title"`
	TitleNormalized string       `gorm:"type:text;index:idx_meals_title_norm" json:"title_normalized"`
	Description     string       `gorm:"type:text" json:"description,omitempty"`
	Instructions    string       `gorm:"type:text" json:"instructions,omitempty"`
	LanguageCode    string       `gorm:"type:text;default:en" json:"language_code"`
	PrepTimeMins    *float64     `json:"prep_time_mins,omitempty"`
	CookTimeMins    *float64     `json:"cook_time_mins,omitempty"`
	TotalTimeMins   *float64     `json:"total_time_mins,omitempty"`
	Servings        *float64     `json:"servings,omitempty"`
	RegionTags      StringArray  `gorm:"type:text" json:"region_tags,omitempty"`
	Meta            JSONMap      `gorm:"type:text" json:"meta"`
	Embedding       Float32Array `gorm:"type:text" json:"embedding,omitempty"`
	SearchText      string       `gorm:"type:text" json:"search_text,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// TableName returns the database table name for Meal.
func (Meal) TableName() string {
	return "meals"
}

// MealVariant is one specific source's rendition of a canonical meal.
// (SourceType, SourceID) is globally unique and serves as the idempotency key:
// a second ingestion of the same source row updates this row, never duplicates it.
type MealVariant struct {
	ID               string       `gorm:"type:text;primaryKey" json:"id"`
	MealID           string       `gorm:"type:text;not null;index:idx_variants_meal" json:"meal_id"`
	SourceType       string       `gorm:"type:text;not null;index:idx_variants_source,unique" json:"source_type"`
	SourceID         string       `gorm:"type:text;not null;index:idx_variants_source,unique" json:"source_id"`
	TitleOriginal    string       `gorm:"type:text;not null" json:"title_original"`
	TitleNormalized  string       `gorm:"type:text" json:"title_normalized"`
	IngredientsRaw   string       `gorm:"type:text" json:"ingredients_raw,omitempty"`
	IngredientsNorm  string       `gorm:"type:text" json:"ingredients_norm,omitempty"`
	InstructionsRaw  string       `gorm:"type:text" json:"instructions_raw,omitempty"`
	InstructionsNorm string       `gorm:"type:text" json:"instructions_norm,omitempty"`
	Cuisine          string       `gorm:"type:text" json:"cuisine,omitempty"`
	Course           string       `gorm:"type:text" json:"course,omitempty"`
	Diet             string       `gorm:"type:text" json:"diet,omitempty"`
	PrepTimeMins     *float64     `json:"prep_time_mins,omitempty"`
	CookTimeMins     *float64     `json:"cook_time_mins,omitempty"`
	Servings         *float64     `json:"servings,omitempty"`
	NeedsReview      bool         `gorm:"index:idx_variants_review" json:"needs_review"`
	Meta             JSONMap      `gorm:"type:text" json:"meta"`
	Embedding        Float32Array `gorm:"type:text" json:"embedding,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// TableName returns the database table name for MealVariant.
func (MealVariant) TableName() string {
	return "meal_variants"
}

// MealSynonym is an alternate name for a canonical meal, unique per
// (meal_id, synonym_normalized). Populated from enrichment alt names.
type MealSynonym struct {
	ID                 string    `gorm:"type:text;primaryKey" json:"id"`
	MealID             string    `gorm:"type:text;not null;index:idx_synonyms_meal,unique" json:"meal_id"`
	Synonym            string    `gorm:"type:text;not null" json:"synonym"`
	SynonymNormalized  string    `gorm:"type:text;not null;index:idx_synonyms_meal,unique" json:"synonym_normalized"`
	LanguageCode       string    `gorm:"type:text;default:en" json:"language_code"`
	Source             string    `gorm:"type:text" json:"source,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// TableName returns the database table name for MealSynonym.
func (MealSynonym) TableName() string {
	return "meal_synonyms"
}
