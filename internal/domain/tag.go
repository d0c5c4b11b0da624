package domain

import "time"

// TagType is a taxonomy dimension (diet, course, cuisine_region, ...).
type TagType struct {
	ID          string    `gorm:"type:text;primaryKey" json:"id"`
	Name        string    `gorm:"type:text;not null;uniqueIndex:idx_tag_types_name" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName returns the database table name for TagType.
func (TagType) TableName() string {
	return "tag_types"
}

// Tag is one value within a tag type, unique per (tag_type_id, value).
type Tag struct {
	ID            string    `gorm:"type:text;primaryKey" json:"id"`
	TagTypeID     string    `gorm:"type:text;not null;index:idx_tags_type_value,unique" json:"tag_type_id"`
	Value         string    `gorm:"type:text;not null;index:idx_tags_type_value,unique" json:"value"`
	LabelEn       string    `gorm:"type:text" json:"label_en,omitempty"`
	LabelHi       string    `gorm:"type:text" json:"label_hi,omitempty"`
	LabelHinglish string    `gorm:"type:text" json:"label_hinglish,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// TableName returns the database table name for Tag.
func (Tag) TableName() string {
	return "tags"
}

// MealTag links a canonical meal to a tag with the merged confidence and
// primary flag from the tag candidate merger.
type MealTag struct {
	MealID     string    `gorm:"type:text;primaryKey" json:"meal_id"`
	TagID      string    `gorm:"type:text;primaryKey" json:"tag_id"`
	Confidence float64   `json:"confidence"`
	IsPrimary  bool      `json:"is_primary"`
	Source     string    `gorm:"type:text" json:"source,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName returns the database table name for MealTag.
func (MealTag) TableName() string {
	return "meal_tags"
}
