package store

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Ingredient is a canonical ingredient usable as a search/filter dimension.
// Rows are either seeded/reviewed (needs_review=false) or created
// automatically by reconciliation (needs_review=true, provisional).
type Ingredient struct {
	ID          string  `gorm:"type:uuid;primaryKey"`
	Name        string  `gorm:"uniqueIndex;not null"`
	Category    string  `gorm:"not null"`
	NeedsReview bool    `gorm:"not null;default:false"`
	ParentID    *string `gorm:"type:uuid;index"`
	CreatedAt   time.Time
}

func (i *Ingredient) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// IngredientAlias maps a surface-form string to a canonical ingredient.
type IngredientAlias struct {
	ID            string `gorm:"type:uuid;primaryKey"`
	Alias         string `gorm:"uniqueIndex;not null"`
	IngredientID  string `gorm:"type:uuid;not null;index"`
	AutoGenerated bool   `gorm:"not null;default:false"`
	CreatedAt     time.Time
}

func (a *IngredientAlias) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// Recipe is the persisted recipe record. TitleEmbedding is populated
// asynchronously after creation and stored as JSON-serialized text.
type Recipe struct {
	ID                  string `gorm:"type:uuid;primaryKey"`
	UserID              string `gorm:"not null;index"`
	URL                 string `gorm:"uniqueIndex;not null"`
	Title               string `gorm:"not null"`
	SourceName          *string
	ImageURL            *string
	IngredientsRaw      datatypes.JSON
	Memo                *string
	CookingTimeMinutes  *int
	ViewCount           int `gorm:"not null;default:0"`
	LastViewedAt        *time.Time
	TitleEmbedding      *string
	EmbeddingRetryCount int `gorm:"not null;default:0"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// RecipeIngredient links a recipe to a canonical ingredient. IsMain marks
// the headline ingredients used for filtering.
type RecipeIngredient struct {
	RecipeID     string `gorm:"type:uuid;primaryKey"`
	IngredientID string `gorm:"type:uuid;primaryKey"`
	IsMain       bool   `gorm:"not null;default:true"`
}

// UnmatchedIngredient is a queue entry for strings the matcher could not
// resolve. Rows are deleted once the reconciliation job has decided on them.
type UnmatchedIngredient struct {
	ID             string `gorm:"type:uuid;primaryKey"`
	RawName        string `gorm:"not null"`
	NormalizedName string `gorm:"not null;index"`
	RecipeID       *string `gorm:"type:uuid"`
	CreatedAt      time.Time
}

func (u *UnmatchedIngredient) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
