package model

import (
	"time"
)

// CookingDifficulty is the effort level of a recipe
type CookingDifficulty string

const (
	DifficultyEasy   CookingDifficulty = "EASY"
	DifficultyMedium CookingDifficulty = "MEDIUM"
	DifficultyHard   CookingDifficulty = "HARD"
)

// Valid reports whether d is one of the known difficulty levels
func (d CookingDifficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Kitchen is a cuisine category. Reference data, never written through the API.
type Kitchen struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:30;not null;uniqueIndex" json:"name"`
}

// Ingredient is a named product that recipes are filtered by.
type Ingredient struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:30;not null;uniqueIndex" json:"name"`
}

// RecipeIngredient links a recipe to one ingredient.
type RecipeIngredient struct {
	ID           uint       `gorm:"primaryKey" json:"-"`
	RecipeID     uint       `gorm:"not null;uniqueIndex:idx_recipe_ingredient" json:"-"`
	IngredientID uint       `gorm:"not null;uniqueIndex:idx_recipe_ingredient;index" json:"ingredient_id"`
	Ingredient   Ingredient `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"ingredient"`
}

type Recipe struct {
	ID                uint               `gorm:"primaryKey" json:"id"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
	Title             string             `gorm:"size:70;not null" json:"title"`
	Instruction       string             `gorm:"type:text;not null;default:'Нет инструкции'" json:"instruction"`
	CookingTime       int                `gorm:"not null" json:"cooking_time"`
	CookingDifficulty CookingDifficulty  `gorm:"size:10;not null;default:MEDIUM" json:"cooking_difficulty"`
	KitchenID         uint               `gorm:"not null;index" json:"kitchen_id"`
	Kitchen           Kitchen            `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"kitchen"`
	RecipeIngredients []RecipeIngredient `gorm:"constraint:OnDelete:CASCADE" json:"recipe_ingredients"`
}

// IngredientIDs returns the ids of the linked ingredients in link order
func (r *Recipe) IngredientIDs() []uint {
	ids := make([]uint, 0, len(r.RecipeIngredients))
	for _, ri := range r.RecipeIngredients {
		ids = append(ids, ri.IngredientID)
	}
	return ids
}

// All lists every model managed by auto-migration.
func All() []interface{} {
	return []interface{}{&Kitchen{}, &Ingredient{}, &Recipe{}, &RecipeIngredient{}}
}
