package types

import (
	"time"

	"github.com/pageza/recipe-catalog/backend/internal/model"
)

// NamedRef is the id and name of a kitchen or ingredient
type NamedRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// RecipeIngredientResponse is one ingredient link of a recipe
type RecipeIngredientResponse struct {
	IngredientID uint     `json:"ingredient_id"`
	Ingredient   NamedRef `json:"ingredient"`
}

// RecipeResponse is the serialized form of a recipe
type RecipeResponse struct {
	ID                uint                       `json:"id"`
	Title             string                     `json:"title"`
	Instruction       string                     `json:"instruction"`
	CookingTime       int                        `json:"cooking_time"`
	CookingDifficulty model.CookingDifficulty    `json:"cooking_difficulty"`
	KitchenID         uint                       `json:"kitchen_id"`
	Kitchen           NamedRef                   `json:"kitchen"`
	RecipeIngredients []RecipeIngredientResponse `json:"recipe_ingredients"`
	Ingredients       []uint                     `json:"ingredients"`
	CreatedAt         time.Time                  `json:"created_at"`
	UpdatedAt         time.Time                  `json:"updated_at"`
}

// NewRecipeResponse converts a recipe loaded with its kitchen and ingredients
func NewRecipeResponse(r *model.Recipe) RecipeResponse {
	links := make([]RecipeIngredientResponse, 0, len(r.RecipeIngredients))
	for _, ri := range r.RecipeIngredients {
		links = append(links, RecipeIngredientResponse{
			IngredientID: ri.IngredientID,
			Ingredient:   NamedRef{ID: ri.Ingredient.ID, Name: ri.Ingredient.Name},
		})
	}
	return RecipeResponse{
		ID:                r.ID,
		Title:             r.Title,
		Instruction:       r.Instruction,
		CookingTime:       r.CookingTime,
		CookingDifficulty: r.CookingDifficulty,
		KitchenID:         r.KitchenID,
		Kitchen:           NamedRef{ID: r.Kitchen.ID, Name: r.Kitchen.Name},
		RecipeIngredients: links,
		Ingredients:       r.IngredientIDs(),
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

// NewRecipeListResponse converts recipes, never returning nil
func NewRecipeListResponse(recipes []model.Recipe) []RecipeResponse {
	out := make([]RecipeResponse, 0, len(recipes))
	for i := range recipes {
		out = append(out, NewRecipeResponse(&recipes[i]))
	}
	return out
}

// KitchenResponse lists a kitchen
type KitchenResponse = NamedRef

// IngredientResponse lists an ingredient
type IngredientResponse = NamedRef

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string       `json:"error"`
	Details []FieldError `json:"details,omitempty"`
	Entity  string       `json:"entity,omitempty"`
	Missing []string     `json:"missing,omitempty"`
}

// FieldError describes why a single input field was rejected
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}
