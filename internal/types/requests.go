package types

import (
	"strings"

	"github.com/pageza/recipe-catalog/backend/internal/model"
)

// CreateRecipeRequest represents the request body for creating a recipe.
// Ids are capped at the BIGINT range of the id columns.
type CreateRecipeRequest struct {
	Title             string                  `json:"title" binding:"required,notblank,max=70"`
	Instruction       string                  `json:"instruction" binding:"required,notblank"`
	RecipeIngredients []uint                  `json:"recipe_ingredients" binding:"required,min=1,dive,gt=0,max=9223372036854775807"`
	CookingTime       int                     `json:"cooking_time" binding:"required,gt=0"`
	CookingDifficulty model.CookingDifficulty `json:"cooking_difficulty" binding:"omitempty,difficulty"`
	KitchenID         uint                    `json:"kitchen_id" binding:"required,gt=0,max=9223372036854775807"`
}

// Difficulty returns the requested difficulty or MEDIUM when none was given
func (r *CreateRecipeRequest) Difficulty() model.CookingDifficulty {
	if r.CookingDifficulty == "" {
		return model.DifficultyMedium
	}
	return r.CookingDifficulty
}

// UpdateRecipeRequest represents a partial update. Nil fields are left untouched.
// Kitchen and ingredients can be addressed either by id or by name.
type UpdateRecipeRequest struct {
	Title             *string                  `json:"title" binding:"omitempty,notblank,max=70"`
	Instruction       *string                  `json:"instruction" binding:"omitempty,notblank"`
	CookingTime       *int                     `json:"cooking_time" binding:"omitempty,gt=0"`
	CookingDifficulty *model.CookingDifficulty `json:"cooking_difficulty" binding:"omitempty,difficulty"`
	KitchenID         *uint                    `json:"kitchen_id" binding:"omitempty,gt=0,max=9223372036854775807,excluded_with=KitchenName"`
	KitchenName       *string                  `json:"kitchen_name" binding:"omitempty,notblank,max=30"`
	RecipeIngredients *[]uint                  `json:"recipe_ingredients" binding:"omitempty,excluded_with=IngredientNames,min=1,dive,gt=0,max=9223372036854775807"`
	IngredientNames   *[]string                `json:"ingredient_names" binding:"omitempty,min=1,dive,notblank,max=30"`
}

// IsEmpty reports whether the request changes nothing
func (r *UpdateRecipeRequest) IsEmpty() bool {
	return r.Title == nil && r.Instruction == nil && r.CookingTime == nil &&
		r.CookingDifficulty == nil && r.KitchenID == nil && r.KitchenName == nil &&
		r.RecipeIngredients == nil && r.IngredientNames == nil
}

// FilterQuery selects recipes containing every Include ingredient and none of the Exclude ones.
type FilterQuery struct {
	Include []string `form:"include" json:"include" binding:"max=50,dive,max=30"`
	Exclude []string `form:"exclude" json:"exclude" binding:"max=50,dive,max=30"`
	Limit   int      `form:"limit" json:"limit" binding:"omitempty,min=1,max=100"`
}

// Normalize splits comma separated values, trims them and drops empties and duplicates.
func (q *FilterQuery) Normalize() {
	q.Include = normalizeNames(q.Include)
	q.Exclude = normalizeNames(q.Exclude)
}

// Conflicts returns names present in both Include and Exclude
func (q *FilterQuery) Conflicts() []string {
	excluded := make(map[string]struct{}, len(q.Exclude))
	for _, name := range q.Exclude {
		excluded[name] = struct{}{}
	}
	var out []string
	for _, name := range q.Include {
		if _, ok := excluded[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

// SearchQuery is a free text query in websearch syntax
type SearchQuery struct {
	Q     string `form:"q" json:"q" binding:"required,notblank,max=200"`
	Limit int    `form:"limit" json:"limit" binding:"omitempty,min=1,max=100"`
}

func normalizeNames(values []string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			name := strings.TrimSpace(part)
			if name == "" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}
