package testhelpers

import (
	"testing"

	"gorm.io/gorm"

	"github.com/pageza/recipe-catalog/backend/internal/model"
)

// Catalog holds the ids of seeded reference data by name
type Catalog struct {
	Kitchens    map[string]uint
	Ingredients map[string]uint
}

// IngredientIDs returns the ids of the named ingredients in order
func (c Catalog) IngredientIDs(names ...string) []uint {
	ids := make([]uint, 0, len(names))
	for _, name := range names {
		ids = append(ids, c.Ingredients[name])
	}
	return ids
}

// SeedCatalog inserts kitchens and ingredients and returns their ids
func SeedCatalog(t *testing.T, db *gorm.DB, kitchens, ingredients []string) Catalog {
	t.Helper()
	c := Catalog{Kitchens: map[string]uint{}, Ingredients: map[string]uint{}}
	for _, name := range kitchens {
		k := model.Kitchen{Name: name}
		if err := db.Create(&k).Error; err != nil {
			t.Fatalf("failed to seed kitchen %s: %v", name, err)
		}
		c.Kitchens[name] = k.ID
	}
	for _, name := range ingredients {
		i := model.Ingredient{Name: name}
		if err := db.Create(&i).Error; err != nil {
			t.Fatalf("failed to seed ingredient %s: %v", name, err)
		}
		c.Ingredients[name] = i.ID
	}
	return c
}

// InsertRecipe stores a recipe with the given ingredient ids directly, bypassing the service
func InsertRecipe(t *testing.T, db *gorm.DB, title, instruction string, kitchenID uint, ingredientIDs ...uint) model.Recipe {
	t.Helper()
	r := model.Recipe{
		Title:             title,
		Instruction:       instruction,
		CookingTime:       20,
		CookingDifficulty: model.DifficultyEasy,
		KitchenID:         kitchenID,
	}
	for _, id := range ingredientIDs {
		r.RecipeIngredients = append(r.RecipeIngredients, model.RecipeIngredient{IngredientID: id})
	}
	if err := db.Omit("Kitchen", "RecipeIngredients.Ingredient").Create(&r).Error; err != nil {
		t.Fatalf("failed to insert recipe %s: %v", title, err)
	}
	return r
}
