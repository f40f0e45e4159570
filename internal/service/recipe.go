package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/recipe-catalog/backend/internal/model"
	"github.com/pageza/recipe-catalog/backend/internal/types"
)

// searchConfig is the PostgreSQL text search configuration used for recipe content
const searchConfig = "russian"

type RecipeService struct {
	db *gorm.DB
}

func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

// withAssociations loads the kitchen and the ingredient links in insertion order
func withAssociations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Kitchen").
		Preload("RecipeIngredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("recipe_ingredients.id")
		}).
		Preload("RecipeIngredients.Ingredient")
}

func (s *RecipeService) GetRecipe(ctx context.Context, id uint) (*model.Recipe, error) {
	var recipe model.Recipe
	if err := withAssociations(s.db.WithContext(ctx)).First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	return &recipe, nil
}

// CreateRecipe stores the recipe and its ingredient links in one transaction.
// Unknown kitchen or ingredient ids yield a *ReferenceError and nothing is written.
func (s *RecipeService) CreateRecipe(ctx context.Context, req *types.CreateRecipeRequest) (*model.Recipe, error) {
	ingredientIDs := uniqueIDs(req.RecipeIngredients)
	recipe := &model.Recipe{
		Title:             req.Title,
		Instruction:       req.Instruction,
		CookingTime:       req.CookingTime,
		CookingDifficulty: req.Difficulty(),
		KitchenID:         req.KitchenID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureKitchen(tx, req.KitchenID); err != nil {
			return err
		}
		if err := ensureIngredients(tx, ingredientIDs); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return fmt.Errorf("failed to create recipe: %w", translate(err))
		}
		return linkIngredients(tx, recipe.ID, ingredientIDs)
	})
	if err != nil {
		return nil, err
	}

	return s.GetRecipe(ctx, recipe.ID)
}

// UpdateRecipe applies only the fields present in req. A given ingredient list
// replaces the whole set of links.
func (s *RecipeService) UpdateRecipe(ctx context.Context, id uint, req *types.UpdateRecipeRequest) (*model.Recipe, error) {
	if req.IsEmpty() {
		return s.GetRecipe(ctx, id)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe model.Recipe
		if err := tx.First(&recipe, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecipeNotFound
			}
			return fmt.Errorf("failed to get recipe: %w", err)
		}

		updates := map[string]interface{}{}
		if req.Title != nil {
			updates["title"] = *req.Title
		}
		if req.Instruction != nil {
			updates["instruction"] = *req.Instruction
		}
		if req.CookingTime != nil {
			updates["cooking_time"] = *req.CookingTime
		}
		if req.CookingDifficulty != nil {
			updates["cooking_difficulty"] = string(*req.CookingDifficulty)
		}

		switch {
		case req.KitchenID != nil:
			if err := ensureKitchen(tx, *req.KitchenID); err != nil {
				return err
			}
			updates["kitchen_id"] = *req.KitchenID
		case req.KitchenName != nil:
			kitchenID, err := kitchenIDByName(tx, *req.KitchenName)
			if err != nil {
				return err
			}
			updates["kitchen_id"] = kitchenID
		}

		var (
			ingredientIDs []uint
			replace       bool
		)
		switch {
		case req.RecipeIngredients != nil:
			ingredientIDs = uniqueIDs(*req.RecipeIngredients)
			if err := ensureIngredients(tx, ingredientIDs); err != nil {
				return err
			}
			replace = true
		case req.IngredientNames != nil:
			ids, err := ingredientIDsByName(tx, *req.IngredientNames)
			if err != nil {
				return err
			}
			ingredientIDs, replace = ids, true
		}

		if replace {
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&model.RecipeIngredient{}).Error; err != nil {
				return fmt.Errorf("failed to unlink ingredients: %w", err)
			}
			if err := linkIngredients(tx, recipe.ID, ingredientIDs); err != nil {
				return err
			}
			if len(updates) == 0 {
				updates["updated_at"] = time.Now().UTC()
			}
		}

		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&recipe).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update recipe: %w", translate(err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetRecipe(ctx, id)
}

// DeleteRecipe removes the recipe and its ingredient links. The ingredients stay.
func (s *RecipeService) DeleteRecipe(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&model.RecipeIngredient{}).Error; err != nil {
			return fmt.Errorf("failed to unlink ingredients: %w", err)
		}
		result := tx.Delete(&model.Recipe{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete recipe: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrRecipeNotFound
		}
		return nil
	})
}

// FilterByIngredients returns recipes that contain every included ingredient
// and none of the excluded ones, ordered by id.
func (s *RecipeService) FilterByIngredients(ctx context.Context, filter *types.FilterQuery) ([]model.Recipe, error) {
	query := withAssociations(s.db.WithContext(ctx)).Model(&model.Recipe{})

	if len(filter.Include) > 0 {
		include := uniqueNames(filter.Include)
		containsAll := s.db.
			Table("recipe_ingredients AS ri").
			Select("ri.recipe_id").
			Joins("JOIN ingredients AS i ON i.id = ri.ingredient_id").
			Where("i.name IN ?", include).
			Group("ri.recipe_id").
			Having("COUNT(DISTINCT i.name) = ?", len(include))
		query = query.Where("recipes.id IN (?)", containsAll)
	}

	if len(filter.Exclude) > 0 {
		containsAny := s.db.
			Table("recipe_ingredients AS ri").
			Select("ri.recipe_id").
			Joins("JOIN ingredients AS i ON i.id = ri.ingredient_id").
			Where("i.name IN ?", uniqueNames(filter.Exclude))
		query = query.Where("recipes.id NOT IN (?)", containsAny)
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	recipes := []model.Recipe{}
	if err := query.Order("recipes.id").Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to filter recipes: %w", err)
	}
	return recipes, nil
}

// SearchRecipes runs a websearch style full text query, best matches first.
// On SQLite every whitespace separated term must appear in the title or instruction.
func (s *RecipeService) SearchRecipes(ctx context.Context, q *types.SearchQuery) ([]model.Recipe, error) {
	db := s.db.WithContext(ctx)
	query := withAssociations(db).Model(&model.Recipe{})

	if db.Dialector.Name() == "postgres" {
		tsQuery := "websearch_to_tsquery('" + searchConfig + "', ?)"
		query = query.
			Where("recipes.search_vector @@ "+tsQuery, q.Q).
			Order(clause.OrderBy{Expression: clause.Expr{
				SQL:                "ts_rank(recipes.search_vector, " + tsQuery + ") DESC, recipes.id",
				Vars:               []interface{}{q.Q},
				WithoutParentheses: true,
			}})
	} else {
		for _, term := range strings.Fields(strings.ToLower(q.Q)) {
			pattern := "%" + term + "%"
			query = query.Where("(LOWER(recipes.title) LIKE ? OR LOWER(recipes.instruction) LIKE ?)", pattern, pattern)
		}
		query = query.Order("recipes.id")
	}

	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	recipes := []model.Recipe{}
	if err := query.Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to search recipes: %w", err)
	}
	return recipes, nil
}

func ensureKitchen(tx *gorm.DB, id uint) error {
	var count int64
	if err := tx.Model(&model.Kitchen{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check kitchen: %w", err)
	}
	if count == 0 {
		return &ReferenceError{Entity: "kitchen", Keys: []string{strconv.FormatUint(uint64(id), 10)}}
	}
	return nil
}

func kitchenIDByName(tx *gorm.DB, name string) (uint, error) {
	var kitchen model.Kitchen
	err := tx.Where("name = ?", name).Take(&kitchen).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, &ReferenceError{Entity: "kitchen", Keys: []string{name}}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to find kitchen: %w", err)
	}
	return kitchen.ID, nil
}

func ensureIngredients(tx *gorm.DB, ids []uint) error {
	var found []uint
	if err := tx.Model(&model.Ingredient{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return fmt.Errorf("failed to check ingredients: %w", err)
	}
	known := make(map[uint]struct{}, len(found))
	for _, id := range found {
		known[id] = struct{}{}
	}
	var missing []string
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			missing = append(missing, strconv.FormatUint(uint64(id), 10))
		}
	}
	if len(missing) > 0 {
		return &ReferenceError{Entity: "ingredient", Keys: missing}
	}
	return nil
}

// ingredientIDsByName resolves names to ids, keeping the order of names
func ingredientIDsByName(tx *gorm.DB, names []string) ([]uint, error) {
	names = uniqueNames(names)
	var ingredients []model.Ingredient
	if err := tx.Where("name IN ?", names).Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("failed to find ingredients: %w", err)
	}
	byName := make(map[string]uint, len(ingredients))
	for _, ing := range ingredients {
		byName[ing.Name] = ing.ID
	}
	ids := make([]uint, 0, len(names))
	var missing []string
	for _, name := range names {
		id, ok := byName[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		ids = append(ids, id)
	}
	if len(missing) > 0 {
		return nil, &ReferenceError{Entity: "ingredient", Keys: missing}
	}
	return ids, nil
}

func linkIngredients(tx *gorm.DB, recipeID uint, ingredientIDs []uint) error {
	if len(ingredientIDs) == 0 {
		return nil
	}
	links := make([]model.RecipeIngredient, 0, len(ingredientIDs))
	for _, id := range ingredientIDs {
		links = append(links, model.RecipeIngredient{RecipeID: recipeID, IngredientID: id})
	}
	if err := tx.Omit(clause.Associations).Create(&links).Error; err != nil {
		return fmt.Errorf("failed to link ingredients: %w", translate(err))
	}
	return nil
}

// translate maps constraint violations raised by the database to service errors
func translate(err error) error {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return fmt.Errorf("%w: %v", ErrReferenceNotFound, err)
	}
	return err
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func uniqueNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
