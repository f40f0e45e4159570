package service

import (
	"context"

	"github.com/pageza/recipe-catalog/backend/internal/model"
	"github.com/pageza/recipe-catalog/backend/internal/types"
)

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	CreateRecipe(ctx context.Context, req *types.CreateRecipeRequest) (*model.Recipe, error)
	GetRecipe(ctx context.Context, id uint) (*model.Recipe, error)
	UpdateRecipe(ctx context.Context, id uint, req *types.UpdateRecipeRequest) (*model.Recipe, error)
	DeleteRecipe(ctx context.Context, id uint) error
	FilterByIngredients(ctx context.Context, filter *types.FilterQuery) ([]model.Recipe, error)
	SearchRecipes(ctx context.Context, query *types.SearchQuery) ([]model.Recipe, error)
}

// ICatalogService defines the interface for kitchen and ingredient reference data
type ICatalogService interface {
	ListKitchens(ctx context.Context) ([]model.Kitchen, error)
	ListIngredients(ctx context.Context) ([]model.Ingredient, error)
	EnsureKitchens(ctx context.Context, names []string) (int64, error)
	EnsureIngredients(ctx context.Context, names []string) (int64, error)
}
