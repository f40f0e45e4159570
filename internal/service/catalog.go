package service

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/recipe-catalog/backend/internal/model"
)

// CatalogService reads and seeds the kitchen and ingredient reference data
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

func (s *CatalogService) ListKitchens(ctx context.Context) ([]model.Kitchen, error) {
	kitchens := []model.Kitchen{}
	if err := s.db.WithContext(ctx).Order("name").Find(&kitchens).Error; err != nil {
		return nil, fmt.Errorf("failed to list kitchens: %w", err)
	}
	return kitchens, nil
}

func (s *CatalogService) ListIngredients(ctx context.Context) ([]model.Ingredient, error) {
	ingredients := []model.Ingredient{}
	if err := s.db.WithContext(ctx).Order("name").Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	return ingredients, nil
}

// EnsureKitchens inserts the kitchens that do not exist yet and returns how many were added
func (s *CatalogService) EnsureKitchens(ctx context.Context, names []string) (int64, error) {
	rows := make([]model.Kitchen, 0, len(names))
	for _, name := range cleanNames(names) {
		rows = append(rows, model.Kitchen{Name: name})
	}
	return s.insertMissing(ctx, &rows, len(rows), "kitchens")
}

// EnsureIngredients inserts the ingredients that do not exist yet and returns how many were added
func (s *CatalogService) EnsureIngredients(ctx context.Context, names []string) (int64, error) {
	rows := make([]model.Ingredient, 0, len(names))
	for _, name := range cleanNames(names) {
		rows = append(rows, model.Ingredient{Name: name})
	}
	return s.insertMissing(ctx, &rows, len(rows), "ingredients")
}

func (s *CatalogService) insertMissing(ctx context.Context, rows interface{}, n int, what string) (int64, error) {
	if n == 0 {
		return 0, nil
	}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(rows)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to seed %s: %w", what, result.Error)
	}
	return result.RowsAffected, nil
}

func cleanNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return uniqueNames(out)
}
