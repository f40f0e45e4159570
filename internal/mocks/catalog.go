package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/recipe-catalog/backend/internal/model"
)

// MockCatalogService is a mock implementation of the catalog service
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) ListKitchens(ctx context.Context) ([]model.Kitchen, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Kitchen), args.Error(1)
}

func (m *MockCatalogService) ListIngredients(ctx context.Context) ([]model.Ingredient, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Ingredient), args.Error(1)
}

func (m *MockCatalogService) EnsureKitchens(ctx context.Context, names []string) (int64, error) {
	args := m.Called(ctx, names)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCatalogService) EnsureIngredients(ctx context.Context, names []string) (int64, error) {
	args := m.Called(ctx, names)
	return args.Get(0).(int64), args.Error(1)
}
