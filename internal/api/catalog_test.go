package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/pageza/recipe-catalog/backend/internal/mocks"
	"github.com/pageza/recipe-catalog/backend/internal/model"
)

func setupCatalogRouter(svc *mocks.MockCatalogService) *gin.Engine {
	router := gin.New()
	NewCatalogHandler(svc, zap.NewNop()).RegisterRoutes(router.Group(""))
	return router
}

func TestListKitchens(t *testing.T) {
	svc := new(mocks.MockCatalogService)
	svc.On("ListKitchens", mock.Anything).Return([]model.Kitchen{{ID: 2, Name: "French"}, {ID: 1, Name: "Italian"}}, nil)

	w := doRequest(t, setupCatalogRouter(svc), http.MethodGet, "/kitchen", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":2,"name":"French"},{"id":1,"name":"Italian"}]`, w.Body.String())
}

func TestListIngredients(t *testing.T) {
	svc := new(mocks.MockCatalogService)
	svc.On("ListIngredients", mock.Anything).Return([]model.Ingredient{}, nil).Once()
	svc.On("ListIngredients", mock.Anything).Return(nil, errors.New("database is closed")).Once()
	router := setupCatalogRouter(svc)

	w := doRequest(t, router, http.MethodGet, "/ingredient", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())

	w = doRequest(t, router, http.MethodGet, "/ingredient", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}
