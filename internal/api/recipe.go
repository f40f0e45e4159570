package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"github.com/pageza/recipe-catalog/backend/internal/service"
	"github.com/pageza/recipe-catalog/backend/internal/types"
	"github.com/pageza/recipe-catalog/backend/internal/validation"
)

type RecipeHandler struct {
	recipeService service.IRecipeService
	logger        *zap.Logger
	// mutationLimit guards create, update and delete; nil disables it
	mutationLimit gin.HandlerFunc
}

func NewRecipeHandler(recipeService service.IRecipeService, zl *zap.Logger) *RecipeHandler {
	return NewRecipeHandlerWithRateLimit(recipeService, zl, nil)
}

// NewRecipeHandlerWithRateLimit creates a handler whose mutating routes run behind limit
func NewRecipeHandlerWithRateLimit(recipeService service.IRecipeService, zl *zap.Logger, limit gin.HandlerFunc) *RecipeHandler {
	return &RecipeHandler{
		recipeService: recipeService,
		logger:        zl,
		mutationLimit: limit,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	mutating := []gin.HandlerFunc{}
	if h.mutationLimit != nil {
		mutating = append(mutating, h.mutationLimit)
	}

	recipes := router.Group("/recipe")
	{
		recipes.POST("/create", append(mutating, h.CreateRecipe)...)
		recipes.GET("/filter-by-ingredients", h.FilterByIngredients)
		recipes.GET("/search", h.SearchRecipes)
		recipes.GET("/:recipe_id", h.GetRecipe)
		recipes.PATCH("/:recipe_id", append(mutating, h.UpdateRecipe)...)
		recipes.DELETE("/:recipe_id", append(mutating, h.DeleteRecipe)...)
	}
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req types.CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	recipe, err := h.recipeService.CreateRecipe(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"text":   "success",
		"recipe": types.NewRecipeResponse(recipe),
	})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := recipeID(c)
	if err != nil {
		respondInvalid(c, err)
		return
	}

	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipe": types.NewRecipeResponse(recipe)})
}

// UpdateRecipe applies a partial update. An empty body changes nothing.
func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, err := recipeID(c)
	if err != nil {
		respondInvalid(c, err)
		return
	}

	var req types.UpdateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondInvalid(c, err)
		return
	}

	recipe, err := h.recipeService.UpdateRecipe(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"text":   "success",
		"recipe": types.NewRecipeResponse(recipe),
	})
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, err := recipeID(c)
	if err != nil {
		respondInvalid(c, err)
		return
	}

	if err := h.recipeService.DeleteRecipe(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"text": "Success delete"})
}

// FilterByIngredients lists recipes by ingredient names. include and exclude
// accept comma separated values and may be repeated.
func (h *RecipeHandler) FilterByIngredients(c *gin.Context) {
	var query types.FilterQuery
	// Bound without gin's validation: names are split on commas before they are checked.
	if err := binding.MapFormWithTag(&query, c.Request.URL.Query(), "form"); err != nil {
		respondInvalid(c, err)
		return
	}
	query.Normalize()
	if err := validation.Struct(&query); err != nil {
		respondInvalid(c, err)
		return
	}
	if conflicts := query.Conflicts(); len(conflicts) > 0 {
		respondInvalid(c, validation.Field("exclude", "ingredient both included and excluded: "+conflicts[0]))
		return
	}

	recipes, err := h.recipeService.FilterByIngredients(c.Request.Context(), &query)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, types.NewRecipeListResponse(recipes))
}

// SearchRecipes runs a full text query, best matches first
func (h *RecipeHandler) SearchRecipes(c *gin.Context) {
	var query types.SearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondInvalid(c, err)
		return
	}

	recipes, err := h.recipeService.SearchRecipes(c.Request.Context(), &query)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, types.NewRecipeListResponse(recipes))
}

// recipeID parses the path id; anything above the BIGINT range is rejected.
func recipeID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("recipe_id"), 10, 63)
	if err != nil || id == 0 {
		return 0, validation.Field("recipe_id", "must be a positive integer")
	}
	return uint(id), nil
}
