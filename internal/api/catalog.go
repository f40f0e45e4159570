package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/recipe-catalog/backend/internal/service"
	"github.com/pageza/recipe-catalog/backend/internal/types"
)

// CatalogHandler serves the kitchen and ingredient reference lists
type CatalogHandler struct {
	catalogService service.ICatalogService
	logger         *zap.Logger
}

func NewCatalogHandler(catalogService service.ICatalogService, zl *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService, logger: zl}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/kitchen", h.ListKitchens)
	router.GET("/ingredient", h.ListIngredients)
}

func (h *CatalogHandler) ListKitchens(c *gin.Context) {
	kitchens, err := h.catalogService.ListKitchens(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	out := make([]types.KitchenResponse, 0, len(kitchens))
	for _, k := range kitchens {
		out = append(out, types.KitchenResponse{ID: k.ID, Name: k.Name})
	}
	c.JSON(http.StatusOK, out)
}

func (h *CatalogHandler) ListIngredients(c *gin.Context) {
	ingredients, err := h.catalogService.ListIngredients(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	out := make([]types.IngredientResponse, 0, len(ingredients))
	for _, i := range ingredients {
		out = append(out, types.IngredientResponse{ID: i.ID, Name: i.Name})
	}
	c.JSON(http.StatusOK, out)
}
