package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/recipe-catalog/backend/internal/middleware"
	"github.com/pageza/recipe-catalog/backend/internal/service"
	"github.com/pageza/recipe-catalog/backend/internal/types"
	"github.com/pageza/recipe-catalog/backend/internal/validation"
)

// respondInvalid answers 422 for input that failed binding or validation
func respondInvalid(c *gin.Context, err error) {
	details, ok := validation.Describe(err)
	if !ok {
		details = []types.FieldError{{Field: "body", Reason: err.Error()}}
	}
	c.JSON(http.StatusUnprocessableEntity, types.ErrorResponse{
		Error:   "validation failed",
		Details: details,
	})
}

// respondError maps a service error to its status code. Unexpected errors
// are logged with the request id and hidden from the client.
func respondError(c *gin.Context, zl *zap.Logger, err error) {
	var refErr *service.ReferenceError
	switch {
	case errors.Is(err, service.ErrRecipeNotFound):
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: "Recipe not found"})
	case errors.As(err, &refErr):
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   refErr.Error(),
			Entity:  refErr.Entity,
			Missing: refErr.Keys,
		})
	case errors.Is(err, service.ErrReferenceNotFound):
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: service.ErrReferenceNotFound.Error()})
	default:
		_ = c.Error(err)
		zl.Error("request failed",
			zap.Error(err),
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("route", c.FullPath()),
		)
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "internal server error"})
	}
}
