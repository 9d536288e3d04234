package recipe

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mktu/recipe-app/internal/core/recipe"
	"github.com/mktu/recipe-app/internal/pkg/common"
)

// CatalogStore lists the reviewed ingredient catalog for the picker UI.
type CatalogStore interface {
	ListIngredientsByCategory(ctx context.Context) (map[string][]recipe.CatalogEntry, error)
}

// Handler serves the recipe API.
type Handler struct {
	parseSvc  *recipe.ParseService
	recipeSvc *recipe.Service
	searchSvc *recipe.SearchService
	aliasJob  *recipe.AliasJob
	catalog   CatalogStore
}

// NewHandler creates the recipe handler.
func NewHandler(parseSvc *recipe.ParseService, recipeSvc *recipe.Service, searchSvc *recipe.SearchService, aliasJob *recipe.AliasJob, catalog CatalogStore) *Handler {
	return &Handler{
		parseSvc:  parseSvc,
		recipeSvc: recipeSvc,
		searchSvc: searchSvc,
		aliasJob:  aliasJob,
		catalog:   catalog,
	}
}

// userID pulls the caller identity set by the upstream auth proxy. An
// absent header is a client error: nothing here is anonymous.
func userID(c *gin.Context) (string, bool) {
	id := c.GetHeader("X-User-ID")
	if id == "" {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrCodeInvalidRequest,
			Message: "X-User-ID header is required",
		})
		return "", false
	}
	return id, true
}

func respondError(c *gin.Context, err error) {
	if customErr, ok := err.(*common.CustomError); ok {
		c.JSON(customErr.Status, common.ErrorResponse{
			Code:    customErr.Code,
			Message: customErr.Message,
		})
		return
	}
	if common.IsValidationError(err) {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrCodeInvalidRequest,
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusInternalServerError, common.ErrorResponse{
		Code:    common.ErrCodeInternalError,
		Message: "internal server error",
	})
}
