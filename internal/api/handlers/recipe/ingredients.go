package recipe

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mktu/recipe-app/internal/pkg/common"
)

// HandleIngredients serves GET /api/ingredients: the reviewed catalog
// grouped by category, for the ingredient picker.
func (h *Handler) HandleIngredients(c *gin.Context) {
	grouped, err := h.catalog.ListIngredientsByCategory(c.Request.Context())
	if err != nil {
		common.LogError("failed to list ingredients", zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ingredients": grouped})
}
