package recipe

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	core "github.com/mktu/recipe-app/internal/core/recipe"
	"github.com/mktu/recipe-app/internal/pkg/common"
)

// CreateRequest is the body for POST /api/recipes.
type CreateRequest struct {
	URL                string   `json:"url" binding:"required"`
	Title              string   `json:"title" binding:"required"`
	SourceName         string   `json:"sourceName"`
	ImageURL           string   `json:"imageUrl"`
	Memo               string   `json:"memo"`
	IngredientIDs      []string `json:"ingredientIds"`
	RawIngredients     []string `json:"rawIngredients"`
	CookingTimeMinutes *int     `json:"cookingTimeMinutes"`
}

// HandleCreate saves a recipe. A URL the user already saved comes back as
// 409 so the client can say "already saved" instead of showing a failure.
func (h *Handler) HandleCreate(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrCodeInvalidRequest,
			Message: "url and title are required",
		})
		return
	}

	if len(req.IngredientIDs) > 5 {
		req.IngredientIDs = req.IngredientIDs[:5]
	}

	id, err := h.recipeSvc.Create(c.Request.Context(), core.CreateInput{
		UserID:             uid,
		URL:                req.URL,
		Title:              req.Title,
		SourceName:         req.SourceName,
		ImageURL:           req.ImageURL,
		Memo:               req.Memo,
		IngredientIDs:      req.IngredientIDs,
		RawIngredients:     req.RawIngredients,
		CookingTimeMinutes: req.CookingTimeMinutes,
	})
	if errors.Is(err, core.ErrDuplicateURL) {
		respondError(c, common.ErrDuplicateRecipeURL)
		return
	}
	if err != nil {
		common.LogError("recipe create failed",
			zap.String("user_id", uid),
			zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// HandleList serves GET /api/recipes: hybrid search with optional text
// query, ingredient filter and sort order.
func (h *Handler) HandleList(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	sort := core.SortOrder(c.DefaultQuery("sort", string(core.SortNewest)))
	if !core.ValidSortOrder(sort) {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrCodeInvalidRequest,
			Message: "unknown sort order",
		})
		return
	}

	var ingredientIDs []string
	if raw := c.Query("ingredients"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ingredientIDs = append(ingredientIDs, id)
			}
		}
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, common.ErrorResponse{
				Code:    common.ErrCodeInvalidRequest,
				Message: "limit must be a non-negative integer",
			})
			return
		}
		limit = n
	}

	results, err := h.searchSvc.Search(c.Request.Context(), core.SearchQuery{
		UserID:        uid,
		Text:          c.Query("q"),
		IngredientIDs: ingredientIDs,
		Sort:          sort,
		Limit:         limit,
	})
	if err != nil {
		common.LogError("recipe search failed",
			zap.String("user_id", uid),
			zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipes": results})
}

// HandleView records that the user opened a recipe.
func (h *Handler) HandleView(c *gin.Context) {
	if _, ok := userID(c); !ok {
		return
	}

	id := c.Param("id")
	if err := h.recipeSvc.RecordView(c.Request.Context(), id); err != nil {
		common.LogError("failed to record view",
			zap.String("recipe_id", id),
			zap.Error(err))
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
