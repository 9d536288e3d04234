package recipe

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mktu/recipe-app/internal/pkg/common"
)

// ParseRequest is the body for POST /api/recipes/parse.
type ParseRequest struct {
	URL string `json:"url" binding:"required"`
}

// HandleParse runs the extraction chain against a URL and returns the
// draft with resolved ingredients. Extraction failure is not an error:
// the worst case is an empty draft the user fills in manually.
func (h *Handler) HandleParse(c *gin.Context) {
	var req ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrCodeInvalidRequest,
			Message: "url is required",
		})
		return
	}

	parsed, err := url.Parse(req.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrCodeInvalidRequest,
			Message: "url must be absolute",
		})
		return
	}

	result, err := h.parseSvc.Parse(c.Request.Context(), req.URL)
	if err != nil {
		common.LogError("recipe parse failed",
			zap.String("url", req.URL),
			zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
