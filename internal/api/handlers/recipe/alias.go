package recipe

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	core "github.com/mktu/recipe-app/internal/core/recipe"
	"github.com/mktu/recipe-app/internal/pkg/common"
)

// GenerateAliasesRequest is the body for POST /api/aliases/generate.
type GenerateAliasesRequest struct {
	Limit  int  `json:"limit"`
	DryRun bool `json:"dryRun"`
}

// HandleGenerateAliases triggers one alias reconciliation batch. Normally
// this runs from the jobs binary on a schedule; the endpoint exists for
// manual runs and dry-run inspection.
func (h *Handler) HandleGenerateAliases(c *gin.Context) {
	var req GenerateAliasesRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrCodeInvalidRequest,
			Message: "invalid request body",
		})
		return
	}

	result, err := h.aliasJob.Run(c.Request.Context(), core.AliasJobOptions{
		Limit:  req.Limit,
		DryRun: req.DryRun,
	})
	if err != nil {
		common.LogError("alias generation failed", zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
