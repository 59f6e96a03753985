package recipe

import (
	"fmt"
	"net/http"
	"strings"

	recipeService "recipe-matcher/internal/core/recipe"
	"recipe-matcher/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// RecipeSubstitutionsRequest 指定食譜的替代分析請求
type RecipeSubstitutionsRequest struct {
	UserIngredients []string `json:"user_ingredients"`
}

// RecipeSubstitutionsResponse 替代分析結果
type RecipeSubstitutionsResponse struct {
	Success bool `json:"success"`
	*recipeService.SubstitutionAnalysis
	Message string `json:"message"`
}

// HandleRecipeSubstitutions 分析使用者食材能否製作指定食譜
func (h *Handler) HandleRecipeSubstitutions(c *gin.Context) {
	requestID := getRequestID(c)

	id, err := parseID(c)
	if err != nil {
		respondError(c, requestID, err)
		return
	}

	var req RecipeSubstitutionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, requestID, common.ErrInvalidRequest.WithCause(err))
		return
	}

	analysis, err := h.service.RecipeSubstitutions(c.Request.Context(), id, req.UserIngredients)
	if err != nil {
		respondError(c, requestID, err)
		return
	}

	c.JSON(http.StatusOK, RecipeSubstitutionsResponse{
		Success:              true,
		SubstitutionAnalysis: analysis,
		Message: fmt.Sprintf("You have %d of %d ingredients (%.0f%%)",
			analysis.MatchingCount, analysis.TotalIngredients, analysis.UsabilityPercentage),
	})
}

// HandleSubstitutes 查詢單一食材的替代品
func (h *Handler) HandleSubstitutes(c *gin.Context) {
	requestID := getRequestID(c)

	ingredient := strings.TrimSpace(c.Param("ingredient"))
	subs, err := h.service.Substitutes(c.Request.Context(), ingredient)
	if err != nil {
		respondError(c, requestID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"ingredient":  ingredient,
		"substitutes": subs,
		"count":       len(subs),
	})
}
