package recipe

import (
	"fmt"
	"net/http"

	"recipe-matcher/internal/core/matching"
	recipeService "recipe-matcher/internal/core/recipe"
	"recipe-matcher/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MatchRequest 比對兩組食材
type MatchRequest struct {
	UserIngredients   []string `json:"user_ingredients"`
	RecipeIngredients []string `json:"recipe_ingredients"`
}

// RecommendRequest 推薦請求，未提供的門檻使用伺服器預設
type RecommendRequest struct {
	Ingredients        []string `json:"ingredients"`
	TopN               *int     `json:"top_n,omitempty"`
	MinMatchCount      *int     `json:"min_match_count,omitempty"`
	MinMatchPercentage *float64 `json:"min_match_percentage,omitempty"`
	MatchThreshold     *float64 `json:"match_threshold,omitempty"`
}

// apply 以請求中的值覆寫預設設定
func (r RecommendRequest) apply(cfg matching.Config) matching.Config {
	if r.TopN != nil {
		cfg.TopN = *r.TopN
	}
	if r.MinMatchCount != nil {
		cfg.MinMatchCount = *r.MinMatchCount
	}
	if r.MinMatchPercentage != nil {
		cfg.MinMatchPercentage = *r.MinMatchPercentage
	}
	if r.MatchThreshold != nil {
		cfg.MatchThreshold = *r.MatchThreshold
	}
	return cfg
}

// RecommendResponse 推薦結果
type RecommendResponse struct {
	Success         bool        `json:"success"`
	Recommendations interface{} `json:"recommendations"`
	Count           int         `json:"count"`
	Message         string      `json:"message"`
}

// Handler 食譜處理程序
type Handler struct {
	service *recipeService.Service
}

// NewHandler 創建新的食譜處理程序
func NewHandler(service *recipeService.Service) *Handler {
	return &Handler{service: service}
}

// HandleMatch 比對使用者食材與單一食譜的食材
func (h *Handler) HandleMatch(c *gin.Context) {
	requestID := getRequestID(c)

	var req MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, requestID, common.ErrInvalidRequest.WithCause(err))
		return
	}

	result := h.service.Match(req.UserIngredients, req.RecipeIngredients)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result":  result,
	})
}

// HandleRecommend 依使用者食材推薦食譜
func (h *Handler) HandleRecommend(c *gin.Context) {
	requestID := getRequestID(c)

	req, cfg, ok := h.bindRecommend(c, requestID)
	if !ok {
		return
	}

	recs, err := h.service.Recommend(c.Request.Context(), req.Ingredients, cfg)
	if err != nil {
		respondError(c, requestID, err)
		return
	}

	common.LogInfo("推薦完成",
		zap.String("request_id", requestID),
		zap.Strings("ingredients", req.Ingredients),
		zap.Int("count", len(recs)),
	)

	c.JSON(http.StatusOK, RecommendResponse{
		Success:         true,
		Recommendations: recs,
		Count:           len(recs),
		Message:         recommendMessage(len(recs), cfg),
	})
}

// HandleRecommendWithSubstitutions 推薦結果附上替代食材
func (h *Handler) HandleRecommendWithSubstitutions(c *gin.Context) {
	requestID := getRequestID(c)

	req, cfg, ok := h.bindRecommend(c, requestID)
	if !ok {
		return
	}

	recs, err := h.service.RecommendWithSubstitutions(c.Request.Context(), req.Ingredients, cfg)
	if err != nil {
		respondError(c, requestID, err)
		return
	}

	message := recommendMessage(len(recs), cfg)
	if len(recs) > 0 {
		message = fmt.Sprintf("Found %d recipes with substitution options!", len(recs))
	}

	c.JSON(http.StatusOK, RecommendResponse{
		Success:         true,
		Recommendations: recs,
		Count:           len(recs),
		Message:         message,
	})
}

func (h *Handler) bindRecommend(c *gin.Context, requestID string) (RecommendRequest, matching.Config, bool) {
	var req RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, requestID, common.ErrInvalidRequest.WithCause(err))
		return req, matching.Config{}, false
	}
	if !hasIngredients(req.Ingredients) {
		respondError(c, requestID, common.ErrNoIngredients)
		return req, matching.Config{}, false
	}
	return req, req.apply(h.service.Defaults()), true
}

func recommendMessage(n int, cfg matching.Config) string {
	if n == 0 {
		return fmt.Sprintf("No recipes found with at least %d matching CORE ingredients and >%g%% match. Try adding more ingredients!",
			cfg.MinMatchCount, cfg.MinMatchPercentage)
	}
	return fmt.Sprintf("Found %d recipes matching at least %d of your CORE ingredients with >%g%% match!",
		n, cfg.MinMatchCount, cfg.MinMatchPercentage)
}

// HandleRecipeDetails 取得單一食譜
func (h *Handler) HandleRecipeDetails(c *gin.Context) {
	requestID := getRequestID(c)

	id, err := parseID(c)
	if err != nil {
		respondError(c, requestID, err)
		return
	}

	r, err := h.service.Recipe(c.Request.Context(), id)
	if err != nil {
		respondError(c, requestID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"recipe":  r,
	})
}

// HandleCreateRecipe 新增或更新食譜
func (h *Handler) HandleCreateRecipe(c *gin.Context) {
	requestID := getRequestID(c)

	var req matching.Recipe
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, requestID, common.ErrInvalidRequest.WithCause(err))
		return
	}

	saved, err := h.service.AddRecipe(c.Request.Context(), req)
	if err != nil {
		respondError(c, requestID, err)
		return
	}

	common.LogInfo("食譜已新增",
		zap.String("request_id", requestID),
		zap.Int64("recipe_id", saved.ID),
	)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"recipe":  saved,
	})
}
