package recipe

import (
	"errors"
	"io"
	"net/http"

	"recipe-matcher/internal/core/evaluation"
	"recipe-matcher/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EvaluateRequest 評估請求，欄位皆可省略
type EvaluateRequest struct {
	TopN               *int     `json:"top_n,omitempty"`
	MinMatchCount      *int     `json:"min_match_count,omitempty"`
	MinMatchPercentage *float64 `json:"min_match_percentage,omitempty"`
	MatchThreshold     *float64 `json:"match_threshold,omitempty"`
}

// HandleEvaluate 執行離線評估，?format=text 時回傳文字報告
func (h *Handler) HandleEvaluate(c *gin.Context) {
	requestID := getRequestID(c)

	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, requestID, common.ErrInvalidRequest.WithCause(err))
		return
	}

	cfg := RecommendRequest{
		TopN:               req.TopN,
		MinMatchCount:      req.MinMatchCount,
		MinMatchPercentage: req.MinMatchPercentage,
		MatchThreshold:     req.MatchThreshold,
	}.apply(h.service.EvaluationDefaults())

	report, err := h.service.Evaluate(c.Request.Context(), cfg)
	if err != nil {
		if errors.Is(err, evaluation.ErrNoRecipes) {
			err = common.ErrNotFound.WithCause(err)
		}
		respondError(c, requestID, err)
		return
	}

	common.LogInfo("評估請求完成",
		zap.String("request_id", requestID),
		zap.Int("test_cases", report.TotalTests),
		zap.Float64("accuracy", report.Accuracy),
	)

	if c.Query("format") == "text" {
		c.Header("Content-Type", "text/plain; charset=utf-8")
		c.Status(http.StatusOK)
		if err := report.WriteText(c.Writer); err != nil {
			common.LogError("寫入評估報告失敗", zap.String("request_id", requestID), zap.Error(err))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"report":  report,
	})
}
