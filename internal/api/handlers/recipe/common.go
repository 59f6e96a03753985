package recipe

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"recipe-matcher/internal/core/matching"
	"recipe-matcher/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// getRequestID 優先使用 requestid 中間件產生的 ID
func getRequestID(c *gin.Context) string {
	if id := requestid.Get(c); id != "" {
		return id
	}
	id := c.GetHeader("X-Request-ID")
	if id == "" {
		id = common.GenerateUUID()
		c.Header("X-Request-ID", id)
	}
	return id
}

// respondError 將錯誤轉為統一的錯誤響應
func respondError(c *gin.Context, requestID string, err error) {
	var cfgErr *matching.ConfigError
	var ce *common.CustomError
	if errors.As(err, &cfgErr) {
		ce = common.ErrInvalidConfig.WithCause(err)
	} else {
		ce = common.AsCustomError(err)
	}

	fields := []zap.Field{
		zap.String("request_id", requestID),
		zap.String("code", ce.Code),
		zap.Error(err),
	}
	if ce.Status >= http.StatusInternalServerError {
		common.LogError("請求處理失敗", fields...)
	} else {
		common.LogWarn("請求處理失敗", fields...)
	}

	resp := common.ErrorResponse{
		Success: false,
		Code:    ce.Code,
		Message: ce.Message,
	}
	if ce.Err != nil && (ce.Status < http.StatusInternalServerError || gin.Mode() == gin.DebugMode) {
		resp.Details = ce.Err.Error()
	}
	c.JSON(ce.Status, resp)
}

// parseID 解析路徑中的食譜 ID
func parseID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, common.NewValidationError("invalid recipe id")
	}
	return id, nil
}

// hasIngredients 至少一個非空白食材
func hasIngredients(items []string) bool {
	for _, item := range items {
		if strings.TrimSpace(item) != "" {
			return true
		}
	}
	return false
}
