package scorer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"recipe-matcher/internal/infrastructure/config"
	"recipe-matcher/internal/infrastructure/metrics"
	"recipe-matcher/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Scorer 輔助評分模型，分數只做為附註，不影響排名
type Scorer interface {
	Score(ctx context.Context, features Features) (float64, error)
}

// Remote 透過 HTTP 呼叫外部評分服務
type Remote struct {
	client *resty.Client
}

// NewRemote 創建外部評分服務客戶端，停用時回傳 nil
func NewRemote(cfg config.ScorerConfig) *Remote {
	if !cfg.Enabled {
		return nil
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "recipe-matcher")

	common.LogInfo("外部評分服務已設定", zap.String("base_url", cfg.BaseURL))
	return &Remote{client: client}
}

// Score 將特徵送至 <base_url>/score，回應格式為 {"score": 0.87}
func (r *Remote) Score(ctx context.Context, features Features) (float64, error) {
	resp, err := r.client.R().
		SetContext(ctx).
		SetBody(features).
		Post("/score")

	if err != nil {
		metrics.RecordScorer("error")
		return 0, fmt.Errorf("failed to send request to scorer: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		metrics.RecordScorer("error")
		return 0, fmt.Errorf("scorer returned status %d: %s", resp.StatusCode(), resp.String())
	}

	var result struct {
		Score *float64 `json:"score"`
	}
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		metrics.RecordScorer("error")
		return 0, fmt.Errorf("failed to parse scorer response: %w", err)
	}
	if result.Score == nil {
		metrics.RecordScorer("error")
		return 0, fmt.Errorf("no score in scorer response")
	}

	metrics.RecordScorer("ok")
	return *result.Score, nil
}
