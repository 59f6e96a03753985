package matching

import "fmt"

// 預設匹配門檻
const (
	DefaultMinMatchCount      = 2
	DefaultMinMatchPercentage = 40.0
	DefaultTopN               = 5
	DefaultMatchThreshold     = 0.7

	// EvaluationMinMatchPercentage 評估與測試情境使用較寬鬆的百分比門檻
	EvaluationMinMatchPercentage = 30.0
)

// Config 排名與過濾設定
type Config struct {
	MinMatchCount      int     `json:"min_match_count"`
	MinMatchPercentage float64 `json:"min_match_percentage"`
	TopN               int     `json:"top_n"`
	MatchThreshold     float64 `json:"match_threshold"`
	// Workers 為 0 或 1 時依序計算
	Workers int `json:"workers,omitempty"`
}

// ConfigError 表示呼叫端傳入了無效設定
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid matching config: %s %s", e.Field, e.Reason)
}

// DefaultConfig 直接推薦使用的設定
func DefaultConfig() Config {
	return Config{
		MinMatchCount:      DefaultMinMatchCount,
		MinMatchPercentage: DefaultMinMatchPercentage,
		TopN:               DefaultTopN,
		MatchThreshold:     DefaultMatchThreshold,
	}
}

// EvaluationConfig 評估使用的設定
func EvaluationConfig() Config {
	cfg := DefaultConfig()
	cfg.MinMatchPercentage = EvaluationMinMatchPercentage
	return cfg
}

// Validate 檢查設定是否合法
func (c Config) Validate() error {
	switch {
	case c.MinMatchCount < 0:
		return &ConfigError{Field: "min_match_count", Reason: "must be >= 0"}
	case c.TopN <= 0:
		return &ConfigError{Field: "top_n", Reason: "must be > 0"}
	case c.MinMatchPercentage < 0 || c.MinMatchPercentage > 100:
		return &ConfigError{Field: "min_match_percentage", Reason: "must be within [0, 100]"}
	case c.MatchThreshold < 0 || c.MatchThreshold > 1:
		return &ConfigError{Field: "match_threshold", Reason: "must be within [0, 1]"}
	case c.Workers < 0:
		return &ConfigError{Field: "workers", Reason: "must be >= 0"}
	}
	return nil
}

// workers 實際使用的 worker 數，不超過候選數量
func (c Config) workers(candidates int) int {
	n := c.Workers
	if n > candidates {
		n = candidates
	}
	if n < 1 {
		n = 1
	}
	return n
}
