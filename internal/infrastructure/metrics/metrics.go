// Package metrics 提供 Prometheus 指標，由 /metrics 端點輸出。
//
// 指標分類：
//   - HTTP 請求：數量與延遲
//   - 匹配與排名：排名耗時、推薦數量
//   - 快取：命中/未命中、淘汰
//   - 評估：最近一次評估的準確率
//   - 外部評分服務：呼叫結果
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 快取名稱標籤
const (
	CacheIngredients     = "ingredients"
	CacheRecommendations = "recommendations"
)

var (
	// HTTPRequestsTotal 依方法、路由與狀態碼統計請求數
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_matcher_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration 請求延遲
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recipe_matcher_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// RankDuration 單次排名（含所有候選食譜）的耗時
	RankDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recipe_matcher_rank_duration_seconds",
			Help:    "Duration of a ranking pass over all candidate recipes",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
	)

	// RankCandidates 每次排名的候選食譜數量
	RankCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recipe_matcher_rank_candidates",
			Help:    "Number of candidate recipes per ranking pass",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	// RecommendationsReturned 每次回傳的推薦數量
	RecommendationsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recipe_matcher_recommendations_returned",
			Help:    "Number of recommendations returned per request",
			Buckets: []float64{0, 1, 2, 3, 5, 10, 20},
		},
	)

	// CacheRequestsTotal 依快取與結果（hit/miss）統計
	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_matcher_cache_requests_total",
			Help: "Total number of cache lookups by result",
		},
		[]string{"cache", "result"},
	)

	// CacheEvictionsTotal 快取淘汰數
	CacheEvictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_matcher_cache_evictions_total",
			Help: "Total number of cache evictions",
		},
		[]string{"cache", "reason"},
	)

	// EvaluationAccuracy 最近一次評估的準確率
	EvaluationAccuracy = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recipe_matcher_evaluation_accuracy",
			Help: "Accuracy of the most recent evaluation run",
		},
	)

	// EvaluationCases 最近一次評估的測試案例數
	EvaluationCases = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recipe_matcher_evaluation_cases",
			Help: "Number of test cases in the most recent evaluation run",
		},
	)

	// ScorerRequestsTotal 外部評分服務呼叫結果
	ScorerRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_matcher_scorer_requests_total",
			Help: "Total number of auxiliary scorer requests by outcome",
		},
		[]string{"outcome"},
	)

	// RateLimitedTotal 被限流拒絕的請求數
	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recipe_matcher_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)
)

// RecordHTTPRequest 記錄一次 HTTP 請求
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordRank 記錄一次排名
func RecordRank(candidates, returned int, duration time.Duration) {
	RankDuration.Observe(duration.Seconds())
	RankCandidates.Observe(float64(candidates))
	RecommendationsReturned.Observe(float64(returned))
}

// RecordCacheHit 記錄快取命中
func RecordCacheHit(cache string) {
	CacheRequestsTotal.WithLabelValues(cache, "hit").Inc()
}

// RecordCacheMiss 記錄快取未命中
func RecordCacheMiss(cache string) {
	CacheRequestsTotal.WithLabelValues(cache, "miss").Inc()
}

// RecordCacheEviction 記錄快取淘汰，reason 例如 lru、expired、invalidated
func RecordCacheEviction(cache, reason string, n int) {
	if n <= 0 {
		return
	}
	CacheEvictionsTotal.WithLabelValues(cache, reason).Add(float64(n))
}

// RecordEvaluation 記錄評估結果
func RecordEvaluation(cases int, accuracy float64) {
	EvaluationCases.Set(float64(cases))
	EvaluationAccuracy.Set(accuracy)
}

// RecordScorer 記錄評分服務呼叫，outcome 例如 ok、error
func RecordScorer(outcome string) {
	ScorerRequestsTotal.WithLabelValues(outcome).Inc()
}
