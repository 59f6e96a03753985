package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"recipe-matcher/internal/core/matching"
	"recipe-matcher/internal/infrastructure/config"
	"recipe-matcher/internal/infrastructure/metrics"
	"recipe-matcher/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const recommendationPrefix = "recipe:recommend:v1:"

// ErrCacheMiss 快取中沒有對應的推薦結果
var ErrCacheMiss = errors.New("cache miss")

// RecommendationCache 以 Redis 保存序列化的推薦結果
type RecommendationCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRecommendationCache 創建推薦快取，停用時回傳不做任何事的實例
func NewRecommendationCache(ctx context.Context, cfg config.RedisConfig) (*RecommendationCache, error) {
	if !cfg.Enabled {
		return &RecommendationCache{ttl: cfg.TTL}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 測試連接
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("推薦快取已連線", zap.String("addr", cfg.Addr), zap.Duration("ttl", cfg.TTL))
	return NewRecommendationCacheWithClient(client, cfg.TTL), nil
}

// NewRecommendationCacheWithClient 使用既有的 Redis client
func NewRecommendationCacheWithClient(client *redis.Client, ttl time.Duration) *RecommendationCache {
	return &RecommendationCache{client: client, ttl: ttl}
}

// Enabled 是否已連線 Redis
func (s *RecommendationCache) Enabled() bool {
	return s != nil && s.client != nil
}

// Get 獲取緩存
func (s *RecommendationCache) Get(ctx context.Context, user []string, cfg matching.Config) ([]matching.ScoredRecipe, error) {
	if !s.Enabled() {
		return nil, common.ErrCacheDisabled
	}

	key := RecommendationKey(user, cfg)
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.RecordCacheMiss(metrics.CacheRecommendations)
			common.LogCacheMiss(metrics.CacheRecommendations, key)
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get cache: %w", err)
	}

	var results []matching.ScoredRecipe
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache: %w", err)
	}

	metrics.RecordCacheHit(metrics.CacheRecommendations)
	common.LogCacheHit(metrics.CacheRecommendations, key)
	return results, nil
}

// Set 設置緩存
func (s *RecommendationCache) Set(ctx context.Context, user []string, cfg matching.Config, results []matching.ScoredRecipe) error {
	if !s.Enabled() {
		return nil
	}

	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendations: %w", err)
	}

	if err := s.client.Set(ctx, RecommendationKey(user, cfg), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Invalidate 刪除所有推薦結果，食譜資料變更後呼叫
func (s *RecommendationCache) Invalidate(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}

	deleted := 0
	iter := s.client.Scan(ctx, 0, recommendationPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete cache key: %w", err)
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache keys: %w", err)
	}

	metrics.RecordCacheEviction(metrics.CacheRecommendations, "invalidated", deleted)
	return nil
}

// Close 關閉 Redis 連線
func (s *RecommendationCache) Close() error {
	if !s.Enabled() {
		return nil
	}
	return s.client.Close()
}

// RecommendationKey 推薦結果的快取鍵。
// 排名結果與使用者食材順序無關，因此鍵也與順序無關；Workers 不影響結果，不列入。
func RecommendationKey(user []string, cfg matching.Config) string {
	lowered := make([]string, len(user))
	for i, u := range user {
		lowered[i] = strings.ToLower(u)
	}

	return fmt.Sprintf("%s%s:%d:%g:%d:%g",
		recommendationPrefix,
		common.HashStrings(lowered...),
		cfg.MinMatchCount,
		cfg.MinMatchPercentage,
		cfg.TopN,
		cfg.MatchThreshold,
	)
}
