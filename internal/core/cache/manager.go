package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"recipe-matcher/internal/core/matching"
	"recipe-matcher/internal/infrastructure/config"
	"recipe-matcher/internal/infrastructure/metrics"
	"recipe-matcher/internal/pkg/common"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// IngredientCache 食譜食材清單快取，以食譜 ID 為鍵。
//
// 條目保存食材原文的指紋，食譜內容改變時自動視為未命中。
// 方法對 nil 接收者安全，此時直接計算不做快取。
type IngredientCache struct {
	cfg   config.CacheConfig
	store *lru.Cache[int64, cacheEntry]
	now   func() time.Time
	stats cacheStats

	stop     chan struct{}
	stopOnce sync.Once
}

// cacheEntry 緩存條目
type cacheEntry struct {
	list        matching.IngredientList
	fingerprint string
	expiresAt   time.Time
}

// cacheStats 緩存統計
type cacheStats struct {
	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// Stats 快取統計資訊
type Stats struct {
	Size      int     `json:"size"`
	MaxSize   int     `json:"max_size"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	HitRatio  float64 `json:"hit_ratio"`
}

// NewIngredientCache 建立食材快取，停用時回傳 nil
func NewIngredientCache(cfg config.CacheConfig) (*IngredientCache, error) {
	if !cfg.Enabled {
		common.LogInfo("Ingredient cache disabled")
		return nil, nil
	}

	store, err := lru.New[int64, cacheEntry](cfg.MaxSize)
	if err != nil {
		return nil, err
	}

	c := &IngredientCache{
		cfg:   cfg,
		store: store,
		now:   time.Now,
		stop:  make(chan struct{}),
	}

	if cfg.TTL > 0 && cfg.CleanupInterval > 0 {
		go c.startCleanup()
	}

	common.LogInfo("食材快取已初始化",
		zap.Int("最大容量", cfg.MaxSize),
		zap.Duration("存活時間", cfg.TTL),
		zap.Duration("清理間隔", cfg.CleanupInterval),
	)

	return c, nil
}

// Lookup 取得食譜已準備好的食材清單，可直接作為 matching.IngredientLookup
func (c *IngredientCache) Lookup(recipe matching.Recipe) matching.IngredientList {
	if c == nil {
		return matching.NewIngredientList(recipe.Ingredients)
	}

	fp := fingerprint(recipe.Ingredients)
	if list, ok := c.get(recipe.ID, fp); ok {
		return list
	}

	list := matching.NewIngredientList(recipe.Ingredients)
	c.set(recipe.ID, fp, list)
	return list
}

func (c *IngredientCache) get(id int64, fp string) (matching.IngredientList, bool) {
	entry, ok := c.store.Get(id)
	if !ok {
		c.miss()
		return matching.IngredientList{}, false
	}

	// 檢查是否過期
	if c.cfg.TTL > 0 && c.now().After(entry.expiresAt) {
		c.store.Remove(id)
		c.stats.evictions.Add(1)
		metrics.RecordCacheEviction(metrics.CacheIngredients, "expired", 1)
		c.miss()
		return matching.IngredientList{}, false
	}

	// 食譜內容已變更
	if entry.fingerprint != fp {
		c.miss()
		return matching.IngredientList{}, false
	}

	c.stats.hits.Add(1)
	metrics.RecordCacheHit(metrics.CacheIngredients)
	return entry.list, true
}

func (c *IngredientCache) set(id int64, fp string, list matching.IngredientList) {
	entry := cacheEntry{list: list, fingerprint: fp}
	if c.cfg.TTL > 0 {
		entry.expiresAt = c.now().Add(c.cfg.TTL)
	}

	if evicted := c.store.Add(id, entry); evicted {
		c.stats.evictions.Add(1)
		metrics.RecordCacheEviction(metrics.CacheIngredients, "lru", 1)
	}
}

func (c *IngredientCache) miss() {
	c.stats.misses.Add(1)
	metrics.RecordCacheMiss(metrics.CacheIngredients)
}

// Invalidate 移除單一食譜的條目，食譜寫入後呼叫
func (c *IngredientCache) Invalidate(id int64) {
	if c == nil {
		return
	}
	if c.store.Remove(id) {
		metrics.RecordCacheEviction(metrics.CacheIngredients, "invalidated", 1)
		common.LogDebug("食材快取已失效", zap.Int64("recipe_id", id))
	}
}

// Purge 清空所有條目
func (c *IngredientCache) Purge() {
	if c == nil {
		return
	}
	n := c.store.Len()
	c.store.Purge()
	metrics.RecordCacheEviction(metrics.CacheIngredients, "purged", n)
}

// Stats 獲取緩存統計信息
func (c *IngredientCache) Stats() Stats {
	if c == nil {
		return Stats{}
	}

	hits := c.stats.hits.Load()
	misses := c.stats.misses.Load()
	ratio := 0.0
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}

	return Stats{
		Size:      c.store.Len(),
		MaxSize:   c.cfg.MaxSize,
		Hits:      hits,
		Misses:    misses,
		Evictions: c.stats.evictions.Load(),
		HitRatio:  ratio,
	}
}

// startCleanup 定期清理過期條目
func (c *IngredientCache) startCleanup() {
	ticker := time.NewTicker(c.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stop:
			return
		}
	}
}

// cleanup 清理過期的緩存
func (c *IngredientCache) cleanup() int {
	now := c.now()
	count := 0

	for _, id := range c.store.Keys() {
		if entry, ok := c.store.Peek(id); ok && now.After(entry.expiresAt) {
			c.store.Remove(id)
			count++
		}
	}

	if count > 0 {
		c.stats.evictions.Add(int64(count))
		metrics.RecordCacheEviction(metrics.CacheIngredients, "expired", count)
		common.LogDebug("Cleaned up expired cache entries",
			zap.Int("count", count),
			zap.Int("remaining_size", c.store.Len()),
		)
	}

	return count
}

// Close 停止清理協程並清空快取
func (c *IngredientCache) Close() error {
	if c == nil {
		return nil
	}

	c.stopOnce.Do(func() { close(c.stop) })
	stats := c.Stats()
	c.store.Purge()

	common.LogInfo("食材快取已關閉",
		zap.Int64("命中次數", stats.Hits),
		zap.Int64("未命中次數", stats.Misses),
		zap.Int64("淘汰次數", stats.Evictions),
	)
	return nil
}

// fingerprint 計算食材原文的 SHA-256，順序敏感
func fingerprint(ingredients []string) string {
	hash := sha256.Sum256([]byte(strings.Join(ingredients, "\x00")))
	return hex.EncodeToString(hash[:])
}
