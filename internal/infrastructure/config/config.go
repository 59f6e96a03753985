package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"recipe-matcher/internal/core/matching"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Matching   MatchingConfig   `mapstructure:"matching"`
	Store      StoreConfig      `mapstructure:"store"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Scorer     ScorerConfig     `mapstructure:"scorer"`
	Evaluation EvaluationConfig `mapstructure:"evaluation"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	LogLevel   string           `mapstructure:"log_level"`
	LogDir     string           `mapstructure:"log_dir"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
	// DedupWindow 相同寫入請求的去重時間窗，0 表示停用
	DedupWindow    time.Duration `mapstructure:"dedup_window"`
}

// MatchingConfig 食材匹配門檻
type MatchingConfig struct {
	MinMatchCount          int     `mapstructure:"min_match_count"`
	MinMatchPercentage     float64 `mapstructure:"min_match_percentage"`
	EvalMinMatchPercentage float64 `mapstructure:"eval_min_match_percentage"`
	TopN                   int     `mapstructure:"top_n"`
	MatchThreshold         float64 `mapstructure:"match_threshold"`
	Workers                int     `mapstructure:"workers"`
}

// StoreConfig 食譜資料來源
type StoreConfig struct {
	Driver      string `mapstructure:"driver"` // file | postgres
	RecipesPath string `mapstructure:"recipes_path"`
	DSN         string `mapstructure:"dsn"`
}

// CacheConfig 食材快取配置
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RedisConfig 推薦結果快取
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// ScorerConfig 外部分類模型
type ScorerConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// EvaluationConfig 評估設定
type EvaluationConfig struct {
	FixturesPath string `mapstructure:"fixtures_path"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// Recommend 直接推薦使用的匹配設定
func (m MatchingConfig) Recommend() matching.Config {
	return matching.Config{
		MinMatchCount:      m.MinMatchCount,
		MinMatchPercentage: m.MinMatchPercentage,
		TopN:               m.TopN,
		MatchThreshold:     m.MatchThreshold,
		Workers:            m.Workers,
	}
}

// Evaluation 評估使用的匹配設定，僅百分比門檻不同
func (m MatchingConfig) Evaluation() matching.Config {
	cfg := m.Recommend()
	cfg.MinMatchPercentage = m.EvalMinMatchPercentage
	return cfg
}

// LoadConfig 載入設定，configDir 為空時使用目前目錄
func LoadConfig(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = "."
	}

	// .env 為選用
	if err := godotenv.Load(configDir + "/.env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	// 設定環境變數前綴
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定常用環境變量
	_ = v.BindEnv("store.dsn", "DATABASE_URL")
	_ = v.BindEnv("redis.addr", "REDIS_ADDR")
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("scorer.base_url", "SCORER_URL")
	_ = v.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	_ = v.BindEnv("log_level", "LOG_LEVEL")

	// 設定檔 config.yaml 為選用
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "recipe-matcher")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "30s")
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.dedup_window", "2s")

	// 匹配設定
	v.SetDefault("matching.min_match_count", matching.DefaultMinMatchCount)
	v.SetDefault("matching.min_match_percentage", matching.DefaultMinMatchPercentage)
	v.SetDefault("matching.eval_min_match_percentage", matching.EvaluationMinMatchPercentage)
	v.SetDefault("matching.top_n", matching.DefaultTopN)
	v.SetDefault("matching.match_threshold", matching.DefaultMatchThreshold)
	v.SetDefault("matching.workers", 4)

	// 資料來源
	v.SetDefault("store.driver", "file")
	v.SetDefault("store.recipes_path", "data/recipes.json")

	// 快取設定
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.max_size", 1000)
	v.SetDefault("cache.ttl", "1h")
	v.SetDefault("cache.cleanup_interval", "10m")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", "10m")

	v.SetDefault("scorer.enabled", false)
	v.SetDefault("scorer.timeout", "5s")

	v.SetDefault("evaluation.fixtures_path", "test_cases.json")

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_dir", "logs")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	if err := config.Matching.Recommend().Validate(); err != nil {
		return err
	}
	if err := config.Matching.Evaluation().Validate(); err != nil {
		return err
	}

	switch config.Store.Driver {
	case "file":
		if config.Store.RecipesPath == "" {
			return fmt.Errorf("store.recipes_path is required for file store")
		}
	case "postgres":
		if config.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required for postgres store")
		}
	default:
		return fmt.Errorf("unknown store driver %q", config.Store.Driver)
	}

	if config.Cache.Enabled {
		if config.Cache.MaxSize <= 0 {
			return fmt.Errorf("invalid cache max size")
		}
		if config.Cache.TTL < 0 {
			return fmt.Errorf("invalid cache ttl")
		}
		if config.Cache.CleanupInterval <= 0 {
			return fmt.Errorf("invalid cache cleanup interval")
		}
	}

	if config.Redis.Enabled && config.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required when redis is enabled")
	}

	if config.Scorer.Enabled && config.Scorer.BaseURL == "" {
		return fmt.Errorf("scorer.base_url is required when scorer is enabled")
	}

	if config.RateLimit.Enabled && (config.RateLimit.Requests <= 0 || config.RateLimit.Window <= 0) {
		return fmt.Errorf("invalid rate limit")
	}

	return nil
}
