package recipe

import (
	"context"
	"errors"
	"fmt"

	"recipe-matcher/internal/core/cache"
	"recipe-matcher/internal/core/scorer"
	"recipe-matcher/internal/infrastructure/config"
	"recipe-matcher/internal/infrastructure/store"
	"recipe-matcher/internal/pkg/common"

	"go.uber.org/zap"
)

// NewFromConfig 依設定建立資料來源、快取與評分服務並組成 Service
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Service, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to open recipe store: %w", err)
	}

	ingredients, err := cache.NewIngredientCache(cfg.Cache)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to initialize ingredient cache: %w", err)
	}

	recommendations, err := cache.NewRecommendationCache(ctx, cfg.Redis)
	if err != nil {
		// Redis 不可用時仍可提供服務，只是沒有結果快取
		common.LogWarn("推薦快取不可用，改為直接計算", zap.Error(err))
		recommendations = nil
	}

	var sc scorer.Scorer
	if remote := scorer.NewRemote(cfg.Scorer); remote != nil {
		sc = remote
	}

	common.LogInfo("食譜服務已初始化",
		zap.String("store", cfg.Store.Driver),
		zap.Bool("ingredient_cache", ingredients != nil),
		zap.Bool("recommendation_cache", recommendations.Enabled()),
		zap.Bool("scorer", sc != nil),
	)

	return NewService(st, ingredients, recommendations, sc, Options{
		Recommend:    cfg.Matching.Recommend(),
		Evaluation:   cfg.Matching.Evaluation(),
		FixturesPath: cfg.Evaluation.FixturesPath,
	}), nil
}

// Close 釋放資料來源與快取
func (s *Service) Close() error {
	return errors.Join(
		s.ingredients.Close(),
		s.recommendations.Close(),
		s.store.Close(),
	)
}
