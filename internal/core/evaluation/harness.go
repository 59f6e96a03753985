package evaluation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"recipe-matcher/internal/core/matching"
	"recipe-matcher/internal/infrastructure/metrics"
	"recipe-matcher/internal/pkg/common"

	"go.uber.org/zap"
)

// RecipeSource 提供評估用的食譜
type RecipeSource interface {
	ListRecipes(ctx context.Context) ([]matching.Recipe, error)
}

// Harness 載入或產生案例後執行評估
type Harness struct {
	source       RecipeSource
	fixturesPath string
	cfg          matching.Config
	generate     func([]matching.Recipe) []TestCase
}

// NewHarness 創建評估器，fixturesPath 為空時每次重新產生案例且不寫檔
func NewHarness(source RecipeSource, fixturesPath string, cfg matching.Config) *Harness {
	return &Harness{
		source:       source,
		fixturesPath: fixturesPath,
		cfg:          cfg,
		generate:     GenerateTestCases,
	}
}

// WithFixtures 改用指定的案例檔，空字串表示不讀寫檔案
func (h *Harness) WithFixtures(path string) *Harness {
	h.fixturesPath = path
	return h
}

// WithGenerator 沒有案例檔時改用 fn 產生案例
func (h *Harness) WithGenerator(fn func([]matching.Recipe) []TestCase) *Harness {
	h.generate = fn
	return h
}

// Run 執行一次完整評估
func (h *Harness) Run(ctx context.Context) (*Report, error) {
	start := time.Now()

	all, err := h.source.ListRecipes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	recipes := PrepareRecipes(all)
	if len(recipes) == 0 {
		return nil, ErrNoRecipes
	}

	cases := h.loadOrGenerate(recipes)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report, err := Evaluate(cases, recipes, h.cfg)
	if err != nil {
		return nil, err
	}

	metrics.RecordEvaluation(report.TotalTests, report.Accuracy)
	common.LogInfo("評估完成",
		zap.Int("test_cases", report.TotalTests),
		zap.Int("recipes", report.RecipesEvaluated),
		zap.Float64("accuracy", report.Accuracy),
		zap.Float64("precision", report.Precision),
		zap.Float64("recall", report.Recall),
		zap.Float64("f1_score", report.F1Score),
		zap.Duration("duration", time.Since(start)),
	)
	return report, nil
}

func (h *Harness) loadOrGenerate(recipes []matching.Recipe) []TestCase {
	if h.fixturesPath != "" {
		cases, err := LoadFixtures(h.fixturesPath)
		if err == nil {
			common.LogInfo("已載入評估案例", zap.String("path", h.fixturesPath), zap.Int("count", len(cases)))
			return cases
		}
		if !errors.Is(err, os.ErrNotExist) {
			common.LogWarn("無法載入評估案例，重新產生", zap.String("path", h.fixturesPath), zap.Error(err))
		}
	}

	cases := h.generate(recipes)
	if h.fixturesPath == "" {
		return cases
	}

	if err := SaveFixtures(h.fixturesPath, cases); err != nil {
		common.LogWarn("無法儲存評估案例", zap.String("path", h.fixturesPath), zap.Error(err))
	} else {
		common.LogInfo("已儲存評估案例", zap.String("path", h.fixturesPath), zap.Int("count", len(cases)))
	}
	return cases
}
