package recipe

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"recipe-matcher/internal/core/cache"
	"recipe-matcher/internal/core/evaluation"
	"recipe-matcher/internal/core/matching"
	"recipe-matcher/internal/core/scorer"
	"recipe-matcher/internal/infrastructure/metrics"
	"recipe-matcher/internal/infrastructure/store"
	"recipe-matcher/internal/pkg/common"

	"go.uber.org/zap"
)

// Options 服務的預設設定
type Options struct {
	Recommend    matching.Config
	Evaluation   matching.Config
	FixturesPath string
}

// Service 食譜推薦服務，整合資料來源、快取與輔助評分
type Service struct {
	store           store.Store
	ingredients     *cache.IngredientCache
	recommendations *cache.RecommendationCache
	scorer          scorer.Scorer
	opts            Options
}

type writeNotifier interface {
	OnWrite(hook store.WriteHook)
}

// NewService 創建新的食譜服務。ingredients、recommendations 與 sc 皆可為 nil。
func NewService(st store.Store, ingredients *cache.IngredientCache, recommendations *cache.RecommendationCache, sc scorer.Scorer, opts Options) *Service {
	s := &Service{
		store:           st,
		ingredients:     ingredients,
		recommendations: recommendations,
		scorer:          sc,
		opts:            opts,
	}

	if n, ok := st.(writeNotifier); ok {
		n.OnWrite(s.InvalidateRecipe)
	}
	return s
}

// Defaults 直接推薦使用的設定
func (s *Service) Defaults() matching.Config {
	return s.opts.Recommend
}

// EvaluationDefaults 評估使用的設定
func (s *Service) EvaluationDefaults() matching.Config {
	return s.opts.Evaluation
}

// Match 以預設門檻比對兩組食材
func (s *Service) Match(user, recipeIngredients []string) matching.MatchResult {
	return matching.Match(
		matching.NewIngredientList(user),
		matching.NewIngredientList(recipeIngredients),
		s.opts.Recommend.MatchThreshold,
	)
}

// Recommend 從資料來源中找出最符合使用者食材的食譜
func (s *Service) Recommend(ctx context.Context, user []string, cfg matching.Config) ([]Recommendation, error) {
	user = cleanIngredients(user)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(user) == 0 {
		return []Recommendation{}, nil
	}

	ranked, err := s.rank(ctx, user, cfg)
	if err != nil {
		return nil, err
	}

	recs := make([]Recommendation, len(ranked))
	for i, r := range ranked {
		if r.Description == "" {
			r.Description = GenerateDescription(r.Title, r.Cuisine, r.MealType)
		}
		recs[i] = Recommendation{
			ScoredRecipe:    r,
			ConfidenceScore: round2(r.MatchPercentage),
		}
	}

	s.annotate(ctx, user, recs, cfg.MatchThreshold)
	return recs, nil
}

// rank 先查推薦快取，未命中才計算並寫回
func (s *Service) rank(ctx context.Context, user []string, cfg matching.Config) ([]matching.ScoredRecipe, error) {
	cached, err := s.recommendations.Get(ctx, user, cfg)
	switch {
	case err == nil:
		return cached, nil
	case errors.Is(err, cache.ErrCacheMiss), errors.Is(err, common.ErrCacheDisabled):
	default:
		common.LogWarn("讀取推薦快取失敗", zap.Error(err))
	}

	recipes, err := s.store.ListRecipes(ctx)
	if err != nil {
		return nil, common.ErrStoreUnavailable.WithCause(err)
	}

	start := time.Now()
	ranked, err := matching.RankWithLookup(user, recipes, cfg, s.ingredients.Lookup)
	if err != nil {
		return nil, err
	}
	metrics.RecordRank(len(recipes), len(ranked), time.Since(start))

	common.LogDebug("推薦計算完成",
		zap.Strings("ingredients", user),
		zap.Int("candidates", len(recipes)),
		zap.Int("returned", len(ranked)),
		zap.Duration("duration", time.Since(start)),
	)

	if err := s.recommendations.Set(ctx, user, cfg, ranked); err != nil {
		common.LogWarn("寫入推薦快取失敗", zap.Error(err))
	}
	return ranked, nil
}

// annotate 以外部評分服務補上 ModelScore，失敗時只記錄警告
func (s *Service) annotate(ctx context.Context, user []string, recs []Recommendation, threshold float64) {
	if s.scorer == nil || len(recs) == 0 {
		return
	}

	recipes, err := s.store.ListRecipes(ctx)
	if err != nil {
		common.LogWarn("無法建立評分詞彙表", zap.Error(err))
		return
	}
	vocab := scorer.Vocabulary(recipes)

	for i := range recs {
		features := scorer.BuildFeatures(vocab, scorer.InputFor(user, recs[i].Recipe), threshold)
		score, err := s.scorer.Score(ctx, features)
		if err != nil {
			common.LogWarn("外部評分失敗",
				zap.Int64("recipe_id", recs[i].ID),
				zap.Error(err),
			)
			continue
		}
		recs[i].ModelScore = &score
	}
}

// RecommendWithSubstitutions 推薦結果附上缺少的食材與替代建議
func (s *Service) RecommendWithSubstitutions(ctx context.Context, user []string, cfg matching.Config) ([]SubstitutionRecommendation, error) {
	recs, err := s.Recommend(ctx, user, cfg)
	if err != nil {
		return nil, err
	}

	userList := matching.NewIngredientList(cleanIngredients(user))
	out := make([]SubstitutionRecommendation, 0, len(recs))
	for _, rec := range recs {
		missing := matching.MissingIngredients(userList, s.ingredients.Lookup(rec.Recipe), cfg.MatchThreshold)

		subs, err := s.substituteMap(ctx, missing)
		if err != nil {
			return nil, err
		}

		out = append(out, SubstitutionRecommendation{
			Recommendation:         rec,
			MissingIngredients:     missing,
			Substitutes:            subs,
			IngredientsYouHave:     rec.MatchedIngredients,
			ActualMatchPercentage:  rec.ConfidenceScore,
			CanMakeWithSubstitutes: len(missing) <= MaxMissingForSubstitutes,
		})
	}
	return out, nil
}

// substituteMap 每個缺少的食材都有至少一個替代建議
func (s *Service) substituteMap(ctx context.Context, missing []string) (map[string][]store.Substitute, error) {
	subs := make(map[string][]store.Substitute, len(missing))
	for _, ing := range missing {
		found, err := s.Substitutes(ctx, ing)
		if err != nil {
			return nil, err
		}
		subs[ing] = found
	}
	return subs, nil
}

// Substitutes 查詢替代食材，沒有資料時回傳通用替代建議
func (s *Service) Substitutes(ctx context.Context, ingredient string) ([]store.Substitute, error) {
	name := strings.ToLower(strings.TrimSpace(ingredient))
	if name == "" {
		return nil, common.NewValidationError("ingredient is required")
	}

	found, err := s.store.Substitutes(ctx, name)
	if err != nil {
		return nil, common.ErrStoreUnavailable.WithCause(err)
	}
	if len(found) == 0 {
		return []store.Substitute{{
			Substitute: "Alternative " + ingredient,
			Reason:     FallbackReason,
		}}, nil
	}
	return found, nil
}

// RecipeSubstitutions 分析使用者食材能否製作指定食譜
func (s *Service) RecipeSubstitutions(ctx context.Context, recipeID int64, user []string) (*SubstitutionAnalysis, error) {
	r, err := s.getRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	threshold := s.opts.Recommend.MatchThreshold
	userList := matching.NewIngredientList(cleanIngredients(user))
	recipeList := s.ingredients.Lookup(r)

	analysis := &SubstitutionAnalysis{
		RecipeID:                   r.ID,
		MissingIngredientsAnalysis: []MissingIngredient{},
		TotalIngredients:           recipeList.Len(),
	}

	for _, ing := range matching.MissingIngredients(userList, recipeList, threshold) {
		found, err := s.store.Substitutes(ctx, strings.ToLower(ing))
		if err != nil {
			return nil, common.ErrStoreUnavailable.WithCause(err)
		}
		if found == nil {
			found = []store.Substitute{}
		}
		analysis.MissingIngredientsAnalysis = append(analysis.MissingIngredientsAnalysis, MissingIngredient{
			MissingIngredient: ing,
			Substitutes:       found,
			SubstituteCount:   len(found),
		})
	}
	analysis.MissingCount = len(analysis.MissingIngredientsAnalysis)
	analysis.MatchingCount = analysis.TotalIngredients - analysis.MissingCount

	if analysis.TotalIngredients > 0 {
		matched := matching.Match(userList, recipeList, threshold).MatchedCount
		analysis.UsabilityPercentage = 100 * float64(matched) / float64(analysis.TotalIngredients)
		analysis.CanMake = matched >= MinMatchedToMake ||
			(analysis.TotalIngredients-matched <= MaxMissingForSubstitutes && analysis.UsabilityPercentage >= MinUsabilityToMake)
	}
	return analysis, nil
}

// Recipe 取得單一食譜，缺少描述時自動產生
func (s *Service) Recipe(ctx context.Context, id int64) (*matching.Recipe, error) {
	r, err := s.getRecipe(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Description == "" {
		r.Description = GenerateDescription(r.Title, r.Cuisine, r.MealType)
	}
	if len(r.Instructions) == 0 {
		r.Instructions = []string{matching.NoInstructions}
	}
	return &r, nil
}

func (s *Service) getRecipe(ctx context.Context, id int64) (matching.Recipe, error) {
	r, err := s.store.GetRecipe(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return matching.Recipe{}, common.ErrRecipeNotFound.WithCause(err)
		}
		return matching.Recipe{}, common.ErrStoreUnavailable.WithCause(err)
	}
	return r, nil
}

// AddRecipe 新增或更新食譜，寫入後相關快取會透過 hook 失效
func (s *Service) AddRecipe(ctx context.Context, r matching.Recipe) (*matching.Recipe, error) {
	if strings.TrimSpace(r.Title) == "" {
		return nil, common.NewValidationError("title is required")
	}

	saved, err := s.store.SaveRecipe(ctx, r)
	if err != nil {
		if common.IsValidationError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to save recipe: %w", err)
	}
	return &saved, nil
}

// InvalidateRecipe 食譜寫入後清除相關快取
func (s *Service) InvalidateRecipe(id int64) {
	s.ingredients.Invalidate(id)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.recommendations.Invalidate(ctx); err != nil {
		common.LogWarn("清除推薦快取失敗", zap.Int64("recipe_id", id), zap.Error(err))
	}
}

// Harness 以目前的資料來源建立評估器
func (s *Service) Harness(cfg matching.Config) *evaluation.Harness {
	return evaluation.NewHarness(s.store, s.opts.FixturesPath, cfg)
}

// Evaluate 以 cfg 執行一次離線評估
func (s *Service) Evaluate(ctx context.Context, cfg matching.Config) (*evaluation.Report, error) {
	return s.Harness(cfg).Run(ctx)
}

// CacheStats 食材快取統計
func (s *Service) CacheStats() cache.Stats {
	return s.ingredients.Stats()
}

// Ready 檢查資料來源是否可用
func (s *Service) Ready(ctx context.Context) error {
	if _, err := s.store.ListRecipes(ctx); err != nil {
		return common.ErrStoreUnavailable.WithCause(err)
	}
	return nil
}

// cleanIngredients 去除空白與空字串
func cleanIngredients(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
