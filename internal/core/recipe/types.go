package recipe

import (
	"recipe-matcher/internal/core/matching"
	"recipe-matcher/internal/infrastructure/store"
)

// 可用替代食材完成的門檻
const (
	MaxMissingForSubstitutes = 2
	MinMatchedToMake         = 2
	MinUsabilityToMake       = 60.0
)

// FallbackReason 資料庫沒有替代食材時的說明
const FallbackReason = "General substitution"

// Recommendation 推薦結果
type Recommendation struct {
	matching.ScoredRecipe
	// ConfidenceScore 匹配百分比四捨五入至小數點後兩位
	ConfidenceScore float64 `json:"confidence_score"`
	// ModelScore 外部評分服務的附註分數，不影響排名
	ModelScore *float64 `json:"model_score,omitempty"`
}

// SubstitutionRecommendation 附帶缺少食材與替代建議的推薦結果
type SubstitutionRecommendation struct {
	Recommendation
	MissingIngredients     []string                      `json:"missing_ingredients"`
	Substitutes            map[string][]store.Substitute `json:"substitutes"`
	IngredientsYouHave     []string                      `json:"ingredients_you_have"`
	ActualMatchPercentage  float64                       `json:"actual_match_percentage"`
	CanMakeWithSubstitutes bool                          `json:"can_make_with_substitutes"`
}

// MissingIngredient 單一缺少食材的替代分析
type MissingIngredient struct {
	MissingIngredient string             `json:"missing_ingredient"`
	Substitutes       []store.Substitute `json:"substitutes"`
	SubstituteCount   int                `json:"substitute_count"`
}

// SubstitutionAnalysis 指定食譜的可製作程度分析
type SubstitutionAnalysis struct {
	RecipeID                   int64               `json:"recipe_id"`
	MissingIngredientsAnalysis []MissingIngredient `json:"missing_ingredients_analysis"`
	UsabilityPercentage        float64             `json:"usability_percentage"`
	CanMake                    bool                `json:"can_make"`
	TotalIngredients           int                 `json:"total_ingredients"`
	MissingCount               int                 `json:"missing_count"`
	MatchingCount              int                 `json:"matching_count"`
}
