package evaluation

import "errors"

// ErrNoRecipes 沒有可供評估的食譜
var ErrNoRecipes = errors.New("no recipes available for evaluation")

// TestCase 單一評估案例，JSON 格式與 test_cases.json 相容
type TestCase struct {
	UserIngredients         []string `json:"user_ingredients"`
	ExpectedRecipe          string   `json:"expected_recipe"`
	ActualRecipeIngredients []string `json:"actual_recipe_ingredients"`
}

// CaseResult 單一案例的評估結果
type CaseResult struct {
	TestCase                int      `json:"test_case"`
	UserIngredients         []string `json:"user_ingredients"`
	ExpectedRecipe          string   `json:"expected_recipe"`
	ExpectedFound           bool     `json:"expected_found"`
	ExpectedRank            *int     `json:"expected_rank"`
	ExpectedMatchPercentage float64  `json:"expected_match_percentage"`
	ActualMatchPercentage   float64  `json:"actual_match_percentage"`
	MatchingCount           int      `json:"matching_count"`
	TotalIngredients        int      `json:"total_ingredients"`
	MatchingIngredients     []string `json:"matching_ingredients"`
	TopRecommendation       *string  `json:"top_recommendation"`
	TopMatchPercentage      float64  `json:"top_match_percentage"`
	TotalRecommendations    int      `json:"total_recommendations"`
}

// ConfusionMatrix [[tp, fp], [fn, tn]]，實際為「找到預期食譜」、預測為「有推薦」
type ConfusionMatrix struct {
	Matrix     [2][2]int `json:"matrix"`
	Labels     []string  `json:"labels"`
	Categories []string  `json:"categories"`
}

// Statistics 實際匹配百分比的分布
type Statistics struct {
	Min    float64 `json:"min_match_percentage"`
	Max    float64 `json:"max_match_percentage"`
	Median float64 `json:"median_match_percentage"`
	Std    float64 `json:"std_match_percentage"`
}

// ClassificationMetrics 分類指標。匹配情境下無法定義 true negative，固定為 0
type ClassificationMetrics struct {
	TruePositives  int `json:"true_positives"`
	FalsePositives int `json:"false_positives"`
	FalseNegatives int `json:"false_negatives"`
	TrueNegatives  int `json:"true_negatives"`
}

// Report 評估報告
type Report struct {
	Accuracy              float64               `json:"accuracy"`
	SuccessRate           float64               `json:"success_rate"`
	Precision             float64               `json:"precision"`
	Recall                float64               `json:"recall"`
	F1Score               float64               `json:"f1_score"`
	FoundCount            int                   `json:"found_count"`
	TotalTests            int                   `json:"total_tests"`
	RecipesEvaluated      int                   `json:"recipes_evaluated"`
	AvgMatchPercentage    float64               `json:"avg_match_percentage"`
	AvgRank               *float64              `json:"avg_rank"`
	MatchThresholdUsed    float64               `json:"match_threshold_used"`
	DetailedResults       []CaseResult          `json:"detailed_results"`
	ConfusionMatrix       ConfusionMatrix       `json:"confusion_matrix"`
	MatchingStatistics    Statistics            `json:"matching_statistics"`
	ClassificationMetrics ClassificationMetrics `json:"classification_metrics"`
}
