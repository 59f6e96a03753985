package evaluation

import (
	"math"
	"sort"

	"recipe-matcher/internal/core/matching"
)

// Evaluate 以 cfg 對每個案例執行排名並彙整指標。
// recipes 應已經過 PrepareRecipes；預期食譜以標題比對。
func Evaluate(cases []TestCase, recipes []matching.Recipe, cfg matching.Config) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	lists := make(map[int64]matching.IngredientList, len(recipes))
	for _, r := range recipes {
		lists[r.ID] = matching.NewIngredientList(r.Ingredients)
	}
	lookup := func(r matching.Recipe) matching.IngredientList {
		if list, ok := lists[r.ID]; ok {
			return list
		}
		return matching.NewIngredientList(r.Ingredients)
	}

	results := make([]CaseResult, 0, len(cases))
	for i, tc := range cases {
		recommendations, err := matching.RankWithLookup(tc.UserIngredients, recipes, cfg, lookup)
		if err != nil {
			return nil, err
		}
		results = append(results, evaluateCase(i+1, tc, recommendations, cfg.MatchThreshold))
	}

	report := summarize(results)
	report.MatchThresholdUsed = cfg.MinMatchPercentage
	report.RecipesEvaluated = len(recipes)
	return report, nil
}

func evaluateCase(n int, tc TestCase, recommendations []matching.ScoredRecipe, threshold float64) CaseResult {
	result := CaseResult{
		TestCase:             n,
		UserIngredients:      tc.UserIngredients,
		ExpectedRecipe:       tc.ExpectedRecipe,
		TotalIngredients:     len(tc.ActualRecipeIngredients),
		TotalRecommendations: len(recommendations),
	}

	for i, rec := range recommendations {
		if rec.Title == tc.ExpectedRecipe {
			rank := i + 1
			result.ExpectedFound = true
			result.ExpectedRank = &rank
			result.ExpectedMatchPercentage = rec.MatchPercentage
			break
		}
	}

	match := matching.Match(
		matching.NewIngredientList(tc.UserIngredients),
		matching.NewIngredientList(tc.ActualRecipeIngredients),
		threshold,
	)
	result.MatchingCount = match.MatchedCount
	result.MatchingIngredients = match.MatchedIngredients
	if result.TotalIngredients > 0 {
		result.ActualMatchPercentage = 100 * float64(match.MatchedCount) / float64(result.TotalIngredients)
	}

	if len(recommendations) > 0 {
		top := recommendations[0].Title
		result.TopRecommendation = &top
		result.TopMatchPercentage = recommendations[0].MatchPercentage
	}
	return result
}

func summarize(results []CaseResult) *Report {
	total := len(results)
	report := &Report{
		TotalTests:      total,
		DetailedResults: results,
		ConfusionMatrix: confusionMatrix(results),
	}

	var (
		found       int
		falsePos    int
		rankSum     int
		percentages = make([]float64, 0, total)
	)
	for _, r := range results {
		if r.ExpectedFound {
			found++
			rankSum += *r.ExpectedRank
		} else if r.TotalRecommendations > 0 {
			falsePos++
		}
		percentages = append(percentages, r.ActualMatchPercentage)
	}

	report.FoundCount = found
	report.ClassificationMetrics = ClassificationMetrics{
		TruePositives:  found,
		FalsePositives: falsePos,
		FalseNegatives: total - found,
	}

	if total > 0 {
		report.Accuracy = float64(found) / float64(total)
		report.SuccessRate = report.Accuracy
	}
	report.Precision = ratio(found, found+falsePos)
	report.Recall = ratio(found, total)
	if sum := report.Precision + report.Recall; sum > 0 {
		report.F1Score = 2 * report.Precision * report.Recall / sum
	}

	if found > 0 {
		avg := float64(rankSum) / float64(found)
		report.AvgRank = &avg
	}
	report.AvgMatchPercentage = mean(percentages)
	report.MatchingStatistics = statistics(percentages)
	return report
}

func confusionMatrix(results []CaseResult) ConfusionMatrix {
	var tp, fp, fn, tn int
	for _, r := range results {
		predicted := r.TotalRecommendations > 0
		switch {
		case r.ExpectedFound && predicted:
			tp++
		case !r.ExpectedFound && predicted:
			fp++
		case r.ExpectedFound && !predicted:
			fn++
		default:
			tn++
		}
	}
	return ConfusionMatrix{
		Matrix:     [2][2]int{{tp, fp}, {fn, tn}},
		Labels:     []string{"Found", "Not Found"},
		Categories: []string{"Recommended", "Not Recommended"},
	}
}

func statistics(values []float64) Statistics {
	if len(values) == 0 {
		return Statistics{}
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var median float64
	if n := len(sorted); n%2 == 1 {
		median = sorted[n/2]
	} else {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}

	m := mean(values)
	var variance float64
	for _, v := range values {
		variance += (v - m) * (v - m)
	}
	variance /= float64(len(values))

	return Statistics{
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Median: median,
		Std:    math.Sqrt(variance),
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
