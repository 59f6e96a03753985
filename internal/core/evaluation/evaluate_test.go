package evaluation

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"recipe-matcher/internal/core/matching"
)

func evalRecipes() []matching.Recipe {
	return []matching.Recipe{
		{ID: 1, Title: "Dal", Ingredients: []string{"cumin", "lentil", "rice", "salt", "turmeric"}},
		{ID: 2, Title: "Jeera Rice", Ingredients: []string{"cumin", "ghee", "rice"}},
	}
}

func TestEvaluateExpectedNeverClearsGate(t *testing.T) {
	cases := []TestCase{{
		UserIngredients:         []string{"paneer"},
		ExpectedRecipe:          "Dal",
		ActualRecipeIngredients: evalRecipes()[0].Ingredients,
	}}

	report, err := Evaluate(cases, evalRecipes(), matching.EvaluationConfig())
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	r := report.DetailedResults[0]
	if r.ExpectedFound || r.ExpectedRank != nil {
		t.Errorf("case result = %+v, want not found", r)
	}
	cm := report.ClassificationMetrics
	if cm.FalseNegatives != 1 || cm.TrueNegatives != 0 || cm.TruePositives != 0 || cm.FalsePositives != 0 {
		t.Errorf("ClassificationMetrics = %+v, want only one false negative", cm)
	}
	if report.AvgRank != nil {
		t.Errorf("AvgRank = %v, want nil", *report.AvgRank)
	}
}

func TestEvaluateReport(t *testing.T) {
	dal := evalRecipes()[0].Ingredients
	cases := []TestCase{
		{UserIngredients: []string{"lentil", "rice", "turmeric"}, ExpectedRecipe: "Dal", ActualRecipeIngredients: dal},
		{UserIngredients: []string{"ghee", "rice"}, ExpectedRecipe: "Dal", ActualRecipeIngredients: dal},
		{UserIngredients: []string{"paneer"}, ExpectedRecipe: "Dal", ActualRecipeIngredients: dal},
	}

	report, err := Evaluate(cases, evalRecipes(), matching.EvaluationConfig())
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	first := report.DetailedResults[0]
	if !first.ExpectedFound || first.ExpectedRank == nil || *first.ExpectedRank != 1 {
		t.Errorf("first case = %+v, want found at rank 1", first)
	}
	if first.ExpectedMatchPercentage != 60 || first.MatchingCount != 3 {
		t.Errorf("first case percentages = %v / %d", first.ExpectedMatchPercentage, first.MatchingCount)
	}
	if first.TopRecommendation == nil || *first.TopRecommendation != "Dal" {
		t.Errorf("TopRecommendation = %v, want Dal", first.TopRecommendation)
	}

	second := report.DetailedResults[1]
	if second.ExpectedFound || second.TotalRecommendations != 1 || *second.TopRecommendation != "Jeera Rice" {
		t.Errorf("second case = %+v, want Jeera Rice recommended instead", second)
	}
	if report.DetailedResults[2].TopRecommendation != nil {
		t.Error("third case should have no top recommendation")
	}

	floatTests := []struct {
		name string
		got  float64
		want float64
	}{
		{"accuracy", report.Accuracy, 1.0 / 3},
		{"success rate", report.SuccessRate, 1.0 / 3},
		{"precision", report.Precision, 0.5},
		{"recall", report.Recall, 1.0 / 3},
		{"f1", report.F1Score, 0.4},
		{"avg match", report.AvgMatchPercentage, 80.0 / 3},
		{"min", report.MatchingStatistics.Min, 0},
		{"max", report.MatchingStatistics.Max, 60},
		{"median", report.MatchingStatistics.Median, 20},
		{"std", report.MatchingStatistics.Std, 24.94438257849294},
		{"threshold", report.MatchThresholdUsed, matching.EvaluationMinMatchPercentage},
	}
	for _, tt := range floatTests {
		t.Run(tt.name, func(t *testing.T) {
			if math.Abs(tt.got-tt.want) > 1e-9 {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}

	want := ClassificationMetrics{TruePositives: 1, FalsePositives: 1, FalseNegatives: 2}
	if report.ClassificationMetrics != want {
		t.Errorf("ClassificationMetrics = %+v, want %+v", report.ClassificationMetrics, want)
	}
	if m := report.ConfusionMatrix.Matrix; m != [2][2]int{{1, 1}, {0, 1}} {
		t.Errorf("ConfusionMatrix = %v", m)
	}
	if report.AvgRank == nil || *report.AvgRank != 1 {
		t.Errorf("AvgRank = %v, want 1", report.AvgRank)
	}
	if report.FoundCount != 1 || report.TotalTests != 3 || report.RecipesEvaluated != 2 {
		t.Errorf("counts = %d/%d/%d", report.FoundCount, report.TotalTests, report.RecipesEvaluated)
	}

	var buf bytes.Buffer
	if err := report.WriteText(&buf); err != nil {
		t.Fatalf("WriteText() error = %v", err)
	}
	for _, s := range []string{"Accuracy:            0.333", "True Positives:      1", "1. Dal - 60.0% FOUND (Rank: 1)"} {
		if !strings.Contains(buf.String(), s) {
			t.Errorf("text report missing %q:\n%s", s, buf.String())
		}
	}
}

func TestEvaluateEmpty(t *testing.T) {
	report, err := Evaluate(nil, evalRecipes(), matching.EvaluationConfig())
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if report.TotalTests != 0 || report.Accuracy != 0 || report.F1Score != 0 {
		t.Errorf("empty report = %+v", report)
	}
}

func TestEvaluateInvalidConfig(t *testing.T) {
	cfg := matching.EvaluationConfig()
	cfg.TopN = 0
	if _, err := Evaluate(nil, evalRecipes(), cfg); err == nil {
		t.Error("Evaluate() error = nil, want config error")
	}
}
