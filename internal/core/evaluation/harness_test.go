package evaluation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"recipe-matcher/internal/core/matching"
)

type staticSource struct {
	recipes []matching.Recipe
	err     error
}

func (s staticSource) ListRecipes(ctx context.Context) ([]matching.Recipe, error) {
	return s.recipes, s.err
}

func harnessRecipes() []matching.Recipe {
	return []matching.Recipe{
		{ID: 1, Title: "Dal Tadka", Ingredients: []string{"Lentils", "Cumin", "Ghee", "Garlic", "Turmeric", "Salt"}},
		{ID: 2, Title: "Jeera Rice", Ingredients: []string{"Basmati Rice", "Cumin", "Ghee", "Bay Leaf"}},
		{ID: 3, Title: "Paneer Tikka", Ingredients: []string{"Paneer", "Yogurt", "Chilli Powder", "Lemon", "Onion"}},
	}
}

func TestHarnessGeneratesAndReusesFixtures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test_cases.json")
	h := NewHarness(staticSource{recipes: harnessRecipes()}, path, matching.EvaluationConfig())

	report, err := h.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.TotalTests == 0 {
		t.Fatal("no test cases generated")
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("fixtures not saved: %v", err)
	}

	saved, err := LoadFixtures(path)
	if err != nil {
		t.Fatalf("LoadFixtures() error = %v", err)
	}
	if len(saved) != report.TotalTests {
		t.Errorf("saved %d cases, report has %d", len(saved), report.TotalTests)
	}

	// 固定案例後結果一致
	again, err := h.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if again.Accuracy != report.Accuracy || again.TotalTests != report.TotalTests {
		t.Errorf("second run differs: %v/%d vs %v/%d", again.Accuracy, again.TotalTests, report.Accuracy, report.TotalTests)
	}
}

func TestHarnessUsesExistingFixtures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test_cases.json")
	cases := []TestCase{{
		UserIngredients:         []string{"paneer", "yogurt", "lemon"},
		ExpectedRecipe:          "Paneer Tikka",
		ActualRecipeIngredients: []string{"chilli", "lemon", "onion", "paneer", "yogurt"},
	}}
	if err := SaveFixtures(path, cases); err != nil {
		t.Fatalf("SaveFixtures() error = %v", err)
	}

	report, err := NewHarness(staticSource{recipes: harnessRecipes()}, path, matching.EvaluationConfig()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.TotalTests != 1 || report.FoundCount != 1 {
		t.Errorf("report = %d found of %d, want 1 of 1", report.FoundCount, report.TotalTests)
	}
}

func TestHarnessErrors(t *testing.T) {
	boom := errors.New("boom")

	if _, err := NewHarness(staticSource{err: boom}, "", matching.EvaluationConfig()).Run(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Run() error = %v, want wrapped source error", err)
	}
	if _, err := NewHarness(staticSource{}, "", matching.EvaluationConfig()).Run(context.Background()); !errors.Is(err, ErrNoRecipes) {
		t.Errorf("Run() error = %v, want ErrNoRecipes", err)
	}
}

func TestLoadFixturesRejectsMissingExpected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`[{"user_ingredients": ["rice"]}]`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFixtures(path); err == nil {
		t.Error("LoadFixtures() error = nil, want error")
	}
}

func TestHarnessCustomGenerator(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test_cases.json")
	calls := 0
	gen := func(recipes []matching.Recipe) []TestCase {
		calls++
		return []TestCase{{
			UserIngredients: []string{"paneer", "yogurt", "lemon"},
			ExpectedRecipe:  "Paneer Tikka",
		}}
	}

	report, err := NewHarness(staticSource{recipes: harnessRecipes()}, path, matching.EvaluationConfig()).
		WithFixtures("").
		WithGenerator(gen).
		Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if calls != 1 || report.TotalTests != 1 {
		t.Errorf("generator calls = %d, total tests = %d", calls, report.TotalTests)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("fixtures written despite WithFixtures(\"\"): %v", err)
	}
}

func TestHarnessSaveFailureIsNonFatal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "no", "such", "dir", "test_cases.json")
	h := NewHarness(staticSource{recipes: harnessRecipes()}, path, matching.EvaluationConfig())

	report, err := h.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.TotalTests == 0 {
		t.Error("TotalTests = 0, want generated cases evaluated in memory")
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("fixtures file stat error = %v, want not exist", err)
	}
}
