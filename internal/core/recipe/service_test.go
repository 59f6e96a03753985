package recipe

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"recipe-matcher/internal/core/cache"
	"recipe-matcher/internal/core/matching"
	"recipe-matcher/internal/core/scorer"
	"recipe-matcher/internal/infrastructure/config"
	"recipe-matcher/internal/infrastructure/store"
	"recipe-matcher/internal/pkg/common"
)

const testRecipes = `{
  "recipes": [
    {"recipe_id": 1, "title": "Tomato Pasta", "meal_type": "Dinner", "ingredients": ["pasta", "tomato", "garlic", "olive oil", "basil"]},
    {"recipe_id": 2, "title": "Garlic Bread", "meal_type": "Snack", "description": "Crispy bread", "ingredients": ["bread", "garlic", "butter"]},
    {"recipe_id": 3, "title": "Paneer Curry", "ingredients": ["paneer", "tomato", "onion", "cream"]}
  ],
  "substitutes": {
    "basil": [{"substitute": "oregano", "reason": "Herby"}],
    "butter": [{"substitute": "ghee"}]
  }
}`

func newTestStore(t *testing.T) *store.FileStore {
	t.Helper()

	path := filepath.Join(t.TempDir(), "recipes.json")
	if err := os.WriteFile(path, []byte(testRecipes), 0644); err != nil {
		t.Fatal(err)
	}
	st, err := store.NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	return st
}

func newTestService(t *testing.T, ingredients *cache.IngredientCache, sc scorer.Scorer) *Service {
	t.Helper()

	return NewService(newTestStore(t), ingredients, nil, sc, Options{
		Recommend:  matching.DefaultConfig(),
		Evaluation: matching.EvaluationConfig(),
	})
}

type fakeScorer struct {
	score float64
	err   error
	calls int
}

func (f *fakeScorer) Score(ctx context.Context, features scorer.Features) (float64, error) {
	f.calls++
	if len(features.Names) == 0 {
		return 0, errors.New("no features")
	}
	return f.score, f.err
}

func TestServiceMatch(t *testing.T) {
	s := newTestService(t, nil, nil)

	got := s.Match([]string{"onion"}, []string{"onions", "salt"})
	if got.MatchedCount != 1 || !reflect.DeepEqual(got.MatchedIngredients, []string{"onions"}) {
		t.Errorf("Match() = %+v", got)
	}
}

func TestServiceRecommend(t *testing.T) {
	s := newTestService(t, nil, nil)
	ctx := context.Background()

	recs, err := s.Recommend(ctx, []string{"tomato", "garlic", " pasta "}, s.Defaults())
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("Recommend() returned %d recipes, want 1", len(recs))
	}

	rec := recs[0]
	if rec.ID != 1 || rec.MatchedCount != 3 || rec.TotalIngredients != 5 {
		t.Errorf("unexpected recommendation: %+v", rec)
	}
	if rec.MatchPercentage != 60 || rec.ConfidenceScore != 60 {
		t.Errorf("percentage = %v, confidence = %v, want 60", rec.MatchPercentage, rec.ConfidenceScore)
	}
	if !strings.Contains(rec.Description, "Tomato Pasta") {
		t.Errorf("description not generated: %q", rec.Description)
	}
	if rec.ModelScore != nil {
		t.Errorf("ModelScore = %v without a scorer", *rec.ModelScore)
	}
}

func TestServiceRecommendEdgeCases(t *testing.T) {
	s := newTestService(t, nil, nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		user    []string
		cfg     matching.Config
		wantErr bool
	}{
		{"no ingredients", nil, matching.DefaultConfig(), false},
		{"blank ingredients", []string{" ", ""}, matching.DefaultConfig(), false},
		{"nothing matches", []string{"chocolate", "sugar"}, matching.DefaultConfig(), false},
		{"invalid top_n", []string{"tomato"}, matching.Config{TopN: 0, MatchThreshold: 0.7}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := s.Recommend(ctx, tt.user, tt.cfg)
			if tt.wantErr {
				var ce *matching.ConfigError
				if !errors.As(err, &ce) {
					t.Fatalf("Recommend() error = %v, want ConfigError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Recommend() error = %v", err)
			}
			if recs == nil || len(recs) != 0 {
				t.Errorf("Recommend() = %v, want empty non-nil slice", recs)
			}
		})
	}
}

func TestServiceRecommendScorer(t *testing.T) {
	ctx := context.Background()
	user := []string{"tomato", "garlic", "pasta"}

	t.Run("annotates model score", func(t *testing.T) {
		sc := &fakeScorer{score: 0.87}
		s := newTestService(t, nil, sc)

		recs, err := s.Recommend(ctx, user, s.Defaults())
		if err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		if len(recs) != 1 || recs[0].ModelScore == nil || *recs[0].ModelScore != 0.87 {
			t.Fatalf("ModelScore not set: %+v", recs)
		}
		if sc.calls != 1 {
			t.Errorf("scorer called %d times, want 1", sc.calls)
		}
	})

	t.Run("scorer failure keeps ranking", func(t *testing.T) {
		sc := &fakeScorer{err: errors.New("boom")}
		s := newTestService(t, nil, sc)

		recs, err := s.Recommend(ctx, user, s.Defaults())
		if err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		if len(recs) != 1 || recs[0].ModelScore != nil {
			t.Errorf("unexpected result on scorer failure: %+v", recs)
		}
	})
}

func TestServiceRecommendWithSubstitutions(t *testing.T) {
	s := newTestService(t, nil, nil)

	recs, err := s.RecommendWithSubstitutions(context.Background(), []string{"tomato", "garlic", "pasta"}, s.Defaults())
	if err != nil {
		t.Fatalf("RecommendWithSubstitutions() error = %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d recommendations, want 1", len(recs))
	}

	rec := recs[0]
	if !reflect.DeepEqual(rec.MissingIngredients, []string{"olive oil", "basil"}) {
		t.Errorf("MissingIngredients = %v", rec.MissingIngredients)
	}
	if !reflect.DeepEqual(rec.IngredientsYouHave, []string{"pasta", "tomato", "garlic"}) {
		t.Errorf("IngredientsYouHave = %v", rec.IngredientsYouHave)
	}
	if !rec.CanMakeWithSubstitutes {
		t.Error("CanMakeWithSubstitutes = false with two missing ingredients")
	}
	if rec.ActualMatchPercentage != 60 {
		t.Errorf("ActualMatchPercentage = %v, want 60", rec.ActualMatchPercentage)
	}

	want := map[string][]store.Substitute{
		"olive oil": {{Substitute: "Alternative olive oil", Reason: FallbackReason}},
		"basil":     {{Substitute: "oregano", Reason: "Herby"}},
	}
	if !reflect.DeepEqual(rec.Substitutes, want) {
		t.Errorf("Substitutes = %v, want %v", rec.Substitutes, want)
	}
}

func TestServiceRecipeSubstitutions(t *testing.T) {
	s := newTestService(t, nil, nil)
	ctx := context.Background()

	tests := []struct {
		name          string
		user          []string
		wantMissing   []string
		wantMatching  int
		wantUsability float64
		wantCanMake   bool
	}{
		{"one of three", []string{"bread"}, []string{"garlic", "butter"}, 1, 100.0 / 3.0, false},
		{"two of three", []string{"bread", "garlic"}, []string{"butter"}, 2, 200.0 / 3.0, true},
		{"none", []string{"rice"}, []string{"bread", "garlic", "butter"}, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.RecipeSubstitutions(ctx, 2, tt.user)
			if err != nil {
				t.Fatalf("RecipeSubstitutions() error = %v", err)
			}

			var missing []string
			for _, m := range got.MissingIngredientsAnalysis {
				missing = append(missing, m.MissingIngredient)
				if m.SubstituteCount != len(m.Substitutes) {
					t.Errorf("%s: SubstituteCount = %d, len = %d", m.MissingIngredient, m.SubstituteCount, len(m.Substitutes))
				}
			}
			if !reflect.DeepEqual(missing, tt.wantMissing) {
				t.Errorf("missing = %v, want %v", missing, tt.wantMissing)
			}
			if got.TotalIngredients != 3 || got.MissingCount != len(tt.wantMissing) || got.MatchingCount != tt.wantMatching {
				t.Errorf("counts = %d/%d/%d", got.TotalIngredients, got.MissingCount, got.MatchingCount)
			}
			if math.Abs(got.UsabilityPercentage-tt.wantUsability) > 1e-9 {
				t.Errorf("UsabilityPercentage = %v, want %v", got.UsabilityPercentage, tt.wantUsability)
			}
			if got.CanMake != tt.wantCanMake {
				t.Errorf("CanMake = %v, want %v", got.CanMake, tt.wantCanMake)
			}
		})
	}
}

func TestServiceRecipeSubstitutionsNoFallback(t *testing.T) {
	s := newTestService(t, nil, nil)

	got, err := s.RecipeSubstitutions(context.Background(), 2, []string{"bread"})
	if err != nil {
		t.Fatalf("RecipeSubstitutions() error = %v", err)
	}

	for _, m := range got.MissingIngredientsAnalysis {
		switch m.MissingIngredient {
		case "garlic":
			if m.Substitutes == nil || len(m.Substitutes) != 0 {
				t.Errorf("garlic substitutes = %v, want empty", m.Substitutes)
			}
		case "butter":
			want := []store.Substitute{{Substitute: "ghee", Reason: store.DefaultSubReason}}
			if !reflect.DeepEqual(m.Substitutes, want) {
				t.Errorf("butter substitutes = %v, want %v", m.Substitutes, want)
			}
		}
	}
}

func TestServiceRecipeNotFound(t *testing.T) {
	s := newTestService(t, nil, nil)
	ctx := context.Background()

	_, err := s.Recipe(ctx, 99)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Recipe() error = %v, want ErrNotFound", err)
	}
	if ce := common.AsCustomError(err); ce.Code != common.ErrRecipeNotFound.Code {
		t.Errorf("error code = %s, want %s", ce.Code, common.ErrRecipeNotFound.Code)
	}

	if _, err := s.RecipeSubstitutions(ctx, 99, []string{"bread"}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("RecipeSubstitutions() error = %v, want ErrNotFound", err)
	}
}

func TestServiceRecipe(t *testing.T) {
	s := newTestService(t, nil, nil)
	ctx := context.Background()

	bread, err := s.Recipe(ctx, 2)
	if err != nil {
		t.Fatalf("Recipe() error = %v", err)
	}
	if bread.Description != "Crispy bread" {
		t.Errorf("existing description replaced: %q", bread.Description)
	}
	if !reflect.DeepEqual(bread.Instructions, []string{matching.NoInstructions}) {
		t.Errorf("Instructions = %v", bread.Instructions)
	}

	pasta, err := s.Recipe(ctx, 1)
	if err != nil {
		t.Fatalf("Recipe() error = %v", err)
	}
	if want := GenerateDescription("Tomato Pasta", store.DefaultCuisine, "Dinner"); pasta.Description != want {
		t.Errorf("Description = %q, want %q", pasta.Description, want)
	}
}

func TestServiceSubstitutes(t *testing.T) {
	s := newTestService(t, nil, nil)
	ctx := context.Background()

	tests := []struct {
		name       string
		ingredient string
		want       []store.Substitute
		wantErr    bool
	}{
		{"known", "Basil", []store.Substitute{{Substitute: "oregano", Reason: "Herby"}}, false},
		{"fallback", "Saffron", []store.Substitute{{Substitute: "Alternative Saffron", Reason: FallbackReason}}, false},
		{"empty", "  ", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Substitutes(ctx, tt.ingredient)
			if tt.wantErr {
				if !common.IsValidationError(err) {
					t.Fatalf("Substitutes() error = %v, want validation error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Substitutes() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Substitutes() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestServiceAddRecipeInvalidatesCache(t *testing.T) {
	ingredients, err := cache.NewIngredientCache(config.CacheConfig{Enabled: true, MaxSize: 10})
	if err != nil {
		t.Fatal(err)
	}
	defer ingredients.Close()

	s := newTestService(t, ingredients, nil)
	ctx := context.Background()

	if _, err := s.Recommend(ctx, []string{"tomato", "garlic"}, s.Defaults()); err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if got := s.CacheStats().Size; got != 3 {
		t.Fatalf("cache size = %d, want 3", got)
	}

	saved, err := s.AddRecipe(ctx, matching.Recipe{ID: 3, Title: "Paneer Tikka", Ingredients: []string{"paneer", "yogurt"}})
	if err != nil {
		t.Fatalf("AddRecipe() error = %v", err)
	}
	if saved.ID != 3 {
		t.Errorf("saved id = %d, want 3", saved.ID)
	}
	if got := s.CacheStats().Size; got != 2 {
		t.Errorf("cache size after write = %d, want 2", got)
	}

	if _, err := s.AddRecipe(ctx, matching.Recipe{Title: " "}); !common.IsValidationError(err) {
		t.Errorf("AddRecipe() without title error = %v, want validation error", err)
	}
	if _, err := s.AddRecipe(ctx, matching.Recipe{Title: "Air"}); !common.IsValidationError(err) {
		t.Errorf("AddRecipe() without ingredients error = %v, want validation error", err)
	}
}

func TestServiceEvaluate(t *testing.T) {
	s := newTestService(t, nil, nil)

	report, err := s.Evaluate(context.Background(), s.EvaluationDefaults())
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if report.TotalTests == 0 || report.RecipesEvaluated != 3 {
		t.Errorf("report = %d tests over %d recipes", report.TotalTests, report.RecipesEvaluated)
	}
	if report.Accuracy < 0 || report.Accuracy > 1 {
		t.Errorf("Accuracy = %v out of range", report.Accuracy)
	}
}

func TestServiceReady(t *testing.T) {
	s := newTestService(t, nil, nil)
	if err := s.Ready(context.Background()); err != nil {
		t.Errorf("Ready() error = %v", err)
	}
}
