package matching

import (
	"errors"
	"reflect"
	"testing"
)

func sampleRecipes() []Recipe {
	return []Recipe{
		{ID: 1, Title: "Dal", Ingredients: []string{"rice", "lentils", "cumin", "salt"}},
		{ID: 2, Title: "Jeera Rice", Ingredients: []string{"rice", "cumin", "ghee"}},
		{ID: 3, Title: "Paneer Tikka", Ingredients: []string{"paneer", "yogurt", "chilli powder"}},
		{ID: 4, Title: "Khichdi", Ingredients: []string{"rice", "lentils", "turmeric", "ghee", "salt", "cumin"}},
		{ID: 5, Title: "Empty", Ingredients: nil},
	}
}

func TestRankPercentageGate(t *testing.T) {
	recipes := []Recipe{{ID: 1, Ingredients: []string{"rice", "lentils", "cumin", "salt"}}}
	user := []string{"rice", "lentils"}

	tests := []struct {
		name    string
		minPct  float64
		wantIDs []int64
		wantPct float64
	}{
		{"above threshold", 40.0, []int64{1}, 50.0},
		{"equal threshold excluded", 50.0, []int64{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.MinMatchPercentage = tt.minPct

			got, err := Rank(user, recipes, cfg)
			if err != nil {
				t.Fatalf("Rank() error = %v", err)
			}
			if ids := recipeIDs(got); !reflect.DeepEqual(ids, tt.wantIDs) {
				t.Fatalf("Rank() ids = %v, want %v", ids, tt.wantIDs)
			}
			if len(got) == 1 {
				if got[0].MatchPercentage != tt.wantPct {
					t.Errorf("MatchPercentage = %v, want %v", got[0].MatchPercentage, tt.wantPct)
				}
				if got[0].MatchedCount != 2 || got[0].TotalIngredients != 4 {
					t.Errorf("counts = %d/%d, want 2/4", got[0].MatchedCount, got[0].TotalIngredients)
				}
			}
		})
	}
}

func TestRankCountGateInclusive(t *testing.T) {
	recipes := []Recipe{{ID: 1, Ingredients: []string{"rice", "lentils", "cumin"}}}
	cfg := DefaultConfig()

	got, err := Rank([]string{"rice", "lentils"}, recipes, cfg)
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected recipe with exactly MinMatchCount matches, got %d results", len(got))
	}

	got, err = Rank([]string{"rice"}, recipes, cfg)
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no results below MinMatchCount, got %v", recipeIDs(got))
	}
}

func TestRankOrdering(t *testing.T) {
	user := []string{"rice", "lentils", "cumin", "salt", "ghee", "turmeric"}
	cfg := DefaultConfig()

	got, err := Rank(user, sampleRecipes(), cfg)
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}

	// 100% for 1, 2 and 4; ties broken by matched count then input order.
	want := []int64{4, 1, 2}
	if ids := recipeIDs(got); !reflect.DeepEqual(ids, want) {
		t.Errorf("Rank() ids = %v, want %v", ids, want)
	}
}

func TestRankTieOnCountKeepsInputOrder(t *testing.T) {
	recipes := []Recipe{
		{ID: 7, Ingredients: []string{"rice", "lentils"}},
		{ID: 3, Ingredients: []string{"lentils", "rice"}},
	}

	got, err := Rank([]string{"rice", "lentils"}, recipes, DefaultConfig())
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if ids := recipeIDs(got); !reflect.DeepEqual(ids, []int64{7, 3}) {
		t.Errorf("Rank() ids = %v, want [7 3]", ids)
	}
}

func TestRankTopN(t *testing.T) {
	recipes := make([]Recipe, 0, 10)
	for i := 1; i <= 10; i++ {
		recipes = append(recipes, Recipe{ID: int64(i), Ingredients: []string{"rice", "lentils"}})
	}
	cfg := DefaultConfig()
	cfg.TopN = 3

	got, err := Rank([]string{"rice", "lentils"}, recipes, cfg)
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if ids := recipeIDs(got); !reflect.DeepEqual(ids, []int64{1, 2, 3}) {
		t.Errorf("Rank() ids = %v, want [1 2 3]", ids)
	}
}

func TestRankEmptyInputs(t *testing.T) {
	got, err := Rank(nil, sampleRecipes(), DefaultConfig())
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Rank() with no user ingredients = %v, want empty slice", got)
	}

	got, err = Rank([]string{"rice"}, nil, DefaultConfig())
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Rank() with no candidates = %v, want empty slice", got)
	}
}

func TestRankDeterministicAcrossWorkers(t *testing.T) {
	user := []string{"rice", "lentils", "cumin", "paneer", "yogurt"}
	recipes := sampleRecipes()
	for i := 0; i < 40; i++ {
		r := recipes[i%len(recipes)]
		r.ID = int64(100 + i)
		recipes = append(recipes, r)
	}

	cfg := DefaultConfig()
	cfg.TopN = 50
	sequential, err := Rank(user, recipes, cfg)
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}

	cfg.Workers = 4
	if got := cfg.workers(len(recipes)); got != 4 {
		t.Fatalf("workers() = %d, want 4", got)
	}
	for run := 0; run < 5; run++ {
		parallel, err := Rank(user, recipes, cfg)
		if err != nil {
			t.Fatalf("Rank() error = %v", err)
		}
		if !reflect.DeepEqual(recipeIDs(parallel), recipeIDs(sequential)) {
			t.Fatalf("parallel run %d = %v, want %v", run, recipeIDs(parallel), recipeIDs(sequential))
		}
	}
}

func TestRankWithLookup(t *testing.T) {
	calls := 0
	lookup := func(r Recipe) IngredientList {
		calls++
		return NewIngredientList(r.Ingredients)
	}

	if _, err := RankWithLookup([]string{"rice"}, sampleRecipes(), DefaultConfig(), lookup); err != nil {
		t.Fatalf("RankWithLookup() error = %v", err)
	}
	if calls != len(sampleRecipes()) {
		t.Errorf("lookup called %d times, want %d", calls, len(sampleRecipes()))
	}
}

func TestRankInvalidConfig(t *testing.T) {
	tests := []struct {
		name  string
		mod   func(*Config)
		field string
	}{
		{"zero top n", func(c *Config) { c.TopN = 0 }, "top_n"},
		{"negative min count", func(c *Config) { c.MinMatchCount = -1 }, "min_match_count"},
		{"percentage over 100", func(c *Config) { c.MinMatchPercentage = 120 }, "min_match_percentage"},
		{"threshold over 1", func(c *Config) { c.MatchThreshold = 1.5 }, "match_threshold"},
		{"negative workers", func(c *Config) { c.Workers = -2 }, "workers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mod(&cfg)

			_, err := Rank([]string{"rice"}, sampleRecipes(), cfg)
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Rank() error = %v, want *ConfigError", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("ConfigError.Field = %q, want %q", cfgErr.Field, tt.field)
			}
		})
	}
}

func TestPoolRunsEveryIndexOnce(t *testing.T) {
	const n = 100
	seen := make([]int, n)
	p := newPool(8, n)
	p.run(n, func(i int) { seen[i]++ })

	for i, c := range seen {
		if c != 1 {
			t.Fatalf("index %d processed %d times", i, c)
		}
	}
}

func TestConfigWorkers(t *testing.T) {
	tests := []struct {
		name       string
		workers    int
		candidates int
		want       int
	}{
		{"sequential default", 0, 10, 1},
		{"honoured as given", 4, 10, 4},
		{"bounded by candidates", 8, 3, 3},
		{"no candidates", 4, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Workers = tt.workers
			if got := cfg.workers(tt.candidates); got != tt.want {
				t.Errorf("workers(%d) = %d, want %d", tt.candidates, got, tt.want)
			}
		})
	}
}

func recipeIDs(recipes []ScoredRecipe) []int64 {
	ids := make([]int64, 0, len(recipes))
	for _, r := range recipes {
		ids = append(ids, r.ID)
	}
	return ids
}
