package scorer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"recipe-matcher/internal/core/matching"
	"recipe-matcher/internal/infrastructure/config"
)

func TestVocabulary(t *testing.T) {
	recipes := []matching.Recipe{
		{Ingredients: []string{"rice", "cumin"}},
		{Ingredients: []string{"lentil", "rice"}},
	}
	if got := Vocabulary(recipes); !reflect.DeepEqual(got, []string{"cumin", "lentil", "rice"}) {
		t.Errorf("Vocabulary() = %v", got)
	}
}

func TestBuildFeatures(t *testing.T) {
	vocab := []string{"basmati rice", "cumin", "green-chilli paste with garlic"}
	f := BuildFeatures(vocab, Input{
		UserIngredients: []string{"Rice", "tomato"},
		Cuisine:         "Punjabi",
		MealType:        "Breakfast",
		DietType:        "vegan",
		ServingSize:     4,
	}, matching.DefaultMatchThreshold)

	tests := []struct {
		name string
		want float64
	}{
		{"ing_basmati_rice", 1},
		{"ing_cumin", 0},
		{"ing_green_chilli_paste_w", 0},
		{"cuisine_punjabi", 1},
		{"cuisine_north_indian", 0},
		{"meal_breakfast", 1},
		{"meal_dinner", 0},
		{"diet_vegan", 1},
		{"serving_size", 0.4},
		{"prep_time_preference", 0.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := f.Get(tt.name)
			if !ok {
				t.Fatalf("feature %q missing from %v", tt.name, f.Names)
			}
			if got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
			}
		})
	}

	if want := len(vocab) + len(cuisines) + len(mealTypes) + len(dietTypes) + 2; len(f.Names) != want {
		t.Errorf("feature count = %d, want %d", len(f.Names), want)
	}
}

func TestBuildFeaturesLimitsVocabulary(t *testing.T) {
	vocab := make([]string, 80)
	for i := range vocab {
		vocab[i] = string(rune('a'+i%26)) + "ingredient" + string(rune('a'+i/26))
	}

	f := BuildFeatures(vocab, Input{ServingSize: 30}, matching.DefaultMatchThreshold)
	ingredientFeatures := len(f.Names) - len(cuisines) - len(mealTypes) - len(dietTypes) - 2
	if ingredientFeatures != MaxIngredientFeatures {
		t.Errorf("ingredient features = %d, want %d", ingredientFeatures, MaxIngredientFeatures)
	}
	if v, _ := f.Get("serving_size"); v != 1 {
		t.Errorf("serving_size = %v, want capped at 1", v)
	}
	if v, _ := f.Get("prep_time_preference"); v != 0.8 {
		t.Errorf("prep_time_preference = %v, want 0.8", v)
	}
}

func TestRemoteScore(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/score" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var f Features
		if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]float64{"score": float64(len(f.Names)) / 10})
	}))
	defer server.Close()

	remote := NewRemote(config.ScorerConfig{Enabled: true, BaseURL: server.URL, Timeout: time.Second})
	got, err := remote.Score(context.Background(), Features{Names: []string{"a", "b"}, Values: []float64{1, 0}})
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if got != 0.2 {
		t.Errorf("Score() = %v, want 0.2", got)
	}
}

func TestRemoteScoreErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}},
		{"missing score", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}},
		{"invalid json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			remote := NewRemote(config.ScorerConfig{Enabled: true, BaseURL: server.URL, Timeout: time.Second})
			if _, err := remote.Score(context.Background(), Features{}); err == nil {
				t.Error("Score() error = nil, want error")
			}
		})
	}
}

func TestNewRemoteDisabled(t *testing.T) {
	if NewRemote(config.ScorerConfig{Enabled: false}) != nil {
		t.Error("NewRemote() should return nil when disabled")
	}
}
