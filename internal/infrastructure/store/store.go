// Package store 提供食譜與替代食材的資料來源。
package store

import (
	"context"
	"errors"
	"fmt"

	"recipe-matcher/internal/core/matching"
	"recipe-matcher/internal/infrastructure/config"
)

// 替代食材查詢上限
const MaxSubstitutes = 3

// 食譜欄位缺值時的預設
const (
	DefaultCuisine     = "Indian"
	DefaultDifficulty  = "Medium"
	DefaultCookingTime = 30
	DefaultMealType    = "Dinner"
	DefaultDietType    = "Vegetarian"
	DefaultServingSize = 4
	DefaultRating      = 4.5
	DefaultSubReason   = "Good alternative ingredient"
)

// ErrNotFound 食譜不存在
var ErrNotFound = errors.New("recipe not found")

// Substitute 替代食材
type Substitute struct {
	Substitute string `json:"substitute"`
	Reason     string `json:"reason"`
}

// Store 食譜資料來源
type Store interface {
	// ListRecipes 回傳所有具有食材的食譜
	ListRecipes(ctx context.Context) ([]matching.Recipe, error)
	GetRecipe(ctx context.Context, id int64) (matching.Recipe, error)
	// Substitutes 先精確比對食材名稱，找不到再以包含關係比對，最多 MaxSubstitutes 筆
	Substitutes(ctx context.Context, ingredient string) ([]Substitute, error)
	// SaveRecipe 新增或更新食譜，ID 為 0 時配發新 ID
	SaveRecipe(ctx context.Context, recipe matching.Recipe) (matching.Recipe, error)
	Close() error
}

// WriteHook 食譜寫入後呼叫，用於讓快取失效
type WriteHook func(id int64)

func applyDefaults(r *matching.Recipe) {
	if r.Cuisine == "" {
		r.Cuisine = DefaultCuisine
	}
	if r.Difficulty == "" {
		r.Difficulty = DefaultDifficulty
	}
	if r.CookingTime == 0 {
		r.CookingTime = DefaultCookingTime
	}
	if r.MealType == "" {
		r.MealType = DefaultMealType
	}
	if r.DietType == "" {
		r.DietType = DefaultDietType
	}
	if r.ServingSize == 0 {
		r.ServingSize = DefaultServingSize
	}
	if r.Rating == 0 {
		r.Rating = DefaultRating
	}
}

func cloneRecipe(r matching.Recipe) matching.Recipe {
	r.Ingredients = append([]string(nil), r.Ingredients...)
	r.Instructions = append([]string(nil), r.Instructions...)
	return r
}

var (
	_ Store = (*FileStore)(nil)
	_ Store = (*PostgresStore)(nil)
)

// Open 依設定開啟食譜資料來源
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "postgres":
		s, err := NewPostgresStore(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "file", "":
		s, err := NewFileStore(cfg.RecipesPath)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
