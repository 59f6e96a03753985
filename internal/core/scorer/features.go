package scorer

import (
	"sort"
	"strings"

	"recipe-matcher/internal/core/matching"
)

// MaxIngredientFeatures 食材二元特徵的數量上限
const MaxIngredientFeatures = 50

var (
	cuisines  = []string{"north indian", "south indian", "maharashtrian", "gujarati", "punjabi", "bengali", "hyderabadi"}
	mealTypes = []string{"breakfast", "lunch", "dinner", "snack", "beverage"}
	dietTypes = []string{"vegetarian", "vegan", "non-vegetarian"}
)

// Features 有序的特徵向量
type Features struct {
	RecipeID int64     `json:"recipe_id,omitempty"`
	Names    []string  `json:"names"`
	Values   []float64 `json:"values"`
}

// Get 依名稱取值，不存在時回傳 false
func (f Features) Get(name string) (float64, bool) {
	for i, n := range f.Names {
		if n == name {
			return f.Values[i], true
		}
	}
	return 0, false
}

func (f *Features) add(name string, value float64) {
	f.Names = append(f.Names, name)
	f.Values = append(f.Values, value)
}

// Input 建立特徵所需的情境
type Input struct {
	UserIngredients []string
	Cuisine         string
	MealType        string
	DietType        string
	ServingSize     int
}

// InputFor 以食譜的屬性建立情境
func InputFor(user []string, r matching.Recipe) Input {
	return Input{
		UserIngredients: user,
		Cuisine:         r.Cuisine,
		MealType:        r.MealType,
		DietType:        r.DietType,
		ServingSize:     r.ServingSize,
	}
}

// Vocabulary 所有食譜食材的排序後不重複集合
func Vocabulary(recipes []matching.Recipe) []string {
	seen := make(map[string]struct{})
	for _, r := range recipes {
		for _, ing := range r.Ingredients {
			seen[ing] = struct{}{}
		}
	}

	vocab := make([]string, 0, len(seen))
	for ing := range seen {
		vocab = append(vocab, ing)
	}
	sort.Strings(vocab)
	return vocab
}

// BuildFeatures 建立特徵向量：
// 詞彙前 50 個食材的二元特徵（使用者食材相似度 > threshold）、
// 菜系/餐別/飲食 one-hot、份量（/10，上限 1）與依餐別的準備時間偏好。
func BuildFeatures(vocabulary []string, in Input, threshold float64) Features {
	var f Features

	if len(vocabulary) > MaxIngredientFeatures {
		vocabulary = vocabulary[:MaxIngredientFeatures]
	}
	user := matching.NewIngredientList(in.UserIngredients)
	for _, ing := range vocabulary {
		one := matching.NewIngredientList([]string{ing})
		f.add(ingredientFeatureName(ing), boolValue(len(matching.MissingIngredients(user, one, threshold)) == 0))
	}

	cuisine := strings.ToLower(in.Cuisine)
	for _, c := range cuisines {
		f.add("cuisine_"+strings.ReplaceAll(c, " ", "_"), boolValue(cuisine == c))
	}

	meal := strings.ToLower(in.MealType)
	for _, m := range mealTypes {
		f.add("meal_"+m, boolValue(meal == m))
	}

	diet := strings.ToLower(in.DietType)
	for _, d := range dietTypes {
		f.add("diet_"+d, boolValue(diet == d))
	}

	serving := float64(in.ServingSize) / 10
	if serving > 1 {
		serving = 1
	}
	f.add("serving_size", serving)

	switch meal {
	case "breakfast":
		f.add("prep_time_preference", 0.3)
	case "lunch":
		f.add("prep_time_preference", 0.6)
	default:
		f.add("prep_time_preference", 0.8)
	}

	return f
}

func ingredientFeatureName(ing string) string {
	name := strings.NewReplacer(" ", "_", "-", "_").Replace(ing)
	if runes := []rune(name); len(runes) > 20 {
		name = string(runes[:20])
	}
	return "ing_" + name
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
