package matching

import (
	"sort"
	"strings"
)

// Recipe 候選食譜，顯示欄位原樣傳遞
type Recipe struct {
	ID           int64    `json:"recipe_id"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Cuisine      string   `json:"cuisine,omitempty"`
	MealType     string   `json:"meal_type,omitempty"`
	DietType     string   `json:"diet_type,omitempty"`
	Difficulty   string   `json:"difficulty,omitempty"`
	CookingTime  int      `json:"cooking_time,omitempty"`
	ServingSize  int      `json:"serving_size,omitempty"`
	Rating       float64  `json:"rating,omitempty"`
	ImageURL     string   `json:"image_url,omitempty"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions,omitempty"`
}

// MatchResult 單一 (使用者, 食譜) 組合的匹配結果
type MatchResult struct {
	MatchedCount       int      `json:"matched_count"`
	MatchedIngredients []string `json:"matched_ingredients"`
}

// ScoredRecipe 通過門檻的食譜與其分數
type ScoredRecipe struct {
	Recipe
	MatchPercentage    float64  `json:"match_percentage"`
	MatchedCount       int      `json:"matching_ingredients_count"`
	TotalIngredients   int      `json:"total_ingredients_count"`
	MatchedIngredients []string `json:"matching_ingredients"`
}

// IngredientList 預先小寫並正規化的食材清單，可快取重複使用
type IngredientList struct {
	items []prepared
}

// NewIngredientList 建立食材清單，保留輸入順序
func NewIngredientList(items []string) IngredientList {
	list := IngredientList{items: make([]prepared, len(items))}
	for i, item := range items {
		list.items[i] = prepare(strings.ToLower(item))
	}
	return list
}

// Len 食材數量
func (l IngredientList) Len() int {
	return len(l.items)
}

// Values 小寫後的食材字串
func (l IngredientList) Values() []string {
	out := make([]string, len(l.items))
	for i, item := range l.items {
		out[i] = item.raw
	}
	return out
}

// IngredientSet 不重複的正規化食材集合，迭代順序為插入順序
type IngredientSet struct {
	order []string
	index map[string]struct{}
}

// NewIngredientSet 由原始文字建立集合，正規化後為空者略過
func NewIngredientSet(items ...string) *IngredientSet {
	s := &IngredientSet{index: make(map[string]struct{}, len(items))}
	for _, item := range items {
		s.Add(item)
	}
	return s
}

// Add 加入一個食材，回傳是否為新成員
func (s *IngredientSet) Add(item string) bool {
	n := Normalize(item)
	if n == "" {
		return false
	}
	if _, ok := s.index[n]; ok {
		return false
	}
	s.index[n] = struct{}{}
	s.order = append(s.order, n)
	return true
}

// Contains 以正規化結果判斷成員
func (s *IngredientSet) Contains(item string) bool {
	_, ok := s.index[Normalize(item)]
	return ok
}

// Len 成員數量
func (s *IngredientSet) Len() int {
	return len(s.order)
}

// Values 依插入順序回傳成員
func (s *IngredientSet) Values() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Sorted 依字典序回傳成員
func (s *IngredientSet) Sorted() []string {
	out := s.Values()
	sort.Strings(out)
	return out
}
