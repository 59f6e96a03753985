package matching

import (
	"sort"
)

// IngredientLookup 取得食譜已準備好的食材清單，通常由快取提供
type IngredientLookup func(Recipe) IngredientList

// Rank 依 cfg 對候選食譜評分、過濾、排序並截斷為 TopN。
//
// 保留條件為 matched_count >= MinMatchCount 且 match_percentage > MinMatchPercentage。
// 排序依 (百分比, 匹配數) 遞減，相同者保持候選順序。沒有結果時回傳空切片。
func Rank(userIngredients []string, candidates []Recipe, cfg Config) ([]ScoredRecipe, error) {
	return RankWithLookup(userIngredients, candidates, cfg, nil)
}

// RankWithLookup 與 Rank 相同，但由 lookup 提供每個食譜的食材清單
func RankWithLookup(userIngredients []string, candidates []Recipe, cfg Config, lookup IngredientLookup) ([]ScoredRecipe, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if lookup == nil {
		lookup = func(r Recipe) IngredientList { return NewIngredientList(r.Ingredients) }
	}

	user := NewIngredientList(userIngredients)
	scored := make([]*ScoredRecipe, len(candidates))

	score := func(i int) {
		recipe := candidates[i]
		ingredients := lookup(recipe)
		total := ingredients.Len()
		if total == 0 {
			return
		}

		result := Match(user, ingredients, cfg.MatchThreshold)
		pct := 100 * float64(result.MatchedCount) / float64(total)
		if result.MatchedCount < cfg.MinMatchCount || !(pct > cfg.MinMatchPercentage) {
			return
		}

		scored[i] = &ScoredRecipe{
			Recipe:             recipe,
			MatchPercentage:    pct,
			MatchedCount:       result.MatchedCount,
			TotalIngredients:   total,
			MatchedIngredients: result.MatchedIngredients,
		}
	}

	if workers := cfg.workers(len(candidates)); workers > 1 {
		newPool(workers, len(candidates)).run(len(candidates), score)
	} else {
		for i := range candidates {
			score(i)
		}
	}

	out := make([]ScoredRecipe, 0, len(candidates))
	for _, s := range scored {
		if s != nil {
			out = append(out, *s)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].MatchPercentage != out[j].MatchPercentage {
			return out[i].MatchPercentage > out[j].MatchPercentage
		}
		return out[i].MatchedCount > out[j].MatchedCount
	})

	if len(out) > cfg.TopN {
		out = out[:cfg.TopN]
	}
	return out, nil
}
