package evaluation

import (
	"math/rand"
	"sort"

	"recipe-matcher/internal/core/matching"
)

// 案例產生的限制
const (
	MaxGeneratedCases   = 50
	MinRecipeIngredient = 3
	MinCaseIngredients  = 2
	MaxRecipes          = 200
)

// DefaultNoise 模擬使用者誤加的食材
var DefaultNoise = []string{"bread", "milk", "paneer", "rice", "apple", "banana"}

// PrepareRecipes 依 ID 排序並將食材轉為排序後不重複的正規化清單，
// 略過沒有食材的食譜，最多保留 MaxRecipes 筆
func PrepareRecipes(recipes []matching.Recipe) []matching.Recipe {
	sorted := sortedByID(recipes)

	out := make([]matching.Recipe, 0, len(sorted))
	for _, r := range sorted {
		ingredients := matching.NewIngredientSet(r.Ingredients...).Sorted()
		if len(ingredients) == 0 {
			continue
		}
		r.Ingredients = ingredients
		out = append(out, r)
		if len(out) == MaxRecipes {
			break
		}
	}
	return out
}

// GenerateTestCases 由食譜產生確定性的案例。
//
// 食譜依 ID 排序，少於 3 個食材者略過；每個食譜產生前半、前三分之一、
// 隔一取一三種子集，至少 2 個食材才保留。每處理完一個食譜檢查一次，
// 累積達 50 筆即停止，因此總數可能略超過 50。
func GenerateTestCases(recipes []matching.Recipe) []TestCase {
	cases := []TestCase{}

	for _, r := range sortedByID(recipes) {
		n := len(r.Ingredients)
		if n < MinRecipeIngredient {
			continue
		}

		variations := [][]string{
			r.Ingredients[:n/2],
			r.Ingredients[:n/3],
			everyOther(r.Ingredients),
		}
		for _, user := range variations {
			if len(user) < MinCaseIngredients {
				continue
			}
			cases = append(cases, TestCase{
				UserIngredients:         append([]string(nil), user...),
				ExpectedRecipe:          r.Title,
				ActualRecipeIngredients: append([]string(nil), r.Ingredients...),
			})
		}

		if len(cases) >= MaxGeneratedCases {
			break
		}
	}
	return cases
}

// GenerateNoisyTestCases 模擬真實使用者輸入：
// 隨機移除 5%~15% 的食材（至少保留 1 個），再加入 0~1 個 noise 中的食材。
// limit <= 0 時不限制數量。
func GenerateNoisyTestCases(recipes []matching.Recipe, rng *rand.Rand, noise []string, limit int) []TestCase {
	cases := []TestCase{}

	for _, r := range sortedByID(recipes) {
		n := len(r.Ingredients)
		if n == 0 {
			continue
		}

		missing := 0.05 + rng.Float64()*0.10
		keep := int(float64(n) * (1 - missing))
		if keep < 1 {
			keep = 1
		}
		if keep > n {
			keep = n
		}

		user := make([]string, 0, keep+1)
		for _, i := range rng.Perm(n)[:keep] {
			user = append(user, r.Ingredients[i])
		}
		if len(noise) > 0 && rng.Intn(2) == 1 {
			user = append(user, noise[rng.Intn(len(noise))])
		}

		cases = append(cases, TestCase{
			UserIngredients:         user,
			ExpectedRecipe:          r.Title,
			ActualRecipeIngredients: append([]string(nil), r.Ingredients...),
		})

		if limit > 0 && len(cases) >= limit {
			break
		}
	}
	return cases
}

func sortedByID(recipes []matching.Recipe) []matching.Recipe {
	sorted := append([]matching.Recipe(nil), recipes...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	return sorted
}

func everyOther(items []string) []string {
	out := make([]string, 0, (len(items)+1)/2)
	for i := 0; i < len(items); i += 2 {
		out = append(out, items[i])
	}
	return out
}
