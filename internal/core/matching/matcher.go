package matching

// FindMatches 使用預設門檻 0.7 比對使用者食材與食譜食材
func FindMatches(userIngredients, recipeIngredients []string) MatchResult {
	return Match(NewIngredientList(userIngredients), NewIngredientList(recipeIngredients), DefaultMatchThreshold)
}

// Match 對每個食譜食材依序尋找第一個相似度 > threshold 的使用者食材；
// 若沒有，再以正規化後的包含關係做一次後備比對。
// 每個食譜食材最多計算一次，回傳的是食譜端字串。
func Match(user, recipe IngredientList, threshold float64) MatchResult {
	result := MatchResult{MatchedIngredients: []string{}}

	for _, r := range recipe.items {
		if matchesAny(user, r, threshold) {
			result.MatchedCount++
			result.MatchedIngredients = append(result.MatchedIngredients, r.raw)
		}
	}

	return result
}

// MissingIngredients 回傳沒有任何使用者食材相似度 > threshold 的食譜食材（不含後備比對）
func MissingIngredients(user, recipe IngredientList, threshold float64) []string {
	missing := []string{}
	for _, r := range recipe.items {
		if !similarAny(user, r, threshold) {
			missing = append(missing, r.raw)
		}
	}
	return missing
}

func matchesAny(user IngredientList, r prepared, threshold float64) bool {
	if similarAny(user, r, threshold) {
		return true
	}

	// 後備比對：門檻可能漏掉只有單側被正規化去除 token 的子字串匹配
	if r.norm == "" {
		return false
	}
	for _, u := range user.items {
		if u.norm == "" {
			continue
		}
		if u.norm == r.norm || containsEither(u.norm, r.norm) {
			return true
		}
	}
	return false
}

func similarAny(user IngredientList, r prepared, threshold float64) bool {
	for _, u := range user.items {
		if scorePrepared(u, r) > threshold {
			return true
		}
	}
	return false
}
