package matching

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// 依序套用，每個樣式處理完整字串後才進行下一個
var stripPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d+\s*(tsp|tbsp|cup|cups|gram|g|kg|ml|l|pinch|to taste|slice|slices)\s*`),
	regexp.MustCompile(`\d+[/\d]*\s*`),
	regexp.MustCompile(`[\d.,]+\s*`),
	regexp.MustCompile(`\([^)]*\)`),
	regexp.MustCompile(`\b(optional|fresh|dried|chopped|sliced|minced|grated|powdered)\b`),
}

var stopWords = map[string]struct{}{
	"of": {}, "and": {}, "or": {}, "the": {}, "a": {},
	"an": {}, "for": {}, "in": {}, "with": {}, "as": {},
}

// Normalize 將食材文字轉為標準化的 token 序列。
//
// 移除數量、單位、括號說明與描述詞，去除停用詞與長度不超過 2 的 token，
// 再做簡單的單數化（"es" 去 2 字元，否則 "s" 去 1 字元）。
// 無法使用的輸入回傳空字串。
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	s := strings.TrimSpace(strings.ToLower(text))
	for _, re := range stripPatterns {
		s = re.ReplaceAllString(s, "")
	}

	words := strings.Fields(s)
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if _, stop := stopWords[w]; stop || utf8.RuneCountInString(w) <= 2 {
			continue
		}
		kept = append(kept, singularize(w))
	}

	return strings.TrimSpace(strings.Join(kept, " "))
}

// singularize 刻意保持粗略，例如 "gas" 會變成 "ga"
func singularize(w string) string {
	switch {
	case strings.HasSuffix(w, "es"):
		return w[:len(w)-2]
	case strings.HasSuffix(w, "s"):
		return w[:len(w)-1]
	}
	return w
}
