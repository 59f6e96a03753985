package matching

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// 相似度規則的分數與門檻
const (
	ExactScore        = 1.0
	SubstringScore    = 0.9
	SequenceThreshold = 0.8
	JaccardThreshold  = 0.5
)

// Similarity 計算兩個食材字串的相似度，範圍 [0, 1]。
//
// 規則依序判斷，第一個成立者勝出：正規化後相等、互為子字串、
// 字元序列比例 > 0.8、token 集合 Jaccard > 0.5，否則為 0。
func Similarity(a, b string) float64 {
	return scorePrepared(prepare(a), prepare(b))
}

// prepared 保存原始（小寫）字串與其正規化結果，避免重複正規化
type prepared struct {
	raw  string
	norm string
}

func prepare(s string) prepared {
	return prepared{raw: s, norm: Normalize(s)}
}

func scorePrepared(a, b prepared) float64 {
	if a.raw == "" || b.raw == "" {
		return 0.0
	}
	return cascade(a.norm, b.norm)
}

func cascade(a, b string) float64 {
	if a == b {
		return ExactScore
	}

	if containsEither(a, b) {
		return SubstringScore
	}

	if ratio := sequenceRatio(a, b); ratio > SequenceThreshold {
		return ratio
	}

	if j := tokenJaccard(a, b); j > JaccardThreshold {
		return j
	}

	return 0.0
}

// containsEither 空字串不視為子字串
func containsEither(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// sequenceRatio 以字元為單位計算最長匹配區塊比例 2*M/T
func sequenceRatio(a, b string) float64 {
	m := difflib.NewMatcher(splitChars(a), splitChars(b))
	return m.Ratio()
}

func splitChars(s string) []string {
	runes := []rune(s)
	out := make([]string, len(runes))
	for i, r := range runes {
		out[i] = string(r)
	}
	return out
}

// tokenJaccard 空白分詞後的集合交集/聯集
func tokenJaccard(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0.0
	}

	intersection := 0
	for token := range setA {
		if _, ok := setB[token]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, token := range strings.Fields(s) {
		set[token] = struct{}{}
	}
	return set
}
