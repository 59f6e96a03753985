package matching

import (
	"fmt"
	"regexp"
	"strings"

	"recipe-matcher/internal/pkg/common"
)

// NoInstructions 食譜沒有步驟時的預設內容
const NoInstructions = "No instructions available."

var numberedStep = regexp.MustCompile(`\d+\.`)

// ParseIngredients 取得食譜的食材清單。
//
// 優先使用核心食材（去空白、小寫）；沒有時解析原始食材文字，
// 可為 JSON 陣列（單引號視為雙引號）或以逗號分隔的 "[a, b]"，每項再經 Normalize。
// 結果去除空值並依首次出現順序去重。
func ParseIngredients(core []string, raw string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	add := func(s string) {
		if s == "" {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	for _, ing := range core {
		add(strings.ToLower(strings.TrimSpace(ing)))
	}
	if len(out) > 0 || raw == "" {
		return out
	}

	for _, item := range splitRawIngredients(raw) {
		if strings.TrimSpace(item) == "" {
			continue
		}
		add(Normalize(item))
	}
	return out
}

func splitRawIngredients(raw string) []string {
	var decoded interface{}
	if err := common.ParseJSON(strings.ReplaceAll(raw, "'", `"`), &decoded); err != nil {
		parts := strings.Split(strings.Trim(strings.TrimSpace(raw), "[]"), ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}

	list, ok := decoded.([]interface{})
	if !ok {
		return nil
	}
	items := make([]string, 0, len(list))
	for _, v := range list {
		if v == nil {
			continue
		}
		items = append(items, fmt.Sprint(v))
	}
	return items
}

// ParseInstructions 將步驟文字拆成清單。
// 依序嘗試 JSON 陣列、編號（"1."）、換行、句號，皆不適用時整段作為單一步驟。
func ParseInstructions(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return []string{NoInstructions}
	}

	if strings.HasPrefix(trimmed, "[") {
		var list []interface{}
		if err := common.ParseJSON(text, &list); err == nil && len(list) > 0 {
			steps := make([]string, 0, len(list))
			for _, step := range list {
				if step == nil {
					continue
				}
				if s := strings.TrimSpace(fmt.Sprint(step)); s != "" {
					steps = append(steps, s)
				}
			}
			if len(steps) == 0 {
				return []string{NoInstructions}
			}
			return steps
		}
	}

	if steps := cleanSteps(numberedStep.Split(text, -1), ""); len(steps) > 0 {
		return steps
	}
	if steps := cleanSteps(strings.Split(text, "\n"), ""); len(steps) > 0 {
		return steps
	}
	if steps := cleanSteps(strings.Split(text, "."), "."); len(steps) > 0 {
		return steps
	}
	return []string{trimmed}
}

// cleanSteps 只有切出多段時才採用
func cleanSteps(parts []string, suffix string) []string {
	if len(parts) < 2 {
		return nil
	}
	steps := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			steps = append(steps, s+suffix)
		}
	}
	return steps
}
