package recipe

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// 依餐別的描述模板，%[1]s 為料理，%[2]s 為菜名
var descriptionTemplates = map[string][]string{
	"breakfast": {
		"A delicious %[1]s breakfast featuring %[2]s. Perfect way to start your day!",
		"Traditional %[1]s breakfast recipe for %[2]s. Energizing and flavorful!",
		"Quick and easy %[2]s - a classic %[1]s breakfast favorite.",
	},
	"lunch": {
		"Hearty %[1]s lunch recipe for %[2]s. Satisfying and nutritious!",
		"Traditional %[2]s from %[1]s cuisine. Perfect midday meal!",
		"Flavorful %[2]s - a staple %[1]s lunch dish.",
	},
	"dinner": {
		"Comforting %[1]s dinner featuring %[2]s. Perfect family meal!",
		"Authentic %[2]s recipe from %[1]s cuisine. Dinner delight!",
		"Hearty and delicious %[2]s - a classic %[1]s dinner.",
	},
	"snack": {
		"Tasty %[1]s snack: %[2]s. Perfect for any time of day!",
		"Quick %[2]s snack from %[1]s cuisine. Irresistible flavors!",
		"Traditional %[1]s snack recipe for %[2]s. Light and delicious.",
	},
}

// GenerateDescription 為沒有描述的食譜產生描述。
// 同一菜名永遠選到同一個模板，未知餐別使用晚餐模板。
func GenerateDescription(title, cuisine, mealType string) string {
	templates, ok := descriptionTemplates[strings.ToLower(strings.TrimSpace(mealType))]
	if !ok {
		templates = descriptionTemplates["dinner"]
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(title))
	tmpl := templates[h.Sum32()%uint32(len(templates))]

	return fmt.Sprintf(tmpl, cuisine, title)
}
