package evaluation

import (
	"fmt"

	"recipe-matcher/internal/pkg/common"
)

// LoadFixtures 讀取 JSON 案例檔
func LoadFixtures(path string) ([]TestCase, error) {
	var cases []TestCase
	if err := common.ReadJSONFile(path, &cases); err != nil {
		return nil, err
	}
	for i, tc := range cases {
		if tc.ExpectedRecipe == "" {
			return nil, fmt.Errorf("test case %d: expected_recipe is required", i+1)
		}
	}
	return cases, nil
}

// SaveFixtures 以縮排 JSON 寫入案例檔
func SaveFixtures(path string, cases []TestCase) error {
	return common.WriteJSONFile(path, cases)
}
