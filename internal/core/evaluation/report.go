package evaluation

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// WriteText 輸出文字報告
func (r *Report) WriteText(w io.Writer) error {
	var b strings.Builder
	line := strings.Repeat("=", 80)

	fmt.Fprintf(&b, "\n%s\nINGREDIENT MATCHING PERFORMANCE EVALUATION REPORT\n%s\n", line, line)

	fmt.Fprintf(&b, "\nMATCHING PERFORMANCE:\n")
	fmt.Fprintf(&b, "   Accuracy:            %.3f\n", r.Accuracy)
	fmt.Fprintf(&b, "   Success Rate:        %.1f%% (%d/%d)\n", r.SuccessRate*100, r.FoundCount, r.TotalTests)
	fmt.Fprintf(&b, "   Precision:           %.3f\n", r.Precision)
	fmt.Fprintf(&b, "   Recall:              %.3f\n", r.Recall)
	fmt.Fprintf(&b, "   F1-Score:            %.3f\n", r.F1Score)
	fmt.Fprintf(&b, "   Average Match %%:     %.1f%%\n", r.AvgMatchPercentage)
	if r.AvgRank != nil {
		fmt.Fprintf(&b, "   Average Rank:        %.1f\n", *r.AvgRank)
	}

	s := r.MatchingStatistics
	fmt.Fprintf(&b, "\nMATCHING STATISTICS:\n")
	fmt.Fprintf(&b, "   Minimum Match %%:     %.1f%%\n", s.Min)
	fmt.Fprintf(&b, "   Maximum Match %%:     %.1f%%\n", s.Max)
	fmt.Fprintf(&b, "   Median Match %%:      %.1f%%\n", s.Median)
	fmt.Fprintf(&b, "   Std Dev Match %%:     %.1f%%\n", s.Std)
	fmt.Fprintf(&b, "   Matching Threshold:  %g%%\n", r.MatchThresholdUsed)

	fmt.Fprintf(&b, "\nTEST CONFIGURATION:\n")
	fmt.Fprintf(&b, "   Test Cases:          %d\n", r.TotalTests)
	fmt.Fprintf(&b, "   Recipes:             %d\n", r.RecipesEvaluated)

	m := r.ConfusionMatrix.Matrix
	fmt.Fprintf(&b, "\nCONFUSION MATRIX SUMMARY:\n")
	fmt.Fprintf(&b, "   True Positives:      %d\n", m[0][0])
	fmt.Fprintf(&b, "   False Positives:     %d\n", m[0][1])
	fmt.Fprintf(&b, "   False Negatives:     %d\n", m[1][0])
	fmt.Fprintf(&b, "   True Negatives:      %d\n", m[1][1])

	fmt.Fprintf(&b, "\nTOP PERFORMING MATCHES:\n")
	for i, c := range r.topMatches(3) {
		status := "MISSED"
		if c.ExpectedFound {
			status = "FOUND"
		}
		rank := ""
		if c.ExpectedRank != nil {
			rank = fmt.Sprintf(" (Rank: %d)", *c.ExpectedRank)
		}
		fmt.Fprintf(&b, "   %d. %s - %.1f%% %s%s\n", i+1, c.ExpectedRecipe, c.ActualMatchPercentage, status, rank)
	}

	fmt.Fprintf(&b, "\n%s\n", line)

	_, err := io.WriteString(w, b.String())
	return err
}

func (r *Report) topMatches(n int) []CaseResult {
	sorted := append([]CaseResult(nil), r.DetailedResults...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ActualMatchPercentage > sorted[j].ActualMatchPercentage
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
