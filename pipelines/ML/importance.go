package ml

import (
	"fmt"
	"sort"
	"strings"
)

// RankedFeature pairs a feature name with its importance score
type RankedFeature struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// RankImportance sorts feature importances descending; ties break on
// feature name so the report order is stable.
func RankImportance(importance map[string]float64) []RankedFeature {
	ranked := make([]RankedFeature, 0, len(importance))
	for name, score := range importance {
		ranked = append(ranked, RankedFeature{Feature: name, Importance: score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Importance != ranked[j].Importance {
			return ranked[i].Importance > ranked[j].Importance
		}
		return ranked[i].Feature < ranked[j].Feature
	})
	return ranked
}

// FormatImportance renders the top-N ranked features as a console table
func FormatImportance(title string, ranked []RankedFeature, topN int) string {
	if topN > 0 && topN < len(ranked) {
		ranked = ranked[:topN]
	}

	width := len("Feature")
	for _, rf := range ranked {
		if len(rf.Feature) > width {
			width = len(rf.Feature)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", title)
	fmt.Fprintf(&b, "%-*s  %s\n", width, "Feature", "Importance")
	fmt.Fprintf(&b, "%s  %s\n", strings.Repeat("-", width), strings.Repeat("-", 10))
	for _, rf := range ranked {
		fmt.Fprintf(&b, "%-*s  %10.4f\n", width, rf.Feature, rf.Importance)
	}
	return b.String()
}
