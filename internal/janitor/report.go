package janitor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/evogo/evolution/models"
)

// Summary aggregates a gateway listing for human consumption.
type Summary struct {
	Total      int
	Disposable int
	ByStatus   map[string]int
	ByState    map[string]int
}

// BuildSummary counts instances per status and per state, and how many
// carry disposable names.
func BuildSummary(instances []models.Instance) Summary {
	s := Summary{
		Total:    len(instances),
		ByStatus: map[string]int{},
		ByState:  map[string]int{},
	}
	for _, inst := range instances {
		name := inst.Name
		if name == "" {
			name = inst.ID
		}
		if IsDisposable(name) {
			s.Disposable++
		}
		s.ByStatus[labelOr(string(inst.Status), "unknown")]++
		s.ByState[labelOr(string(inst.State), "unknown")]++
	}
	return s
}

// FormatTable renders the listing as a fixed-width table followed by the
// aggregate counts.
func FormatTable(instances []models.Instance) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-32s %-14s %-12s %-10s %s\n", "NAME", "STATUS", "STATE", "MATCHED", "ID")
	for _, inst := range instances {
		name := inst.Name
		if name == "" {
			name = inst.ID
		}
		matched := "-"
		if pattern, ok := MatchPattern(name); ok {
			matched = pattern
		}
		fmt.Fprintf(&b, "%-32s %-14s %-12s %-10s %s\n",
			name,
			labelOr(string(inst.Status), "-"),
			labelOr(string(inst.State), "-"),
			matched,
			inst.ID,
		)
	}

	summary := BuildSummary(instances)
	fmt.Fprintf(&b, "\n%d instances, %d with disposable names\n", summary.Total, summary.Disposable)
	fmt.Fprintf(&b, "status: %s\n", countFragments(summary.ByStatus))
	fmt.Fprintf(&b, "state:  %s\n", countFragments(summary.ByState))
	return b.String()
}

// countFragments renders "label=N" pairs sorted by label so output is
// stable across runs.
func countFragments(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	return strings.Join(parts, " ")
}

func labelOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
