// Package planner builds daily schedules: duration estimation, the
// deterministic fallback packer and the AI-backed schedule generator.
package planner

import "strings"

// durationRule maps keywords to an estimated duration in minutes. Rules are
// scanned in order and the first match wins, so "final exam" resolves before
// the generic "exam".
type durationRule struct {
	keywords []string
	minutes  int
}

var durationRules = []durationRule{
	{[]string{"final exam", "final test", "midterm exam"}, 180},
	{[]string{"exam", "test", "midterm"}, 120},
	{[]string{"quiz"}, 45},
	{[]string{"research paper", "term paper", "thesis", "project"}, 240},
	{[]string{"presentation", "lab report"}, 120},
	{[]string{"assignment", "homework", "problem set"}, 90},
	{[]string{"study", "review", "practice"}, 75},
	{[]string{"read", "reading"}, 60},
}

// EstimateDuration returns a heuristic duration in minutes for a task based
// on its text, falling back to description-length buckets and then a flat
// default. Deterministic and pure.
func EstimateDuration(title, description string) int {
	text := strings.ToLower(title + " " + description)

	for _, rule := range durationRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(text, keyword) {
				return rule.minutes
			}
		}
	}

	switch {
	case len(description) > 100:
		return 120
	case len(description) > 50:
		return 90
	default:
		return 60
	}
}
