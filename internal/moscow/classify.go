// Package moscow implements the deterministic MoSCoW priority pipeline:
// keyword classification, deadline urgency scoring and ordered rule
// evaluation. Same inputs and the same "now" always produce the same output.
package moscow

import "strings"

// TaskType is the semantic category assigned to a task.
type TaskType string

const (
	TypeMajorAcademic     TaskType = "Major academic"
	TypeRegularCoursework TaskType = "Regular coursework"
	TypeSupplementary     TaskType = "Supplementary"
	TypeNonAcademic       TaskType = "Non-academic"
)

// taskTypeOrder fixes the scan order. A text matching keywords from several
// categories resolves to the earliest, highest-importance one.
var taskTypeOrder = []TaskType{
	TypeMajorAcademic,
	TypeRegularCoursework,
	TypeSupplementary,
	TypeNonAcademic,
}

var taskTypeKeywords = map[TaskType][]string{
	TypeMajorAcademic: {
		"research paper", "term paper", "thesis", "dissertation", "capstone",
		"senior project", "major presentation", "defense", "project",
		"midterm", "final", "major exam",
	},
	TypeRegularCoursework: {
		"homework", "assignment", "lab report", "problem set", "pset",
		"quiz", "weekly quiz", "chapter exercises", "discussion post",
		"forum participation", "presentation", "class presentation",
	},
	TypeSupplementary: {
		"learn", "study", "practice", "review notes", "study notes",
		"flashcards", "extra credit", "bonus assignment",
		"supplementary reading", "optional exercises",
	},
	TypeNonAcademic: {
		"cooking", "shopping", "laundry", "clean room", "entertainment",
		"game", "movie", "hobby", "gym", "doctor", "appointment",
		"medical", "dentist", "checkup", "personal", "errands",
		"grocery", "bank", "pharmacy", "hospital", "clinic", "health",
	},
}

// importanceWeights are the fixed base weights per task type.
var importanceWeights = map[TaskType]int{
	TypeMajorAcademic:     4,
	TypeRegularCoursework: 3,
	TypeSupplementary:     2,
	TypeNonAcademic:       1,
}

// ClassifyTaskType maps task text to a type using first-match keyword
// scanning over the fixed category order. Unmatched text defaults to
// Regular coursework.
func ClassifyTaskType(title, description string) TaskType {
	text := strings.ToLower(title + " " + description)

	for _, taskType := range taskTypeOrder {
		for _, keyword := range taskTypeKeywords[taskType] {
			if strings.Contains(text, keyword) {
				return taskType
			}
		}
	}
	return TypeRegularCoursework
}

// ImportanceWeight returns the base importance for a task type.
func ImportanceWeight(t TaskType) int {
	if w, ok := importanceWeights[t]; ok {
		return w
	}
	return importanceWeights[TypeRegularCoursework]
}

// Score combines importance and urgency into the numeric priority score.
// Range: 10 (Non-academic, urgency 0) to 49 (Major academic, urgency 3).
func Score(importance, urgency int) int {
	return importance*10 + urgency*3
}
