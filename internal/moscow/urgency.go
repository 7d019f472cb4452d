package moscow

import (
	"math"
	"time"

	"github.com/taskademic/taskademic/internal/models"
)

// UrgencyWeight converts a due date into an urgency level 0-3 plus the signed
// number of days until due (nil when the task has no due date, negative when
// overdue). Adjustments are applied in a fixed order after the baseline
// ladder, so the result is a pure function of its inputs.
func UrgencyWeight(dueDate *time.Time, taskType TaskType, size models.TaskSize, courseWeight *float64, now time.Time) (int, *int) {
	var dueInDays *int
	if dueDate != nil {
		days := int(math.Ceil(dueDate.Sub(now).Hours() / 24))
		dueInDays = &days
	}

	// Baseline ladder.
	urgency := 0
	switch {
	case dueInDays == nil:
		urgency = 0
	case *dueInDays < 0: // overdue
		urgency = 3
	case *dueInDays <= 1:
		urgency = 3
	case *dueInDays <= 3:
		urgency = 2
	case *dueInDays <= 7:
		urgency = 1
	default:
		urgency = 0
	}

	// Major or large tasks get boosted even when nominally far out.
	if taskType == TypeMajorAcademic || size == models.TaskSizeLarge {
		if dueInDays != nil && *dueInDays <= 7 && urgency < 2 {
			urgency = 2
		}
		if dueInDays != nil && *dueInDays <= 2 && urgency < 3 {
			urgency = 3
		}
	}

	// Small routine tasks far out are never urgent.
	if taskType == TypeRegularCoursework && size == models.TaskSizeSmall &&
		dueInDays != nil && *dueInDays >= 14 {
		urgency = 0
	}

	// Heavily weighted courses bump urgency one level, capped at 3.
	if courseWeight != nil && *courseWeight >= 0.3 {
		urgency++
		if urgency > 3 {
			urgency = 3
		}
	}

	return urgency, dueInDays
}
