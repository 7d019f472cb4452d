package planner

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/taskademic/taskademic/internal/models"
)

// Plan is the schedule contract shared by the reasoning service and the
// fallback packer.
type Plan struct {
	Schedule []PlanItem  `json:"schedule"`
	Summary  PlanSummary `json:"summary"`
}

// PlanItem is one scheduled task in a plan.
type PlanItem struct {
	TaskID                   string  `json:"task_id"`
	TaskTitle                string  `json:"task_title,omitempty"`
	ScheduledStart           string  `json:"scheduled_start"`
	ScheduledEnd             string  `json:"scheduled_end"`
	EstimatedDurationMinutes int     `json:"estimated_duration_minutes"`
	PomodoroSessions         int     `json:"pomodoro_sessions"`
	BreakMinutes             int     `json:"break_minutes"`
	Reasoning                string  `json:"reasoning"`
	PriorityScore            float64 `json:"priority_score"`
}

// PlanSummary totals a plan.
type PlanSummary struct {
	TotalScheduledMinutes int    `json:"total_scheduled_minutes"`
	TotalBreakMinutes     int    `json:"total_break_minutes"`
	TasksScheduled        int    `json:"tasks_scheduled"`
	MustScheduled         int    `json:"moscow_must_scheduled"`
	ShouldScheduled       int    `json:"moscow_should_scheduled"`
	RemainingMinutes      int    `json:"remaining_time_minutes"`
	Strategy              string `json:"scheduling_strategy,omitempty"`
}

// ExtractPlan parses the first {...} JSON span out of reasoning-service
// output. Models wrap the JSON in prose or markdown fences, so everything
// outside the outermost braces is discarded.
func ExtractPlan(content string) (*Plan, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("%w: no JSON object in response", ErrInvalidPlan)
	}

	var plan Plan
	if err := json.Unmarshal([]byte(content[start:end+1]), &plan); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPlan, err)
	}
	if plan.Schedule == nil {
		return nil, fmt.Errorf("%w: missing schedule list", ErrInvalidPlan)
	}
	return &plan, nil
}

// ValidatePlan rejects a plan that references unknown task ids or schedules
// outside the available blocks. A rejected plan sends the caller to the
// fallback packer rather than trusting external output.
func ValidatePlan(plan *Plan, knownTasks map[string]models.Task, blocks []models.TimeBlock) error {
	for _, item := range plan.Schedule {
		if _, ok := knownTasks[item.TaskID]; !ok {
			return fmt.Errorf("%w: unknown task id %q", ErrInvalidPlan, item.TaskID)
		}
		if _, _, err := matchBlock(item, blocks); err != nil {
			return err
		}
	}
	return nil
}

// matchBlock finds the available block containing a plan item's interval. The
// second return value is the item's end offset in minutes from the block's
// start, i.e. how far into the block the item reaches.
func matchBlock(item PlanItem, blocks []models.TimeBlock) (*models.TimeBlock, int, error) {
	itemStart, err := models.ParseClock(item.ScheduledStart)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: task %s: %v", ErrInvalidPlan, item.TaskID, err)
	}
	itemEnd, err := models.ParseClock(item.ScheduledEnd)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: task %s: %v", ErrInvalidPlan, item.TaskID, err)
	}
	if itemEnd <= itemStart {
		itemEnd += 24 * 60
	}

	for i := range blocks {
		blockStart, err := models.ParseClock(blocks[i].StartTime)
		if err != nil {
			continue
		}
		blockEnd, err := models.ParseClock(blocks[i].EndTime)
		if err != nil {
			continue
		}
		overnight := blockEnd <= blockStart
		if overnight {
			blockEnd += 24 * 60
		}
		// In an overnight block, item times on the far side of midnight sit
		// before the block's clock start; shift them into the extended range.
		start, end := itemStart, itemEnd
		if overnight && start < blockStart {
			start += 24 * 60
			end += 24 * 60
		}
		if start >= blockStart && end <= blockEnd {
			return &blocks[i], end - blockStart, nil
		}
	}
	return nil, 0, fmt.Errorf("%w: task %s scheduled %s-%s outside available blocks",
		ErrInvalidPlan, item.TaskID, item.ScheduledStart, item.ScheduledEnd)
}
