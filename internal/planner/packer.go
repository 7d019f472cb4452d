package planner

import (
	"fmt"

	"github.com/taskademic/taskademic/internal/models"
	"github.com/taskademic/taskademic/internal/moscow"
)

// Packer defaults, overridable via config.
const (
	// DefaultShouldLimit caps how many should-bucket tasks are offered to a
	// schedule after the musts.
	DefaultShouldLimit = 5
	// DefaultBufferMinutes is the gap left between consecutive tasks.
	DefaultBufferMinutes = 10

	mustPriorityScore   = 95
	shouldPriorityScore = 70
)

// PackInput carries everything the fallback packer needs. Blocks must be the
// day's available blocks; Tasks must contain every task referenced by the
// bucket entries.
type PackInput struct {
	Blocks        []models.TimeBlock
	Must          []moscow.BucketEntry
	Should        []moscow.BucketEntry
	Tasks         map[string]models.Task
	ShouldLimit   int
	BufferMinutes int
}

// blockState tracks a movable cursor and remaining capacity per block.
type blockState struct {
	block     *models.TimeBlock
	cursor    int // minutes past midnight
	remaining int
}

// Pack is the deterministic fallback scheduler: a single-pass greedy
// first-fit bin-packer. All must tasks are attempted in order, then up to
// ShouldLimit should tasks. A task goes to the cursor of the first block with
// enough remaining capacity; tasks that fit nowhere are omitted. Cursor-based
// placement means the output never double-books a block.
func Pack(in PackInput) *Plan {
	shouldLimit := in.ShouldLimit
	if shouldLimit <= 0 {
		shouldLimit = DefaultShouldLimit
	}
	buffer := in.BufferMinutes
	if buffer <= 0 {
		buffer = DefaultBufferMinutes
	}

	states := make([]*blockState, 0, len(in.Blocks))
	for i := range in.Blocks {
		start, err := models.ParseClock(in.Blocks[i].StartTime)
		if err != nil {
			continue
		}
		states = append(states, &blockState{
			block:     &in.Blocks[i],
			cursor:    start,
			remaining: in.Blocks[i].DurationMinutes(),
		})
	}

	plan := &Plan{Schedule: []PlanItem{}}

	place := func(entry moscow.BucketEntry, isMust bool) bool {
		task, ok := in.Tasks[entry.ID]
		if !ok {
			return false
		}
		duration := EstimateDuration(task.Title, task.Description)

		for _, state := range states {
			if state.remaining < duration {
				continue
			}
			sessions := duration / 25
			if sessions < 1 {
				sessions = 1
			}
			breakMinutes := 5
			if duration >= 60 {
				breakMinutes = 10
			}
			label, score := "SHOULD task", float64(shouldPriorityScore)
			if isMust {
				label, score = "Priority MUST task", float64(mustPriorityScore)
			}

			plan.Schedule = append(plan.Schedule, PlanItem{
				TaskID:                   task.ID,
				TaskTitle:                task.Title,
				ScheduledStart:           models.FormatClock(state.cursor),
				ScheduledEnd:             models.FormatClock(state.cursor + duration),
				EstimatedDurationMinutes: duration,
				PomodoroSessions:         sessions,
				BreakMinutes:             breakMinutes,
				Reasoning:                fmt.Sprintf("%s: %s. Scheduled with %d pomodoro sessions.", label, task.Title, sessions),
				PriorityScore:            score,
			})

			// The buffer is the only capacity cost besides the task itself;
			// break minutes are display-only.
			state.cursor += duration + buffer
			state.remaining -= duration + buffer
			return true
		}
		return false
	}

	mustScheduled := 0
	for _, entry := range in.Must {
		if place(entry, true) {
			mustScheduled++
		}
	}

	shouldScheduled := 0
	should := in.Should
	if len(should) > shouldLimit {
		should = should[:shouldLimit]
	}
	for _, entry := range should {
		if place(entry, false) {
			shouldScheduled++
		}
	}

	remaining := 0
	for _, state := range states {
		remaining += state.remaining
	}
	totalScheduled, totalBreaks := 0, 0
	for _, item := range plan.Schedule {
		totalScheduled += item.EstimatedDurationMinutes
		totalBreaks += item.BreakMinutes
	}

	plan.Summary = PlanSummary{
		TotalScheduledMinutes: totalScheduled,
		TotalBreakMinutes:     totalBreaks,
		TasksScheduled:        len(plan.Schedule),
		MustScheduled:         mustScheduled,
		ShouldScheduled:       shouldScheduled,
		RemainingMinutes:      remaining,
		Strategy: fmt.Sprintf("Fallback scheduling: prioritized all %d MUST tasks, scheduled %d. Added %d SHOULD tasks.",
			len(in.Must), mustScheduled, shouldScheduled),
	}
	return plan
}
