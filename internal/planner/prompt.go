package planner

import (
	"fmt"
	"strings"
	"time"

	"github.com/taskademic/taskademic/internal/models"
	"github.com/taskademic/taskademic/internal/moscow"
)

// BuildPrompt renders the planning request sent to the reasoning service:
// per-block capacity, every must task, up to shouldLimit should tasks,
// duration guidance and the required JSON output contract.
func BuildPrompt(date time.Time, blocks []models.TimeBlock, must, should []moscow.BucketEntry, tasks map[string]models.Task, shouldLimit int) string {
	if shouldLimit <= 0 {
		shouldLimit = DefaultShouldLimit
	}

	totalMinutes := 0
	for _, block := range blocks {
		totalMinutes += block.DurationMinutes()
	}

	var b strings.Builder

	fmt.Fprintf(&b, `You are an expert academic productivity scheduler. Create an optimal daily schedule for a student.

**TARGET DATE:** %s
**TOTAL AVAILABLE TIME:** %d minutes (%.1f hours)

**AVAILABLE TIME BLOCKS:**
`, date.Format("Monday, January 2, 2006"), totalMinutes, float64(totalMinutes)/60)

	for _, block := range blocks {
		fmt.Fprintf(&b, "- %s-%s: %d minutes\n", block.StartTime, block.EndTime, block.DurationMinutes())
	}

	b.WriteString("\n**MUST HAVE tasks - SCHEDULE ALL OF THESE:**\n")
	if len(must) == 0 {
		b.WriteString("- No MUST tasks\n")
	}
	for _, entry := range must {
		writeTaskLine(&b, entry, tasks)
	}

	b.WriteString("\n**SHOULD HAVE tasks - schedule if time permits:**\n")
	limited := should
	if len(limited) > shouldLimit {
		limited = limited[:shouldLimit]
	}
	if len(limited) == 0 {
		b.WriteString("- No SHOULD tasks\n")
	}
	for _, entry := range limited {
		writeTaskLine(&b, entry, tasks)
	}

	fmt.Fprintf(&b, `
**SCHEDULING RULES:**
1. Schedule ALL %d MUST tasks before any SHOULD task.
2. Use realistic durations: final exam prep 3-5h, midterm prep 2-3h, research paper 4-6h, homework 45-90min, lab report 1-2h, quiz prep 30-60min, reading 30-45min per chapter.
3. Break long tasks into 25-minute pomodoro sessions with short breaks.
4. Leave a 10-15 minute buffer between tasks and never exceed the available blocks.

**REQUIRED OUTPUT FORMAT:**
Return ONLY a valid JSON object with this exact structure:

{
  "schedule": [
    {
      "task_id": "<id from the task list>",
      "scheduled_start": "HH:MM",
      "scheduled_end": "HH:MM",
      "estimated_duration_minutes": 90,
      "pomodoro_sessions": 3,
      "break_minutes": 10,
      "reasoning": "why this slot",
      "priority_score": 95
    }
  ],
  "summary": {
    "total_scheduled_minutes": 0,
    "total_break_minutes": 0,
    "tasks_scheduled": 0,
    "moscow_must_scheduled": 0,
    "moscow_should_scheduled": 0,
    "remaining_time_minutes": 0
  }
}

scheduled_start and scheduled_end must fall inside an available time block, in 24-hour HH:MM format. task_id must match an ID from the task list above.

Schedule the tasks now:`, len(must))

	return b.String()
}

func writeTaskLine(b *strings.Builder, entry moscow.BucketEntry, tasks map[string]models.Task) {
	task, ok := tasks[entry.ID]
	if !ok {
		return
	}
	description := task.Description
	if description == "" {
		description = "No description"
	}
	dueInfo := "No deadline"
	if entry.DueInDays != nil {
		dueInfo = fmt.Sprintf("Days until due: %d", *entry.DueInDays)
	}
	fmt.Fprintf(b, "- ID:%s | %s: %s | %s\n", task.ID, task.Title, description, dueInfo)
}
