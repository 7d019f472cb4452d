package planner

import (
	"errors"
	"testing"

	"github.com/taskademic/taskademic/internal/models"
)

const planJSON = `{
  "schedule": [
    {
      "task_id": "t1",
      "scheduled_start": "09:00",
      "scheduled_end": "10:30",
      "estimated_duration_minutes": 90,
      "pomodoro_sessions": 3,
      "break_minutes": 10,
      "reasoning": "morning focus",
      "priority_score": 95
    }
  ],
  "summary": {
    "total_scheduled_minutes": 90,
    "total_break_minutes": 10,
    "tasks_scheduled": 1,
    "moscow_must_scheduled": 1,
    "moscow_should_scheduled": 0,
    "remaining_time_minutes": 30
  }
}`

func TestExtractPlan(t *testing.T) {
	plan, err := ExtractPlan(planJSON)
	if err != nil {
		t.Fatalf("ExtractPlan failed: %v", err)
	}
	if len(plan.Schedule) != 1 {
		t.Fatalf("got %d items, want 1", len(plan.Schedule))
	}
	if plan.Schedule[0].TaskID != "t1" || plan.Schedule[0].ScheduledStart != "09:00" {
		t.Errorf("unexpected item: %+v", plan.Schedule[0])
	}
	if plan.Summary.TotalScheduledMinutes != 90 {
		t.Errorf("summary minutes = %d, want 90", plan.Summary.TotalScheduledMinutes)
	}
}

func TestExtractPlanFromProse(t *testing.T) {
	// Models often wrap the JSON in commentary and markdown fences.
	content := "Here is your optimized schedule:\n```json\n" + planJSON + "\n```\nGood luck!"
	plan, err := ExtractPlan(content)
	if err != nil {
		t.Fatalf("ExtractPlan failed on wrapped JSON: %v", err)
	}
	if len(plan.Schedule) != 1 {
		t.Errorf("got %d items, want 1", len(plan.Schedule))
	}
}

func TestExtractPlanFailures(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"no json", "I could not produce a schedule today."},
		{"invalid json", "{\"schedule\": [oops]}"},
		{"missing schedule", `{"summary": {"tasks_scheduled": 0}}`},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := ExtractPlan(c.content); !errors.Is(err, ErrInvalidPlan) {
				t.Errorf("expected ErrInvalidPlan, got %v", err)
			}
		})
	}
}

func TestValidatePlan(t *testing.T) {
	blocks := []models.TimeBlock{makeBlock("b1", "09:00", "12:00")}
	known := map[string]models.Task{"t1": {ID: "t1"}}

	valid := &Plan{Schedule: []PlanItem{{TaskID: "t1", ScheduledStart: "09:00", ScheduledEnd: "10:30"}}}
	if err := ValidatePlan(valid, known, blocks); err != nil {
		t.Errorf("valid plan rejected: %v", err)
	}

	unknownTask := &Plan{Schedule: []PlanItem{{TaskID: "ghost", ScheduledStart: "09:00", ScheduledEnd: "10:00"}}}
	if err := ValidatePlan(unknownTask, known, blocks); !errors.Is(err, ErrInvalidPlan) {
		t.Errorf("unknown task id not rejected: %v", err)
	}

	outsideBlock := &Plan{Schedule: []PlanItem{{TaskID: "t1", ScheduledStart: "13:00", ScheduledEnd: "14:00"}}}
	if err := ValidatePlan(outsideBlock, known, blocks); !errors.Is(err, ErrInvalidPlan) {
		t.Errorf("out-of-block item not rejected: %v", err)
	}

	spansEdge := &Plan{Schedule: []PlanItem{{TaskID: "t1", ScheduledStart: "11:30", ScheduledEnd: "12:30"}}}
	if err := ValidatePlan(spansEdge, known, blocks); !errors.Is(err, ErrInvalidPlan) {
		t.Errorf("item spanning block edge not rejected: %v", err)
	}

	badClock := &Plan{Schedule: []PlanItem{{TaskID: "t1", ScheduledStart: "9am", ScheduledEnd: "10am"}}}
	if err := ValidatePlan(badClock, known, blocks); !errors.Is(err, ErrInvalidPlan) {
		t.Errorf("unparseable clock not rejected: %v", err)
	}
}

func TestValidatePlanOvernightBlock(t *testing.T) {
	blocks := []models.TimeBlock{makeBlock("b1", "23:00", "02:00")}
	known := map[string]models.Task{"t1": {ID: "t1"}}

	cases := []struct {
		name       string
		start, end string
		ok         bool
	}{
		{"before midnight", "23:00", "23:45", true},
		{"spans midnight", "23:55", "00:40", true},
		{"after midnight", "00:50", "01:35", true},
		{"ends at block end", "01:00", "02:00", true},
		{"past block end", "01:30", "02:30", false},
		{"before block start", "22:00", "23:30", false},
		{"daytime", "10:00", "11:00", false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			plan := &Plan{Schedule: []PlanItem{{TaskID: "t1", ScheduledStart: c.start, ScheduledEnd: c.end}}}
			err := ValidatePlan(plan, known, blocks)
			if c.ok && err != nil {
				t.Errorf("%s-%s rejected: %v", c.start, c.end, err)
			}
			if !c.ok && !errors.Is(err, ErrInvalidPlan) {
				t.Errorf("%s-%s not rejected: %v", c.start, c.end, err)
			}
		})
	}
}
