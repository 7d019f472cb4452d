// Package models defines the core domain types for TaskAdemic.
package models

import (
	"fmt"
	"time"
)

// TaskStatus represents the current state of a task.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// TaskSize is an optional hint about how big a task is.
type TaskSize string

const (
	TaskSizeSmall TaskSize = "small"
	TaskSizeLarge TaskSize = "large"
)

// ScheduleOrigin records which path produced a scheduled task.
type ScheduleOrigin string

const (
	OriginAI       ScheduleOrigin = "ai"
	OriginFallback ScheduleOrigin = "fallback"
)

// Task represents a unit of work a user wants done.
type Task struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	// EstimatedSize is "small", "large" or empty when unknown.
	EstimatedSize TaskSize `json:"estimated_size,omitempty"`
	// CourseWeight is the task's share of the course grade (0.0-1.0), nil when unknown.
	CourseWeight *float64   `json:"course_weight,omitempty"`
	Status       TaskStatus `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// TimeBlock represents a recurring weekly interval of availability.
type TimeBlock struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	// DayOfWeek is 0=Monday .. 6=Sunday.
	DayOfWeek int `json:"day_of_week"`
	// StartTime and EndTime are clock times in "HH:MM" (24h) format.
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
}

// DurationMinutes returns the block length in minutes. Blocks whose end is at
// or before their start span midnight.
func (b TimeBlock) DurationMinutes() int {
	start, err := ParseClock(b.StartTime)
	if err != nil {
		return 0
	}
	end, err := ParseClock(b.EndTime)
	if err != nil {
		return 0
	}
	if end <= start {
		end += 24 * 60
	}
	return end - start
}

// ScheduledTask is one task placed into a concrete slot on a given date.
type ScheduledTask struct {
	ID                       string         `json:"id"`
	UserID                   string         `json:"user_id"`
	TaskID                   string         `json:"task_id"`
	TimeBlockID              string         `json:"time_block_id"`
	ScheduledDate            string         `json:"scheduled_date"` // YYYY-MM-DD
	StartTime                string         `json:"start_time"`     // HH:MM
	EndTime                  string         `json:"end_time"`       // HH:MM
	EstimatedDurationMinutes int            `json:"estimated_duration_minutes"`
	PomodoroSessions         int            `json:"pomodoro_sessions"`
	BreakMinutes             int            `json:"break_minutes"`
	Reasoning                string         `json:"reasoning"`
	PriorityScore            float64        `json:"priority_score"`
	Origin                   ScheduleOrigin `json:"origin"`
	CreatedAt                time.Time      `json:"created_at"`
}

// DailySchedule summarizes one generated day of scheduled tasks.
type DailySchedule struct {
	ID                    string         `json:"id"`
	UserID                string         `json:"user_id"`
	Date                  string         `json:"date"` // YYYY-MM-DD
	TotalAvailableMinutes int            `json:"total_available_minutes"`
	TotalScheduledMinutes int            `json:"total_scheduled_minutes"`
	TotalBreakMinutes     int            `json:"total_break_minutes"`
	TasksCount            int            `json:"tasks_count"`
	MustCount             int            `json:"moscow_must_count"`
	ShouldCount           int            `json:"moscow_should_count"`
	RemainingMinutes      int            `json:"remaining_time_minutes"`
	Origin                ScheduleOrigin `json:"origin"`
	CreatedAt             time.Time      `json:"created_at"`
}

// ParseClock converts an "HH:MM" string to minutes past midnight.
func ParseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("parse clock %q: out of range", s)
	}
	return h*60 + m, nil
}

// FormatClock converts minutes past midnight to "HH:MM", wrapping past 24h.
func FormatClock(minutes int) string {
	minutes %= 24 * 60
	if minutes < 0 {
		minutes += 24 * 60
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Weekday converts a calendar date to the 0=Monday .. 6=Sunday index used by
// time blocks.
func Weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// DayNames maps the day-of-week index to a display name.
var DayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
