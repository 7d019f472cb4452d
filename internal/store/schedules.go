package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/taskademic/taskademic/internal/models"
)

// --- Schedule Operations ---

// ReplaceDailySchedule atomically swaps the stored schedule for one
// (user, date): prior scheduled tasks and summary are deleted and the new
// generation inserted in a single transaction, so regeneration is a full
// replacement rather than a merge.
func (s *Store) ReplaceDailySchedule(schedule *models.DailySchedule, items []models.ScheduledTask) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`DELETE FROM scheduled_tasks WHERE user_id = ? AND scheduled_date = ?`,
		schedule.UserID, schedule.Date,
	); err != nil {
		return fmt.Errorf("delete scheduled tasks: %w", err)
	}
	if _, err := tx.Exec(
		`DELETE FROM daily_schedules WHERE user_id = ? AND date = ?`,
		schedule.UserID, schedule.Date,
	); err != nil {
		return fmt.Errorf("delete daily schedule: %w", err)
	}

	if schedule.ID == "" {
		schedule.ID = uuid.New().String()
	}
	if _, err := tx.Exec(
		`INSERT INTO daily_schedules (id, user_id, date, total_available_minutes, total_scheduled_minutes,
		 total_break_minutes, tasks_count, moscow_must_count, moscow_should_count, remaining_time_minutes, origin, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		schedule.ID, schedule.UserID, schedule.Date, schedule.TotalAvailableMinutes,
		schedule.TotalScheduledMinutes, schedule.TotalBreakMinutes, schedule.TasksCount,
		schedule.MustCount, schedule.ShouldCount, schedule.RemainingMinutes, schedule.Origin, schedule.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert daily schedule: %w", err)
	}

	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.New().String()
		}
		if _, err := tx.Exec(
			`INSERT INTO scheduled_tasks (id, user_id, task_id, time_block_id, scheduled_date, start_time, end_time,
			 estimated_duration_minutes, pomodoro_sessions, break_minutes, reasoning, priority_score, origin, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			items[i].ID, items[i].UserID, items[i].TaskID, items[i].TimeBlockID, items[i].ScheduledDate,
			items[i].StartTime, items[i].EndTime, items[i].EstimatedDurationMinutes, items[i].PomodoroSessions,
			items[i].BreakMinutes, items[i].Reasoning, items[i].PriorityScore, items[i].Origin, items[i].CreatedAt,
		); err != nil {
			return fmt.Errorf("insert scheduled task: %w", err)
		}
	}

	return tx.Commit()
}

// GetDailySchedule returns the stored schedule for a (user, date), or nil
// when no schedule has been generated for that day.
func (s *Store) GetDailySchedule(userID, date string) (*models.DailySchedule, []models.ScheduledTask, error) {
	schedule := &models.DailySchedule{}
	err := s.db.QueryRow(
		`SELECT id, user_id, date, total_available_minutes, total_scheduled_minutes, total_break_minutes,
		 tasks_count, moscow_must_count, moscow_should_count, remaining_time_minutes, origin, created_at
		 FROM daily_schedules WHERE user_id = ? AND date = ?`,
		userID, date,
	).Scan(&schedule.ID, &schedule.UserID, &schedule.Date, &schedule.TotalAvailableMinutes,
		&schedule.TotalScheduledMinutes, &schedule.TotalBreakMinutes, &schedule.TasksCount,
		&schedule.MustCount, &schedule.ShouldCount, &schedule.RemainingMinutes, &schedule.Origin, &schedule.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("query daily schedule: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT id, user_id, task_id, time_block_id, scheduled_date, start_time, end_time,
		 estimated_duration_minutes, pomodoro_sessions, break_minutes, reasoning, priority_score, origin, created_at
		 FROM scheduled_tasks WHERE user_id = ? AND scheduled_date = ? ORDER BY start_time`,
		userID, date,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("query scheduled tasks: %w", err)
	}
	defer rows.Close()

	var items []models.ScheduledTask
	for rows.Next() {
		var item models.ScheduledTask
		if err := rows.Scan(&item.ID, &item.UserID, &item.TaskID, &item.TimeBlockID, &item.ScheduledDate,
			&item.StartTime, &item.EndTime, &item.EstimatedDurationMinutes, &item.PomodoroSessions,
			&item.BreakMinutes, &item.Reasoning, &item.PriorityScore, &item.Origin, &item.CreatedAt); err != nil {
			return nil, nil, fmt.Errorf("scan scheduled task: %w", err)
		}
		items = append(items, item)
	}
	return schedule, items, rows.Err()
}
