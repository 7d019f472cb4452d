package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/taskademic/taskademic/internal/models"
)

// --- TimeBlock Operations ---

// CreateTimeBlock inserts a recurring weekly availability block.
func (s *Store) CreateTimeBlock(userID string, dayOfWeek int, startTime, endTime string, available bool) (*models.TimeBlock, error) {
	if dayOfWeek < 0 || dayOfWeek > 6 {
		return nil, fmt.Errorf("day_of_week %d out of range 0-6", dayOfWeek)
	}
	if _, err := models.ParseClock(startTime); err != nil {
		return nil, err
	}
	if _, err := models.ParseClock(endTime); err != nil {
		return nil, err
	}

	block := &models.TimeBlock{
		ID:          uuid.New().String(),
		UserID:      userID,
		DayOfWeek:   dayOfWeek,
		StartTime:   startTime,
		EndTime:     endTime,
		IsAvailable: available,
		CreatedAt:   time.Now().UTC(),
	}

	_, err := s.db.Exec(
		`INSERT INTO time_blocks (id, user_id, day_of_week, start_time, end_time, is_available, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		block.ID, block.UserID, block.DayOfWeek, block.StartTime, block.EndTime, block.IsAvailable, block.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert time block: %w", err)
	}
	return block, nil
}

// ListTimeBlocks returns all of a user's blocks ordered by day then start.
func (s *Store) ListTimeBlocks(userID string) ([]models.TimeBlock, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, day_of_week, start_time, end_time, is_available, created_at
		 FROM time_blocks WHERE user_id = ? ORDER BY day_of_week, start_time`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query time blocks: %w", err)
	}
	defer rows.Close()
	return collectBlocks(rows)
}

// AvailableBlocks returns the user's available blocks for one weekday,
// ordered by start time. The schedule generator reads capacity through this.
func (s *Store) AvailableBlocks(userID string, dayOfWeek int) ([]models.TimeBlock, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, day_of_week, start_time, end_time, is_available, created_at
		 FROM time_blocks WHERE user_id = ? AND day_of_week = ? AND is_available = 1 ORDER BY start_time`,
		userID, dayOfWeek,
	)
	if err != nil {
		return nil, fmt.Errorf("query available blocks: %w", err)
	}
	defer rows.Close()
	return collectBlocks(rows)
}

// DeleteTimeBlock removes a block.
func (s *Store) DeleteTimeBlock(id string) error {
	_, err := s.db.Exec(`DELETE FROM time_blocks WHERE id = ?`, id)
	return err
}

func collectBlocks(rows *sql.Rows) ([]models.TimeBlock, error) {
	var blocks []models.TimeBlock
	for rows.Next() {
		var block models.TimeBlock
		if err := rows.Scan(&block.ID, &block.UserID, &block.DayOfWeek, &block.StartTime,
			&block.EndTime, &block.IsAvailable, &block.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan time block: %w", err)
		}
		blocks = append(blocks, block)
	}
	return blocks, rows.Err()
}
