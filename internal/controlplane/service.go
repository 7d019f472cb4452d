// Package controlplane provides the HTTP API and service layer for TaskAdemic.
package controlplane

import (
	"context"
	"fmt"
	"time"

	"github.com/taskademic/taskademic/internal/models"
	"github.com/taskademic/taskademic/internal/moscow"
	"github.com/taskademic/taskademic/internal/planner"
	"github.com/taskademic/taskademic/internal/store"
)

// Service provides the control plane business logic.
type Service struct {
	store     *store.Store
	generator *planner.Generator
}

// NewService creates a new control plane service.
func NewService(s *store.Store, gen *planner.Generator) *Service {
	return &Service{
		store:     s,
		generator: gen,
	}
}

// --- Task Operations ---

// CreateTask creates a new task for a user.
func (s *Service) CreateTask(userID string, in store.TaskInput) (*models.Task, error) {
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if err := validateSize(in.EstimatedSize); err != nil {
		return nil, err
	}
	return s.store.CreateTask(userID, in)
}

// GetTask retrieves a task by ID.
func (s *Service) GetTask(id string) (*models.Task, error) {
	task, err := s.store.GetTask(id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

// ListTasks returns a user's tasks, optionally filtered by status.
func (s *Service) ListTasks(userID, status string) ([]models.Task, error) {
	return s.store.ListTasks(userID, status)
}

// UpdateTask replaces the editable fields of a task.
func (s *Service) UpdateTask(id string, in store.TaskInput) (*models.Task, error) {
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if err := validateSize(in.EstimatedSize); err != nil {
		return nil, err
	}
	if _, err := s.GetTask(id); err != nil {
		return nil, err
	}
	return s.store.UpdateTask(id, in)
}

// StartTask moves a task to in_progress.
func (s *Service) StartTask(id string) (*models.Task, error) {
	if _, err := s.GetTask(id); err != nil {
		return nil, err
	}
	if err := s.store.UpdateTaskStatus(id, models.TaskStatusInProgress); err != nil {
		return nil, err
	}
	return s.GetTask(id)
}

// CompleteTask marks a task completed. Completion drops it out of the
// analysis input set, so the user's cached analysis is invalidated.
func (s *Service) CompleteTask(id string) (*models.Task, error) {
	if _, err := s.GetTask(id); err != nil {
		return nil, err
	}
	if err := s.store.MarkTaskCompleted(id); err != nil {
		return nil, err
	}
	return s.GetTask(id)
}

// DeleteTask removes a task.
func (s *Service) DeleteTask(id string) error {
	if _, err := s.GetTask(id); err != nil {
		return err
	}
	return s.store.DeleteTask(id)
}

func validateSize(size models.TaskSize) error {
	switch size {
	case "", models.TaskSizeSmall, models.TaskSizeLarge:
		return nil
	}
	return fmt.Errorf("%w: estimated_size must be small or large", ErrInvalidInput)
}

// --- Time Block Operations ---

// CreateTimeBlock registers a recurring availability window.
func (s *Service) CreateTimeBlock(userID string, dayOfWeek int, startTime, endTime string, available bool) (*models.TimeBlock, error) {
	block, err := s.store.CreateTimeBlock(userID, dayOfWeek, startTime, endTime, available)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return block, nil
}

// ListTimeBlocks returns all of a user's time blocks.
func (s *Service) ListTimeBlocks(userID string) ([]models.TimeBlock, error) {
	return s.store.ListTimeBlocks(userID)
}

// DeleteTimeBlock removes a time block.
func (s *Service) DeleteTimeBlock(id string) error {
	return s.store.DeleteTimeBlock(id)
}

// --- Analysis and Schedule Operations ---

// Analysis returns the user's MoSCoW snapshot, served from cache unless
// refresh forces recomputation.
func (s *Service) Analysis(userID string, refresh bool) (*moscow.Snapshot, error) {
	return s.generator.Analysis(userID, refresh)
}

// GenerateSchedule builds and persists the schedule for a date. Request
// paths use the fast reasoning-service variant so a rate-limited upstream
// degrades to the packer instead of blocking the caller through retries.
func (s *Service) GenerateSchedule(ctx context.Context, userID string, date time.Time) (*models.DailySchedule, []models.ScheduledTask, error) {
	return s.generator.Generate(ctx, userID, date, true)
}

// GetSchedule returns the stored schedule for a date.
func (s *Service) GetSchedule(userID, date string) (*models.DailySchedule, []models.ScheduledTask, error) {
	schedule, items, err := s.store.GetDailySchedule(userID, date)
	if err != nil {
		return nil, nil, err
	}
	if schedule == nil {
		return nil, nil, ErrScheduleNotFound
	}
	return schedule, items, nil
}
