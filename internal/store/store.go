// Package store provides SQLite-backed persistence for TaskAdemic: tasks,
// weekly time blocks and generated daily schedules.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/taskademic/taskademic/internal/models"
	_ "modernc.org/sqlite"
)

// Invalidator receives a notification whenever a user's task set changes.
// The analysis cache implements this; wiring it here is the contract that
// keeps cached snapshots coherent with the task store.
type Invalidator interface {
	Invalidate(userID string)
}

// Store provides access to the TaskAdemic SQLite database.
type Store struct {
	db          *sql.DB
	invalidator Invalidator
}

// New creates a new Store and runs migrations.
func New(dbPath string) (*Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Open with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// SetInvalidator wires the task-mutation notification target.
func (s *Store) SetInvalidator(inv Invalidator) {
	s.invalidator = inv
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate runs idempotent schema migrations.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		due_date DATETIME,
		estimated_size TEXT,
		course_weight REAL,
		status TEXT NOT NULL DEFAULT 'todo',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		completed_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS time_blocks (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		day_of_week INTEGER NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		is_available INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS scheduled_tasks (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		task_id TEXT NOT NULL,
		time_block_id TEXT NOT NULL,
		scheduled_date TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		estimated_duration_minutes INTEGER NOT NULL,
		pomodoro_sessions INTEGER NOT NULL,
		break_minutes INTEGER NOT NULL,
		reasoning TEXT,
		priority_score REAL,
		origin TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (task_id) REFERENCES tasks(id)
	);

	CREATE TABLE IF NOT EXISTS daily_schedules (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		date TEXT NOT NULL,
		total_available_minutes INTEGER NOT NULL,
		total_scheduled_minutes INTEGER NOT NULL,
		total_break_minutes INTEGER NOT NULL,
		tasks_count INTEGER NOT NULL,
		moscow_must_count INTEGER NOT NULL,
		moscow_should_count INTEGER NOT NULL,
		remaining_time_minutes INTEGER NOT NULL,
		origin TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_user_status ON tasks(user_id, status);
	CREATE INDEX IF NOT EXISTS idx_time_blocks_user_day ON time_blocks(user_id, day_of_week);
	CREATE INDEX IF NOT EXISTS idx_scheduled_tasks_user_date ON scheduled_tasks(user_id, scheduled_date);
	CREATE INDEX IF NOT EXISTS idx_daily_schedules_user_date ON daily_schedules(user_id, date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// notifyTaskMutated tells the analysis cache a user's task set changed.
func (s *Store) notifyTaskMutated(userID string) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(userID)
	}
}

// --- Task Operations ---

// TaskInput holds the caller-supplied fields of a task.
type TaskInput struct {
	Title         string
	Description   string
	DueDate       *time.Time
	EstimatedSize models.TaskSize
	CourseWeight  *float64
}

// CreateTask inserts a new task and invalidates the user's analysis.
func (s *Store) CreateTask(userID string, in TaskInput) (*models.Task, error) {
	now := time.Now().UTC()
	task := &models.Task{
		ID:            uuid.New().String(),
		UserID:        userID,
		Title:         in.Title,
		Description:   in.Description,
		DueDate:       in.DueDate,
		EstimatedSize: in.EstimatedSize,
		CourseWeight:  in.CourseWeight,
		Status:        models.TaskStatusTodo,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	_, err := s.db.Exec(
		`INSERT INTO tasks (id, user_id, title, description, due_date, estimated_size, course_weight, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.UserID, task.Title, task.Description, nullTime(task.DueDate),
		nullString(string(task.EstimatedSize)), nullFloat(task.CourseWeight), task.Status,
		task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}

	s.notifyTaskMutated(userID)
	return task, nil
}

const taskColumns = `id, user_id, title, description, due_date, estimated_size, course_weight, status, created_at, updated_at, completed_at`

// GetTask retrieves a task by ID. Returns nil when not found.
func (s *Store) GetTask(id string) (*models.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query task: %w", err)
	}
	return task, nil
}

// ListTasks returns a user's tasks, optionally filtered by status.
func (s *Store) ListTasks(userID, status string) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ?`
	args := []interface{}{userID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

// ActiveTasks returns the user's non-terminal tasks, the input to the
// analysis pipeline.
func (s *Store) ActiveTasks(userID string) ([]models.Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = ? AND status IN (?, ?) ORDER BY created_at`,
		userID, models.TaskStatusTodo, models.TaskStatusInProgress,
	)
	if err != nil {
		return nil, fmt.Errorf("query active tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

// UpdateTask replaces the caller-supplied fields of a task.
func (s *Store) UpdateTask(id string, in TaskInput) (*models.Task, error) {
	_, err := s.db.Exec(
		`UPDATE tasks SET title = ?, description = ?, due_date = ?, estimated_size = ?, course_weight = ?, updated_at = ? WHERE id = ?`,
		in.Title, in.Description, nullTime(in.DueDate), nullString(string(in.EstimatedSize)),
		nullFloat(in.CourseWeight), time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	task, err := s.GetTask(id)
	if err != nil {
		return nil, err
	}
	if task != nil {
		s.notifyTaskMutated(task.UserID)
	}
	return task, nil
}

// UpdateTaskStatus updates the status of a task.
func (s *Store) UpdateTaskStatus(id string, status models.TaskStatus) error {
	_, err := s.db.Exec(
		`UPDATE tasks SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if task, err := s.GetTask(id); err == nil && task != nil {
		s.notifyTaskMutated(task.UserID)
	}
	return nil
}

// MarkTaskCompleted flips a task to completed and stamps the completion time.
func (s *Store) MarkTaskCompleted(id string) error {
	now := time.Now().UTC()
	_, err := s.db.Exec(
		`UPDATE tasks SET status = ?, completed_at = ?, updated_at = ? WHERE id = ?`,
		models.TaskStatusCompleted, now, now, id,
	)
	if err != nil {
		return err
	}
	if task, err := s.GetTask(id); err == nil && task != nil {
		s.notifyTaskMutated(task.UserID)
	}
	return nil
}

// DeleteTask removes a task.
func (s *Store) DeleteTask(id string) error {
	task, err := s.GetTask(id)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if task != nil {
		s.notifyTaskMutated(task.UserID)
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row scanner) (*models.Task, error) {
	task := &models.Task{}
	var dueDate, completedAt sql.NullTime
	var size sql.NullString
	var weight sql.NullFloat64

	err := row.Scan(&task.ID, &task.UserID, &task.Title, &task.Description, &dueDate,
		&size, &weight, &task.Status, &task.CreatedAt, &task.UpdatedAt, &completedAt)
	if err != nil {
		return nil, err
	}
	if dueDate.Valid {
		task.DueDate = &dueDate.Time
	}
	if completedAt.Valid {
		task.CompletedAt = &completedAt.Time
	}
	if size.Valid {
		task.EstimatedSize = models.TaskSize(size.String)
	}
	if weight.Valid {
		task.CourseWeight = &weight.Float64
	}
	return task, nil
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullFloat(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}
