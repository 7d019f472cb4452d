package planner

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/taskademic/taskademic/internal/models"
	"github.com/taskademic/taskademic/internal/moscow"
	"github.com/taskademic/taskademic/internal/store"
)

// stubAI is a canned reasoning-service client.
type stubAI struct {
	content string
	err     error
	calls   int
}

func (s *stubAI) Complete(ctx context.Context, prompt string) (string, error) {
	s.calls++
	return s.content, s.err
}

func (s *stubAI) CompleteFast(ctx context.Context, prompt string) (string, error) {
	return s.Complete(ctx, prompt)
}

func newTestGenerator(t *testing.T, aiClient Completer) (*Generator, *store.Store) {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	cache := moscow.NewCache(time.Hour)
	s.SetInvalidator(cache)
	return NewGenerator(s, cache, aiClient, 0, 0), s
}

// seedDay creates one must task and one availability block covering the
// target date's weekday, returning the task and date.
func seedDay(t *testing.T, s *store.Store) (*models.Task, time.Time) {
	t.Helper()
	date := time.Now().AddDate(0, 0, 1)

	due := time.Now().Add(20 * time.Hour)
	task, err := s.CreateTask("u1", store.TaskInput{Title: "Pop quiz", DueDate: &due})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if _, err := s.CreateTimeBlock("u1", models.Weekday(date), "09:00", "12:00", true); err != nil {
		t.Fatalf("create block: %v", err)
	}
	return task, date
}

func TestGenerateNoCapacity(t *testing.T) {
	g, s := newTestGenerator(t, nil)
	if _, err := s.CreateTask("u1", store.TaskInput{Title: "Homework"}); err != nil {
		t.Fatalf("create task: %v", err)
	}

	_, _, err := g.Generate(context.Background(), "u1", time.Now(), false)
	if !errors.Is(err, ErrNoCapacity) {
		t.Errorf("expected ErrNoCapacity, got %v", err)
	}
}

func TestGenerateFallbackOnAIError(t *testing.T) {
	aiClient := &stubAI{err: errors.New("boom")}
	g, s := newTestGenerator(t, aiClient)
	task, date := seedDay(t, s)

	schedule, items, err := g.Generate(context.Background(), "u1", date, false)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if aiClient.calls != 1 {
		t.Errorf("AI called %d times, want 1", aiClient.calls)
	}
	if schedule.Origin != models.OriginFallback {
		t.Errorf("origin = %q, want fallback", schedule.Origin)
	}
	if len(items) != 1 || items[0].TaskID != task.ID {
		t.Fatalf("expected the must task scheduled, got %+v", items)
	}
	if schedule.MustCount != 1 {
		t.Errorf("must count = %d, want 1", schedule.MustCount)
	}
	// Packer accounting: 45-minute quiz plus the 10-minute buffer out of 180.
	if schedule.RemainingMinutes != 125 {
		t.Errorf("remaining = %d, want 125", schedule.RemainingMinutes)
	}
}

func TestGenerateAcceptsValidAIPlan(t *testing.T) {
	g, s := newTestGenerator(t, nil)
	task, date := seedDay(t, s)

	content := fmt.Sprintf(`{
		"schedule": [{"task_id": %q, "scheduled_start": "09:00", "scheduled_end": "09:45",
			"estimated_duration_minutes": 45, "pomodoro_sessions": 1, "break_minutes": 5,
			"reasoning": "quiz prep first", "priority_score": 95}],
		"summary": {"total_scheduled_minutes": 45, "total_break_minutes": 5, "tasks_scheduled": 1,
			"moscow_must_scheduled": 1, "moscow_should_scheduled": 0, "remaining_time_minutes": 125}
	}`, task.ID)
	g.ai = &stubAI{content: content}

	schedule, items, err := g.Generate(context.Background(), "u1", date, false)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if schedule.Origin != models.OriginAI {
		t.Errorf("origin = %q, want ai", schedule.Origin)
	}
	if len(items) != 1 || items[0].Reasoning != "quiz prep first" {
		t.Fatalf("unexpected items: %+v", items)
	}
	// Summary totals are recomputed from the items, not copied from the plan.
	if schedule.TotalScheduledMinutes != 45 || schedule.TotalBreakMinutes != 5 {
		t.Errorf("summary = %d/%d, want 45/5", schedule.TotalScheduledMinutes, schedule.TotalBreakMinutes)
	}
	// The AI spaces items itself, so remaining capacity is measured from the
	// item's reach into the block (45 of 180 minutes), not packer buffers.
	if schedule.RemainingMinutes != 135 {
		t.Errorf("remaining = %d, want 135", schedule.RemainingMinutes)
	}
}

func TestGenerateRejectsInvalidAIPlan(t *testing.T) {
	g, s := newTestGenerator(t, nil)
	_, date := seedDay(t, s)

	// References a task id that does not exist: reject and fall back.
	g.ai = &stubAI{content: `{
		"schedule": [{"task_id": "ghost", "scheduled_start": "09:00", "scheduled_end": "10:00",
			"estimated_duration_minutes": 60, "pomodoro_sessions": 2, "break_minutes": 10,
			"reasoning": "", "priority_score": 90}],
		"summary": {"total_scheduled_minutes": 60, "total_break_minutes": 10, "tasks_scheduled": 1,
			"moscow_must_scheduled": 1, "moscow_should_scheduled": 0, "remaining_time_minutes": 110}
	}`}

	schedule, _, err := g.Generate(context.Background(), "u1", date, false)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if schedule.Origin != models.OriginFallback {
		t.Errorf("origin = %q, want fallback after plan rejection", schedule.Origin)
	}
}

func TestGenerateReplacesPriorSchedule(t *testing.T) {
	g, s := newTestGenerator(t, &stubAI{err: errors.New("down")})
	_, date := seedDay(t, s)

	if _, _, err := g.Generate(context.Background(), "u1", date, false); err != nil {
		t.Fatalf("first Generate failed: %v", err)
	}
	if _, _, err := g.Generate(context.Background(), "u1", date, false); err != nil {
		t.Fatalf("second Generate failed: %v", err)
	}

	schedule, items, err := s.GetDailySchedule("u1", date.Format("2006-01-02"))
	if err != nil {
		t.Fatalf("GetDailySchedule failed: %v", err)
	}
	if schedule == nil {
		t.Fatal("no schedule stored")
	}
	if len(items) != 1 {
		t.Errorf("regeneration left %d items, want 1 (full replacement)", len(items))
	}
}

func TestGenerateOvernightBlock(t *testing.T) {
	g, s := newTestGenerator(t, nil)

	due := time.Now().Add(20 * time.Hour)
	for _, title := range []string{"Quiz A", "Quiz B", "Quiz C"} {
		if _, err := s.CreateTask("u1", store.TaskInput{Title: title, DueDate: &due}); err != nil {
			t.Fatalf("create task: %v", err)
		}
	}
	date := time.Now().AddDate(0, 0, 1)
	if _, err := s.CreateTimeBlock("u1", models.Weekday(date), "23:00", "02:00", true); err != nil {
		t.Fatalf("create block: %v", err)
	}

	schedule, items, err := g.Generate(context.Background(), "u1", date, true)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	// Three 45-minute quizzes plus buffers fit the 180-minute block; the
	// later placements run past midnight but stay inside the block.
	if len(items) != 3 {
		t.Fatalf("scheduled %d of 3 tasks in the overnight block: %+v", len(items), items)
	}
	if items[2].StartTime != "00:50" || items[2].EndTime != "01:35" {
		t.Errorf("third task at %s-%s, want 00:50-01:35", items[2].StartTime, items[2].EndTime)
	}
	if schedule.MustCount != 3 {
		t.Errorf("must count = %d, want 3", schedule.MustCount)
	}
	if schedule.RemainingMinutes != 15 {
		t.Errorf("remaining = %d, want 15", schedule.RemainingMinutes)
	}
}

func TestGenerateUnconfiguredAIUsesFallback(t *testing.T) {
	g, s := newTestGenerator(t, nil)
	_, date := seedDay(t, s)

	schedule, _, err := g.Generate(context.Background(), "u1", date, true)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if schedule.Origin != models.OriginFallback {
		t.Errorf("origin = %q, want fallback with no AI client", schedule.Origin)
	}
}

func TestLockKeyEvictsReleasedEntries(t *testing.T) {
	g, _ := newTestGenerator(t, nil)

	unlock := g.lockKey("u1|2026-09-07")

	// A waiter on the same key keeps the entry alive until it too releases.
	released := make(chan struct{})
	go func() {
		u := g.lockKey("u1|2026-09-07")
		u()
		close(released)
	}()

	unlock()
	select {
	case <-released:
	case <-time.After(5 * time.Second):
		t.Fatal("waiter never acquired the lock")
	}

	g.mu.Lock()
	n := len(g.locks)
	g.mu.Unlock()
	if n != 0 {
		t.Errorf("lock map holds %d entries after release, want 0", n)
	}
}

func TestGenerateReleasesDateLock(t *testing.T) {
	g, s := newTestGenerator(t, nil)
	_, date := seedDay(t, s)

	if _, _, err := g.Generate(context.Background(), "u1", date, true); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	g.mu.Lock()
	n := len(g.locks)
	g.mu.Unlock()
	if n != 0 {
		t.Errorf("lock map holds %d entries after generation, want 0", n)
	}
}
