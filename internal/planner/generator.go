package planner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/taskademic/taskademic/internal/ai"
	"github.com/taskademic/taskademic/internal/models"
	"github.com/taskademic/taskademic/internal/moscow"
	"github.com/taskademic/taskademic/internal/store"
)

// Completer is the reasoning-service surface the generator needs.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteFast(ctx context.Context, prompt string) (string, error)
}

// Generator produces daily schedules. It tries the reasoning service first
// and falls back to the deterministic packer on any failure, so a schedule
// is produced whenever the day has any capacity at all.
type Generator struct {
	store         *store.Store
	cache         *moscow.Cache
	ai            Completer
	shouldLimit   int
	bufferMinutes int

	// Regeneration for one (user, date) deletes and re-inserts rows, so
	// concurrent generations of the same key are serialized.
	mu    sync.Mutex
	locks map[string]*keyedLock
}

// keyedLock is refcounted so lockKey can drop map entries once the last
// holder releases them.
type keyedLock struct {
	mu   sync.Mutex
	refs int
}

// NewGenerator creates a schedule generator. aiClient may be nil to run
// fallback-only.
func NewGenerator(s *store.Store, cache *moscow.Cache, aiClient Completer, shouldLimit, bufferMinutes int) *Generator {
	if shouldLimit <= 0 {
		shouldLimit = DefaultShouldLimit
	}
	if bufferMinutes <= 0 {
		bufferMinutes = DefaultBufferMinutes
	}
	return &Generator{
		store:         s,
		cache:         cache,
		ai:            aiClient,
		shouldLimit:   shouldLimit,
		bufferMinutes: bufferMinutes,
		locks:         make(map[string]*keyedLock),
	}
}

// Analysis returns the user's MoSCoW snapshot, recomputing from the task
// store on a cache miss or when forced.
func (g *Generator) Analysis(userID string, force bool) (*moscow.Snapshot, error) {
	compute := func() (*moscow.Snapshot, error) {
		tasks, err := g.store.ActiveTasks(userID)
		if err != nil {
			return nil, err
		}
		return moscow.Analyze(tasks, time.Now().UTC()), nil
	}
	if force {
		return g.cache.Refresh(userID, compute)
	}
	return g.cache.Get(userID, compute)
}

// Generate builds, persists and returns the schedule for one (user, date).
// fast selects the no-retry reasoning-service call for live request paths.
// The stored schedule for that date is fully replaced.
func (g *Generator) Generate(ctx context.Context, userID string, date time.Time, fast bool) (*models.DailySchedule, []models.ScheduledTask, error) {
	dateStr := date.Format("2006-01-02")
	unlock := g.lockKey(userID + "|" + dateStr)
	defer unlock()

	weekday := models.Weekday(date)
	blocks, err := g.store.AvailableBlocks(userID, weekday)
	if err != nil {
		return nil, nil, err
	}
	if len(blocks) == 0 {
		return nil, nil, fmt.Errorf("%w for %s", ErrNoCapacity, models.DayNames[weekday])
	}

	snapshot, err := g.Analysis(userID, false)
	if err != nil {
		return nil, nil, err
	}

	tasksByID := make(map[string]models.Task)
	active, err := g.store.ActiveTasks(userID)
	if err != nil {
		return nil, nil, err
	}
	for _, task := range active {
		tasksByID[task.ID] = task
	}

	must := snapshot.Buckets[moscow.BucketMust]
	should := snapshot.Buckets[moscow.BucketShould]

	plan, origin := g.plan(ctx, date, blocks, must, should, tasksByID, fast)

	schedule, items := g.materialize(userID, dateStr, blocks, plan, origin, snapshot)
	if err := g.store.ReplaceDailySchedule(schedule, items); err != nil {
		return nil, nil, fmt.Errorf("persist schedule: %w", err)
	}
	return schedule, items, nil
}

// plan tries the reasoning service and falls back to the packer on any
// failure: transport error, unparseable output or a plan that fails
// validation.
func (g *Generator) plan(ctx context.Context, date time.Time, blocks []models.TimeBlock, must, should []moscow.BucketEntry, tasks map[string]models.Task, fast bool) (*Plan, models.ScheduleOrigin) {
	if g.ai != nil {
		prompt := BuildPrompt(date, blocks, must, should, tasks, g.shouldLimit)

		var content string
		var err error
		if fast {
			content, err = g.ai.CompleteFast(ctx, prompt)
		} else {
			content, err = g.ai.Complete(ctx, prompt)
		}

		switch {
		case errors.Is(err, ai.ErrNotConfigured):
			// No key set; nothing to log on every request.
		case err != nil:
			log.Printf("reasoning service failed (%v), using fallback scheduling", err)
		default:
			plan, perr := ExtractPlan(content)
			if perr == nil {
				perr = ValidatePlan(plan, tasks, blocks)
			}
			if perr == nil {
				return plan, models.OriginAI
			}
			log.Printf("rejecting reasoning-service plan (%v), using fallback scheduling", perr)
		}
	}

	return Pack(PackInput{
		Blocks:        blocks,
		Must:          must,
		Should:        should,
		Tasks:         tasks,
		ShouldLimit:   g.shouldLimit,
		BufferMinutes: g.bufferMinutes,
	}), models.OriginFallback
}

// materialize converts a plan into persistence rows, recomputing summary
// totals from the items rather than trusting the plan's own summary.
func (g *Generator) materialize(userID, date string, blocks []models.TimeBlock, plan *Plan, origin models.ScheduleOrigin, snapshot *moscow.Snapshot) (*models.DailySchedule, []models.ScheduledTask) {
	now := time.Now().UTC()

	totalAvailable := 0
	for _, block := range blocks {
		totalAvailable += block.DurationMinutes()
	}

	var items []models.ScheduledTask
	scheduled, breaks, mustCount, shouldCount := 0, 0, 0, 0
	consumed := make(map[string]int) // block id -> minutes used
	for _, item := range plan.Schedule {
		block, endOffset, err := matchBlock(item, blocks)
		if err != nil {
			// Validation already rejected AI plans with stray items; packer
			// output is in-block by construction.
			log.Printf("dropping scheduled item for task %s: %v", item.TaskID, err)
			continue
		}

		items = append(items, models.ScheduledTask{
			UserID:                   userID,
			TaskID:                   item.TaskID,
			TimeBlockID:              block.ID,
			ScheduledDate:            date,
			StartTime:                item.ScheduledStart,
			EndTime:                  item.ScheduledEnd,
			EstimatedDurationMinutes: item.EstimatedDurationMinutes,
			PomodoroSessions:         item.PomodoroSessions,
			BreakMinutes:             item.BreakMinutes,
			Reasoning:                item.Reasoning,
			PriorityScore:            item.PriorityScore,
			Origin:                   origin,
			CreatedAt:                now,
		})

		scheduled += item.EstimatedDurationMinutes
		breaks += item.BreakMinutes
		switch snapshot.BucketFor(item.TaskID) {
		case moscow.BucketMust:
			mustCount++
		case moscow.BucketShould:
			shouldCount++
		}

		// Packer placement costs the task plus the inter-task buffer; AI
		// plans space items themselves, so their cost is how far into the
		// block the item actually reaches.
		if origin == models.OriginFallback {
			consumed[block.ID] += item.EstimatedDurationMinutes + g.bufferMinutes
		} else if endOffset > consumed[block.ID] {
			consumed[block.ID] = endOffset
		}
	}

	// Remaining capacity is summed per block from the placed items.
	remaining := 0
	for _, block := range blocks {
		capacity := block.DurationMinutes()
		used := consumed[block.ID]
		if used > capacity {
			used = capacity
		}
		remaining += capacity - used
	}

	return &models.DailySchedule{
		UserID:                userID,
		Date:                  date,
		TotalAvailableMinutes: totalAvailable,
		TotalScheduledMinutes: scheduled,
		TotalBreakMinutes:     breaks,
		TasksCount:            len(items),
		MustCount:             mustCount,
		ShouldCount:           shouldCount,
		RemainingMinutes:      remaining,
		Origin:                origin,
		CreatedAt:             now,
	}, items
}

// lockKey serializes callers on one (user, date) key. The map entry is
// removed when the last holder releases it, so the map stays bounded by the
// number of in-flight generations.
func (g *Generator) lockKey(key string) func() {
	g.mu.Lock()
	l, ok := g.locks[key]
	if !ok {
		l = &keyedLock{}
		g.locks[key] = l
	}
	l.refs++
	g.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		g.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(g.locks, key)
		}
		g.mu.Unlock()
	}
}
