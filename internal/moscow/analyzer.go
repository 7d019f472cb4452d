package moscow

import (
	"sort"
	"strings"
	"time"

	"github.com/taskademic/taskademic/internal/models"
)

// BucketEntry is the task summary kept in each bucket, ordered for display.
type BucketEntry struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	DueInDays *int   `json:"due_in_days"`
	Score     int    `json:"score"`
}

// Decision is the full classification record for one task.
type Decision struct {
	ID          string   `json:"id"`
	Type        TaskType `json:"type"`
	Importance  int      `json:"importance"`
	Urgency     int      `json:"urgency"`
	DueInDays   *int     `json:"due_in_days"`
	MatchedRule string   `json:"matched_rule"`
	Score       int      `json:"score"`
	Final       Bucket   `json:"final"`
}

// Snapshot is one full analysis pass over a user's task set. Re-running the
// pipeline on an unchanged task set with the same "now" yields an identical
// snapshot except for GeneratedAt.
type Snapshot struct {
	GeneratedAt time.Time                `json:"generated_at"`
	Buckets     map[Bucket][]BucketEntry `json:"buckets"`
	DecisionLog []Decision               `json:"decision_log"`
}

// BucketFor returns the bucket a task id landed in, or "" when the id is not
// part of this snapshot.
func (s *Snapshot) BucketFor(taskID string) Bucket {
	for _, d := range s.DecisionLog {
		if d.ID == taskID {
			return d.Final
		}
	}
	return ""
}

// Analyze runs the full pipeline over a task set: classify, score urgency,
// apply the MoSCoW rules, then sort each bucket into its stable display
// order (days-until-due ascending with nils last, casefolded title, id).
func Analyze(tasks []models.Task, now time.Time) *Snapshot {
	snapshot := &Snapshot{
		GeneratedAt: now,
		Buckets: map[Bucket][]BucketEntry{
			BucketMust:   {},
			BucketShould: {},
			BucketCould:  {},
			BucketWont:   {},
		},
	}

	for _, task := range tasks {
		taskType := ClassifyTaskType(task.Title, task.Description)
		importance := ImportanceWeight(taskType)
		urgency, dueInDays := UrgencyWeight(task.DueDate, taskType, task.EstimatedSize, task.CourseWeight, now)
		score := Score(importance, urgency)
		final, matchedRule := ApplyRules(taskType, dueInDays, score)

		snapshot.Buckets[final] = append(snapshot.Buckets[final], BucketEntry{
			ID:        task.ID,
			Title:     task.Title,
			DueInDays: dueInDays,
			Score:     score,
		})
		snapshot.DecisionLog = append(snapshot.DecisionLog, Decision{
			ID:          task.ID,
			Type:        taskType,
			Importance:  importance,
			Urgency:     urgency,
			DueInDays:   dueInDays,
			MatchedRule: matchedRule,
			Score:       score,
			Final:       final,
		})
	}

	for bucket := range snapshot.Buckets {
		sortEntries(snapshot.Buckets[bucket])
	}

	return snapshot
}

// sortEntries applies the bucket tie-break: ascending days-until-due with
// nils last, then case-insensitive title, then id. This is a total order so
// repeated runs always produce the same list.
func sortEntries(entries []BucketEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		switch {
		case a.DueInDays == nil && b.DueInDays != nil:
			return false
		case a.DueInDays != nil && b.DueInDays == nil:
			return true
		case a.DueInDays != nil && b.DueInDays != nil && *a.DueInDays != *b.DueInDays:
			return *a.DueInDays < *b.DueInDays
		}
		at, bt := strings.ToLower(a.Title), strings.ToLower(b.Title)
		if at != bt {
			return at < bt
		}
		return a.ID < b.ID
	})
}
