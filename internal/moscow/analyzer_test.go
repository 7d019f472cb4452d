package moscow

import (
	"reflect"
	"testing"
	"time"

	"github.com/taskademic/taskademic/internal/models"
)

var testNow = time.Date(2025, 9, 4, 10, 0, 0, 0, time.UTC)

func duePtr(t time.Time) *time.Time { return &t }

func floatPtr(f float64) *float64 { return &f }

func TestClassifyTaskType(t *testing.T) {
	cases := []struct {
		title, description string
		want               TaskType
	}{
		{"Final exam: Algorithms", "covers DP and graphs", TypeMajorAcademic},
		{"Linear algebra homework", "", TypeRegularCoursework},
		{"Review notes for chemistry", "", TypeSupplementary},
		{"Grocery shopping", "", TypeNonAcademic},
		{"Water the plants", "", TypeRegularCoursework}, // no keyword -> default
	}

	for _, c := range cases {
		if got := ClassifyTaskType(c.title, c.description); got != c.want {
			t.Errorf("ClassifyTaskType(%q) = %q, want %q", c.title, got, c.want)
		}
	}
}

func TestClassifyKeywordOrderTieBreak(t *testing.T) {
	// Text matching both a Major academic and a Supplementary keyword must
	// resolve to the earlier, higher-importance category.
	got := ClassifyTaskType("Write research paper and practice presenting", "")
	if got != TypeMajorAcademic {
		t.Errorf("expected Major academic for mixed keywords, got %q", got)
	}
}

func TestUrgencyLadder(t *testing.T) {
	cases := []struct {
		name        string
		due         *time.Time
		wantUrgency int
		wantDays    *int
	}{
		{"no due date", nil, 0, nil},
		{"overdue", duePtr(testNow.Add(-30 * time.Hour)), 3, intPtr(-1)},
		{"due in 12h", duePtr(testNow.Add(12 * time.Hour)), 3, intPtr(1)},
		{"due in 3 days", duePtr(testNow.Add(3 * 24 * time.Hour)), 2, intPtr(3)},
		{"due in 5 days", duePtr(testNow.Add(5 * 24 * time.Hour)), 1, intPtr(5)},
		{"due in 10 days", duePtr(testNow.Add(10 * 24 * time.Hour)), 0, intPtr(10)},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			urgency, days := UrgencyWeight(c.due, TypeSupplementary, "", nil, testNow)
			if urgency != c.wantUrgency {
				t.Errorf("urgency = %d, want %d", urgency, c.wantUrgency)
			}
			if !intPtrEqual(days, c.wantDays) {
				t.Errorf("days = %v, want %v", days, c.wantDays)
			}
		})
	}
}

func TestUrgencyAdjustments(t *testing.T) {
	// Major academic due in 6 days: baseline 1, boosted to 2.
	urgency, _ := UrgencyWeight(duePtr(testNow.Add(6*24*time.Hour)), TypeMajorAcademic, "", nil, testNow)
	if urgency != 2 {
		t.Errorf("major academic 6 days out: urgency = %d, want 2", urgency)
	}

	// Large task due in 2 days: baseline 2, boosted to 3.
	urgency, _ = UrgencyWeight(duePtr(testNow.Add(2*24*time.Hour)), TypeSupplementary, models.TaskSizeLarge, nil, testNow)
	if urgency != 3 {
		t.Errorf("large task 2 days out: urgency = %d, want 3", urgency)
	}

	// Small regular coursework 20 days out is never urgent, even with weight.
	urgency, _ = UrgencyWeight(duePtr(testNow.Add(20*24*time.Hour)), TypeRegularCoursework, models.TaskSizeSmall, nil, testNow)
	if urgency != 0 {
		t.Errorf("small routine task far out: urgency = %d, want 0", urgency)
	}

	// Course weight >= 0.3 bumps one level, capped at 3.
	urgency, _ = UrgencyWeight(duePtr(testNow.Add(5*24*time.Hour)), TypeRegularCoursework, "", floatPtr(0.5), testNow)
	if urgency != 2 {
		t.Errorf("weighted course: urgency = %d, want 2", urgency)
	}
	urgency, _ = UrgencyWeight(duePtr(testNow.Add(12*time.Hour)), TypeMajorAcademic, "", floatPtr(0.9), testNow)
	if urgency != 3 {
		t.Errorf("weighted urgent course: urgency = %d, want 3 (capped)", urgency)
	}
}

func TestScoreRange(t *testing.T) {
	if got := Score(ImportanceWeight(TypeNonAcademic), 0); got != 10 {
		t.Errorf("minimum score = %d, want 10", got)
	}
	if got := Score(ImportanceWeight(TypeMajorAcademic), 3); got != 49 {
		t.Errorf("maximum score = %d, want 49", got)
	}
}

func TestRulePrecedence(t *testing.T) {
	// A task due within a day is must via rule 1 before any score threshold
	// is consulted, whatever its type.
	bucket, rule := ApplyRules(TypeSupplementary, intPtr(1), 10)
	if bucket != BucketMust {
		t.Errorf("due tomorrow: bucket = %q, want must", bucket)
	}
	if rule != "rule 1: hard deadline within 24h" {
		t.Errorf("matched rule = %q", rule)
	}

	// Supplementary due in exactly 1 day... rule 1 already catches <=1; with
	// no deadline a Supplementary task falls through to thresholds.
	bucket, _ = ApplyRules(TypeSupplementary, nil, 20)
	if bucket != BucketWont {
		t.Errorf("low-score supplementary: bucket = %q, want wont", bucket)
	}

	// Non-academic is wont via rule 6 regardless of score.
	bucket, rule = ApplyRules(TypeNonAcademic, intPtr(3), 49)
	if bucket != BucketWont {
		t.Errorf("non-academic: bucket = %q, want wont", bucket)
	}
	if rule != "rule 6: non-academic" {
		t.Errorf("matched rule = %q", rule)
	}
}

func TestRuleThresholds(t *testing.T) {
	cases := []struct {
		score int
		want  Bucket
	}{
		{49, BucketMust},
		{43, BucketMust},
		{42, BucketShould},
		{38, BucketShould},
		{37, BucketCould},
		{28, BucketCould},
		{27, BucketWont},
		{10, BucketWont},
	}
	for _, c := range cases {
		// Major academic with no due date never matches rules 1-6.
		if got, _ := ApplyRules(TypeMajorAcademic, nil, c.score); got != c.want {
			t.Errorf("score %d: bucket = %q, want %q", c.score, got, c.want)
		}
	}
}

func TestAnalyzeScenarioMajorDueToday(t *testing.T) {
	tasks := []models.Task{{
		ID:      "t1",
		Title:   "Final exam: Algorithms",
		DueDate: duePtr(testNow.Add(6 * time.Hour)),
	}}

	snapshot := Analyze(tasks, testNow)
	if len(snapshot.DecisionLog) != 1 {
		t.Fatalf("expected 1 decision, got %d", len(snapshot.DecisionLog))
	}

	d := snapshot.DecisionLog[0]
	if d.Type != TypeMajorAcademic {
		t.Errorf("type = %q, want Major academic", d.Type)
	}
	if d.Urgency != 3 || d.Importance != 4 || d.Score != 49 {
		t.Errorf("urgency/importance/score = %d/%d/%d, want 3/4/49", d.Urgency, d.Importance, d.Score)
	}
	if d.Final != BucketMust {
		t.Errorf("bucket = %q, want must", d.Final)
	}
	if d.MatchedRule != "rule 1: hard deadline within 24h" {
		t.Errorf("matched rule = %q, want rule 1 (before score is consulted)", d.MatchedRule)
	}
}

func TestAnalyzeScenarioGroceryShopping(t *testing.T) {
	tasks := []models.Task{{
		ID:      "t1",
		Title:   "Grocery shopping",
		DueDate: duePtr(testNow.Add(3 * 24 * time.Hour)),
	}}

	snapshot := Analyze(tasks, testNow)
	d := snapshot.DecisionLog[0]
	if d.Type != TypeNonAcademic {
		t.Errorf("type = %q, want Non-academic", d.Type)
	}
	if d.Final != BucketWont {
		t.Errorf("bucket = %q, want wont via rule 6", d.Final)
	}
	if len(snapshot.Buckets[BucketWont]) != 1 {
		t.Errorf("wont bucket size = %d, want 1", len(snapshot.Buckets[BucketWont]))
	}
}

func TestAnalyzeDeterminism(t *testing.T) {
	tasks := []models.Task{
		{ID: "b", Title: "Homework 3", DueDate: duePtr(testNow.Add(48 * time.Hour))},
		{ID: "a", Title: "homework 3", DueDate: duePtr(testNow.Add(48 * time.Hour))},
		{ID: "c", Title: "Study for quiz"},
		{ID: "d", Title: "Final project", DueDate: duePtr(testNow.Add(24 * time.Hour))},
	}

	first := Analyze(tasks, testNow)
	for i := 0; i < 10; i++ {
		again := Analyze(tasks, testNow)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("analysis is not deterministic: run %d differs", i)
		}
	}
}

func TestBucketSortOrder(t *testing.T) {
	entries := []BucketEntry{
		{ID: "z", Title: "Beta", DueInDays: nil},
		{ID: "b", Title: "alpha", DueInDays: intPtr(2)},
		{ID: "a", Title: "Alpha", DueInDays: intPtr(2)},
		{ID: "c", Title: "Gamma", DueInDays: intPtr(1)},
	}
	sortEntries(entries)

	wantIDs := []string{"c", "a", "b", "z"}
	for i, want := range wantIDs {
		if entries[i].ID != want {
			t.Errorf("position %d: got %q, want %q (order: due asc nils last, title, id)", i, entries[i].ID, want)
		}
	}
}

func intPtr(n int) *int { return &n }

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
