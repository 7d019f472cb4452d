package moscow

import (
	"testing"
	"time"

	"github.com/taskademic/taskademic/internal/models"
)

func TestCacheHitAndMiss(t *testing.T) {
	c := NewCache(time.Hour)

	computes := 0
	compute := func() (*Snapshot, error) {
		computes++
		return Analyze([]models.Task{{ID: "t1", Title: "Homework"}}, testNow), nil
	}

	first, err := c.Get("user-1", compute)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	second, err := c.Get("user-1", compute)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if computes != 1 {
		t.Errorf("expected 1 compute, got %d", computes)
	}
	if first != second {
		t.Error("expected cached snapshot to be returned")
	}
}

func TestCacheInvalidate(t *testing.T) {
	c := NewCache(time.Hour)

	computes := 0
	compute := func() (*Snapshot, error) {
		computes++
		return Analyze(nil, testNow), nil
	}

	if _, err := c.Get("user-1", compute); err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	// A task mutation evicts the entry; the next read recomputes.
	c.Invalidate("user-1")

	if _, err := c.Get("user-1", compute); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if computes != 2 {
		t.Errorf("expected recompute after invalidation, got %d computes", computes)
	}
}

func TestCacheRefreshBypasses(t *testing.T) {
	c := NewCache(time.Hour)

	computes := 0
	compute := func() (*Snapshot, error) {
		computes++
		return Analyze(nil, testNow), nil
	}

	if _, err := c.Get("user-1", compute); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if _, err := c.Refresh("user-1", compute); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if computes != 2 {
		t.Errorf("Refresh should bypass the cache, got %d computes", computes)
	}

	// Refresh repopulates, so the next Get is a hit.
	if _, err := c.Get("user-1", compute); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if computes != 2 {
		t.Errorf("expected hit after Refresh, got %d computes", computes)
	}
}

func TestCacheIsolatesUsers(t *testing.T) {
	c := NewCache(time.Hour)

	compute := func() (*Snapshot, error) { return Analyze(nil, testNow), nil }

	a, _ := c.Get("user-a", compute)
	b, _ := c.Get("user-b", compute)
	if a == b {
		t.Error("users must not share snapshots")
	}

	c.Invalidate("user-a")
	b2, _ := c.Get("user-b", compute)
	if b2 != b {
		t.Error("invalidating one user must not evict another")
	}
}
