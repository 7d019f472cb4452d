package planner

import "errors"

// Sentinel errors for schedule generation.
var (
	// ErrNoCapacity means the target day has no available time blocks. It is
	// the only failure surfaced to the caller; everything else falls back to
	// the deterministic packer.
	ErrNoCapacity = errors.New("no available time blocks")

	// ErrInvalidPlan means the reasoning service returned output that could
	// not be parsed or failed validation.
	ErrInvalidPlan = errors.New("invalid schedule plan")
)
