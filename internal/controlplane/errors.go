package controlplane

import "errors"

// Sentinel errors for control plane operations.
var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrBlockNotFound    = errors.New("time block not found")
	ErrScheduleNotFound = errors.New("no schedule generated for date")
	ErrInvalidInput     = errors.New("invalid input")
)
