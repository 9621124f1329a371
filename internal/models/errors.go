package models

import "errors"

var (
	// ErrInvalidFrequency is returned when a frequency outside daily/weekly/monthly
	// reaches period key resolution.
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrInvalidGoal      = errors.New("invalid goal")
	// ErrHabitNotFound aborts a completion or directory operation on an unknown habit id.
	ErrHabitNotFound = errors.New("habit not found")
	// ErrCompletionNotFound is returned by a details update when the period has no record.
	ErrCompletionNotFound = errors.New("completion not found")
	// ErrStoreUnavailable wraps any failure of the backing store.
	ErrStoreUnavailable = errors.New("store unavailable")
)
