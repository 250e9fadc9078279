package services

import "errors"

// Validation failures — surfaced as 400, nothing was written
var (
	ErrInvalidDistance = errors.New("walk distance must be greater than zero")
	ErrInvalidDate     = errors.New("walk date is malformed or in the far future")
	ErrUserRequired    = errors.New("external user id is required")
)

// Conflicts — safe for the caller to retry the whole submission
var (
	ErrStatsConflict = errors.New("stats row is locked by a concurrent submission")
	ErrEventFull     = errors.New("event has reached its participant limit")
	ErrEventClosed   = errors.New("event is not open for joining")
)

var ErrNotFound = errors.New("record not found")
