package customevents

import "errors"

// Sentinel kinds returned by Manager. Callers match them with errors.Is.
var (
	ErrNotFound     = errors.New("event not found")
	ErrInvalidEvent = errors.New("invalid event")
	ErrDuplicateID  = errors.New("event id already exists")
)
