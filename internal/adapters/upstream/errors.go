package upstream

import "errors"

var (
	// ErrStatus is returned when an upstream answers with a non-2xx status.
	ErrStatus = errors.New("upstream returned unexpected status")
	// ErrDecode is returned when an upstream body is not the expected JSON.
	ErrDecode = errors.New("upstream body could not be decoded")
	// ErrNoSchedule is returned when the e-sports schedule has no events.
	ErrNoSchedule = errors.New("no match data available")
)
