package repository

import "errors"

// Sentinel kinds for store errors.
var (
	// ErrPersist wraps every failure to replace a collection file. The
	// previous file content is left in place when it is returned.
	ErrPersist = errors.New("persist collection failed")
)
