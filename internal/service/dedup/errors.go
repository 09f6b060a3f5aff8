package dedup

import "errors"

// Sentinel errors for the dedup service layer.
var (
	// ErrLocked means another dedup or import run holds the tenant lock.
	ErrLocked = errors.New("tenant is locked by another dedup or import run")
)
