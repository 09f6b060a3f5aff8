package leadimport

import "errors"

// Sentinel errors for the import service layer.
var (
	// ErrLocked means another dedup or import run holds the tenant lock.
	ErrLocked = errors.New("tenant is locked by another dedup or import run")
)
