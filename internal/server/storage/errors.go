package storage

import "errors"

// Common storage errors
var (
	// ErrZoneNotFound indicates that zone was not found in storage
	ErrZoneNotFound = errors.New("zone not found")

	// ErrChangeConflict indicates that a change id was reused for a different zone
	ErrChangeConflict = errors.New("change id already used for another zone")
)
