package zonesync

import "errors"

var (
	// ErrUnknownZone indicates an operation on a zone that was never initialized.
	// Recoverable: initialize the zone and retry.
	ErrUnknownZone = errors.New("zone not initialized")

	// ErrAckTimeout is logged when a change is not acknowledged in time.
	// It never reaches callers, the zone status reflects it instead.
	ErrAckTimeout = errors.New("acknowledgement timed out")

	// ErrStaleUpdate is logged (debug only) when a server update older than the
	// last applied one is dropped.
	ErrStaleUpdate = errors.New("stale server update discarded")

	// ErrEngineClosed indicates a call on an engine after Close.
	ErrEngineClosed = errors.New("engine is closed")
)
