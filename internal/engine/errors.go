package engine

import "errors"

// Sentinel error kinds the core distinguishes (spec §7 Error handling
// design). Callers test with errors.Is; cmd/world maps them to exit codes.
var (
	// ErrInvalidWorldDir means the path named by "world open"/"world new"
	// has no readable config, catalog or script data, or (for "world new")
	// is already initialized.
	ErrInvalidWorldDir = errors.New("engine: invalid world directory")

	// ErrParseError means a submap file on disk is malformed. The world
	// refuses to open rather than guess at recovery.
	ErrParseError = errors.New("engine: corrupt submap file")

	// ErrIoError means a filesystem failure on save. In-memory state
	// remains valid; the host may retry.
	ErrIoError = errors.New("engine: i/o error")

	// ErrInvalidAction means the caller requested an action the actor
	// cannot perform (fire without ammo, step into a wall). Recovered
	// locally as a no-op; this sentinel only surfaces to report why.
	ErrInvalidAction = errors.New("engine: invalid action")

	// ErrDebugInvariant means an internal assertion failed (e.g. a trap
	// reference at an out-of-range local coordinate). Logged and treated
	// as corrupt state, never a panic.
	ErrDebugInvariant = errors.New("engine: debug invariant violated")
)
