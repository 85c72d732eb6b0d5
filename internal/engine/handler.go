package engine

// Handler is the contract between the host runtime and a sync strategy.
//
// The host constructs exactly one concrete handler per session at
// startup - network or persistent, chosen by configuration - and never
// switches strategy at runtime.
type Handler interface {
	// VariableChanged notifies the handler that the named variable's
	// local value changed. Safe to call at any time, including before
	// OnStart: the network handler queues regardless of connection
	// state, and the persistent handler saves immediately.
	VariableChanged(name string)

	// OnStart is invoked when the program instance starts running.
	OnStart()

	// OnPause is invoked when the program instance is paused.
	OnPause()

	// Destroy is invoked exactly once when the instance is permanently
	// torn down. No further calls are permitted after it. Implementations
	// tolerate a redundant Destroy.
	Destroy()
}

// ConnectionState describes the network handler's connection lifecycle.
// A handler owns at most one connection at a time and never reconnects
// on its own; after Closed the host must construct a fresh handler.
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateOpen
	StateClosed
)

// String returns the lowercase state name for logs.
func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// StorageKey derives the persistent snapshot key for a session.
// Snapshots from different sessions never collide.
func StorageKey(session string) string {
	return "cloudvars/" + session
}

// SnapshotStorage is the narrow storage contract the persistent handler
// consumes. The production implementation is a bound SQLite store;
// tests substitute in-memory and failing fakes.
//
// Implementations report failures as errors; the handler logs them and
// carries on, since storage may be legitimately unavailable.
type SnapshotStorage interface {
	// Load returns the saved snapshot under key, or an empty map if
	// nothing was saved yet.
	Load(key string) (map[string]string, error)

	// Save replaces the snapshot under key with the full variable set.
	Save(key string, vars map[string]string) error
}
