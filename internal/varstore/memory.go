package varstore

import (
	"sync"

	"github.com/roach88/driftsync/internal/cloudvar"
)

// Memory is an in-memory Adapter used by the CLI host and by tests.
//
// Thread-safety: all methods lock; the host and a handler goroutine may
// touch the same variable concurrently.
type Memory struct {
	mu      sync.Mutex
	tracked []string
	values  map[string]string
}

// NewMemory creates a Memory adapter tracking the given names, all
// initialized to the empty string. Names are NFC-normalized and
// deduplicated, preserving declaration order.
func NewMemory(names []string) *Memory {
	set := cloudvar.NewTrackedSet(names)
	m := &Memory{
		tracked: set.Names(),
		values:  make(map[string]string, set.Len()),
	}
	for _, name := range m.tracked {
		m.values[name] = ""
	}
	return m
}

// Get returns the current value, or "" for unknown names.
func (m *Memory) Get(name string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[cloudvar.NormalizeName(name)]
}

// Set replaces the named variable's value.
func (m *Memory) Set(name, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[cloudvar.NormalizeName(name)] = value
}

// TrackedNames returns the declared names in declaration order.
func (m *Memory) TrackedNames() []string {
	out := make([]string, len(m.tracked))
	copy(out, m.tracked)
	return out
}

// Snapshot returns a copy of every tracked name's current value.
func (m *Memory) Snapshot() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := make(map[string]string, len(m.tracked))
	for _, name := range m.tracked {
		snap[name] = m.values[name]
	}
	return snap
}
