package engine

import (
	"log/slog"

	"github.com/roach88/driftsync/internal/cloudvar"
	"github.com/roach88/driftsync/internal/varstore"
)

// PersistentHandler mirrors tracked variables into local storage.
//
// The consistency trade-off is the opposite of the network handler's:
// no queue, no timer, no coalescing. Every change saves the entire
// tracked snapshot eagerly and synchronously, and construction restores
// whatever the previous run saved. Storage failures are logged and
// absorbed - in restricted environments storage may simply be
// unavailable, and sync degrades to a no-op rather than aborting the
// host program.
type PersistentHandler struct {
	adapter varstore.Adapter
	tracked *cloudvar.TrackedSet
	storage SnapshotStorage
	key     string
	session string
}

// NewPersistentHandler creates a storage-backed handler and immediately
// loads the previously saved snapshot, if any.
//
// Only keys that are members of the tracked set are applied; unknown
// keys in the saved blob are ignored, so snapshots survive tracked-set
// changes in either direction. Read or parse failures leave the
// adapter's current values unchanged.
func NewPersistentHandler(adapter varstore.Adapter, storage SnapshotStorage, session string) *PersistentHandler {
	h := &PersistentHandler{
		adapter: adapter,
		tracked: cloudvar.NewTrackedSet(adapter.TrackedNames()),
		storage: storage,
		key:     StorageKey(session),
		session: session,
	}
	h.load()
	return h
}

// VariableChanged saves the entire current tracked snapshot, not just
// the changed variable. Saving is idempotent, so this is safe at any
// time, started or not.
func (h *PersistentHandler) VariableChanged(name string) {
	snap := make(map[string]string, h.tracked.Len())
	for _, n := range h.tracked.Names() {
		snap[n] = h.adapter.Get(n)
	}

	if err := h.storage.Save(h.key, snap); err != nil {
		slog.Error("snapshot save failed", "session", h.session, "key", h.key, "error", err)
	}
}

// OnStart is a no-op; the handler has no lifecycle-dependent state.
func (h *PersistentHandler) OnStart() {}

// OnPause is a no-op.
func (h *PersistentHandler) OnPause() {}

// Destroy is a no-op; the storage is owned by the caller.
func (h *PersistentHandler) Destroy() {}

func (h *PersistentHandler) load() {
	snap, err := h.storage.Load(h.key)
	if err != nil {
		slog.Warn("snapshot load failed, continuing with defaults",
			"session", h.session,
			"key", h.key,
			"error", err,
		)
		return
	}

	normalized := make(map[string]string, len(snap))
	for name, value := range snap {
		normalized[cloudvar.NormalizeName(name)] = value
	}

	for _, name := range h.tracked.Names() {
		if value, ok := normalized[name]; ok {
			h.adapter.Set(name, value)
		}
	}
}
