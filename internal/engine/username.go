package engine

import (
	"sync"

	"github.com/google/uuid"
)

// UsernameGenerator produces the display name sent in the handshake.
// Implemented by RandomUsernameGenerator (production) and
// FixedUsernameGenerator (tests).
//
// Identity here is presentational, not authoritative: the name only
// labels the session for whoever is watching the remote service, so
// collisions are tolerable and no cryptographic uniqueness is needed.
type UsernameGenerator interface {
	Generate() string
}

// RandomUsernameGenerator generates names like "player_3f9a21c4".
//
// The suffix is the first segment of a random UUID - collision-tolerant
// rather than collision-free, which is all a display name needs.
//
// Thread-safety: stateless and safe for concurrent use.
type RandomUsernameGenerator struct{}

// Generate returns a fresh random display name.
func (RandomUsernameGenerator) Generate() string {
	return "player_" + uuid.NewString()[:8]
}

// FixedUsernameGenerator returns predetermined names for testing.
// This keeps handshake output deterministic for golden comparison.
//
// Thread-safety: safe for concurrent use via internal mutex.
type FixedUsernameGenerator struct {
	mu    sync.Mutex
	names []string
	idx   int
}

// NewFixedUsernameGenerator creates a generator that returns names in
// order, repeating the last name once the list is exhausted.
func NewFixedUsernameGenerator(names ...string) *FixedUsernameGenerator {
	return &FixedUsernameGenerator{names: names}
}

// Generate returns the next predetermined name.
func (g *FixedUsernameGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.names) == 0 {
		return "player_test"
	}
	name := g.names[g.idx]
	if g.idx < len(g.names)-1 {
		g.idx++
	}
	return name
}
