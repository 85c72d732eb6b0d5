package cloudvar

import (
	"golang.org/x/text/unicode/norm"
)

// NormalizeName returns the NFC-normalized form of a variable name.
//
// Names arrive from three directions - the host's declaration, the wire,
// and persisted snapshots - and different platforms emit different
// Unicode forms for the same visible name. Every membership check in
// driftsync goes through this normalization so a composed and a
// decomposed spelling of the same name are the same variable.
func NormalizeName(name string) string {
	return norm.NFC.String(name)
}

// TrackedSet is the ordered set of variable names a session declares as
// cloud-synced. It is immutable for the lifetime of a handler instance:
// it defines which inbound and outbound names are valid, and its order
// fixes the order of handshake snapshots and queue drains.
type TrackedSet struct {
	names  []string
	member map[string]struct{}
}

// NewTrackedSet builds a TrackedSet from declared names.
//
// Names are NFC-normalized on entry. Duplicates after normalization are
// dropped, keeping the first occurrence's position.
func NewTrackedSet(names []string) *TrackedSet {
	s := &TrackedSet{
		names:  make([]string, 0, len(names)),
		member: make(map[string]struct{}, len(names)),
	}
	for _, name := range names {
		n := NormalizeName(name)
		if _, ok := s.member[n]; ok {
			continue
		}
		s.member[n] = struct{}{}
		s.names = append(s.names, n)
	}
	return s
}

// Contains reports whether the normalized form of name is tracked.
func (s *TrackedSet) Contains(name string) bool {
	_, ok := s.member[NormalizeName(name)]
	return ok
}

// Names returns the tracked names in declaration order.
// The returned slice is a copy; callers may not mutate set state.
func (s *TrackedSet) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of tracked names.
func (s *TrackedSet) Len() int {
	return len(s.names)
}
