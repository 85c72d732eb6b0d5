// Package testutil provides deterministic fakes for handler tests: a
// manually-fired flush ticker, scripted connections, and in-memory or
// failing snapshot storage. None of them touch the clock, the network,
// or the filesystem.
package testutil
