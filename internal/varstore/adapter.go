// Package varstore defines the variable store adapter consumed by the
// sync handlers.
//
// The store of record for variable values is owned by the host runtime,
// not by driftsync. Handlers read and write values only through the
// Adapter interface, and only for names the adapter declared at handler
// construction - the sync core never invents variable names. Injecting
// the adapter (rather than reaching for shared host state) is what lets
// the handlers run against a fake store in tests.
package varstore

// Adapter is the narrow interface to the host's variable storage.
//
// Implementations must be safe for concurrent use: the host mutates
// values on its own goroutine while a handler reads them at flush time
// and writes them on inbound messages.
type Adapter interface {
	// Get returns the current value of the named variable, or the empty
	// string if the name is unknown.
	Get(name string) string

	// Set replaces the named variable's value.
	Set(name, value string)

	// TrackedNames returns the declared cloud-synced variable names in
	// declaration order. The result is fixed for the adapter's lifetime.
	TrackedNames() []string
}
