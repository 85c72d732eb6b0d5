// Package engine implements the cloud variable sync handlers.
//
// A handler keeps a session's tracked variables in step with the outside
// world. Two strategies implement the same Handler contract:
//
//   - NetworkHandler pushes changes to a remote service over a
//     persistent connection and applies inbound updates.
//   - PersistentHandler mirrors every change into local storage and
//     restores the saved state at construction.
//
// The host runtime only sees the contract: it reports "variable X
// changed" and drives the lifecycle hooks, without knowing which
// strategy is active.
//
// ARCHITECTURE:
//
// Single-Writer Event Loop:
// The network handler processes all work in one goroutine - timer
// ticks, inbound payloads, connection closure, pause and destroy
// signals. Nothing else touches the connection or dispatch state, so
// event handling needs no locking and message ordering is exactly
// arrival order. External inputs cross into the loop through
// thread-safe structures: VariableChanged lands in the change queue,
// lifecycle signals in control channels.
//
// Outbound discipline:
// The change queue holds distinct variable names in first-change order.
// Each flush tick sends at most ONE set message, for the queue's front
// name, reading the value at send time. Rapid repeated changes to one
// variable therefore collapse into a single update carrying the final
// value, and total outbound rate is bounded by the tick rate no matter
// how busy the host is. A name leaves the queue only after its send
// succeeds.
//
// Failure posture:
// Sync failures never interrupt the host program. Transport loss,
// malformed payloads, and storage errors degrade to "no sync" with
// diagnostic logging; the one escalation is a protocol violation (a set
// for an untracked name), which is surfaced as a structured error
// scoped to that single message.
package engine
