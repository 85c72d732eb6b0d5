// Package harness provides conformance testing for sync sessions.
//
// The harness drives a real network sync handler through a scripted
// scenario using fake transport and a manual flush timer, then captures
// everything the session sent and the final variable state for golden
// comparison.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: score_sync
//	description: "What this scenario validates"
//	variables:
//	  - score
//	steps:
//	  - change: score
//	    value: "3"
//	  - tick: true
//	  - inbound: '{"kind":"set","var":"score","value":"9"}'
//	  - pause: true
//
// # Step Types
//
//   - change: set a variable on the adapter and notify the handler
//   - tick: fire one flush tick
//   - inbound: deliver one payload from the fake connection
//   - pause: stop the flush timer
//
// # Deterministic Testing
//
// Scenarios execute with a fixed username generator and a manual flush
// timer, so identical scenarios produce identical traces across runs
// for golden file comparison.
package harness
