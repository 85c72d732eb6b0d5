// Package protocol implements the cloud variable wire protocol.
//
// The protocol is newline-delimited JSON objects. Every message carries a
// string "kind" field used for routing:
//
//	{"kind":"handshake","id":"...","username":"...","variables":{...}}
//	{"kind":"set","var":"...","value":"..."}
//
// The handshake is outbound only and announces the session together with
// a full snapshot of every tracked variable. Set messages flow in both
// directions and carry a single variable's current value as a string.
//
// Decoding is deliberately two-phase. DecodePayload parses an entire
// payload: if any line is not valid JSON, the whole payload is rejected -
// there is no partial-message recovery. Structural checks then happen
// per message: a message without a string kind, or a set without string
// var/value fields, simply fails its accessor and is skipped by the
// caller. Unknown kinds pass decoding untouched so future protocol
// revisions can add kinds without breaking old peers.
package protocol
