package protocol

// Message kinds understood by this revision of the protocol.
// Unrecognized kinds are accepted and ignored, never errors.
const (
	KindHandshake = "handshake"
	KindSet       = "set"
)

// Handshake announces a session to the remote service. Sent once,
// immediately after the connection opens, carrying the full current
// value of every tracked variable.
type Handshake struct {
	Kind      string            `json:"kind"`
	ID        string            `json:"id"`
	Username  string            `json:"username"`
	Variables map[string]string `json:"variables"`
}

// Set carries a single variable update. Bidirectional.
type Set struct {
	Kind  string `json:"kind"`
	Var   string `json:"var"`
	Value string `json:"value"`
}
