package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// EncodeSet encodes a set message as one newline-terminated JSON line.
func EncodeSet(name, value string) ([]byte, error) {
	return encodeLine(Set{Kind: KindSet, Var: name, Value: value})
}

// EncodeHandshake encodes a handshake message as one newline-terminated
// JSON line. The variables map is the full tracked snapshot, not a diff.
func EncodeHandshake(id, username string, variables map[string]string) ([]byte, error) {
	if variables == nil {
		variables = map[string]string{}
	}
	return encodeLine(Handshake{
		Kind:      KindHandshake,
		ID:        id,
		Username:  username,
		Variables: variables,
	})
}

func encodeLine(msg any) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", msg, err)
	}
	return append(data, '\n'), nil
}

// RawMessage is a decoded but not yet validated protocol message.
// Accessors perform the structural checks; a failed accessor means the
// message should be skipped, not treated as an error.
type RawMessage map[string]any

// Kind returns the message kind. The second return is false when the
// kind field is missing or not a string - such envelopes are skipped.
func (m RawMessage) Kind() (string, bool) {
	kind, ok := m["kind"].(string)
	return kind, ok
}

// AsSet extracts a set message. The second return is false when the var
// or value field is missing or not a string; per the protocol's
// forward-compatibility rule that is a skip, not an error.
func (m RawMessage) AsSet() (Set, bool) {
	name, ok := m["var"].(string)
	if !ok {
		return Set{}, false
	}
	value, ok := m["value"].(string)
	if !ok {
		return Set{}, false
	}
	return Set{Kind: KindSet, Var: name, Value: value}, true
}

// DecodePayload parses one inbound payload into its component messages.
//
// A payload is one or more newline-delimited JSON objects; blank lines
// are tolerated. If any line fails to parse, the entire payload is
// rejected and none of its messages are delivered - decode failures have
// payload granularity, unlike structural validation which has message
// granularity.
func DecodePayload(data []byte) ([]RawMessage, error) {
	lines := bytes.Split(data, []byte("\n"))
	msgs := make([]RawMessage, 0, len(lines))
	for i, line := range lines {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var msg RawMessage
		if err := json.Unmarshal(line, &msg); err != nil {
			return nil, fmt.Errorf("decode payload line %d: %w", i+1, err)
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}
