package cloudvar

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"golang.org/x/text/unicode/norm"
)

// MarshalSnapshot produces the canonical encoding of a variable snapshot:
// a single JSON object mapping variable name to string value, keys in
// byte-lexicographic order, all strings NFC-normalized, no HTML escaping.
//
// This is the only serialization used for persisted snapshots and golden
// traces. Identical variable state always yields identical bytes, which
// is what makes snapshot round-trips and golden comparisons exact.
func MarshalSnapshot(vars map[string]string) ([]byte, error) {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeCanonicalString(&buf, k); err != nil {
			return nil, fmt.Errorf("marshal snapshot key %q: %w", k, err)
		}
		buf.WriteByte(':')
		if err := writeCanonicalString(&buf, vars[k]); err != nil {
			return nil, fmt.Errorf("marshal snapshot value for %q: %w", k, err)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalSnapshot parses a persisted snapshot payload.
//
// Values that are not JSON strings are coerced with CoerceString rather
// than rejected: old snapshots written by earlier hosts may carry raw
// numbers, and losing the whole snapshot over formatting is worse than
// coercing. A payload that is not a JSON object is an error.
func UnmarshalSnapshot(data []byte) (map[string]string, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	vars := make(map[string]string, len(raw))
	for k, v := range raw {
		vars[k] = CoerceString(v)
	}
	return vars, nil
}

// writeCanonicalString writes an NFC-normalized JSON string without HTML
// escaping. Go's json.Marshal escapes < > & by default, which would make
// the canonical form depend on the encoder rather than the value.
func writeCanonicalString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return err
	}
	// Encode appends a trailing newline; drop it.
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}
