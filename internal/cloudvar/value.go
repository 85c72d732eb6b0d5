package cloudvar

import (
	"fmt"
	"strconv"
)

// CoerceString converts a host-native value to its wire/storage string
// representation.
//
// Coercion is one-way: once a value crosses the protocol or storage
// boundary it is a string, and nothing on the far side reconstructs the
// native type. Numeric formatting avoids exponent notation for the
// ranges hosts actually use, so "3" stays "3" rather than "3e+00".
func CoerceString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	default:
		return fmt.Sprint(val)
	}
}
