package jsonutil

import (
	"encoding/json"
	"fmt"
)

// FlexibleString coerces a JSON-decoded value to a string, handling result
// rows whose columns hold numbers, booleans, or null instead of strings.
// Returns empty string for nil.
func FlexibleString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	case bool:
		return fmt.Sprintf("%t", v)
	}

	// Fallback: default formatting
	return fmt.Sprintf("%v", value)
}

// FlexibleStringValue converts a json.RawMessage to a string without
// requiring the payload to be a JSON string. Returns empty string for
// null/empty.
func FlexibleStringValue(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return string(raw)
	}
	return FlexibleString(decoded)
}
