package docstore

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Documents come back from JSON or BSON, so numbers may be float64, int32,
// int64 or json.Number. The getters below fold those into one type and fall
// back to def when the field is absent or unusable.

// String reads a string field.
func String(data map[string]any, key, def string) string {
	switch v := data[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return def
	}
}

// Int64 reads an integer field. Numeric strings are accepted.
func Int64(data map[string]any, key string, def int64) int64 {
	switch v := data[key].(type) {
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	case float32:
		return int64(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		if f, err := v.Float64(); err == nil {
			return int64(f)
		}
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return n
		}
	}
	return def
}

// Int reads an integer field.
func Int(data map[string]any, key string, def int) int {
	return int(Int64(data, key, int64(def)))
}

// Bool reads a boolean field.
func Bool(data map[string]any, key string, def bool) bool {
	switch v := data[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// Strings reads a list of strings. A comma separated string is split.
func Strings(data map[string]any, key string) []string {
	switch v := data[key].(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		var out []string
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	return nil
}
