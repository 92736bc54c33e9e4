package store

import (
	"encoding/json"
	"fmt"
	"maps"
	"strings"
	"time"
)

// Record is one row/document. Values are plain Go values: strings, integers,
// booleans, time.Time and []string. Backends normalise what they read back
// but the accessors below still tolerate the common variants.
type Record map[string]any

// Clone returns a shallow copy with slice values copied
func (r Record) Clone() Record {
	out := maps.Clone(r)
	for k, v := range out {
		if ss, ok := v.([]string); ok {
			out[k] = append([]string(nil), ss...)
		}
	}
	return out
}

// String returns field k as a string ("" when absent)
func (r Record) String(k string) string {
	switch v := r[k].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Int returns field k as an int (0 when absent or not numeric)
func (r Record) Int(k string) int {
	n, _ := toInt64(r[k])
	return int(n)
}

// Time returns field k as a time (zero when absent)
func (r Record) Time(k string) time.Time {
	switch v := r[k].(type) {
	case time.Time:
		return v
	case *time.Time:
		if v != nil {
			return *v
		}
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Strings returns field k as a string slice. JSON encoded arrays (as stored
// in jsonb columns) are decoded.
func (r Record) Strings(k string) []string {
	switch v := r[k].(type) {
	case nil:
		return nil
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, x := range v {
			out = append(out, fmt.Sprint(x))
		}
		return out
	case string:
		return decodeJSONStrings([]byte(v))
	case []byte:
		return decodeJSONStrings(v)
	}
	return nil
}

func decodeJSONStrings(b []byte) []string {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil
	}
	return out
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	case float64:
		return int64(n), true
	case float32:
		return int64(n), true
	}
	return 0, false
}

// compareValues orders two field values of the same column
func compareValues(a, b any) int {
	if ai, ok := toInt64(a); ok {
		if bi, ok := toInt64(b); ok {
			switch {
			case ai < bi:
				return -1
			case ai > bi:
				return 1
			}
			return 0
		}
	}
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Compare(bt)
		}
	}
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
