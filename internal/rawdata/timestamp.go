package rawdata

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/confpack/confpack/internal/dates"
)

// Timestamp tolerates the update-time shapes the backend emits: a
// `{"seconds": n}` object, an RFC3339-ish string, or null/absent.
type Timestamp struct {
	seconds *int64
	text    string
}

// UnmarshalJSON captures the shape without judging it; unusable shapes
// resolve to nothing rather than failing the decode.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	*ts = Timestamp{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	switch data[0] {
	case '{':
		var obj struct {
			Seconds *int64 `json:"seconds"`
		}
		if err := json.Unmarshal(data, &obj); err == nil {
			ts.seconds = obj.Seconds
		}
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			ts.text = s
		}
	}
	return nil
}

// MarshalJSON round-trips the captured value, for raw re-emission.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	switch {
	case ts.seconds != nil:
		return []byte(`{"seconds":` + strconv.FormatInt(*ts.seconds, 10) + `}`), nil
	case ts.text != "":
		return json.Marshal(ts.text)
	default:
		return []byte("null"), nil
	}
}

// Millis resolves the timestamp to Unix milliseconds.
func (ts Timestamp) Millis() (int64, bool) {
	if ts.seconds != nil {
		return *ts.seconds * 1000, true
	}
	if ts.text != "" {
		return dates.UnixMillis(ts.text)
	}
	return 0, false
}

// UpdatedAtMillis resolves an update instant from the possible raw fields,
// in precedence order: updated_at, updated_tsz, updated_at_str.
func UpdatedAtMillis(updatedAt Timestamp, updatedTSZ, updatedAtStr string) *int64 {
	if ms, ok := updatedAt.Millis(); ok {
		return &ms
	}
	for _, s := range []string{updatedTSZ, updatedAtStr} {
		if strings.TrimSpace(s) == "" {
			continue
		}
		if ms, ok := dates.UnixMillis(s); ok {
			return &ms
		}
	}
	return nil
}

// Number tolerates numeric-or-string sort orders on raw menu items.
type Number struct {
	value *float64
}

// UnmarshalJSON accepts numbers and numeric strings; anything else resolves
// to absent.
func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	s := string(data)
	if data[0] == '"' {
		var unquoted string
		if err := json.Unmarshal(data, &unquoted); err != nil {
			return nil
		}
		s = strings.TrimSpace(unquoted)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		n.value = &f
	}
	return nil
}

// MarshalJSON round-trips the captured value, for raw re-emission.
func (n Number) MarshalJSON() ([]byte, error) {
	if n.value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*n.value)
}

// Value returns the numeric value when present.
func (n Number) Value() (float64, bool) {
	if n.value == nil {
		return 0, false
	}
	return *n.value, true
}

// Int returns the value truncated to int when present.
func (n Number) Int() (int, bool) {
	f, ok := n.Value()
	if !ok {
		return 0, false
	}
	return int(f), true
}
