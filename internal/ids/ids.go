// Package ids defines the canonical identifier type shared by every entity
// store, index, and view. All foreign-key resolution and store keying passes
// through Normalize exactly once; downstream code only ever sees ID values
// that survived it.
package ids

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ID is the canonical numeric identifier. References that fail to resolve
// are represented as nil *ID, never as a dangling raw value.
type ID int64

// String returns the decimal form used for index and view map keys.
func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Normalize coerces a raw identifier value into an ID. Strings are trimmed
// and parsed as numbers; empty strings, non-numeric strings, non-finite and
// fractional numbers all report ok=false.
func Normalize(value any) (ID, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case ID:
		return v, true
	case int:
		return ID(v), true
	case int64:
		return ID(v), true
	case float64:
		return fromFloat(v)
	case json.Number:
		return fromString(v.String())
	case string:
		return fromString(v)
	default:
		return 0, false
	}
}

func fromString(s string) (ID, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ID(n), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return fromFloat(f)
}

func fromFloat(f float64) (ID, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return ID(f), true
}

// Ptr returns a pointer to id, for optional model fields.
func Ptr(id ID) *ID {
	return &id
}

// Raw is an identifier as it appears in unshaped input: a number, a numeric
// string, null, or absent. It is the only type permitted to read raw id
// values; everything downstream goes through Norm.
type Raw struct {
	value any
}

// UnmarshalJSON accepts numbers, strings, and null. Any other shape is kept
// as-is and normalizes to null rather than failing the decode; a bad id is a
// data-quality issue for the validator, not a parse error.
func (r *Raw) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		r.value = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		r.value = nil
		return nil
	}
	r.value = v
	return nil
}

// MarshalJSON round-trips the captured value, mainly for raw re-emission.
func (r Raw) MarshalJSON() ([]byte, error) {
	if r.value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(r.value)
}

// Norm normalizes the captured raw value.
func (r Raw) Norm() (ID, bool) {
	return Normalize(r.value)
}

// Set is a reference snapshot of the ids present in a sibling store,
// precomputed once per build pass.
type Set map[ID]struct{}

// NewSet collects the normalizable ids from raws into a Set.
func NewSet(raws []Raw) Set {
	s := make(Set, len(raws))
	for _, r := range raws {
		if id, ok := r.Norm(); ok {
			s[id] = struct{}{}
		}
	}
	return s
}

// Has reports whether id is in the set.
func (s Set) Has(id ID) bool {
	_, ok := s[id]
	return ok
}

// Resolve normalizes raw and checks membership; unresolved references
// come back as nil.
func (s Set) Resolve(raw Raw) *ID {
	id, ok := raw.Norm()
	if !ok || !s.Has(id) {
		return nil
	}
	return Ptr(id)
}

// UniqueResolved normalizes raws, drops ids absent from valid (when valid is
// non-nil), deduplicates preserving first occurrence, and returns the result
// sorted ascending.
func UniqueResolved(raws []Raw, valid Set) []ID {
	seen := make(map[ID]struct{}, len(raws))
	var out []ID
	for _, r := range raws {
		id, ok := r.Norm()
		if !ok {
			continue
		}
		if valid != nil && !valid.Has(id) {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	SortAscending(out)
	return out
}

// SortAscending sorts ids in place.
func SortAscending(out []ID) {
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
}
