package rawdata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/confpack/confpack/internal/ids"
)

// Collections names the nine required raw collections, in the order they
// are fetched and emitted.
var Collections = []string{
	"articles",
	"content",
	"documents",
	"events",
	"locations",
	"menus",
	"organizations",
	"speakers",
	"tagtypes",
}

// Dataset holds one decoded snapshot of every raw collection. It is
// immutable once decoded; builders only read it.
type Dataset struct {
	Articles      []Article
	Content       []Content
	Documents     []Document
	Events        []Event
	Locations     []Location
	Menus         []Menu
	Organizations []Organization
	Speakers      []Person
	TagTypes      []TagType
}

// Decode decodes the nine raw collections from their JSON payloads. A
// missing or non-array collection is a structural error: the fetch layer
// contract guarantees arrays, so anything else is an upstream bug.
func Decode(payloads map[string]json.RawMessage) (*Dataset, error) {
	for _, name := range Collections {
		payload, ok := payloads[name]
		if !ok {
			return nil, fmt.Errorf("collection %q missing", name)
		}
		trimmed := bytes.TrimSpace(payload)
		if len(trimmed) == 0 || trimmed[0] != '[' {
			return nil, fmt.Errorf("collection %q is not an array", name)
		}
	}

	ds := &Dataset{}
	decoders := []struct {
		name string
		dst  any
	}{
		{"articles", &ds.Articles},
		{"content", &ds.Content},
		{"documents", &ds.Documents},
		{"events", &ds.Events},
		{"locations", &ds.Locations},
		{"menus", &ds.Menus},
		{"organizations", &ds.Organizations},
		{"speakers", &ds.Speakers},
		{"tagtypes", &ds.TagTypes},
	}
	for _, d := range decoders {
		if err := json.Unmarshal(payloads[d.name], d.dst); err != nil {
			return nil, fmt.Errorf("decode collection %q: %w", d.name, err)
		}
	}

	ds.sortCollections()
	return ds, nil
}

// sortCollections orders every collection deterministically before any
// building happens: records with ids ascend by id, records without ids sink
// to the end ordered by their canonical JSON encoding. Duplicate-id
// first-wins resolution downstream depends on this order being stable.
func (ds *Dataset) sortCollections() {
	sortByID(ds.Articles, func(a Article) (ids.ID, bool) { return a.ID.Norm() })
	sortByID(ds.Content, func(c Content) (ids.ID, bool) { return c.ID.Norm() })
	sortByID(ds.Documents, func(d Document) (ids.ID, bool) { return d.ID.Norm() })
	sortByID(ds.Events, func(e Event) (ids.ID, bool) { return e.ID.Norm() })
	sortByID(ds.Locations, func(l Location) (ids.ID, bool) { return l.ID.Norm() })
	sortByID(ds.Menus, func(m Menu) (ids.ID, bool) { return m.ID.Norm() })
	sortByID(ds.Organizations, func(o Organization) (ids.ID, bool) { return o.ID.Norm() })
	sortByID(ds.Speakers, func(p Person) (ids.ID, bool) { return p.ID.Norm() })
	sortByID(ds.TagTypes, func(t TagType) (ids.ID, bool) { return t.ID.Norm() })
}

func sortByID[T any](items []T, key func(T) (ids.ID, bool)) {
	type keyed struct {
		item     T
		id       ids.ID
		hasID    bool
		fallback string
	}
	entries := make([]keyed, len(items))
	for i, item := range items {
		id, ok := key(item)
		e := keyed{item: item, id: id, hasID: ok}
		if !ok {
			if raw, err := json.Marshal(item); err == nil {
				e.fallback = string(raw)
			}
		}
		entries[i] = e
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		switch {
		case a.hasID && b.hasID:
			return a.id < b.id
		case a.hasID:
			return true
		case b.hasID:
			return false
		default:
			return a.fallback < b.fallback
		}
	})
	for i, e := range entries {
		items[i] = e.item
	}
}

// DecodeRaw decodes every collection payload generically, keeping fields the
// typed schemas do not declare, and applies the same deterministic pre-sort
// as Decode. Raw emission writes these records as fetched.
func DecodeRaw(payloads map[string]json.RawMessage) (map[string][]any, error) {
	out := make(map[string][]any, len(Collections))
	for _, name := range Collections {
		payload, ok := payloads[name]
		if !ok {
			return nil, fmt.Errorf("collection %q missing", name)
		}
		dec := json.NewDecoder(bytes.NewReader(payload))
		dec.UseNumber()
		items := []any{}
		if err := dec.Decode(&items); err != nil {
			return nil, fmt.Errorf("decode collection %q: %w", name, err)
		}
		sortByID(items, func(item any) (ids.ID, bool) {
			record, ok := item.(map[string]any)
			if !ok {
				return 0, false
			}
			return ids.Normalize(record["id"])
		})
		out[name] = items
	}
	return out, nil
}

// Collection returns the named typed collection, for callers that report
// per-collection counts.
func (ds *Dataset) Collection(name string) (any, bool) {
	switch name {
	case "articles":
		return ds.Articles, true
	case "content":
		return ds.Content, true
	case "documents":
		return ds.Documents, true
	case "events":
		return ds.Events, true
	case "locations":
		return ds.Locations, true
	case "menus":
		return ds.Menus, true
	case "organizations":
		return ds.Organizations, true
	case "speakers":
		return ds.Speakers, true
	case "tagtypes":
		return ds.TagTypes, true
	default:
		return nil, false
	}
}
