// Package verify audits built artifacts against the pipeline's own
// contracts: store shape, referential closure, index ordering, and view
// field allow-lists. It works on generically decoded JSON so the same audit
// runs over in-memory build results and over files read back from disk.
package verify

import (
	"fmt"
	"sort"
	"strings"

	"github.com/confpack/confpack/internal/compare"
	"github.com/confpack/confpack/internal/dates"
	"github.com/confpack/confpack/internal/ids"
)

// Snapshot is one decoded build output: store/index/view name to decoded
// JSON value.
type Snapshot struct {
	Entities map[string]any
	Indexes  map[string]any
	Views    map[string]any
}

// Run walks the snapshot and returns every contract violation it finds.
// It never stops at the first problem; a failed release is easier to debug
// with the full list.
func Run(snap Snapshot) []string {
	v := &verifier{snap: snap}

	storeNames := make([]string, 0, len(snap.Entities))
	for name := range snap.Entities {
		storeNames = append(storeNames, name)
	}
	sort.Strings(storeNames)
	for _, name := range storeNames {
		v.checkStore(name, snap.Entities[name])
	}

	v.checkReferences()

	indexNames := make([]string, 0, len(snap.Indexes))
	for name := range snap.Indexes {
		indexNames = append(indexNames, name)
	}
	sort.Strings(indexNames)
	for _, name := range indexNames {
		v.checkIndex(name, snap.Indexes[name])
	}

	v.checkViews()
	return v.errors
}

// FormatIssues renders the first max issues plus a remainder count.
func FormatIssues(issues []string, max int) string {
	if len(issues) == 0 {
		return ""
	}
	shown := issues
	if max > 0 && len(issues) > max {
		shown = issues[:max]
	}
	out := strings.Join(shown, "\n")
	if rest := len(issues) - len(shown); rest > 0 {
		out += fmt.Sprintf("\n... and %d more", rest)
	}
	return out
}

type verifier struct {
	snap   Snapshot
	errors []string
}

func (v *verifier) errorf(format string, args ...any) {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
}

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func asArray(v any) ([]any, bool) {
	a, ok := v.([]any)
	return a, ok
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// asNumber extracts a numeric value from decoded JSON.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case interface{ Float64() (float64, error) }: // json.Number
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// storeOf fetches a named entity store from the snapshot.
func (v *verifier) storeOf(name string) (map[string]any, bool) {
	store, ok := asMap(v.snap.Entities[name])
	return store, ok
}

func byIDOf(store map[string]any) map[string]any {
	byID, _ := asMap(store["byId"])
	return byID
}

func (v *verifier) checkStore(name string, raw any) {
	store, ok := asMap(raw)
	if !ok {
		v.errorf("entities/%s missing allIds/byId", name)
		return
	}
	allIDs, okIDs := asArray(store["allIds"])
	byID, okByID := asMap(store["byId"])
	if !okIDs || !okByID {
		v.errorf("entities/%s missing allIds/byId", name)
		return
	}

	prev := ids.ID(0)
	seen := make(map[ids.ID]struct{}, len(allIDs))
	for i, rawID := range allIDs {
		id, ok := ids.Normalize(rawID)
		if !ok {
			v.errorf("entities/%s.allIds[%d] is not an id", name, i)
			return
		}
		if i > 0 && id <= prev {
			if id == prev {
				v.errorf("entities/%s.allIds contains duplicate %s", name, id)
			} else {
				v.errorf("entities/%s.allIds not sorted", name)
			}
			return
		}
		prev = id
		seen[id] = struct{}{}

		entry, ok := asMap(byID[id.String()])
		if !ok {
			v.errorf("entities/%s.byId missing %s", name, id)
			return
		}
		entryID, ok := ids.Normalize(entry["id"])
		if !ok || entryID != id {
			v.errorf("entities/%s.byId id mismatch for %s", name, id)
			return
		}
	}
	if len(byID) != len(allIDs) {
		v.errorf("entities/%s byId/allIds length mismatch", name)
	}
}

// resolvable reports whether every id in list exists as a key of byID.
func resolvable(list []any, byID map[string]any) (any, bool) {
	for _, rawID := range list {
		id, ok := ids.Normalize(rawID)
		if !ok {
			return rawID, false
		}
		if _, exists := byID[id.String()]; !exists {
			return rawID, false
		}
	}
	return nil, true
}

func fkTarget(entry map[string]any, field string, byID map[string]any) (any, bool) {
	raw, present := entry[field]
	if !present || raw == nil {
		return nil, true
	}
	id, ok := ids.Normalize(raw)
	if !ok {
		return raw, false
	}
	if _, exists := byID[id.String()]; !exists {
		return raw, false
	}
	return nil, true
}

func (v *verifier) checkReferences() {
	events, _ := v.storeOf("events")
	content, _ := v.storeOf("content")
	locations, _ := v.storeOf("locations")
	people, _ := v.storeOf("people")
	tags, _ := v.storeOf("tags")

	locationsByID := byIDOf(locations)
	peopleByID := byIDOf(people)
	tagsByID := byIDOf(tags)
	contentByID := byIDOf(content)

	for _, raw := range byIDOf(events) {
		event, ok := asMap(raw)
		if !ok {
			continue
		}
		if bad, ok := fkTarget(event, "locationId", locationsByID); !ok {
			v.errorf("events references missing location %v", bad)
			break
		}
		if bad, ok := fkTarget(event, "contentId", contentByID); !ok {
			v.errorf("events references missing content %v", bad)
			break
		}
		tagList, _ := asArray(event["tagIds"])
		if bad, ok := resolvable(tagList, tagsByID); !ok {
			v.errorf("events references missing tag %v", bad)
			return
		}
		speakerList, _ := asArray(event["speakerIds"])
		if bad, ok := resolvable(speakerList, peopleByID); !ok {
			v.errorf("events references missing speaker %v", bad)
			return
		}
		personList, _ := asArray(event["personIds"])
		if bad, ok := resolvable(personList, peopleByID); !ok {
			v.errorf("events references missing person %v", bad)
			return
		}
	}

	for _, raw := range byIDOf(content) {
		item, ok := asMap(raw)
		if !ok {
			continue
		}
		tagList, _ := asArray(item["tagIds"])
		if bad, ok := resolvable(tagList, tagsByID); !ok {
			v.errorf("content references missing tag %v", bad)
			return
		}
		peopleList, _ := asArray(item["people"])
		for _, rawRef := range peopleList {
			ref, ok := asMap(rawRef)
			if !ok {
				continue
			}
			id, idOK := ids.Normalize(ref["personId"])
			if !idOK {
				v.errorf("content references missing person %v", ref["personId"])
				return
			}
			if _, exists := peopleByID[id.String()]; !exists {
				v.errorf("content references missing person %s", id)
				return
			}
		}
	}
}

// eventStartSeconds resolves the ordering instant for an event id in the
// decoded events store. Unparseable starts order as 0.
func eventStartSeconds(eventsByID map[string]any, rawID any) int64 {
	id, ok := ids.Normalize(rawID)
	if !ok {
		return 0
	}
	event, ok := asMap(eventsByID[id.String()])
	if !ok {
		return 0
	}
	secs, ok := dates.UnixSeconds(asString(event["begin"]))
	if !ok {
		return 0
	}
	return secs
}

func idLess(a, b any) bool {
	idA, okA := ids.Normalize(a)
	idB, okB := ids.Normalize(b)
	if !okA || !okB {
		return false
	}
	return idA < idB
}

func (v *verifier) checkIndex(name string, raw any) {
	index, ok := asMap(raw)
	if !ok {
		v.errorf("indexes/%s is not a map", name)
		return
	}

	eventsStore, _ := v.storeOf("events")
	contentStore, _ := v.storeOf("content")
	eventsByID := byIDOf(eventsStore)
	contentByID := byIDOf(contentStore)

	lessEvents := func(a, b any) bool {
		sa, sb := eventStartSeconds(eventsByID, a), eventStartSeconds(eventsByID, b)
		if sa != sb {
			return sa < sb
		}
		return idLess(a, b)
	}
	lessContent := func(a, b any) bool {
		title := func(rawID any) string {
			id, ok := ids.Normalize(rawID)
			if !ok {
				return ""
			}
			item, ok := asMap(contentByID[id.String()])
			if !ok {
				return ""
			}
			return asString(item["title"])
		}
		if c := compare.Base(title(a), title(b)); c != 0 {
			return c < 0
		}
		return idLess(a, b)
	}

	less := lessEvents
	if name == "contentByTag" {
		less = lessContent
	}

	keys := make([]string, 0, len(index))
	for key := range index {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		bucket, ok := asArray(index[key])
		if !ok {
			v.errorf("indexes/%s.%s is not an array", name, key)
			continue
		}
		for i := 1; i < len(bucket); i++ {
			if less(bucket[i], bucket[i-1]) {
				v.errorf("indexes/%s.%s not sorted", name, key)
				break
			}
		}
	}
}
