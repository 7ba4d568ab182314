// Package indexes derives the secondary one-to-many indexes over the entity
// stores: events grouped by day, start minute, location, person, and tag,
// plus content grouped by tag. Buckets are filled first and sorted once at
// the end, never incrementally.
package indexes

import (
	"fmt"
	"sort"

	"github.com/confpack/confpack/internal/compare"
	"github.com/confpack/confpack/internal/dates"
	"github.com/confpack/confpack/internal/entity"
	"github.com/confpack/confpack/internal/ids"
)

// Index maps a secondary key to a sorted bucket of entity ids. Keys are
// strings because day and minute buckets share the structure with id-keyed
// buckets.
type Index map[string][]ids.ID

// Indexes bundles every derived index, keyed the way they are written out.
type Indexes struct {
	EventsByDay         Index `json:"eventsByDay"`
	EventsByStartMinute Index `json:"eventsByStartMinute"`
	EventsByLocation    Index `json:"eventsByLocation"`
	EventsByPerson      Index `json:"eventsByPerson"`
	EventsByTag         Index `json:"eventsByTag"`
	ContentByTag        Index `json:"contentByTag"`
}

// Files returns the indexes keyed by output file name.
func (ix *Indexes) Files() map[string]any {
	return map[string]any{
		"eventsByDay":         ix.EventsByDay,
		"eventsByStartMinute": ix.EventsByStartMinute,
		"eventsByLocation":    ix.EventsByLocation,
		"eventsByPerson":      ix.EventsByPerson,
		"eventsByTag":         ix.EventsByTag,
		"contentByTag":        ix.ContentByTag,
	}
}

func add(ix Index, key string, id ids.ID) {
	if key == "" {
		return
	}
	ix[key] = append(ix[key], id)
}

// Build derives all indexes for the given conference time zone. It errors if
// the stores it reads lack their backing maps, which would mean the caller
// skipped the store builder.
func Build(ents *entity.Entities, zones *dates.Zones, timeZone string) (*Indexes, error) {
	if ents == nil {
		return nil, fmt.Errorf("index build requires entity stores")
	}
	if ents.Events.ByID == nil || ents.Content.ByID == nil {
		return nil, fmt.Errorf("index build requires built stores, got unbuilt byId")
	}

	ix := &Indexes{
		EventsByDay:         make(Index),
		EventsByStartMinute: make(Index),
		EventsByLocation:    make(Index),
		EventsByPerson:      make(Index),
		EventsByTag:         make(Index),
		ContentByTag:        make(Index),
	}

	for _, eventID := range ents.Events.AllIDs {
		ev, ok := ents.Events.Get(eventID)
		if !ok {
			continue
		}

		add(ix.EventsByDay, zones.DayKey(ev.Begin, timeZone), eventID)
		add(ix.EventsByStartMinute, zones.MinuteKey(ev.Begin, timeZone), eventID)

		if ev.LocationID != nil {
			add(ix.EventsByLocation, ev.LocationID.String(), eventID)
		}

		for _, personID := range mergePersonIDs(ev) {
			add(ix.EventsByPerson, personID.String(), eventID)
		}

		for _, tagID := range ev.TagIDs {
			add(ix.EventsByTag, tagID.String(), eventID)
		}
	}

	for _, contentID := range ents.Content.AllIDs {
		item, ok := ents.Content.Get(contentID)
		if !ok {
			continue
		}
		for _, tagID := range item.TagIDs {
			add(ix.ContentByTag, tagID.String(), contentID)
		}
	}

	sortByEventStart(ix.EventsByDay, ents)
	sortByEventStart(ix.EventsByStartMinute, ents)
	sortByEventStart(ix.EventsByLocation, ents)
	sortByEventStart(ix.EventsByPerson, ents)
	sortByEventStart(ix.EventsByTag, ents)
	sortByContentTitle(ix.ContentByTag, ents)

	return ix, nil
}

// mergePersonIDs unions an event's speaker and attendee roles into one
// ascending id list.
func mergePersonIDs(ev entity.Event) []ids.ID {
	seen := make(map[ids.ID]struct{}, len(ev.SpeakerIDs)+len(ev.PersonIDs))
	var merged []ids.ID
	for _, list := range [][]ids.ID{ev.SpeakerIDs, ev.PersonIDs} {
		for _, id := range list {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			merged = append(merged, id)
		}
	}
	ids.SortAscending(merged)
	return merged
}

// eventStartSeconds resolves an event's start instant for bucket ordering.
// Events with no parseable start sort first, as instant 0.
func eventStartSeconds(ents *entity.Entities, id ids.ID) int64 {
	ev, ok := ents.Events.Get(id)
	if !ok {
		return 0
	}
	secs, ok := dates.UnixSeconds(ev.Begin)
	if !ok {
		return 0
	}
	return secs
}

func sortByEventStart(ix Index, ents *entity.Entities) {
	for key, bucket := range ix {
		sort.SliceStable(bucket, func(i, j int) bool {
			a, b := eventStartSeconds(ents, bucket[i]), eventStartSeconds(ents, bucket[j])
			if a != b {
				return a < b
			}
			return bucket[i] < bucket[j]
		})
		ix[key] = bucket
	}
}

func sortByContentTitle(ix Index, ents *entity.Entities) {
	title := func(id ids.ID) string {
		item, ok := ents.Content.Get(id)
		if !ok {
			return ""
		}
		return item.Title
	}
	for key, bucket := range ix {
		sort.SliceStable(bucket, func(i, j int) bool {
			if c := compare.Base(title(bucket[i]), title(bucket[j])); c != 0 {
				return c < 0
			}
			return bucket[i] < bucket[j]
		})
		ix[key] = bucket
	}
}
