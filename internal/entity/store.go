// Package entity builds the canonical entity stores from raw collections:
// per-kind record shaping, foreign-key resolution against sibling stores,
// and the id-sorted deduplicated store structure the client consumes.
package entity

import (
	"sort"

	"github.com/confpack/confpack/internal/ids"
)

// Model is anything that can live in a Store.
type Model interface {
	EntityID() ids.ID
}

// Store is the canonical representation of one record kind: an ascending,
// duplicate-free id list plus an id-keyed map. AllIDs and ByID are always
// 1:1; the verifier audits that invariant after every build.
type Store[T Model] struct {
	AllIDs []ids.ID      `json:"allIds"`
	ByID   map[ids.ID]T  `json:"byId"`
}

// BuildStore sorts items ascending by id (stable, so upstream duplicate ids
// resolve to the first-seen record) and inserts each id once.
func BuildStore[T Model](items []T) Store[T] {
	sorted := make([]T, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EntityID() < sorted[j].EntityID()
	})

	store := Store[T]{
		AllIDs: make([]ids.ID, 0, len(sorted)),
		ByID:   make(map[ids.ID]T, len(sorted)),
	}
	for _, item := range sorted {
		id := item.EntityID()
		if _, dup := store.ByID[id]; dup {
			continue
		}
		store.ByID[id] = item
		store.AllIDs = append(store.AllIDs, id)
	}
	return store
}

// Get returns the record for id.
func (s Store[T]) Get(id ids.ID) (T, bool) {
	item, ok := s.ByID[id]
	return item, ok
}

// Len returns the number of records in the store.
func (s Store[T]) Len() int {
	return len(s.AllIDs)
}
