// Package derived builds the standalone artifacts that sit beside the
// entity pipeline: the site menu and the tag-label lookup map. Both read the
// raw collections directly, so they stay usable even when entity building
// fails.
package derived

import (
	"math"
	"sort"
	"strings"

	"github.com/confpack/confpack/internal/compare"
	"github.com/confpack/confpack/internal/ids"
	"github.com/confpack/confpack/internal/rawdata"
)

// MenuItem is one rendered navigation entry.
type MenuItem struct {
	ID                ids.ID   `json:"id"`
	Title             string   `json:"title"`
	Sort              float64  `json:"sort"`
	Fn                string   `json:"fn"`
	DocumentID        *ids.ID  `json:"documentId,omitempty"`
	MenuID            *ids.ID  `json:"menuId,omitempty"`
	TagIDs            []ids.ID `json:"tagIds,omitempty"`
	Icon              string   `json:"icon,omitempty"`
	ProhibitTagFilter bool     `json:"prohibitTagFilter,omitempty"`
}

// MenuSection is a non-primary menu demoted to a named section.
type MenuSection struct {
	ID    ids.ID     `json:"id"`
	Title string     `json:"title"`
	Items []MenuItem `json:"items"`
}

// SiteMenu is the derived navigation artifact. Primary holds the chosen
// main menu's items; every other menu with usable items becomes a section.
type SiteMenu struct {
	Version  int           `json:"version"`
	Primary  []MenuItem    `json:"primary"`
	Sections []MenuSection `json:"sections,omitempty"`
}

// BuildSiteMenu selects the primary menu and demotes the rest to sections.
// The primary is the menu literally titled "home" (case-insensitive), else
// the menu whose smallest item sort order is lowest, tie-broken by menu id.
func BuildSiteMenu(menus []rawdata.Menu) SiteMenu {
	out := SiteMenu{Version: 1, Primary: []MenuItem{}}
	if len(menus) == 0 {
		return out
	}

	primary := pickPrimaryMenu(menus)
	if primary >= 0 {
		out.Primary = buildMenuItems(menus[primary])
	}

	for i, menu := range menus {
		if i == primary {
			continue
		}
		id, ok := menu.ID.Norm()
		if !ok {
			continue
		}
		items := buildMenuItems(menu)
		if len(items) == 0 {
			continue
		}
		title := ""
		if menu.TitleText != nil {
			title = strings.TrimSpace(*menu.TitleText)
		}
		out.Sections = append(out.Sections, MenuSection{ID: id, Title: title, Items: items})
	}
	return out
}

// pickPrimaryMenu returns the index of the primary menu, or -1.
func pickPrimaryMenu(menus []rawdata.Menu) int {
	for i, menu := range menus {
		if menu.TitleText != nil &&
			strings.EqualFold(strings.TrimSpace(*menu.TitleText), "home") {
			return i
		}
	}

	best := -1
	bestSort, bestID := math.Inf(1), math.Inf(1)
	for i, menu := range menus {
		firstSort := firstItemSort(menu)
		menuID := math.Inf(1)
		if id, ok := menu.ID.Norm(); ok {
			menuID = float64(id)
		}
		if best < 0 || firstSort < bestSort ||
			(firstSort == bestSort && menuID < bestID) {
			best, bestSort, bestID = i, firstSort, menuID
		}
	}
	return best
}

// firstItemSort finds the smallest numeric item sort order in menu,
// +Inf when it has none.
func firstItemSort(menu rawdata.Menu) float64 {
	min := math.Inf(1)
	for _, item := range menu.Items {
		if v, ok := item.SortOrder.Value(); ok && v < min {
			min = v
		}
	}
	return min
}

// buildMenuItems keeps only items with a resolvable id, a non-empty title
// and function, and a numeric sort order, sorted by (sort, title, id).
func buildMenuItems(menu rawdata.Menu) []MenuItem {
	items := []MenuItem{}
	for _, raw := range menu.Items {
		id, ok := raw.ID.Norm()
		if !ok {
			continue
		}
		title, fn := "", ""
		if raw.TitleText != nil {
			title = strings.TrimSpace(*raw.TitleText)
		}
		if raw.Function != nil {
			fn = strings.TrimSpace(*raw.Function)
		}
		sortValue, numeric := raw.SortOrder.Value()
		if title == "" || fn == "" || !numeric {
			continue
		}

		item := MenuItem{ID: id, Title: title, Sort: sortValue, Fn: fn}
		if docID, ok := raw.DocumentID.Norm(); ok {
			item.DocumentID = ids.Ptr(docID)
		}
		if menuID, ok := raw.MenuID.Norm(); ok {
			item.MenuID = ids.Ptr(menuID)
		}
		item.TagIDs = dedupeInOrder(raw.AppliedTagIDs)
		if icon := strings.TrimSpace(raw.GoogleMaterialSymbol); icon != "" {
			item.Icon = icon
		} else if icon := strings.TrimSpace(raw.AppleSfSymbol); icon != "" {
			item.Icon = icon
		}
		item.ProhibitTagFilter = raw.ProhibitTagFilter == "Y"
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Sort != b.Sort {
			return a.Sort < b.Sort
		}
		if c := compare.Label(a.Title, b.Title); c != 0 {
			return c < 0
		}
		return a.ID < b.ID
	})
	return items
}

// dedupeInOrder normalizes raws and drops duplicates, preserving first
// occurrence. Menu tag filters keep their authored order.
func dedupeInOrder(raws []ids.Raw) []ids.ID {
	seen := make(map[ids.ID]struct{}, len(raws))
	var out []ids.ID
	for _, r := range raws {
		id, ok := r.Norm()
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
