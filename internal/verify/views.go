package verify

import (
	"github.com/confpack/confpack/internal/compare"
	"github.com/confpack/confpack/internal/ids"
)

// Field allow-lists per view payload. The verifier treats any key outside
// these sets as internal leakage.
var (
	allowedEventCardKeys = keySet("id", "contentId", "title", "begin", "end",
		"color", "location", "speakers", "tags")
	requiredEventCardKeys = []string{"id", "contentId", "title", "begin", "end",
		"color", "location", "speakers", "tags"}
	allowedCardTagKeys = keySet("id", "label", "colorBackground", "colorForeground")

	allowedOrgCardKeys    = keySet("id", "name", "logoUrl")
	allowedPersonCardKeys = keySet("id", "name", "title", "avatarUrl")

	allowedBrowseGroupKeys = keySet("id", "label", "category", "sortOrder", "tags")
	allowedBrowseTagKeys   = keySet("id", "label", "colorBackground", "colorForeground", "sortOrder")

	allowedDocRowKeys  = keySet("id", "titleText", "updatedAtMs")
	requiredDocRowKeys = []string{"id", "titleText", "updatedAtMs"}

	allowedContentCardKeys = keySet("id", "title", "tags")
	allowedSearchEntryKeys = keySet("id", "text", "type", "normalizedText")
)

func keySet(keys ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		set[key] = struct{}{}
	}
	return set
}

func keysAreSubset(m map[string]any, allowed map[string]struct{}) bool {
	for key := range m {
		if _, ok := allowed[key]; !ok {
			return false
		}
	}
	return true
}

func isSorted(list []any, less func(a, b any) bool) bool {
	for i := 1; i < len(list); i++ {
		if less(list[i], list[i-1]) {
			return false
		}
	}
	return true
}

// tagOrderLess is the system-wide tag ordering, resolved against the tags
// store for sort orders the embedded summaries do not carry.
func (v *verifier) tagOrderLess(a, b any) bool {
	tagsStore, _ := v.storeOf("tags")
	tagsByID := byIDOf(tagsStore)
	orderOf := func(raw any) float64 {
		tag, ok := asMap(raw)
		if !ok {
			return 0
		}
		id, ok := ids.Normalize(tag["id"])
		if !ok {
			return 0
		}
		stored, ok := asMap(tagsByID[id.String()])
		if !ok {
			return 0
		}
		order, _ := asNumber(stored["sortOrder"])
		return order
	}
	labelOf := func(raw any) string {
		tag, _ := asMap(raw)
		return asString(tag["label"])
	}
	aOrder, bOrder := orderOf(a), orderOf(b)
	if aOrder != bOrder {
		return aOrder < bOrder
	}
	if c := compare.Label(labelOf(a), labelOf(b)); c != 0 {
		return c < 0
	}
	aMap, _ := asMap(a)
	bMap, _ := asMap(b)
	return idLess(aMap["id"], bMap["id"])
}

// ciNameIDLess orders card maps by a case-insensitive string field then id.
func ciNameIDLess(field string) func(a, b any) bool {
	return func(a, b any) bool {
		aMap, _ := asMap(a)
		bMap, _ := asMap(b)
		if c := compare.Base(asString(aMap[field]), asString(bMap[field])); c != 0 {
			return c < 0
		}
		return idLess(aMap["id"], bMap["id"])
	}
}

func (v *verifier) checkViews() {
	v.checkEventCards()
	v.checkOrganizationsCards()
	v.checkPeopleCards()
	v.checkTagTypesBrowse()
	v.checkDocumentsList()
	v.checkContentCards()
	v.checkSearchList()
}

// checkTagList audits one embedded tag summary list.
func (v *verifier) checkTagList(context string, raw any, allowed map[string]struct{}) bool {
	tags, ok := asArray(raw)
	if !ok {
		v.errorf("%s.tags not array", context)
		return false
	}
	if !isSorted(tags, v.tagOrderLess) {
		v.errorf("%s.tags not sorted", context)
		return false
	}
	for _, rawTag := range tags {
		tag, ok := asMap(rawTag)
		if !ok || tag["id"] == nil || asString(tag["label"]) == "" {
			v.errorf("%s.tags missing id/label", context)
			return false
		}
		if !keysAreSubset(tag, allowed) {
			v.errorf("%s.tags has extra keys", context)
			return false
		}
	}
	return true
}

func (v *verifier) checkEventCards() {
	cards, ok := asMap(v.snap.Views["eventCardsById"])
	if !ok {
		v.errorf("views/eventCardsById is not a map")
		return
	}
	if _, leaked := cards["allIds"]; leaked {
		v.errorf("views/eventCardsById contains allIds (should be byId map only)")
	}
	for key, rawCard := range cards {
		card, ok := asMap(rawCard)
		if !ok {
			v.errorf("views/eventCardsById entry %s is not a map", key)
			break
		}
		id, idOK := ids.Normalize(card["id"])
		if !idOK || id.String() != key {
			v.errorf("views/eventCardsById missing id for %s", key)
			break
		}
		missing := false
		for _, required := range requiredEventCardKeys {
			if _, present := card[required]; !present {
				v.errorf("views/eventCardsById missing %s for %s", required, key)
				missing = true
				break
			}
		}
		if missing {
			break
		}
		if !keysAreSubset(card, allowedEventCardKeys) {
			v.errorf("views/eventCardsById has extra keys for %s", key)
			break
		}
		if !v.checkTagList("views/eventCardsById", card["tags"], allowedCardTagKeys) {
			break
		}
	}
}

func (v *verifier) checkOrganizationsCards() {
	buckets, ok := asMap(v.snap.Views["organizationsCards"])
	if !ok {
		v.errorf("views/organizationsCards not map")
		return
	}
	for tagKey, rawList := range buckets {
		list, ok := asArray(rawList)
		if !ok {
			v.errorf("views/organizationsCards.%s not array", tagKey)
			return
		}
		if !isSorted(list, ciNameIDLess("name")) {
			v.errorf("views/organizationsCards.%s not sorted", tagKey)
			return
		}
		seen := make(map[ids.ID]struct{}, len(list))
		for _, rawCard := range list {
			card, ok := asMap(rawCard)
			if !ok || card["id"] == nil || card["name"] == nil {
				v.errorf("views/organizationsCards missing id/name")
				return
			}
			if id, ok := ids.Normalize(card["id"]); ok {
				if _, dup := seen[id]; dup {
					v.errorf("views/organizationsCards has duplicate id in group")
					return
				}
				seen[id] = struct{}{}
			}
			if !keysAreSubset(card, allowedOrgCardKeys) {
				v.errorf("views/organizationsCards has extra keys")
				return
			}
		}
	}
}

func (v *verifier) checkPeopleCards() {
	cards, ok := asArray(v.snap.Views["peopleCards"])
	if !ok {
		v.errorf("views/peopleCards not array")
		return
	}
	if !isSorted(cards, ciNameIDLess("name")) {
		v.errorf("views/peopleCards not sorted")
		return
	}
	for _, rawCard := range cards {
		card, ok := asMap(rawCard)
		if !ok || card["id"] == nil || card["name"] == nil {
			v.errorf("views/peopleCards missing id/name")
			return
		}
		if !keysAreSubset(card, allowedPersonCardKeys) {
			v.errorf("views/peopleCards has extra keys")
			return
		}
	}
}

func (v *verifier) checkTagTypesBrowse() {
	groups, ok := asArray(v.snap.Views["tagTypesBrowse"])
	if !ok {
		v.errorf("views/tagTypesBrowse not array")
		return
	}
	groupLess := func(a, b any) bool {
		aMap, _ := asMap(a)
		bMap, _ := asMap(b)
		aOrder, _ := asNumber(aMap["sortOrder"])
		bOrder, _ := asNumber(bMap["sortOrder"])
		if aOrder != bOrder {
			return aOrder < bOrder
		}
		if c := compare.Label(asString(aMap["label"]), asString(bMap["label"])); c != 0 {
			return c < 0
		}
		return idLess(aMap["id"], bMap["id"])
	}
	if !isSorted(groups, groupLess) {
		v.errorf("views/tagTypesBrowse not sorted")
	}
	for _, rawGroup := range groups {
		group, ok := asMap(rawGroup)
		if !ok || group["id"] == nil || group["label"] == nil {
			v.errorf("views/tagTypesBrowse missing id/label")
			return
		}
		if _, present := group["tags"]; !present {
			v.errorf("views/tagTypesBrowse missing tags")
			return
		}
		if !keysAreSubset(group, allowedBrowseGroupKeys) {
			v.errorf("views/tagTypesBrowse has extra keys")
			return
		}
		if !v.checkTagList("views/tagTypesBrowse", group["tags"], allowedBrowseTagKeys) {
			return
		}
	}
}

func (v *verifier) checkDocumentsList() {
	rows, ok := asArray(v.snap.Views["documentsList"])
	if !ok {
		v.errorf("views/documentsList not array")
		return
	}
	rowLess := func(a, b any) bool {
		aMap, _ := asMap(a)
		bMap, _ := asMap(b)
		aMs, _ := asNumber(aMap["updatedAtMs"])
		bMs, _ := asNumber(bMap["updatedAtMs"])
		if aMs != bMs {
			return aMs > bMs
		}
		return idLess(aMap["id"], bMap["id"])
	}
	if !isSorted(rows, rowLess) {
		v.errorf("views/documentsList not sorted")
		return
	}
	for _, rawRow := range rows {
		row, ok := asMap(rawRow)
		if !ok || row["id"] == nil {
			v.errorf("views/documentsList missing id")
			return
		}
		for _, required := range requiredDocRowKeys {
			if _, present := row[required]; !present {
				v.errorf("views/documentsList missing required keys")
				return
			}
		}
		if !keysAreSubset(row, allowedDocRowKeys) {
			v.errorf("views/documentsList has extra keys")
			return
		}
	}
}

func (v *verifier) checkContentCards() {
	cards, ok := asArray(v.snap.Views["contentCards"])
	if !ok {
		v.errorf("views/contentCards not array")
		return
	}
	if !isSorted(cards, ciNameIDLess("title")) {
		v.errorf("views/contentCards not sorted")
	}
	for _, rawCard := range cards {
		card, ok := asMap(rawCard)
		if !ok || card["id"] == nil || card["title"] == nil {
			v.errorf("views/contentCards missing id/title")
			return
		}
		if _, present := card["tags"]; !present {
			v.errorf("views/contentCards missing tags")
			return
		}
		if !keysAreSubset(card, allowedContentCardKeys) {
			v.errorf("views/contentCards has extra keys")
			return
		}
		if !v.checkTagList("views/contentCards", card["tags"], allowedCardTagKeys) {
			return
		}
	}
}

func (v *verifier) checkSearchList() {
	entries, ok := asArray(v.snap.Views["searchList"])
	if !ok {
		v.errorf("views/searchList not array")
		return
	}
	if !isSorted(entries, ciNameIDLess("text")) {
		v.errorf("views/searchList not sorted")
	}
	for _, rawEntry := range entries {
		entry, ok := asMap(rawEntry)
		if !ok || entry["id"] == nil || entry["type"] == nil {
			v.errorf("views/searchList missing id/type")
			return
		}
		if _, present := entry["normalizedText"]; !present {
			v.errorf("views/searchList missing normalizedText")
			return
		}
		if !keysAreSubset(entry, allowedSearchEntryKeys) {
			v.errorf("views/searchList has extra keys")
			return
		}
	}
}
