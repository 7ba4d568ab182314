// Package views produces the read-optimized, pre-joined payloads the client
// renders directly: event cards, organization cards bucketed by tag, people
// and content cards, the tag-type browse groups, the document list, and the
// unified search list. All foreign-key joins happen here exactly once.
package views

import (
	"fmt"
	"sort"
	"strings"

	"github.com/confpack/confpack/internal/compare"
	"github.com/confpack/confpack/internal/entity"
	"github.com/confpack/confpack/internal/ids"
)

// TagSummary is the display subset of a tag embedded in cards.
type TagSummary struct {
	ID              ids.ID `json:"id"`
	Label           string `json:"label"`
	ColorBackground string `json:"colorBackground"`
	ColorForeground string `json:"colorForeground"`
}

// EventCard is one fully joined schedule entry. Color, location, and
// speakers are null rather than absent so the client can bind them without
// presence checks.
type EventCard struct {
	ID        ids.ID       `json:"id"`
	ContentID *ids.ID      `json:"contentId"`
	Title     string       `json:"title"`
	Begin     string       `json:"begin"`
	End       string       `json:"end"`
	Color     *string      `json:"color"`
	Location  *string      `json:"location"`
	Speakers  *string      `json:"speakers"`
	Tags      []TagSummary `json:"tags"`
}

// OrgCard is the display subset of an organization.
type OrgCard struct {
	ID      ids.ID `json:"id"`
	Name    string `json:"name"`
	LogoURL string `json:"logoUrl,omitempty"`
}

// PersonCard is the display subset of a person.
type PersonCard struct {
	ID        ids.ID `json:"id"`
	Name      string `json:"name"`
	Title     string `json:"title,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// BrowseTag is a tag inside a browse group, carrying its sort order so the
// client can re-sort after filtering.
type BrowseTag struct {
	ID              ids.ID `json:"id"`
	Label           string `json:"label"`
	ColorBackground string `json:"colorBackground"`
	ColorForeground string `json:"colorForeground"`
	SortOrder       *int   `json:"sortOrder"`
}

// BrowseGroup is one browsable tag type with its tags.
type BrowseGroup struct {
	ID        ids.ID      `json:"id"`
	Label     string      `json:"label"`
	Category  string      `json:"category"`
	SortOrder *int        `json:"sortOrder"`
	Tags      []BrowseTag `json:"tags"`
}

// DocRow is one document-list entry. UpdatedAtMs defaults to 0 so the
// descending sort is total.
type DocRow struct {
	ID          ids.ID  `json:"id"`
	TitleText   *string `json:"titleText"`
	UpdatedAtMs int64   `json:"updatedAtMs"`
}

// ContentCard is the display subset of a content item.
type ContentCard struct {
	ID    ids.ID       `json:"id"`
	Title string       `json:"title"`
	Tags  []TagSummary `json:"tags"`
}

// SearchEntry is one row of the unified search list.
type SearchEntry struct {
	ID             ids.ID `json:"id"`
	Text           string `json:"text"`
	Type           string `json:"type"`
	NormalizedText string `json:"normalizedText"`
}

// Views bundles every view payload, keyed the way they are written out.
type Views struct {
	EventCardsByID     map[string]EventCard `json:"eventCardsById"`
	OrganizationsCards map[string][]OrgCard `json:"organizationsCards"`
	PeopleCards        []PersonCard         `json:"peopleCards"`
	TagTypesBrowse     []BrowseGroup        `json:"tagTypesBrowse"`
	DocumentsList      []DocRow             `json:"documentsList"`
	ContentCards       []ContentCard        `json:"contentCards"`
	SearchList         []SearchEntry        `json:"searchList"`
}

// Files returns the views keyed by output file name.
func (v *Views) Files() map[string]any {
	return map[string]any{
		"eventCardsById":     v.EventCardsByID,
		"organizationsCards": v.OrganizationsCards,
		"peopleCards":        v.PeopleCards,
		"tagTypesBrowse":     v.TagTypesBrowse,
		"documentsList":      v.DocumentsList,
		"contentCards":       v.ContentCards,
		"searchList":         v.SearchList,
	}
}

// UncategorizedBucket is the reserved organization bucket for records with
// no tags.
const UncategorizedBucket = "uncategorized"

// Build derives every view from the entity stores.
func Build(ents *entity.Entities) (*Views, error) {
	if ents == nil {
		return nil, fmt.Errorf("view build requires entity stores")
	}
	return &Views{
		EventCardsByID:     buildEventCards(ents),
		OrganizationsCards: buildOrganizationsCards(ents),
		PeopleCards:        buildPeopleCards(ents),
		TagTypesBrowse:     buildTagTypesBrowse(ents),
		DocumentsList:      buildDocumentsList(ents),
		ContentCards:       buildContentCards(ents),
		SearchList:         buildSearchList(ents),
	}, nil
}

// tagSummaries resolves tag ids against the tag store and returns display
// summaries in the system-wide tag order.
func tagSummaries(ents *entity.Entities, tagIDs []ids.ID) []TagSummary {
	resolved := make([]entity.Tag, 0, len(tagIDs))
	for _, id := range tagIDs {
		if tag, ok := ents.Tags.Get(id); ok {
			resolved = append(resolved, tag)
		}
	}
	sort.SliceStable(resolved, func(i, j int) bool {
		return entity.CompareTags(resolved[i], resolved[j]) < 0
	})
	out := make([]TagSummary, len(resolved))
	for i, tag := range resolved {
		out[i] = TagSummary{
			ID:              tag.ID,
			Label:           tag.Label,
			ColorBackground: tag.ColorBackground,
			ColorForeground: tag.ColorForeground,
		}
	}
	return out
}

func buildEventCards(ents *entity.Entities) map[string]EventCard {
	cards := make(map[string]EventCard, ents.Events.Len())
	for _, eventID := range ents.Events.AllIDs {
		ev, ok := ents.Events.Get(eventID)
		if !ok {
			continue
		}
		card := EventCard{
			ID:        ev.ID,
			ContentID: ev.ContentID,
			Title:     ev.Title,
			Begin:     ev.Begin,
			End:       ev.End,
			Tags:      tagSummaries(ents, ev.TagIDs),
		}
		if ev.Color != "" {
			card.Color = &ev.Color
		}
		if ev.LocationID != nil {
			if loc, ok := ents.Locations.Get(*ev.LocationID); ok {
				card.Location = &loc.Name
			}
		}
		if joined := joinNames(speakerNames(ents, ev)); joined != "" {
			card.Speakers = &joined
		}
		cards[ev.ID.String()] = card
	}
	return cards
}

// speakerNames collects the display names behind both speaker and attendee
// roles, deduplicated by name in first-seen order.
func speakerNames(ents *entity.Entities, ev entity.Event) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, list := range [][]ids.ID{ev.SpeakerIDs, ev.PersonIDs} {
		for _, id := range list {
			person, ok := ents.People.Get(id)
			if !ok || person.Name == "" {
				continue
			}
			if _, dup := seen[person.Name]; dup {
				continue
			}
			seen[person.Name] = struct{}{}
			names = append(names, person.Name)
		}
	}
	return names
}

// joinNames renders a human-readable conjunction list: "A", "A and B",
// "A, B, and C".
func joinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + ", and " + names[len(names)-1]
	}
}

func buildOrganizationsCards(ents *entity.Entities) map[string][]OrgCard {
	type taggedCard struct {
		card   OrgCard
		tagIDs []ids.ID
	}
	list := make([]taggedCard, 0, ents.Organizations.Len())
	for _, orgID := range ents.Organizations.AllIDs {
		org, ok := ents.Organizations.Get(orgID)
		if !ok {
			continue
		}
		list = append(list, taggedCard{
			card:   OrgCard{ID: org.ID, Name: org.Name, LogoURL: org.LogoURL},
			tagIDs: org.TagIDs,
		})
	}
	sort.SliceStable(list, func(i, j int) bool {
		if c := compare.Base(list[i].card.Name, list[j].card.Name); c != 0 {
			return c < 0
		}
		return list[i].card.ID < list[j].card.ID
	})

	buckets := make(map[string][]OrgCard)
	for _, tc := range list {
		if len(tc.tagIDs) == 0 {
			buckets[UncategorizedBucket] = append(buckets[UncategorizedBucket], tc.card)
			continue
		}
		for _, tagID := range tc.tagIDs {
			key := tagID.String()
			buckets[key] = append(buckets[key], tc.card)
		}
	}
	return buckets
}

func buildPeopleCards(ents *entity.Entities) []PersonCard {
	cards := make([]PersonCard, 0, ents.People.Len())
	for _, personID := range ents.People.AllIDs {
		person, ok := ents.People.Get(personID)
		if !ok {
			continue
		}
		cards = append(cards, PersonCard{
			ID:        person.ID,
			Name:      person.Name,
			Title:     person.Title,
			AvatarURL: person.AvatarURL,
		})
	}
	sort.SliceStable(cards, func(i, j int) bool {
		if c := compare.Base(cards[i].Name, cards[j].Name); c != 0 {
			return c < 0
		}
		return cards[i].ID < cards[j].ID
	})
	return cards
}

func buildTagTypesBrowse(ents *entity.Entities) []BrowseGroup {
	tagsByType := make(map[ids.ID][]entity.Tag)
	for _, tagID := range ents.Tags.AllIDs {
		tag, ok := ents.Tags.Get(tagID)
		if !ok || tag.TagTypeID == nil {
			continue
		}
		tagsByType[*tag.TagTypeID] = append(tagsByType[*tag.TagTypeID], tag)
	}

	groups := make([]BrowseGroup, 0)
	for _, typeID := range ents.TagTypes.AllIDs {
		tagType, ok := ents.TagTypes.Get(typeID)
		if !ok || !tagType.IsBrowsable || tagType.Category != "content" {
			continue
		}
		tags := tagsByType[tagType.ID]
		if len(tags) == 0 {
			continue
		}
		sort.SliceStable(tags, func(i, j int) bool {
			return entity.CompareTags(tags[i], tags[j]) < 0
		})
		browseTags := make([]BrowseTag, len(tags))
		for i, tag := range tags {
			browseTags[i] = BrowseTag{
				ID:              tag.ID,
				Label:           tag.Label,
				ColorBackground: tag.ColorBackground,
				ColorForeground: tag.ColorForeground,
				SortOrder:       tag.SortOrder,
			}
		}
		groups = append(groups, BrowseGroup{
			ID:        tagType.ID,
			Label:     tagType.Label,
			Category:  tagType.Category,
			SortOrder: tagType.SortOrder,
			Tags:      browseTags,
		})
	}
	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		aOrder, bOrder := 0, 0
		if a.SortOrder != nil {
			aOrder = *a.SortOrder
		}
		if b.SortOrder != nil {
			bOrder = *b.SortOrder
		}
		if aOrder != bOrder {
			return aOrder < bOrder
		}
		if c := compare.Label(a.Label, b.Label); c != 0 {
			return c < 0
		}
		return a.ID < b.ID
	})
	return groups
}

func buildDocumentsList(ents *entity.Entities) []DocRow {
	rows := make([]DocRow, 0, ents.Documents.Len())
	for _, docID := range ents.Documents.AllIDs {
		doc, ok := ents.Documents.Get(docID)
		if !ok {
			continue
		}
		row := DocRow{ID: doc.ID}
		if doc.TitleText != "" {
			row.TitleText = &doc.TitleText
		}
		if doc.UpdatedAtMs != nil {
			row.UpdatedAtMs = *doc.UpdatedAtMs
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].UpdatedAtMs != rows[j].UpdatedAtMs {
			return rows[i].UpdatedAtMs > rows[j].UpdatedAtMs
		}
		return rows[i].ID < rows[j].ID
	})
	return rows
}

func buildContentCards(ents *entity.Entities) []ContentCard {
	cards := make([]ContentCard, 0, ents.Content.Len())
	for _, contentID := range ents.Content.AllIDs {
		item, ok := ents.Content.Get(contentID)
		if !ok {
			continue
		}
		cards = append(cards, ContentCard{
			ID:    item.ID,
			Title: item.Title,
			Tags:  tagSummaries(ents, item.TagIDs),
		})
	}
	sort.SliceStable(cards, func(i, j int) bool {
		if c := compare.Base(cards[i].Title, cards[j].Title); c != 0 {
			return c < 0
		}
		return cards[i].ID < cards[j].ID
	})
	return cards
}

func buildSearchList(ents *entity.Entities) []SearchEntry {
	entries := make([]SearchEntry, 0,
		ents.People.Len()+ents.Content.Len()+ents.Organizations.Len())
	push := func(id ids.ID, text, kind string) {
		entries = append(entries, SearchEntry{
			ID:             id,
			Text:           text,
			Type:           kind,
			NormalizedText: NormalizeForSearch(text),
		})
	}
	for _, id := range ents.People.AllIDs {
		if person, ok := ents.People.Get(id); ok {
			push(id, person.Name, "person")
		}
	}
	for _, id := range ents.Content.AllIDs {
		if item, ok := ents.Content.Get(id); ok {
			push(id, item.Title, "content")
		}
	}
	for _, id := range ents.Organizations.AllIDs {
		if org, ok := ents.Organizations.Get(id); ok {
			push(id, org.Name, "organization")
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if c := compare.Base(entries[i].Text, entries[j].Text); c != 0 {
			return c < 0
		}
		return entries[i].ID < entries[j].ID
	})
	return entries
}
