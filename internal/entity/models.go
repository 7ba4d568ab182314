package entity

import (
	"github.com/confpack/confpack/internal/compare"
	"github.com/confpack/confpack/internal/ids"
	"github.com/confpack/confpack/internal/rawdata"
)

// Event is a normalized schedule event. ContentID and LocationID are
// resolved-or-null; the id lists are deduplicated, validated, and sorted.
type Event struct {
	ID         ids.ID   `json:"id"`
	Title      string   `json:"title"`
	ContentID  *ids.ID  `json:"contentId"`
	Begin      string   `json:"begin"`
	End        string   `json:"end"`
	LocationID *ids.ID  `json:"locationId"`
	SpeakerIDs []ids.ID `json:"speakerIds,omitempty"`
	PersonIDs  []ids.ID `json:"personIds,omitempty"`
	TagIDs     []ids.ID `json:"tagIds,omitempty"`
	Color      string   `json:"color,omitempty"`
}

func (e Event) EntityID() ids.ID { return e.ID }

// ContentPerson links a person to a content item with its display order.
type ContentPerson struct {
	PersonID  ids.ID `json:"personId"`
	SortOrder *int   `json:"sortOrder"`
}

// Content is a normalized content item.
type Content struct {
	ID       ids.ID          `json:"id"`
	Title    string          `json:"title"`
	Sessions []ids.ID        `json:"sessions"`
	TagIDs   []ids.ID        `json:"tagIds,omitempty"`
	People   []ContentPerson `json:"people,omitempty"`
}

func (c Content) EntityID() ids.ID { return c.ID }

// Person is a normalized speaker profile.
type Person struct {
	ID           ids.ID                `json:"id"`
	Name         string                `json:"name"`
	ContentIDs   []ids.ID              `json:"contentIds"`
	Description  string                `json:"description,omitempty"`
	Pronouns     string                `json:"pronouns,omitempty"`
	Title        string                `json:"title,omitempty"`
	Affiliations []rawdata.Affiliation `json:"affiliations,omitempty"`
	AvatarURL    string                `json:"avatarUrl,omitempty"`
	Links        []rawdata.Link        `json:"links,omitempty"`
}

func (p Person) EntityID() ids.ID { return p.ID }

// Location is a normalized venue location. ParentID is self-referential and
// deliberately unvalidated: a dangling parent only degrades nesting.
type Location struct {
	ID        ids.ID  `json:"id"`
	Name      string  `json:"name"`
	ShortName string  `json:"shortName,omitempty"`
	ParentID  *ids.ID `json:"parentId,omitempty"`
}

func (l Location) EntityID() ids.ID { return l.ID }

// Organization is a normalized exhibitor/sponsor/community record.
type Organization struct {
	ID               ids.ID         `json:"id"`
	Name             string         `json:"name"`
	Description      string         `json:"description"`
	Links            []rawdata.Link `json:"links"`
	TagIDAsOrganizer *ids.ID        `json:"tagIdAsOrganizer"`
	LogoURL          string         `json:"logoUrl,omitempty"`
	TagIDs           []ids.ID       `json:"tagIds,omitempty"`
}

func (o Organization) EntityID() ids.ID { return o.ID }

// Tag is a normalized tag, flattened out of its tag-type group.
type Tag struct {
	ID              ids.ID  `json:"id"`
	Label           string  `json:"label"`
	ColorBackground string  `json:"colorBackground"`
	ColorForeground string  `json:"colorForeground"`
	SortOrder       *int    `json:"sortOrder"`
	TagTypeID       *ids.ID `json:"tagTypeId"`
}

func (t Tag) EntityID() ids.ID { return t.ID }

// TagType is a normalized tag group.
type TagType struct {
	ID          ids.ID `json:"id"`
	Label       string `json:"label"`
	Category    string `json:"category,omitempty"`
	SortOrder   *int   `json:"sortOrder,omitempty"`
	IsBrowsable bool   `json:"isBrowsable"`
}

func (t TagType) EntityID() ids.ID { return t.ID }

// Article is a normalized news article.
type Article struct {
	ID          ids.ID `json:"id"`
	Name        string `json:"name"`
	Text        string `json:"text,omitempty"`
	UpdatedAtMs *int64 `json:"updatedAtMs,omitempty"`
}

func (a Article) EntityID() ids.ID { return a.ID }

// Document is a normalized long-form document.
type Document struct {
	ID          ids.ID `json:"id"`
	TitleText   string `json:"titleText,omitempty"`
	BodyText    string `json:"bodyText,omitempty"`
	UpdatedAtMs *int64 `json:"updatedAtMs,omitempty"`
}

func (d Document) EntityID() ids.ID { return d.ID }

// MenuItem is one normalized entry of a menu.
type MenuItem struct {
	ID                   ids.ID   `json:"id"`
	TitleText            string   `json:"titleText,omitempty"`
	Function             string   `json:"function,omitempty"`
	SortOrder            *float64 `json:"sortOrder"`
	DocumentID           *ids.ID  `json:"documentId,omitempty"`
	MenuID               *ids.ID  `json:"menuId,omitempty"`
	AppliedTagIDs        []ids.ID `json:"appliedTagIds,omitempty"`
	GoogleMaterialSymbol string   `json:"googleMaterialSymbol,omitempty"`
	AppleSfSymbol        string   `json:"appleSfSymbol,omitempty"`
	ProhibitTagFilter    bool     `json:"prohibitTagFilter"`
}

// Menu is a normalized navigation menu. Items keeps only entries with a
// resolvable id, ordered by (sortOrder, titleText, id).
type Menu struct {
	ID        ids.ID     `json:"id"`
	TitleText string     `json:"titleText,omitempty"`
	Items     []MenuItem `json:"items"`
}

func (m Menu) EntityID() ids.ID { return m.ID }

// Entities bundles one store per entity kind. Built once per run; the index
// and view builders are read-only consumers.
type Entities struct {
	Events        Store[Event]
	Content       Store[Content]
	People        Store[Person]
	Locations     Store[Location]
	Organizations Store[Organization]
	Tags          Store[Tag]
	TagTypes      Store[TagType]
	Articles      Store[Article]
	Documents     Store[Document]
	Menus         Store[Menu]
}

// Files returns the stores keyed by output file name.
func (e *Entities) Files() map[string]any {
	return map[string]any{
		"events":        e.Events,
		"content":       e.Content,
		"people":        e.People,
		"locations":     e.Locations,
		"organizations": e.Organizations,
		"tags":          e.Tags,
		"tagTypes":      e.TagTypes,
		"articles":      e.Articles,
		"documents":     e.Documents,
		"menus":         e.Menus,
	}
}

// CompareTags is the system-wide tag ordering contract: sort-order first
// (absent means 0), then case-insensitive label, then id. Every surface
// that displays or indexes a tag collection reproduces exactly this order.
func CompareTags(a, b Tag) int {
	aOrder, bOrder := 0, 0
	if a.SortOrder != nil {
		aOrder = *a.SortOrder
	}
	if b.SortOrder != nil {
		bOrder = *b.SortOrder
	}
	if aOrder != bOrder {
		return aOrder - bOrder
	}
	if c := compare.Label(a.Label, b.Label); c != 0 {
		return c
	}
	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	default:
		return 0
	}
}
