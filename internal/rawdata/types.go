// Package rawdata declares the explicit input schema for each raw
// collection. Records arrive duck-typed from the backend; these structs are
// the pipeline boundary where that shape becomes explicit. Identifier and
// timestamp fields use the tolerant ids.Raw and Timestamp types; everything
// past this package works with normalized values only.
package rawdata

import "github.com/confpack/confpack/internal/ids"

// Event is a raw schedule event.
type Event struct {
	ID        ids.Raw        `json:"id"`
	Title     string         `json:"title"`
	ContentID ids.Raw        `json:"content_id"`
	BeginTSZ  string         `json:"begin_tsz"`
	EndTSZ    string         `json:"end_tsz"`
	Begin     string         `json:"begin"`
	End       string         `json:"end"`
	Location  *EventLocation `json:"location"`
	LocationID ids.Raw       `json:"location_id"`
	Speakers  []EventSpeaker `json:"speakers"`
	People    []PersonRef    `json:"people"`
	TagIDs    []ids.Raw      `json:"tag_ids"`
	Type      *EventType     `json:"type"`
}

// EventLocation is the embedded location stub some backends attach to events.
type EventLocation struct {
	ID   ids.Raw `json:"id"`
	Name string  `json:"name"`
}

// EventSpeaker is the embedded speaker stub on an event.
type EventSpeaker struct {
	ID   ids.Raw `json:"id"`
	Name string  `json:"name"`
}

// PersonRef links a person to an event or content item with a display order.
type PersonRef struct {
	PersonID  ids.Raw `json:"person_id"`
	SortOrder *int    `json:"sort_order"`
}

// EventType carries the display color and category of an event.
type EventType struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Content is a raw content item (a talk, workshop, or similar).
type Content struct {
	ID       ids.Raw     `json:"id"`
	Title    string      `json:"title"`
	TagIDs   []ids.Raw   `json:"tag_ids"`
	People   []PersonRef `json:"people"`
	Sessions []Session   `json:"sessions"`
}

// Session is one scheduled occurrence of a content item.
type Session struct {
	SessionID ids.Raw `json:"session_id"`
}

// Person is a raw speaker profile.
type Person struct {
	ID           ids.Raw       `json:"id"`
	Name         string        `json:"name"`
	ContentIDs   []ids.Raw     `json:"content_ids"`
	Description  string        `json:"description"`
	Pronouns     string        `json:"pronouns"`
	Title        string        `json:"title"`
	Affiliations []Affiliation `json:"affiliations"`
	Avatar       *Media        `json:"avatar"`
	Links        []Link        `json:"links"`
}

// Affiliation ties a person to an organization.
type Affiliation struct {
	Organization string `json:"organization"`
	Title        string `json:"title"`
}

// Media is an uploaded asset reference.
type Media struct {
	URL string `json:"url"`
}

// Link is an external URL with display metadata.
type Link struct {
	SortOrder *int   `json:"sort_order,omitempty"`
	Title     string `json:"title,omitempty"`
	URL       string `json:"url,omitempty"`
}

// Location is a raw venue location; ParentID nests rooms under areas.
type Location struct {
	ID        ids.Raw `json:"id"`
	Name      string  `json:"name"`
	ShortName string  `json:"short_name"`
	ParentID  ids.Raw `json:"parent_id"`
}

// TagType is a raw tag group; its tags arrive nested.
type TagType struct {
	ID          ids.Raw `json:"id"`
	Label       string  `json:"label"`
	Category    string  `json:"category"`
	SortOrder   *int    `json:"sort_order"`
	IsBrowsable bool    `json:"is_browsable"`
	Tags        []Tag   `json:"tags"`
}

// Tag is a raw tag inside a tag type.
type Tag struct {
	ID              ids.Raw `json:"id"`
	Label           string  `json:"label"`
	ColorBackground string  `json:"color_background"`
	ColorForeground string  `json:"color_foreground"`
	SortOrder       *int    `json:"sort_order"`
}

// Organization is a raw exhibitor/sponsor/community record.
type Organization struct {
	ID               ids.Raw `json:"id"`
	Name             string  `json:"name"`
	Description      *string `json:"description"`
	Links            []Link  `json:"links"`
	TagIDAsOrganizer ids.Raw `json:"tag_id_as_organizer"`
	Logo             *Media  `json:"logo"`
	TagIDs           []ids.Raw `json:"tag_ids"`
}

// Article is a raw news article.
type Article struct {
	ID           ids.Raw   `json:"id"`
	Name         string    `json:"name"`
	Text         *string   `json:"text"`
	UpdatedAt    Timestamp `json:"updated_at"`
	UpdatedTSZ   string    `json:"updated_tsz"`
	UpdatedAtStr string    `json:"updated_at_str"`
}

// Document is a raw long-form document.
type Document struct {
	ID           ids.Raw   `json:"id"`
	TitleText    *string   `json:"title_text"`
	BodyText     *string   `json:"body_text"`
	UpdatedAt    Timestamp `json:"updated_at"`
	UpdatedTSZ   string    `json:"updated_tsz"`
	UpdatedAtStr string    `json:"updated_at_str"`
}

// Menu is a raw navigation menu.
type Menu struct {
	ID        ids.Raw    `json:"id"`
	TitleText *string    `json:"title_text"`
	Items     []MenuItem `json:"items"`
}

// MenuItem is one raw entry of a menu. ProhibitTagFilter is the backend's
// literal "Y" flag, interpreted during entity building.
type MenuItem struct {
	ID                   ids.Raw   `json:"id"`
	TitleText            *string   `json:"title_text"`
	Function             *string   `json:"function"`
	SortOrder            Number    `json:"sort_order"`
	DocumentID           ids.Raw   `json:"document_id"`
	MenuID               ids.Raw   `json:"menu_id"`
	AppliedTagIDs        []ids.Raw `json:"applied_tag_ids"`
	GoogleMaterialSymbol string    `json:"google_materialsymbol"`
	AppleSfSymbol        string    `json:"apple_sfsymbol"`
	ProhibitTagFilter    string    `json:"prohibit_tag_filter"`
}
