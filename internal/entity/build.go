package entity

import (
	"fmt"
	"math"
	"sort"

	"github.com/confpack/confpack/internal/compare"
	"github.com/confpack/confpack/internal/ids"
	"github.com/confpack/confpack/internal/rawdata"
)

// refSets are the reference snapshots the builders resolve foreign keys
// against. They are computed once per build pass, before any per-record
// work.
type refSets struct {
	locations ids.Set
	people    ids.Set
	tags      ids.Set
	content   ids.Set
}

func newRefSets(ds *rawdata.Dataset) refSets {
	locations := make(ids.Set, len(ds.Locations))
	for _, l := range ds.Locations {
		if id, ok := l.ID.Norm(); ok {
			locations[id] = struct{}{}
		}
	}
	people := make(ids.Set, len(ds.Speakers))
	for _, p := range ds.Speakers {
		if id, ok := p.ID.Norm(); ok {
			people[id] = struct{}{}
		}
	}
	tags := make(ids.Set)
	for _, group := range ds.TagTypes {
		for _, tag := range group.Tags {
			if id, ok := tag.ID.Norm(); ok {
				tags[id] = struct{}{}
			}
		}
	}
	content := make(ids.Set, len(ds.Content))
	for _, c := range ds.Content {
		if id, ok := c.ID.Norm(); ok {
			content[id] = struct{}{}
		}
	}
	return refSets{locations: locations, people: people, tags: tags, content: content}
}

// BuildAll shapes every raw collection into its entity store. Any record
// without a resolvable id is a structural error that aborts the whole
// build: it indicates a broken upstream producer, not a data-quality issue.
func BuildAll(ds *rawdata.Dataset) (*Entities, error) {
	if ds == nil {
		return nil, fmt.Errorf("entity build requires a dataset")
	}
	refs := newRefSets(ds)

	events, err := buildEvents(ds.Events, refs)
	if err != nil {
		return nil, err
	}
	content, err := buildContent(ds.Content, refs)
	if err != nil {
		return nil, err
	}
	people, err := buildPeople(ds.Speakers, refs)
	if err != nil {
		return nil, err
	}
	locations, err := buildLocations(ds.Locations)
	if err != nil {
		return nil, err
	}
	organizations, err := buildOrganizations(ds.Organizations, refs)
	if err != nil {
		return nil, err
	}
	tags, err := buildTags(ds.TagTypes)
	if err != nil {
		return nil, err
	}
	tagTypes, err := buildTagTypes(ds.TagTypes)
	if err != nil {
		return nil, err
	}
	articles, err := buildArticles(ds.Articles)
	if err != nil {
		return nil, err
	}
	documents, err := buildDocuments(ds.Documents)
	if err != nil {
		return nil, err
	}
	menus, err := buildMenus(ds.Menus)
	if err != nil {
		return nil, err
	}

	return &Entities{
		Events:        BuildStore(events),
		Content:       BuildStore(content),
		People:        BuildStore(people),
		Locations:     BuildStore(locations),
		Organizations: BuildStore(organizations),
		Tags:          BuildStore(tags),
		TagTypes:      BuildStore(tagTypes),
		Articles:      BuildStore(articles),
		Documents:     BuildStore(documents),
		Menus:         BuildStore(menus),
	}, nil
}

func buildEvents(raw []rawdata.Event, refs refSets) ([]Event, error) {
	out := make([]Event, 0, len(raw))
	for _, ev := range raw {
		id, ok := ev.ID.Norm()
		if !ok {
			return nil, fmt.Errorf("event missing id")
		}

		speakerRaws := make([]ids.Raw, 0, len(ev.Speakers))
		for _, s := range ev.Speakers {
			speakerRaws = append(speakerRaws, s.ID)
		}
		personRaws := make([]ids.Raw, 0, len(ev.People))
		for _, p := range ev.People {
			personRaws = append(personRaws, p.PersonID)
		}

		model := Event{
			ID:         id,
			Title:      ev.Title,
			ContentID:  refs.content.Resolve(ev.ContentID),
			Begin:      ev.BeginTSZ,
			End:        ev.EndTSZ,
			LocationID: resolveEventLocation(ev, refs.locations),
			SpeakerIDs: ids.UniqueResolved(speakerRaws, refs.people),
			PersonIDs:  ids.UniqueResolved(personRaws, refs.people),
			TagIDs:     ids.UniqueResolved(ev.TagIDs, refs.tags),
		}
		if ev.Type != nil {
			model.Color = ev.Type.Color
		}
		out = append(out, model)
	}
	return out, nil
}

// resolveEventLocation prefers the embedded location stub's id and falls
// back to the flat location_id field.
func resolveEventLocation(ev rawdata.Event, valid ids.Set) *ids.ID {
	if ev.Location != nil {
		if id, ok := ev.Location.ID.Norm(); ok {
			if valid.Has(id) {
				return ids.Ptr(id)
			}
			return nil
		}
	}
	return valid.Resolve(ev.LocationID)
}

func buildContent(raw []rawdata.Content, refs refSets) ([]Content, error) {
	out := make([]Content, 0, len(raw))
	for _, item := range raw {
		id, ok := item.ID.Norm()
		if !ok {
			return nil, fmt.Errorf("content item missing id")
		}

		sessionRaws := make([]ids.Raw, 0, len(item.Sessions))
		for _, s := range item.Sessions {
			sessionRaws = append(sessionRaws, s.SessionID)
		}

		model := Content{
			ID:       id,
			Title:    item.Title,
			Sessions: ids.UniqueResolved(sessionRaws, nil),
			TagIDs:   ids.UniqueResolved(item.TagIDs, refs.tags),
			People:   buildContentPeople(item.People, refs.people),
		}
		if model.Sessions == nil {
			model.Sessions = []ids.ID{}
		}
		out = append(out, model)
	}
	return out, nil
}

// buildContentPeople keeps only resolvable person refs, deduplicated, and
// orders them by declared sort order (absent sorts last) then id.
func buildContentPeople(raw []rawdata.PersonRef, valid ids.Set) []ContentPerson {
	orderByID := make(map[ids.ID]*int)
	var peopleIDs []ids.ID
	for _, ref := range raw {
		id, ok := ref.PersonID.Norm()
		if !ok || !valid.Has(id) {
			continue
		}
		if _, seen := orderByID[id]; seen {
			continue
		}
		orderByID[id] = ref.SortOrder
		peopleIDs = append(peopleIDs, id)
	}
	if len(peopleIDs) == 0 {
		return nil
	}
	sort.SliceStable(peopleIDs, func(i, j int) bool {
		a, b := orderByID[peopleIDs[i]], orderByID[peopleIDs[j]]
		switch {
		case a == nil && b == nil:
			return peopleIDs[i] < peopleIDs[j]
		case a == nil:
			return false
		case b == nil:
			return true
		case *a != *b:
			return *a < *b
		default:
			return peopleIDs[i] < peopleIDs[j]
		}
	})
	people := make([]ContentPerson, len(peopleIDs))
	for i, id := range peopleIDs {
		people[i] = ContentPerson{PersonID: id, SortOrder: orderByID[id]}
	}
	return people
}

func buildPeople(raw []rawdata.Person, refs refSets) ([]Person, error) {
	out := make([]Person, 0, len(raw))
	for _, p := range raw {
		id, ok := p.ID.Norm()
		if !ok {
			return nil, fmt.Errorf("person missing id")
		}
		model := Person{
			ID:          id,
			Name:        p.Name,
			ContentIDs:  ids.UniqueResolved(p.ContentIDs, refs.content),
			Description: p.Description,
			Pronouns:    p.Pronouns,
			Title:       p.Title,
		}
		if model.ContentIDs == nil {
			model.ContentIDs = []ids.ID{}
		}
		if len(p.Affiliations) > 0 {
			model.Affiliations = p.Affiliations
		}
		if p.Avatar != nil {
			model.AvatarURL = p.Avatar.URL
		}
		if len(p.Links) > 0 {
			model.Links = p.Links
		}
		out = append(out, model)
	}
	return out, nil
}

func buildLocations(raw []rawdata.Location) ([]Location, error) {
	out := make([]Location, 0, len(raw))
	for _, l := range raw {
		id, ok := l.ID.Norm()
		if !ok {
			return nil, fmt.Errorf("location missing id")
		}
		model := Location{ID: id, Name: l.Name, ShortName: l.ShortName}
		if parent, ok := l.ParentID.Norm(); ok {
			model.ParentID = ids.Ptr(parent)
		}
		out = append(out, model)
	}
	return out, nil
}

// organizationDescriptionPlaceholder fills records the backend ships
// without a description.
const organizationDescriptionPlaceholder = "TBD"

func buildOrganizations(raw []rawdata.Organization, refs refSets) ([]Organization, error) {
	out := make([]Organization, 0, len(raw))
	for _, org := range raw {
		id, ok := org.ID.Norm()
		if !ok {
			return nil, fmt.Errorf("organization missing id")
		}
		model := Organization{
			ID:          id,
			Name:        org.Name,
			Description: organizationDescriptionPlaceholder,
			Links:       org.Links,
			TagIDs:      ids.UniqueResolved(org.TagIDs, refs.tags),
		}
		if org.Description != nil && *org.Description != "" {
			model.Description = *org.Description
		}
		if model.Links == nil {
			model.Links = []rawdata.Link{}
		}
		if organizer, ok := org.TagIDAsOrganizer.Norm(); ok {
			model.TagIDAsOrganizer = ids.Ptr(organizer)
		}
		if org.Logo != nil {
			model.LogoURL = org.Logo.URL
		}
		out = append(out, model)
	}
	return out, nil
}

func buildTags(groups []rawdata.TagType) ([]Tag, error) {
	var out []Tag
	for _, group := range groups {
		groupID, groupOK := group.ID.Norm()
		for _, tag := range group.Tags {
			id, ok := tag.ID.Norm()
			if !ok {
				return nil, fmt.Errorf("tag missing id")
			}
			model := Tag{
				ID:              id,
				Label:           tag.Label,
				ColorBackground: tag.ColorBackground,
				ColorForeground: tag.ColorForeground,
				SortOrder:       tag.SortOrder,
			}
			if groupOK {
				model.TagTypeID = ids.Ptr(groupID)
			}
			out = append(out, model)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return CompareTags(out[i], out[j]) < 0
	})
	return out, nil
}

func buildTagTypes(raw []rawdata.TagType) ([]TagType, error) {
	out := make([]TagType, 0, len(raw))
	for _, t := range raw {
		id, ok := t.ID.Norm()
		if !ok {
			return nil, fmt.Errorf("tag type missing id")
		}
		out = append(out, TagType{
			ID:          id,
			Label:       t.Label,
			Category:    t.Category,
			SortOrder:   t.SortOrder,
			IsBrowsable: t.IsBrowsable,
		})
	}
	return out, nil
}

func buildArticles(raw []rawdata.Article) ([]Article, error) {
	out := make([]Article, 0, len(raw))
	for _, a := range raw {
		id, ok := a.ID.Norm()
		if !ok {
			return nil, fmt.Errorf("article missing id")
		}
		model := Article{
			ID:          id,
			Name:        a.Name,
			UpdatedAtMs: rawdata.UpdatedAtMillis(a.UpdatedAt, a.UpdatedTSZ, a.UpdatedAtStr),
		}
		if a.Text != nil {
			model.Text = *a.Text
		}
		out = append(out, model)
	}
	return out, nil
}

func buildDocuments(raw []rawdata.Document) ([]Document, error) {
	out := make([]Document, 0, len(raw))
	for _, d := range raw {
		id, ok := d.ID.Norm()
		if !ok {
			return nil, fmt.Errorf("document missing id")
		}
		model := Document{
			ID:          id,
			UpdatedAtMs: rawdata.UpdatedAtMillis(d.UpdatedAt, d.UpdatedTSZ, d.UpdatedAtStr),
		}
		if d.TitleText != nil {
			model.TitleText = *d.TitleText
		}
		if d.BodyText != nil {
			model.BodyText = *d.BodyText
		}
		out = append(out, model)
	}
	return out, nil
}

func buildMenus(raw []rawdata.Menu) ([]Menu, error) {
	out := make([]Menu, 0, len(raw))
	for _, m := range raw {
		id, ok := m.ID.Norm()
		if !ok {
			return nil, fmt.Errorf("menu missing id")
		}
		model := Menu{ID: id, Items: buildMenuItems(m.Items)}
		if m.TitleText != nil {
			model.TitleText = *m.TitleText
		}
		out = append(out, model)
	}
	return out, nil
}

// buildMenuItems drops entries without a resolvable id and orders the rest
// by (sortOrder, titleText, id); an absent sort order sinks to the end.
func buildMenuItems(raw []rawdata.MenuItem) []MenuItem {
	items := make([]MenuItem, 0, len(raw))
	for _, item := range raw {
		id, ok := item.ID.Norm()
		if !ok {
			continue
		}
		model := MenuItem{
			ID:                   id,
			AppliedTagIDs:        ids.UniqueResolved(item.AppliedTagIDs, nil),
			GoogleMaterialSymbol: item.GoogleMaterialSymbol,
			AppleSfSymbol:        item.AppleSfSymbol,
			ProhibitTagFilter:    item.ProhibitTagFilter == "Y",
		}
		if item.TitleText != nil {
			model.TitleText = *item.TitleText
		}
		if item.Function != nil {
			model.Function = *item.Function
		}
		if v, ok := item.SortOrder.Value(); ok {
			model.SortOrder = &v
		}
		if docID, ok := item.DocumentID.Norm(); ok {
			model.DocumentID = ids.Ptr(docID)
		}
		if menuID, ok := item.MenuID.Norm(); ok {
			model.MenuID = ids.Ptr(menuID)
		}
		items = append(items, model)
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		aOrder, bOrder := math.Inf(1), math.Inf(1)
		if a.SortOrder != nil {
			aOrder = *a.SortOrder
		}
		if b.SortOrder != nil {
			bOrder = *b.SortOrder
		}
		if aOrder != bOrder {
			return aOrder < bOrder
		}
		if c := compare.Label(a.TitleText, b.TitleText); c != 0 {
			return c < 0
		}
		return a.ID < b.ID
	})
	return items
}
