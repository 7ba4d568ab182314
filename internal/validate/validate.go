// Package validate scans the raw collections for data-quality problems
// before any building happens. It only counts and describes; escalating a
// non-zero count to a fatal error is the caller's strict-mode policy.
package validate

import (
	"fmt"

	"github.com/confpack/confpack/internal/dates"
	"github.com/confpack/confpack/internal/ids"
	"github.com/confpack/confpack/internal/rawdata"
)

// Summary carries the per-category counts for reporting and for strict-mode
// escalation decisions.
type Summary struct {
	Timezone              string `json:"timezone"`
	InvalidTimezone       bool   `json:"invalidTimezone"`
	MissingEventLocations int    `json:"missingEventLocations"`
	MissingEventPeople    int    `json:"missingEventPeople"`
	MissingEventTags      int    `json:"missingEventTags"`
	MissingEventContent   int    `json:"missingEventContent"`
	MissingEventBegin     int    `json:"missingEventBegin"`
	MissingEventEnd       int    `json:"missingEventEnd"`
	InvalidEventRanges    int    `json:"invalidEventRanges"`
	MissingContentTags    int    `json:"missingContentTags"`
	MissingContentPeople  int    `json:"missingContentPeople"`
}

// Result is the validator's report. Warnings is human-readable, one line
// per non-zero category.
type Result struct {
	Warnings []string
	Summary  Summary
}

// Clean reports whether the scan found nothing to warn about.
func (r Result) Clean() bool {
	return len(r.Warnings) == 0
}

// countMissing counts raws that normalize to an id absent from valid.
// Nulls and garbage are skipped; they are absence, not dangling references.
func countMissing(raws []ids.Raw, valid ids.Set) int {
	missing := 0
	for _, r := range raws {
		if id, ok := r.Norm(); ok && !valid.Has(id) {
			missing++
		}
	}
	return missing
}

// Run scans the dataset. It never fails: every finding becomes a count and
// a warning line.
func Run(ds *rawdata.Dataset, zones *dates.Zones, timeZone string) Result {
	res := Result{Summary: Summary{Timezone: timeZone}}

	if timeZone != "" && !zones.Valid(timeZone) {
		res.Summary.InvalidTimezone = true
		res.Warnings = append(res.Warnings, fmt.Sprintf("invalid timezone %q", timeZone))
	}

	locationIDs := make(ids.Set, len(ds.Locations))
	for _, l := range ds.Locations {
		if id, ok := l.ID.Norm(); ok {
			locationIDs[id] = struct{}{}
		}
	}
	personIDs := make(ids.Set, len(ds.Speakers))
	for _, p := range ds.Speakers {
		if id, ok := p.ID.Norm(); ok {
			personIDs[id] = struct{}{}
		}
	}
	tagIDs := make(ids.Set)
	for _, group := range ds.TagTypes {
		for _, tag := range group.Tags {
			if id, ok := tag.ID.Norm(); ok {
				tagIDs[id] = struct{}{}
			}
		}
	}
	contentIDs := make(ids.Set, len(ds.Content))
	for _, c := range ds.Content {
		if id, ok := c.ID.Norm(); ok {
			contentIDs[id] = struct{}{}
		}
	}

	s := &res.Summary
	for _, ev := range ds.Events {
		if missingEventLocation(ev, locationIDs) {
			s.MissingEventLocations++
		}

		personRefs := make([]ids.Raw, 0, len(ev.Speakers)+len(ev.People))
		for _, speaker := range ev.Speakers {
			personRefs = append(personRefs, speaker.ID)
		}
		for _, ref := range ev.People {
			personRefs = append(personRefs, ref.PersonID)
		}
		s.MissingEventPeople += countMissing(personRefs, personIDs)

		s.MissingEventTags += countMissing(ev.TagIDs, tagIDs)

		if id, ok := ev.ContentID.Norm(); ok && !contentIDs.Has(id) {
			s.MissingEventContent++
		}

		beginMs, beginOK := dates.UnixMillis(ev.Begin)
		endMs, endOK := dates.UnixMillis(ev.End)
		if !beginOK {
			s.MissingEventBegin++
		}
		if !endOK {
			s.MissingEventEnd++
		}
		if beginOK && endOK && beginMs >= endMs {
			s.InvalidEventRanges++
		}
	}

	for _, item := range ds.Content {
		s.MissingContentTags += countMissing(item.TagIDs, tagIDs)
		peopleRefs := make([]ids.Raw, 0, len(item.People))
		for _, ref := range item.People {
			peopleRefs = append(peopleRefs, ref.PersonID)
		}
		s.MissingContentPeople += countMissing(peopleRefs, personIDs)
	}

	warn := func(count int, format string) {
		if count > 0 {
			res.Warnings = append(res.Warnings, fmt.Sprintf(format, count))
		}
	}
	warn(s.MissingEventLocations, "events missing locations: %d")
	warn(s.MissingEventPeople, "events missing people: %d")
	warn(s.MissingEventTags, "events missing tags: %d")
	warn(s.MissingEventContent, "events missing content: %d")
	warn(s.MissingEventBegin, "events missing/invalid begin: %d")
	warn(s.MissingEventEnd, "events missing/invalid end: %d")
	warn(s.InvalidEventRanges, "events begin>=end: %d")
	warn(s.MissingContentTags, "content missing tags: %d")
	warn(s.MissingContentPeople, "content missing people: %d")

	return res
}

// missingEventLocation reports whether the event lacks any resolvable
// location reference, checking the embedded stub before the flat field.
func missingEventLocation(ev rawdata.Event, valid ids.Set) bool {
	if ev.Location != nil {
		if id, ok := ev.Location.ID.Norm(); ok {
			return !valid.Has(id)
		}
	}
	id, ok := ev.LocationID.Norm()
	if !ok {
		return true
	}
	return !valid.Has(id)
}
