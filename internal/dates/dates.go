// Package dates provides calendar-local bucketing for event instants.
//
// Day and minute keys are formatted in the conference time zone, not the raw
// instant's zone, so events near midnight land in the correct local day. The
// zone lookup cache is an explicit object rather than package state so tests
// can exercise multiple zones without cross-test pollution.
package dates

import (
	"strings"
	"sync"
	"time"
)

// Zones caches time.Location lookups per zone name. A failed lookup is
// cached too, so repeated bucketing with a bad zone stays cheap.
type Zones struct {
	mu   sync.Mutex
	locs map[string]*time.Location
}

// NewZones returns an empty zone cache.
func NewZones() *Zones {
	return &Zones{locs: make(map[string]*time.Location)}
}

func (z *Zones) lookup(name string) *time.Location {
	z.mu.Lock()
	defer z.mu.Unlock()
	if loc, ok := z.locs[name]; ok {
		return loc
	}
	var loc *time.Location
	if strings.TrimSpace(name) != "" {
		if l, err := time.LoadLocation(name); err == nil {
			loc = l
		}
	}
	z.locs[name] = loc
	return loc
}

// Valid reports whether name resolves to a known IANA time zone.
func (z *Zones) Valid(name string) bool {
	return z.lookup(name) != nil
}

// DayKey formats instant into a YYYY-MM-DD key in the given zone.
// Unparseable instants and unknown zones yield "".
func (z *Zones) DayKey(instant, zone string) string {
	t, ok := ParseInstant(instant)
	if !ok {
		return ""
	}
	loc := z.lookup(zone)
	if loc == nil {
		return ""
	}
	return t.In(loc).Format("2006-01-02")
}

// MinuteKey formats instant into a YYYY-MM-DDTHH:MM key in the given zone.
// Unparseable instants and unknown zones yield "".
func (z *Zones) MinuteKey(instant, zone string) string {
	t, ok := ParseInstant(instant)
	if !ok {
		return ""
	}
	loc := z.lookup(zone)
	if loc == nil {
		return ""
	}
	return t.In(loc).Format("2006-01-02T15:04")
}

// instantLayouts are tried in order. Zone-less layouts are interpreted as
// UTC so builds are reproducible across hosts.
var instantLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseInstant parses the timestamp shapes the backend emits.
func ParseInstant(value string) (time.Time, bool) {
	s := strings.TrimSpace(value)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range instantLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// UnixSeconds parses value and returns its Unix-seconds instant.
func UnixSeconds(value string) (int64, bool) {
	t, ok := ParseInstant(value)
	if !ok {
		return 0, false
	}
	return t.Unix(), true
}

// UnixMillis parses value and returns its Unix-milliseconds instant.
func UnixMillis(value string) (int64, bool) {
	t, ok := ParseInstant(value)
	if !ok {
		return 0, false
	}
	return t.UnixMilli(), true
}
