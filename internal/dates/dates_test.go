package dates

import "testing"

func TestDayKey(t *testing.T) {
	z := NewZones()

	t.Run("formats in target zone", func(t *testing.T) {
		// 06:30 UTC on Aug 9 is still Aug 8 in Los Angeles.
		got := z.DayKey("2025-08-09T06:30:00Z", "America/Los_Angeles")
		if got != "2025-08-08" {
			t.Errorf("DayKey = %q, want 2025-08-08", got)
		}
	})

	t.Run("same instant in UTC", func(t *testing.T) {
		got := z.DayKey("2025-08-09T06:30:00Z", "UTC")
		if got != "2025-08-09" {
			t.Errorf("DayKey = %q, want 2025-08-09", got)
		}
	})

	t.Run("unparseable instant", func(t *testing.T) {
		if got := z.DayKey("not a date", "UTC"); got != "" {
			t.Errorf("DayKey = %q, want empty", got)
		}
	})

	t.Run("unknown zone", func(t *testing.T) {
		if got := z.DayKey("2025-08-09T06:30:00Z", "Mars/Olympus"); got != "" {
			t.Errorf("DayKey = %q, want empty", got)
		}
	})
}

func TestMinuteKey(t *testing.T) {
	z := NewZones()
	got := z.MinuteKey("2025-08-08T10:05:59-07:00", "America/Los_Angeles")
	if got != "2025-08-08T10:05" {
		t.Errorf("MinuteKey = %q, want 2025-08-08T10:05", got)
	}
}

func TestValid(t *testing.T) {
	z := NewZones()
	if !z.Valid("Europe/Berlin") {
		t.Error("Europe/Berlin should be valid")
	}
	if z.Valid("Not/AZone") {
		t.Error("Not/AZone should be invalid")
	}
	if z.Valid("") {
		t.Error("empty zone should be invalid")
	}
}

func TestParseInstant(t *testing.T) {
	tests := []struct {
		value string
		ok    bool
	}{
		{"2025-08-08T10:00:00-07:00", true},
		{"2025-08-08T10:00:00Z", true},
		{"2025-08-08T10:00:00", true},
		{"2025-08-08 10:00:00", true},
		{"2025-08-08", true},
		{"", false},
		{"soon", false},
	}
	for _, tt := range tests {
		if _, ok := ParseInstant(tt.value); ok != tt.ok {
			t.Errorf("ParseInstant(%q) ok = %v, want %v", tt.value, ok, tt.ok)
		}
	}
}

func TestUnixSeconds(t *testing.T) {
	got, ok := UnixSeconds("1970-01-01T00:01:00Z")
	if !ok || got != 60 {
		t.Errorf("UnixSeconds = (%d, %v), want (60, true)", got, ok)
	}
}
