package rawdata

import (
	"encoding/json"
	"testing"
)

func emptyPayloads() map[string]json.RawMessage {
	payloads := make(map[string]json.RawMessage)
	for _, name := range Collections {
		payloads[name] = json.RawMessage("[]")
	}
	return payloads
}

func TestDecode(t *testing.T) {
	t.Run("empty collections", func(t *testing.T) {
		ds, err := Decode(emptyPayloads())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(ds.Events) != 0 {
			t.Errorf("expected no events, got %d", len(ds.Events))
		}
	})

	t.Run("missing collection", func(t *testing.T) {
		payloads := emptyPayloads()
		delete(payloads, "events")
		if _, err := Decode(payloads); err == nil {
			t.Fatal("expected error for missing collection")
		}
	})

	t.Run("non-array collection", func(t *testing.T) {
		payloads := emptyPayloads()
		payloads["menus"] = json.RawMessage(`{"oops": true}`)
		if _, err := Decode(payloads); err == nil {
			t.Fatal("expected error for non-array collection")
		}
	})

	t.Run("sorts records by id with nulls last", func(t *testing.T) {
		payloads := emptyPayloads()
		payloads["locations"] = json.RawMessage(
			`[{"id": 9, "name": "Track 2"}, {"name": "no id"}, {"id": "2", "name": "Track 1"}]`)
		ds, err := Decode(payloads)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(ds.Locations) != 3 {
			t.Fatalf("expected 3 locations, got %d", len(ds.Locations))
		}
		if ds.Locations[0].Name != "Track 1" || ds.Locations[1].Name != "Track 2" {
			t.Errorf("wrong order: %q, %q", ds.Locations[0].Name, ds.Locations[1].Name)
		}
		if ds.Locations[2].Name != "no id" {
			t.Errorf("null-id record should sort last, got %q", ds.Locations[2].Name)
		}
	})

	t.Run("duplicate ids keep input order", func(t *testing.T) {
		payloads := emptyPayloads()
		payloads["documents"] = json.RawMessage(
			`[{"id": 1, "title_text": "first"}, {"id": 1, "title_text": "second"}]`)
		ds, err := Decode(payloads)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if *ds.Documents[0].TitleText != "first" {
			t.Errorf("stable sort should keep the first record first")
		}
	})
}

func TestDecodeRaw(t *testing.T) {
	t.Run("keeps undeclared fields and adds no keys", func(t *testing.T) {
		payloads := emptyPayloads()
		payloads["events"] = json.RawMessage(
			`[{"id": 1, "title": "T", "custom_backend_field": "keep-me"}]`)
		raw, err := DecodeRaw(payloads)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		record, ok := raw["events"][0].(map[string]any)
		if !ok {
			t.Fatalf("expected a record, got %T", raw["events"][0])
		}
		if record["custom_backend_field"] != "keep-me" {
			t.Errorf("undeclared field lost: %v", record)
		}
		if len(record) != 3 {
			t.Errorf("record should carry exactly the fetched keys, got %v", record)
		}
	})

	t.Run("applies the same pre-sort as Decode", func(t *testing.T) {
		payloads := emptyPayloads()
		payloads["locations"] = json.RawMessage(
			`[{"id": 9, "name": "Track 2"}, {"name": "no id"}, {"id": "2", "name": "Track 1"}]`)
		raw, err := DecodeRaw(payloads)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		names := make([]string, 0, 3)
		for _, item := range raw["locations"] {
			names = append(names, item.(map[string]any)["name"].(string))
		}
		if names[0] != "Track 1" || names[1] != "Track 2" || names[2] != "no id" {
			t.Errorf("wrong order: %v", names)
		}
	})

	t.Run("missing collection", func(t *testing.T) {
		payloads := emptyPayloads()
		delete(payloads, "menus")
		if _, err := DecodeRaw(payloads); err == nil {
			t.Fatal("expected error for missing collection")
		}
	})
}

func TestTimestampShapes(t *testing.T) {
	t.Run("seconds object", func(t *testing.T) {
		var a Article
		if err := json.Unmarshal([]byte(`{"id": 1, "updated_at": {"seconds": 120}}`), &a); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		ms := UpdatedAtMillis(a.UpdatedAt, a.UpdatedTSZ, a.UpdatedAtStr)
		if ms == nil || *ms != 120000 {
			t.Errorf("got %v, want 120000", ms)
		}
	})

	t.Run("string updated_at", func(t *testing.T) {
		var a Article
		if err := json.Unmarshal([]byte(`{"id": 1, "updated_at": "1970-01-01T00:00:02Z"}`), &a); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		ms := UpdatedAtMillis(a.UpdatedAt, a.UpdatedTSZ, a.UpdatedAtStr)
		if ms == nil || *ms != 2000 {
			t.Errorf("got %v, want 2000", ms)
		}
	})

	t.Run("updated_tsz fallback", func(t *testing.T) {
		var a Article
		if err := json.Unmarshal([]byte(`{"id": 1, "updated_tsz": "1970-01-01T00:00:03Z"}`), &a); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		ms := UpdatedAtMillis(a.UpdatedAt, a.UpdatedTSZ, a.UpdatedAtStr)
		if ms == nil || *ms != 3000 {
			t.Errorf("got %v, want 3000", ms)
		}
	})

	t.Run("updated_at_str fallback", func(t *testing.T) {
		ms := UpdatedAtMillis(Timestamp{}, "", "1970-01-01T00:00:04Z")
		if ms == nil || *ms != 4000 {
			t.Errorf("got %v, want 4000", ms)
		}
	})

	t.Run("nothing resolvable", func(t *testing.T) {
		if ms := UpdatedAtMillis(Timestamp{}, "", "junk"); ms != nil {
			t.Errorf("got %v, want nil", ms)
		}
	})
}

func TestNumber(t *testing.T) {
	var item MenuItem
	if err := json.Unmarshal([]byte(`{"id": 1, "sort_order": "15"}`), &item); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v, ok := item.SortOrder.Value(); !ok || v != 15 {
		t.Errorf("sort_order = (%v, %v), want (15, true)", v, ok)
	}

	if err := json.Unmarshal([]byte(`{"id": 1, "sort_order": "n/a"}`), &item); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := item.SortOrder.Value(); ok {
		t.Error("non-numeric sort_order should be absent")
	}
}
