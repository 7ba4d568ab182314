package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/confpack/confpack/internal/jsonio"
	"github.com/confpack/confpack/internal/source"
	"github.com/confpack/confpack/internal/verify"
)

type fakeSource struct {
	meta        *source.Meta
	collections map[string]string
}

func (f *fakeSource) Conference(ctx context.Context, code string) (*source.Meta, error) {
	if f.meta == nil {
		return nil, fmt.Errorf("conference %s not found", code)
	}
	return f.meta, nil
}

func (f *fakeSource) Collection(ctx context.Context, code, name string) (json.RawMessage, error) {
	body, ok := f.collections[name]
	if !ok {
		return json.RawMessage("[]"), nil
	}
	return json.RawMessage(body), nil
}

func testSource() *fakeSource {
	return &fakeSource{
		meta: &source.Meta{Code: "TESTCON", Name: "Test Con", Timezone: "UTC"},
		collections: map[string]string{
			"locations": `[{"id": 10, "name": "Main Stage"}]`,
			"speakers":  `[{"id": 1, "name": "Ada"}, {"id": 2, "name": "Grace"}]`,
			"tagtypes": `[{"id": 1, "label": "Topics", "category": "content", "is_browsable": true,
				"tags": [{"id": 5, "label": "AI", "sort_order": 2}, {"id": 3, "label": "Bio", "sort_order": 1}]}]`,
			"content": `[{"id": 42, "title": "Keynote", "tag_ids": [5], "people": [{"person_id": 1}]}]`,
			"events": `[{"id": 100, "title": "Opening", "content_id": 42,
				"begin_tsz": "2026-08-07T09:00:00Z", "end_tsz": "2026-08-07T10:00:00Z",
				"location_id": 10, "speakers": [{"id": 1}], "tag_ids": [5, 3]}]`,
			"organizations": `[{"id": 7, "name": "Acme", "tag_ids": [5]}]`,
			"documents":     `[{"id": 1, "title_text": "Guide", "updated_at": {"seconds": 100}}]`,
			"menus": `[{"id": 1, "title_text": "home",
				"items": [{"id": 11, "title_text": "Schedule", "function": "schedule", "sort_order": 1}]}]`,
		},
	}
}

func TestRunFullExport(t *testing.T) {
	outDir := t.TempDir()
	fixedNow := time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC)

	report, err := Run(context.Background(), testSource(), Options{
		Code:    "TESTCON",
		OutDir:  outDir,
		EmitRaw: true,
		Verify:  true,
		Now:     func() time.Time { return fixedNow },
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.OutputDir != filepath.Join(outDir, "testcon") {
		t.Errorf("output dir = %s", report.OutputDir)
	}
	if !report.Validation.Clean() {
		t.Errorf("validation warnings = %v", report.Validation.Warnings)
	}

	for _, rel := range []string{
		"entities/events.json", "entities/tags.json", "entities/menus.json",
		"indexes/eventsByDay.json", "indexes/contentByTag.json",
		"views/eventCardsById.json", "views/searchList.json",
		"derived/siteMenu.json", "derived/tagIdsByLabel.json",
		"raw/events.json", "raw/conference.json",
		"manifest.json",
	} {
		if _, err := os.Stat(filepath.Join(report.OutputDir, rel)); err != nil {
			t.Errorf("missing output %s: %v", rel, err)
		}
	}

	manifest, err := jsonio.DecodeFile(filepath.Join(report.OutputDir, "manifest.json"))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	m := manifest.(map[string]any)
	if m["code"] != "TESTCON" || m["timezone"] != "UTC" {
		t.Errorf("manifest = %v", m)
	}
	if m["buildTimestamp"] != "2026-08-10T12:00:00Z" {
		t.Errorf("buildTimestamp = %v", m["buildTimestamp"])
	}

	if report.Output == nil || report.Output.Summary.TotalFiles == 0 {
		t.Errorf("output summary = %+v", report.Output)
	}
}

// Raw emission must write the records as fetched: fields the typed decode
// does not declare survive, and absent fields gain no zero-valued keys.
func TestRunEmitRawUntransformed(t *testing.T) {
	src := testSource()
	src.collections["events"] = `[{"id": 1, "title": "T", "content_id": 42,
		"begin_tsz": "2026-08-07T09:00:00Z", "end_tsz": "2026-08-07T10:00:00Z",
		"custom_backend_field": "keep-me"}]`

	report, err := Run(context.Background(), src, Options{
		Code:    "TESTCON",
		OutDir:  t.TempDir(),
		EmitRaw: true,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	decoded, err := jsonio.DecodeFile(filepath.Join(report.OutputDir, "raw", "events.json"))
	if err != nil {
		t.Fatalf("read raw events: %v", err)
	}
	records := decoded.([]any)
	if len(records) != 1 {
		t.Fatalf("raw events = %v", records)
	}
	record := records[0].(map[string]any)
	if record["custom_backend_field"] != "keep-me" {
		t.Errorf("undeclared field lost: %v", record)
	}
	for _, key := range []string{"begin", "end", "speakers", "location"} {
		if _, ok := record[key]; ok {
			t.Errorf("raw record gained key %q it was not fetched with", key)
		}
	}
}

// Written files, read back from disk, must pass the same audit the in-memory
// build passed.
func TestRunOutputsVerifyClean(t *testing.T) {
	outDir := t.TempDir()
	report, err := Run(context.Background(), testSource(), Options{Code: "TESTCON", OutDir: outDir})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	snap := verify.Snapshot{
		Entities: readSection(t, filepath.Join(report.OutputDir, "entities")),
		Indexes:  readSection(t, filepath.Join(report.OutputDir, "indexes")),
		Views:    readSection(t, filepath.Join(report.OutputDir, "views")),
	}
	if issues := verify.Run(snap); len(issues) != 0 {
		t.Errorf("re-read outputs failed verify:\n%s", strings.Join(issues, "\n"))
	}
}

func readSection(t *testing.T, dir string) map[string]any {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read %s: %v", dir, err)
	}
	out := make(map[string]any, len(entries))
	for _, entry := range entries {
		name := strings.TrimSuffix(entry.Name(), ".json")
		decoded, err := jsonio.DecodeFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			t.Fatalf("decode %s: %v", entry.Name(), err)
		}
		out[name] = decoded
	}
	return out
}

func TestRunDeterministic(t *testing.T) {
	fixedNow := func() time.Time { return time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC) }

	readAll := func(t *testing.T) map[string]string {
		outDir := t.TempDir()
		report, err := Run(context.Background(), testSource(), Options{
			Code: "TESTCON", OutDir: outDir, Now: fixedNow,
		})
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		files := make(map[string]string)
		err = filepath.WalkDir(report.OutputDir, func(path string, d os.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			rel, _ := filepath.Rel(report.OutputDir, path)
			files[rel] = string(data)
			return nil
		})
		if err != nil {
			t.Fatalf("walk: %v", err)
		}
		return files
	}

	first := readAll(t)
	second := readAll(t)
	if len(first) != len(second) {
		t.Fatalf("file sets differ: %d vs %d", len(first), len(second))
	}
	for rel, body := range first {
		if second[rel] != body {
			t.Errorf("%s differs between runs", rel)
		}
	}
}

func TestRunRequiresTimezone(t *testing.T) {
	src := testSource()
	src.meta.Timezone = ""
	if _, err := Run(context.Background(), src, Options{Code: "TESTCON", OutDir: t.TempDir()}); err == nil {
		t.Fatal("expected error for missing timezone")
	}
}

func TestRunStrictAbortsOnWarnings(t *testing.T) {
	src := testSource()
	src.collections["events"] = `[{"id": 100, "title": "Opening", "location_id": 999}]`

	outDir := t.TempDir()
	_, err := Run(context.Background(), src, Options{Code: "TESTCON", OutDir: outDir, Strict: true})
	if err == nil {
		t.Fatal("expected strict mode to abort")
	}
	if _, statErr := os.Stat(filepath.Join(outDir, "testcon")); !os.IsNotExist(statErr) {
		t.Error("strict abort must leave nothing written")
	}

	// The same data exports fine without strict.
	if _, err := Run(context.Background(), src, Options{Code: "TESTCON", OutDir: t.TempDir()}); err != nil {
		t.Errorf("non-strict run: %v", err)
	}
}

func TestRunMetaOverride(t *testing.T) {
	src := testSource()
	src.meta = nil

	report, err := Run(context.Background(), src, Options{
		Code:   "TESTCON",
		OutDir: t.TempDir(),
		Meta:   &source.Meta{Code: "TESTCON", Name: "Overridden", Timezone: "UTC"},
	})
	if err != nil {
		t.Fatalf("Run with meta override: %v", err)
	}
	if report.Meta.Name != "Overridden" {
		t.Errorf("meta = %+v", report.Meta)
	}
}

func TestRunOfflineFromSnapshot(t *testing.T) {
	snap, err := source.OpenSnapshotInMemory()
	if err != nil {
		t.Fatalf("open snapshot: %v", err)
	}
	defer snap.Close()

	ctx := context.Background()
	rec := source.NewRecording(testSource(), snap)
	if _, err := Run(ctx, rec, Options{Code: "TESTCON", OutDir: t.TempDir()}); err != nil {
		t.Fatalf("recording run: %v", err)
	}

	// Rebuild purely from the snapshot.
	report, err := Run(ctx, snap, Options{Code: "TESTCON", OutDir: t.TempDir(), Verify: true})
	if err != nil {
		t.Fatalf("offline run: %v", err)
	}
	if report.Meta.Name != "Test Con" {
		t.Errorf("offline meta = %+v", report.Meta)
	}
}
