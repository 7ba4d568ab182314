package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/confpack/confpack/internal/export"
	"github.com/confpack/confpack/internal/jsonio"
	"github.com/confpack/confpack/internal/source"
	"github.com/confpack/confpack/internal/summary"
)

type staticSource struct {
	meta        *source.Meta
	collections map[string]string
}

func (s *staticSource) Conference(ctx context.Context, code string) (*source.Meta, error) {
	return s.meta, nil
}

func (s *staticSource) Collection(ctx context.Context, code, name string) (json.RawMessage, error) {
	body, ok := s.collections[name]
	if !ok {
		return json.RawMessage("[]"), nil
	}
	return json.RawMessage(body), nil
}

func exportFixture(t *testing.T) string {
	t.Helper()
	src := &staticSource{
		meta: &source.Meta{Code: "TESTCON", Name: "Test Con", Timezone: "UTC"},
		collections: map[string]string{
			"speakers": `[{"id": 1, "name": "Ada"}]`,
			"content":  `[{"id": 42, "title": "Keynote", "people": [{"person_id": 1}]}]`,
			"events": `[{"id": 100, "title": "Opening", "content_id": 42,
				"begin_tsz": "2026-08-07T09:00:00Z", "end_tsz": "2026-08-07T10:00:00Z",
				"speakers": [{"id": 1}]}]`,
			"documents": `[{"id": 5, "title_text": "Guide", "body_text": "# Guide\n\nWelcome."}]`,
		},
	}
	report, err := export.Run(context.Background(), src, export.Options{
		Code:   "TESTCON",
		OutDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("export fixture: %v", err)
	}
	return report.OutputDir
}

func TestVerifyCommand(t *testing.T) {
	outputDir := exportFixture(t)

	if err := verifyCmd.RunE(verifyCmd, []string{outputDir}); err != nil {
		t.Errorf("verify on clean tree: %v", err)
	}

	// Corrupt one store and expect failure.
	peoplePath := filepath.Join(outputDir, "entities", "people.json")
	decoded, err := jsonio.DecodeFile(peoplePath)
	if err != nil {
		t.Fatalf("decode people: %v", err)
	}
	store := decoded.(map[string]any)
	delete(store["byId"].(map[string]any), "1")
	if err := jsonio.WriteFile(peoplePath, store); err != nil {
		t.Fatalf("rewrite people: %v", err)
	}

	if err := verifyCmd.RunE(verifyCmd, []string{outputDir}); err == nil {
		t.Error("verify should fail on corrupted store")
	}
}

func TestVerifyCommandMissingDir(t *testing.T) {
	if err := verifyCmd.RunE(verifyCmd, []string{filepath.Join(t.TempDir(), "nope")}); err == nil {
		t.Error("expected error for missing output dir")
	}
}

func TestReadOutputSection(t *testing.T) {
	outputDir := exportFixture(t)
	section, err := readOutputSection(filepath.Join(outputDir, "entities"))
	if err != nil {
		t.Fatalf("readOutputSection: %v", err)
	}
	if _, ok := section["events"]; !ok {
		t.Errorf("section keys = %v", keysOf(section))
	}
	if _, ok := section["events.json"]; ok {
		t.Error("keys should drop the .json suffix")
	}
}

func keysOf(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func TestLargestFileLines(t *testing.T) {
	lines := largestFileLines([]summary.LargeFile{
		{Name: "entities/events.json", SizeKb: 4},
		{Name: "views/searchList.json", SizeKb: 1},
	})
	if len(lines) != 2 {
		t.Fatalf("lines = %v", lines)
	}
	if lines[0] != "entities/events.json (4 KB)" {
		t.Errorf("line = %q", lines[0])
	}
	if lines[1] != "views/searchList.json (1 KB)" {
		t.Errorf("line = %q", lines[1])
	}
}

func TestInspectArgs(t *testing.T) {
	outputDir := exportFixture(t)

	if err := inspectCmd.RunE(inspectCmd, []string{outputDir, "badkind", "5"}); err == nil {
		t.Error("expected error for unknown kind")
	}
	if err := inspectCmd.RunE(inspectCmd, []string{outputDir, "document", "999"}); err == nil {
		t.Error("expected error for missing document")
	}
	if err := inspectCmd.RunE(inspectCmd, []string{outputDir, "document", "not-a-number"}); err == nil {
		t.Error("expected error for invalid id")
	}
}

func TestInspectRendersDocument(t *testing.T) {
	outputDir := exportFixture(t)

	// Redirect stdout while the renderer prints.
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w
	runErr := inspectCmd.RunE(inspectCmd, []string{outputDir, "document", "5"})
	w.Close()
	os.Stdout = old

	if runErr != nil {
		t.Fatalf("inspect document: %v", runErr)
	}
	out := make([]byte, 64<<10)
	n, _ := r.Read(out)
	if n == 0 {
		t.Error("inspect printed nothing")
	}
}
