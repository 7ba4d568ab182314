package summary

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeOutput(t *testing.T, root, rel string, size int) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(strings.Repeat("x", size)), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func TestSummarize(t *testing.T) {
	root := t.TempDir()
	writeOutput(t, root, "entities/events.json", 4096)
	writeOutput(t, root, "entities/people.json", 100)
	writeOutput(t, root, "indexes/eventsByDay.json", 2048)
	writeOutput(t, root, "views/peopleCards.json", 300)
	writeOutput(t, root, "derived/siteMenu.json", 50)
	writeOutput(t, root, "manifest.json", 80)
	writeOutput(t, root, "entities/notes.txt", 999)

	result, err := Summarize(root, false)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("warnings = %v", result.Warnings)
	}
	if result.Summary.TotalFiles != 6 {
		t.Errorf("totalFiles = %d, want 6 (non-JSON excluded)", result.Summary.TotalFiles)
	}
	if got := result.Summary.SectionCounts["entities"]; got != 2 {
		t.Errorf("entities count = %d", got)
	}
	if len(result.Summary.LargestFiles) != 5 {
		t.Fatalf("largestFiles = %v", result.Summary.LargestFiles)
	}
	if result.Summary.LargestFiles[0].Name != "entities/events.json" {
		t.Errorf("largest = %+v", result.Summary.LargestFiles[0])
	}
	if result.Summary.LargestFiles[0].SizeKb != 4 {
		t.Errorf("largest sizeKb = %d", result.Summary.LargestFiles[0].SizeKb)
	}
}

func TestSummarizeWarnings(t *testing.T) {
	root := t.TempDir()
	writeOutput(t, root, "entities/events.json", 10)

	result, err := Summarize(root, true)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	joined := strings.Join(result.Warnings, "; ")
	for _, want := range []string{"indexes missing/empty", "views missing/empty",
		"derived missing/empty", "raw missing/empty", "manifest missing"} {
		if !strings.Contains(joined, want) {
			t.Errorf("warnings %q missing %q", joined, want)
		}
	}
	if result.Summary.SectionCounts["raw"] != 0 {
		t.Errorf("raw count = %d", result.Summary.SectionCounts["raw"])
	}
}

func TestSummarizeRawSection(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{"entities/a.json", "indexes/b.json", "views/c.json",
		"derived/d.json", "raw/events.json", "raw/conference.json", "manifest.json"} {
		writeOutput(t, root, rel, 10)
	}

	result, err := Summarize(root, true)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("warnings = %v", result.Warnings)
	}
	if result.Summary.SectionCounts["raw"] != 2 {
		t.Errorf("raw count = %d, want 2", result.Summary.SectionCounts["raw"])
	}
}
