package ui

import (
	"strings"
	"testing"
)

func TestRenderMarkdown(t *testing.T) {
	out, err := RenderMarkdown("# Venue Guide\n\nSee the **main stage**.", 60)
	if err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}
	if !strings.Contains(out, "Venue Guide") {
		t.Errorf("rendered output missing heading: %q", out)
	}
	if strings.Contains(out, "**") {
		t.Errorf("markdown markers should be consumed: %q", out)
	}
	if !strings.HasSuffix(out, "\n") || strings.HasSuffix(out, "\n\n") {
		t.Errorf("want single trailing newline, got %q", out)
	}
}

func TestRenderMarkdownZeroWidth(t *testing.T) {
	if _, err := RenderMarkdown("plain text", 0); err != nil {
		t.Errorf("zero width should fall back to default: %v", err)
	}
}
