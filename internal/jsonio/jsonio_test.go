package jsonio

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", "hello"},
		{"crlf", "a\r\nb", "a\nb"},
		{"bare cr", "a\rb", "a\nb"},
		{"line separator", "a\u2028b\u2029c", "a\nb\nc"},
		{"tabs become spaces", "a\tb", "a b"},
		{"three spaces collapse", "a   b", "a b"},
		{"two spaces survive", "a  b", "a  b"},
		{"trailing spaces stripped", "a  \nb ", "a\nb"},
		{"collapse is per line", "a   b\nc    d", "a b\nc d"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.in); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMarshal(t *testing.T) {
	t.Run("map keys are sorted", func(t *testing.T) {
		got, err := Marshal(map[string]any{"b": 1, "a": 2, "c": 3})
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		want := `{"a":2,"b":1,"c":3}`
		if string(got) != want {
			t.Errorf("got %s, want %s", got, want)
		}
	})

	t.Run("struct fields come out sorted too", func(t *testing.T) {
		v := struct {
			Zulu  int    `json:"zulu"`
			Alpha string `json:"alpha"`
		}{1, "x"}
		got, err := Marshal(v)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		want := `{"alpha":"x","zulu":1}`
		if string(got) != want {
			t.Errorf("got %s, want %s", got, want)
		}
	})

	t.Run("strings are sanitized deep", func(t *testing.T) {
		got, err := Marshal(map[string]any{"text": "a\r\nb   c", "list": []string{"d\t"}})
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		want := `{"list":["d"],"text":"a\nb c"}`
		if string(got) != want {
			t.Errorf("got %s, want %s", got, want)
		}
	})

	t.Run("no html escaping", func(t *testing.T) {
		got, err := Marshal(map[string]any{"url": "https://x.test/?a=1&b=<2>"})
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		want := `{"url":"https://x.test/?a=1&b=<2>"}`
		if string(got) != want {
			t.Errorf("got %s, want %s", got, want)
		}
	})

	t.Run("numbers round-trip exactly", func(t *testing.T) {
		got, err := Marshal(map[string]any{"ms": int64(1754550000123), "f": 1.5})
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		want := `{"f":1.5,"ms":1754550000123}`
		if string(got) != want {
			t.Errorf("got %s, want %s", got, want)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		v := map[string]any{"k": []any{map[string]any{"b": 1, "a": 2}}}
		first, err := Marshal(v)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		second, err := Marshal(v)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if !bytes.Equal(first, second) {
			t.Errorf("marshal not deterministic: %s vs %s", first, second)
		}
	})
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "sample.json")

	if err := WriteFile(path, map[string]any{"b": 1, "a": 2}); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != `{"a":2,"b":1}` {
		t.Errorf("file content = %s", data)
	}

	// Overwrite must replace, not append.
	if err := WriteFile(path, map[string]any{"c": 3}); err != nil {
		t.Fatalf("WriteFile overwrite: %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != `{"c":3}` {
		t.Errorf("overwritten content = %s", data)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}

	decoded, err := DecodeFile(path)
	if err != nil {
		t.Fatalf("DecodeFile: %v", err)
	}
	m, ok := decoded.(map[string]any)
	if !ok || m["c"] == nil {
		t.Errorf("decoded = %#v", decoded)
	}
}
