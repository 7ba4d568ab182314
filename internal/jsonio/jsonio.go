// Package jsonio serializes build outputs canonically: object keys sorted,
// string values sanitized, no HTML escaping, atomic file replacement.
// Re-running a build over identical input must produce byte-identical files.
package jsonio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Marshal encodes v canonically. The value is round-tripped through a
// generic decode first, so map keys come out sorted regardless of the
// source struct's field order, and every string passes through Sanitize.
func Marshal(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	decoded, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(sanitizeDeep(decoded)); err != nil {
		return nil, fmt.Errorf("encode canonical: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Decode parses JSON into the generic form the verifier and the canonical
// encoder work on. Numbers stay json.Number so they re-encode exactly.
func Decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return v, nil
}

// DecodeFile reads and decodes one JSON file into generic form.
func DecodeFile(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	v, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return v, nil
}

func sanitizeDeep(v any) any {
	switch val := v.(type) {
	case string:
		return Sanitize(val)
	case []any:
		for i, item := range val {
			val[i] = sanitizeDeep(item)
		}
		return val
	case map[string]any:
		for key, item := range val {
			val[key] = sanitizeDeep(item)
		}
		return val
	default:
		return v
	}
}

// Sanitize normalizes a string value for output: CRLF, CR, and the Unicode
// line/paragraph separators become \n, tabs become spaces, runs of three or
// more spaces collapse to one, and trailing spaces are stripped per line.
func Sanitize(s string) string {
	replacer := strings.NewReplacer(
		"\r\n", "\n",
		"\r", "\n",
		"\u2028", "\n",
		"\u2029", "\n",
		"\t", " ",
	)
	normalized := replacer.Replace(s)

	lines := strings.Split(normalized, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(collapseSpaceRuns(line), " ")
	}
	return strings.Join(lines, "\n")
}

// collapseSpaceRuns reduces every run of three or more spaces to a single
// space. One- and two-space runs pass through untouched.
func collapseSpaceRuns(line string) string {
	if !strings.Contains(line, "   ") {
		return line
	}
	var b strings.Builder
	b.Grow(len(line))
	run := 0
	for _, r := range line {
		if r == ' ' {
			run++
			continue
		}
		if run > 0 {
			if run >= 3 {
				b.WriteByte(' ')
			} else {
				b.WriteString(strings.Repeat(" ", run))
			}
			run = 0
		}
		b.WriteRune(r)
	}
	if run > 0 {
		if run >= 3 {
			b.WriteByte(' ')
		} else {
			b.WriteString(strings.Repeat(" ", run))
		}
	}
	return b.String()
}

// WriteFile canonically encodes v and writes it to path atomically, via a
// temp file in the same directory renamed into place. Parent directories
// are created as needed.
func WriteFile(path string, v any) error {
	data, err := Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	_ = tmp.Chmod(0o644)
	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	// Renaming over an existing file fails on Windows. Remove and retry.
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(path)
		if err2 := os.Rename(tmpPath, path); err2 != nil {
			return fmt.Errorf("rename temp file: %w", err)
		}
	}
	committed = true
	return nil
}
