// Package export runs the full pipeline for one conference: fetch, validate,
// build, optionally verify, then write the output tree. The transform is
// single-threaded and fully in memory; nothing touches disk until every
// artifact has been built and checked.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/confpack/confpack/internal/dates"
	"github.com/confpack/confpack/internal/derived"
	"github.com/confpack/confpack/internal/entity"
	"github.com/confpack/confpack/internal/indexes"
	"github.com/confpack/confpack/internal/jsonio"
	"github.com/confpack/confpack/internal/rawdata"
	"github.com/confpack/confpack/internal/source"
	"github.com/confpack/confpack/internal/summary"
	"github.com/confpack/confpack/internal/validate"
	"github.com/confpack/confpack/internal/verify"
	"github.com/confpack/confpack/internal/views"
)

// SchemaVersion identifies the output layout. Bump it when consumers must
// re-ingest everything.
const SchemaVersion = 1

const verifyPreviewCount = 5

// Manifest is the per-build metadata written at the output root.
type Manifest struct {
	Code           string `json:"code"`
	Name           string `json:"name"`
	Timezone       string `json:"timezone"`
	SchemaVersion  int    `json:"schemaVersion"`
	BuildTimestamp string `json:"buildTimestamp"`
}

// Options configures one export run.
type Options struct {
	Code    string
	OutDir  string
	EmitRaw bool
	Strict  bool
	Verify  bool

	// Meta overrides the conference record from the source when set.
	Meta *source.Meta

	// Now is injectable for deterministic manifests in tests.
	Now func() time.Time

	// Logf receives progress lines; nil silences them.
	Logf func(format string, args ...any)
}

// Report summarizes a finished run.
type Report struct {
	Meta       *source.Meta
	OutputDir  string
	Validation validate.Result
	Output     *summary.Result
	Duration   time.Duration
}

func (o Options) logf(format string, args ...any) {
	if o.Logf != nil {
		o.Logf(format, args...)
	}
}

// Run exports one conference through src into Options.OutDir.
func Run(ctx context.Context, src source.Source, opts Options) (*Report, error) {
	started := time.Now()
	nowFn := opts.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	code := strings.TrimSpace(opts.Code)
	if code == "" {
		return nil, fmt.Errorf("conference code is required")
	}
	outputDir := filepath.Join(opts.OutDir, strings.ToLower(code))
	opts.logf("Starting export for %s -> %s", code, outputDir)

	if opts.Meta != nil {
		src = source.WithMeta(src, opts.Meta)
	}
	meta, err := src.Conference(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("fetch conference: %w", err)
	}
	if strings.TrimSpace(meta.Timezone) == "" {
		return nil, fmt.Errorf("conference %s has no timezone", code)
	}

	payloads, err := source.FetchAll(ctx, src, code)
	if err != nil {
		return nil, err
	}
	ds, err := rawdata.Decode(payloads)
	if err != nil {
		return nil, err
	}
	opts.logf("Fetched for %s (%s):", meta.Code, meta.Name)
	for _, name := range rawdata.Collections {
		if items, ok := ds.Collection(name); ok {
			opts.logf("  %d %s", payloadLen(items), name)
		}
	}

	zones := dates.NewZones()
	validation := validate.Run(ds, zones, meta.Timezone)
	if validation.Clean() {
		opts.logf("Warnings: none")
	} else {
		opts.logf("Warnings: %s", strings.Join(validation.Warnings, "; "))
	}
	if opts.Strict && !validation.Clean() {
		return nil, fmt.Errorf("validation failed under --strict: %s",
			strings.Join(validation.Warnings, "; "))
	}

	siteMenu := derived.BuildSiteMenu(ds.Menus)
	opts.logf("Derived: siteMenu primary=%d sections=%d",
		len(siteMenu.Primary), len(siteMenu.Sections))
	tagLabels := derived.BuildTagLabelMap(ds.TagTypes)
	opts.logf("Derived: tagIdsByLabel keys=%d collisions=%d",
		len(tagLabels.ByLabel), len(tagLabels.Collisions))

	ents, err := entity.BuildAll(ds)
	if err != nil {
		return nil, err
	}
	ix, err := indexes.Build(ents, zones, meta.Timezone)
	if err != nil {
		return nil, err
	}
	vw, err := views.Build(ents)
	if err != nil {
		return nil, err
	}
	manifest := Manifest{
		Code:           meta.Code,
		Name:           meta.Name,
		Timezone:       meta.Timezone,
		SchemaVersion:  SchemaVersion,
		BuildTimestamp: nowFn().UTC().Format(time.RFC3339),
	}

	entityFiles := ents.Files()
	indexFiles := ix.Files()
	viewFiles := vw.Files()
	logCounts(opts, ents, ix, vw)

	if opts.Verify {
		snap, err := decodeSnapshot(entityFiles, indexFiles, viewFiles)
		if err != nil {
			return nil, err
		}
		if issues := verify.Run(snap); len(issues) > 0 {
			return nil, fmt.Errorf("verify failed (%d issues):\n%s",
				len(issues), verify.FormatIssues(issues, verifyPreviewCount))
		}
		opts.logf("Verify: ok")
	}

	if opts.EmitRaw {
		if err := writeRaw(filepath.Join(outputDir, "raw"), payloads, meta); err != nil {
			return nil, err
		}
	}
	for section, files := range map[string]map[string]any{
		"entities": entityFiles,
		"indexes":  indexFiles,
		"views":    viewFiles,
	} {
		if err := writeSection(filepath.Join(outputDir, section), files); err != nil {
			return nil, err
		}
	}
	if err := writeSection(filepath.Join(outputDir, "derived"), map[string]any{
		"siteMenu":      siteMenu,
		"tagIdsByLabel": tagLabels,
	}); err != nil {
		return nil, err
	}
	if err := jsonio.WriteFile(filepath.Join(outputDir, "manifest.json"), manifest); err != nil {
		return nil, err
	}

	output, err := summary.Summarize(outputDir, opts.EmitRaw)
	if err != nil {
		return nil, err
	}
	if len(output.Warnings) > 0 {
		opts.logf("Output summary warnings: %s", strings.Join(output.Warnings, "; "))
		if opts.Strict || opts.Verify {
			return nil, fmt.Errorf("output summary check failed: %s",
				strings.Join(output.Warnings, "; "))
		}
	}
	opts.logf("Output summary: files=%d size=%dKB", output.Summary.TotalFiles,
		output.Summary.TotalSizeKb)
	opts.logf("Output root: %s", outputDir)

	return &Report{
		Meta:       meta,
		OutputDir:  outputDir,
		Validation: validation,
		Output:     output,
		Duration:   time.Since(started),
	}, nil
}

func logCounts(opts Options, ents *entity.Entities, ix *indexes.Indexes, vw *views.Views) {
	describe := func(label string, files map[string]any) {
		names := make([]string, 0, len(files))
		for name := range files {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s=%d", name, payloadLen(files[name])))
		}
		opts.logf("%s: %s", label, strings.Join(parts, ", "))
	}
	describe("Entities", ents.Files())
	describe("Indexes", ix.Files())
	describe("Views", vw.Files())
}

// payloadLen reports a human count for one artifact: store length, index key
// count, or list length.
func payloadLen(payload any) int {
	if store, ok := payload.(interface{ Len() int }); ok {
		return store.Len()
	}
	v := reflect.ValueOf(payload)
	if v.Kind() == reflect.Map || v.Kind() == reflect.Slice {
		return v.Len()
	}
	return 0
}

// decodeSnapshot round-trips the in-memory artifacts through the canonical
// encoder so the verifier audits exactly what the files will contain.
func decodeSnapshot(entityFiles, indexFiles, viewFiles map[string]any) (verify.Snapshot, error) {
	roundTrip := func(files map[string]any) (map[string]any, error) {
		out := make(map[string]any, len(files))
		for name, payload := range files {
			data, err := jsonio.Marshal(payload)
			if err != nil {
				return nil, fmt.Errorf("encode %s: %w", name, err)
			}
			decoded, err := jsonio.Decode(data)
			if err != nil {
				return nil, fmt.Errorf("re-decode %s: %w", name, err)
			}
			out[name] = decoded
		}
		return out, nil
	}
	var snap verify.Snapshot
	var err error
	if snap.Entities, err = roundTrip(entityFiles); err != nil {
		return snap, err
	}
	if snap.Indexes, err = roundTrip(indexFiles); err != nil {
		return snap, err
	}
	if snap.Views, err = roundTrip(viewFiles); err != nil {
		return snap, err
	}
	return snap, nil
}

func writeSection(dir string, files map[string]any) error {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := jsonio.WriteFile(filepath.Join(dir, name+".json"), files[name]); err != nil {
			return err
		}
	}
	return nil
}

// writeRaw persists the collections as fetched, not the typed decode: the
// generic form keeps backend fields the schemas do not declare and adds no
// zero-valued keys. Only the pre-sort is applied.
func writeRaw(rawDir string, payloads map[string]json.RawMessage, meta *source.Meta) error {
	raw, err := rawdata.DecodeRaw(payloads)
	if err != nil {
		return err
	}
	for _, name := range rawdata.Collections {
		if err := jsonio.WriteFile(filepath.Join(rawDir, name+".json"), raw[name]); err != nil {
			return err
		}
	}
	return jsonio.WriteFile(filepath.Join(rawDir, "conference.json"), meta)
}
