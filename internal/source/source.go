// Package source is the fetch boundary: it produces conference metadata and
// raw collection payloads for the export pipeline. Implementations cover the
// HTTP backend, a sqlite snapshot cache for offline rebuilds, and a recording
// wrapper that fills the cache while fetching.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/confpack/confpack/internal/rawdata"
)

// Meta is the conference record the manifest and output layout are driven by.
// Timezone is required for a build; the orchestrator enforces that.
type Meta struct {
	Code      string             `json:"code" yaml:"code"`
	Name      string             `json:"name" yaml:"name"`
	Timezone  string             `json:"timezone" yaml:"timezone"`
	UpdatedAt *rawdata.Timestamp `json:"updated_at,omitempty" yaml:"-"`
}

// Source supplies one conference's metadata and raw collections.
type Source interface {
	Conference(ctx context.Context, code string) (*Meta, error)
	Collection(ctx context.Context, code, name string) (json.RawMessage, error)
}

// FetchAll pulls every known collection for a conference into the map form
// the decoder consumes.
func FetchAll(ctx context.Context, src Source, code string) (map[string]json.RawMessage, error) {
	payloads := make(map[string]json.RawMessage, len(rawdata.Collections))
	for _, name := range rawdata.Collections {
		payload, err := src.Collection(ctx, code, name)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", name, err)
		}
		payloads[name] = payload
	}
	return payloads, nil
}

// LoadMetaFile reads a conference metadata override from a YAML file. It is
// used with --meta when the backend record is absent or wrong.
func LoadMetaFile(path string) (*Meta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read meta file: %w", err)
	}
	var meta Meta
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse meta file %s: %w", path, err)
	}
	if strings.TrimSpace(meta.Code) == "" {
		return nil, fmt.Errorf("meta file %s: code is required", path)
	}
	return &meta, nil
}

// WithMeta wraps src so Conference returns the given metadata instead of
// whatever the backend holds. Collections still come from src.
func WithMeta(src Source, meta *Meta) Source {
	return &metaOverride{src: src, meta: meta}
}

type metaOverride struct {
	src  Source
	meta *Meta
}

func (m *metaOverride) Conference(ctx context.Context, code string) (*Meta, error) {
	if !strings.EqualFold(code, m.meta.Code) {
		return nil, fmt.Errorf("meta override is for %s, not %s", m.meta.Code, code)
	}
	return m.meta, nil
}

func (m *metaOverride) Collection(ctx context.Context, code, name string) (json.RawMessage, error) {
	return m.src.Collection(ctx, code, name)
}
