package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBaseURL        = "https://api.confpack.dev/v1"
	defaultRequestTimeout = 60 * time.Second
	maxResponseBytes      = 64 << 20
)

// ErrNotFound reports a conference or collection the backend does not have.
var ErrNotFound = errors.New("not found")

// ClientOptions configures the backend client. Zero values fall back to
// defaults; HTTPClient is injectable for tests.
type ClientOptions struct {
	BaseURL    string
	HTTPClient *http.Client
}

// Client fetches conference data over HTTP JSON.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a backend client.
func NewClient(opts ClientOptions) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("fetch %s: %w", path, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", path, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return body, nil
}

// Conference fetches one conference record.
func (c *Client) Conference(ctx context.Context, code string) (*Meta, error) {
	body, err := c.get(ctx, "/conferences/"+url.PathEscape(code))
	if err != nil {
		return nil, err
	}
	var meta Meta
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, fmt.Errorf("parse conference %s: %w", code, err)
	}
	if meta.Code == "" {
		meta.Code = code
	}
	return &meta, nil
}

// Collection fetches one raw collection as an unshaped JSON array.
func (c *Client) Collection(ctx context.Context, code, name string) (json.RawMessage, error) {
	body, err := c.get(ctx, "/conferences/"+url.PathEscape(code)+"/"+url.PathEscape(name))
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// Conferences lists conferences ordered most recently updated first, capped
// at limit. Records without an update instant sort last.
func (c *Client) Conferences(ctx context.Context, limit int) ([]Meta, error) {
	path := "/conferences"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	var list []Meta
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("parse conferences list: %w", err)
	}

	updatedMs := func(m Meta) int64 {
		if m.UpdatedAt == nil {
			return 0
		}
		ms, ok := m.UpdatedAt.Millis()
		if !ok {
			return 0
		}
		return ms
	}
	sort.SliceStable(list, func(i, j int) bool {
		mi, mj := updatedMs(list[i]), updatedMs(list[j])
		if mi != mj {
			return mi > mj
		}
		return list[i].Code < list[j].Code
	})
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}
