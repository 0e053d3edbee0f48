package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const userAgent = "skilldock/1.0 (+https://github.com/skilldock/skilldock)"

// Client is a read-mostly registry client. It performs no retries and
// enforces no timeouts of its own; it relies on the http.Client it is
// given.
type Client struct {
	base   string
	client *http.Client
}

func NewClient(base string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{base: ensureTrailingSlash(base), client: hc}
}

// FetchSkill returns the signed manifest for a skill slug.
func (c *Client) FetchSkill(ctx context.Context, slug string) (Manifest, error) {
	if slug == "" {
		return Manifest{}, fmt.Errorf("REG_FETCH: empty slug")
	}
	status, body, err := c.get(ctx, "skills/"+escapeSlugPath(slug))
	if err != nil {
		return Manifest{}, err
	}
	if status != http.StatusOK {
		return Manifest{}, statusError(status, body)
	}
	var payload struct {
		Skill Manifest `json:"skill"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return Manifest{}, fmt.Errorf("REG_DECODE: skill manifest: %w", err)
	}
	if payload.Skill.Slug == "" {
		return Manifest{}, fmt.Errorf("REG_DECODE: skill manifest missing slug")
	}
	return payload.Skill, nil
}

// FetchPlugin returns the manifest list for a plugin slug. A 403 means
// the plugin exists but access is denied (private or paid content).
func (c *Client) FetchPlugin(ctx context.Context, slug string) (PluginManifest, error) {
	if slug == "" {
		return PluginManifest{}, fmt.Errorf("REG_FETCH: empty slug")
	}
	status, body, err := c.get(ctx, "plugins/"+escapeSlugPath(slug))
	if err != nil {
		return PluginManifest{}, err
	}
	if status != http.StatusOK {
		return PluginManifest{}, statusError(status, body)
	}
	var payload PluginManifest
	if err := json.Unmarshal(body, &payload); err != nil {
		return PluginManifest{}, fmt.Errorf("REG_DECODE: plugin manifest: %w", err)
	}
	if payload.Plugin.Slug == "" {
		return PluginManifest{}, fmt.Errorf("REG_DECODE: plugin manifest missing slug")
	}
	return payload, nil
}

// DownloadArchive returns the raw archive bytes for a skill slug.
func (c *Client) DownloadArchive(ctx context.Context, slug string) ([]byte, error) {
	status, body, err := c.get(ctx, "skills/"+escapeSlugPath(slug)+"/download")
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, statusError(status, body)
	}
	return body, nil
}

// ReportInstall posts a best-effort install report. Callers dispatch it
// fire-and-forget; the result never affects command outcome.
func (c *Client) ReportInstall(ctx context.Context, slug, version string) (ReportResult, error) {
	payload, err := json.Marshal(map[string]string{"slug": slug, "version": version})
	if err != nil {
		return ReportResult{}, err
	}
	status, body, err := c.post(ctx, "telemetry/install", payload)
	if err != nil {
		return ReportResult{}, err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return ReportResult{}, statusError(status, body)
	}
	var res ReportResult
	if err := json.Unmarshal(body, &res); err != nil {
		return ReportResult{}, fmt.Errorf("REG_DECODE: report result: %w", err)
	}
	return res, nil
}

func (c *Client) get(ctx context.Context, endpoint string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(endpoint), nil)
	if err != nil {
		return 0, nil, err
	}
	return c.do(req)
}

func (c *Client) post(ctx context.Context, endpoint string, payload []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL(endpoint), bytes.NewReader(payload))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) (int, []byte, error) {
	req.Header.Set("User-Agent", userAgent)
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("REG_HTTP: %w", err)
	}
	body, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return 0, nil, fmt.Errorf("REG_HTTP: %w", readErr)
	}
	return resp.StatusCode, body, nil
}

func (c *Client) buildURL(endpoint string) string {
	return c.base + strings.TrimPrefix(endpoint, "/")
}

// escapeSlugPath escapes each slug segment while keeping the separators,
// so org-scoped slugs like "steipete/code-review" stay routable.
func escapeSlugPath(slug string) string {
	segments := strings.Split(slug, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

func ensureTrailingSlash(v string) string {
	if strings.HasSuffix(v, "/") {
		return v
	}
	return v + "/"
}
