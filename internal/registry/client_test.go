package registry

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchSkillDecodesEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/skills/writer" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"skill": Manifest{
			Name: "Writer", Slug: "writer", Version: "1.0.0", ZipHash: "sha256:abc",
		}})
	}))
	defer server.Close()

	c := NewClient(server.URL+"/api/v1", server.Client())
	m, err := c.FetchSkill(context.Background(), "writer")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if m.Slug != "writer" || m.Version != "1.0.0" || m.ZipHash != "sha256:abc" {
		t.Fatalf("unexpected manifest: %+v", m)
	}
}

func TestFetchSkillNotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	c := NewClient(server.URL+"/", server.Client())
	_, err := c.FetchSkill(context.Background(), "ghost")
	if !IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if IsForbidden(err) {
		t.Fatalf("expected NotFound to not classify as Forbidden")
	}
}

func TestFetchPluginForbiddenCarriesServerMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "plugin requires a paid plan"})
	}))
	defer server.Close()

	c := NewClient(server.URL, server.Client())
	_, err := c.FetchPlugin(context.Background(), "pro-pack")
	if !IsForbidden(err) {
		t.Fatalf("expected Forbidden, got %v", err)
	}
	var re *Error
	if !errors.As(err, &re) || re.Status != http.StatusForbidden || re.Message != "plugin requires a paid plan" {
		t.Fatalf("expected status and server message, got %+v", re)
	}
}

func TestFetchPluginDecodesManifestList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/plugins/writing-pack" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(PluginManifest{
			Plugin: PluginInfo{Name: "Writing Pack", Slug: "writing-pack", Version: "2.0.0"},
			Skills: []Manifest{
				{Name: "Writer", Slug: "writer", Version: "1.0.0", ZipHash: "sha256:abc"},
				{Name: "Editor", Slug: "editor", Version: "1.1.0", ZipHash: "sha256:def"},
			},
			GeneratedAt: "2026-08-01T00:00:00Z",
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, server.Client())
	pm, err := c.FetchPlugin(context.Background(), "writing-pack")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if pm.Plugin.Slug != "writing-pack" || len(pm.Skills) != 2 {
		t.Fatalf("unexpected plugin manifest: %+v", pm)
	}
}

func TestDownloadArchiveReturnsRawBytes(t *testing.T) {
	payload := []byte{0x50, 0x4b, 0x03, 0x04, 0xff}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/skills/writer/download" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	c := NewClient(server.URL, server.Client())
	got, err := c.DownloadArchive(context.Background(), "writer")
	if err != nil {
		t.Fatalf("download failed: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("expected raw body back, got %v", got)
	}
}

func TestReportInstallDecodesAck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/telemetry/install" {
			http.NotFound(w, r)
			return
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		_ = json.NewEncoder(w).Encode(ReportResult{Success: true, Duplicate: body["slug"] == "writer"})
	}))
	defer server.Close()

	c := NewClient(server.URL, server.Client())
	res, err := c.ReportInstall(context.Background(), "writer", "1.0.0")
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	if !res.Success || !res.Duplicate {
		t.Fatalf("unexpected ack: %+v", res)
	}
}

func TestEscapeSlugPathKeepsSeparators(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"writer", "writer"},
		{"steipete/code-review", "steipete/code-review"},
		{"has space/slug", "has%20space/slug"},
	}
	for _, tc := range tests {
		if got := escapeSlugPath(tc.input); got != tc.want {
			t.Errorf("escapeSlugPath(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
