package app

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/opencontainers/go-digest"

	"skilldock/internal/config"
	"skilldock/internal/pipeline"
	"skilldock/internal/registry"
	"skilldock/internal/store"
)

func skillZip(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("SKILL.md")
	if err != nil {
		t.Fatalf("zip create failed: %v", err)
	}
	if _, err := f.Write([]byte("# Writer")); err != nil {
		t.Fatalf("zip write failed: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close failed: %v", err)
	}
	return buf.Bytes()
}

// testServer serves one standalone skill and one plugin wrapping a
// second skill, both unsigned.
func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	data := skillZip(t)
	hash := digest.SHA256.FromBytes(data).String()
	writer := registry.Manifest{Name: "Writer", Slug: "writer", Version: "1.0.0", ZipHash: hash}
	editor := registry.Manifest{Name: "Editor", Slug: "editor", Version: "1.0.0", ZipHash: hash}

	mux := http.NewServeMux()
	mux.HandleFunc("/skills/writer", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]registry.Manifest{"skill": writer})
	})
	mux.HandleFunc("/skills/writer/download", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(data)
	})
	mux.HandleFunc("/skills/editor/download", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(data)
	})
	mux.HandleFunc("/plugins/writing-pack", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(registry.PluginManifest{
			Plugin: registry.PluginInfo{Name: "Writing Pack", Slug: "writing-pack", Version: "1.0.0"},
			Skills: []registry.Manifest{editor},
		})
	})
	mux.HandleFunc("/plugins/pro-pack", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "plugin requires a paid plan"})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newService(t *testing.T, server *httptest.Server) *Service {
	t.Helper()
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")
	cfg := config.DefaultConfig()
	cfg.Registry.BaseURL = server.URL
	cfg.Registry.Telemetry = false
	cfg.Storage.Root = filepath.Join(dir, "data")
	cfg.Agents = []config.AgentConfig{{ID: "claude", Enabled: true, GlobalPath: filepath.Join(dir, "agent")}}
	if err := config.Save(configPath, cfg); err != nil {
		t.Fatalf("save config failed: %v", err)
	}
	svc, err := New(Options{
		ConfigPath: configPath,
		HTTPClient: server.Client(),
		Pipeline:   pipeline.Options{SkipVerify: true, Global: true},
	})
	if err != nil {
		t.Fatalf("service wiring failed: %v", err)
	}
	return svc
}

func TestNewCreatesStorageLayout(t *testing.T) {
	svc := newService(t, testServer(t))
	if _, err := os.Stat(store.StoreRoot(svc.Root)); err != nil {
		t.Fatalf("expected store root to exist: %v", err)
	}
	if svc.Config.Registry.BaseURL == "" {
		t.Fatalf("expected loaded config on the service")
	}
}

func TestInstallDispatchesSkillFirst(t *testing.T) {
	svc := newService(t, testServer(t))
	out, err := svc.Install(context.Background(), "writer")
	if err != nil {
		t.Fatalf("install failed: %v", err)
	}
	if out.Skill == nil || out.Batch != nil {
		t.Fatalf("expected the skill path, got %+v", out)
	}
	if _, ok := svc.Lock.Get("writer"); !ok {
		t.Fatalf("expected lock entry for writer")
	}
}

func TestInstallFallsBackToPlugin(t *testing.T) {
	svc := newService(t, testServer(t))
	out, err := svc.Install(context.Background(), "writing-pack")
	if err != nil {
		t.Fatalf("install failed: %v", err)
	}
	if out.Batch == nil || out.Skill != nil {
		t.Fatalf("expected the plugin path, got %+v", out)
	}
	if out.Batch.Success != 1 || len(out.Batch.Results) != 1 {
		t.Fatalf("unexpected batch: %+v", out.Batch)
	}
	if _, ok := svc.Lock.Get("editor"); !ok {
		t.Fatalf("expected lock entry for the plugin's skill")
	}
}

func TestInstallSurfacesForbiddenPlugin(t *testing.T) {
	svc := newService(t, testServer(t))
	_, err := svc.Install(context.Background(), "pro-pack")
	if !registry.IsForbidden(err) {
		t.Fatalf("expected Forbidden, got %v", err)
	}
}

func TestInstallUnknownSlug(t *testing.T) {
	svc := newService(t, testServer(t))
	_, err := svc.Install(context.Background(), "ghost")
	if !registry.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}
