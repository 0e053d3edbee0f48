package doctor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"skilldock/internal/config"
	"skilldock/internal/store"
)

func writeConfig(t *testing.T, path string, agentRoot string) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Registry.BaseURL = "https://registry.example.test/api/v1/"
	cfg.Storage.Root = filepath.Dir(path)
	cfg.Agents = []config.AgentConfig{{ID: "claude", Enabled: true, GlobalPath: agentRoot}}
	if err := config.Save(path, cfg); err != nil {
		t.Fatalf("save config failed: %v", err)
	}
}

func TestRunHealthyEnvironment(t *testing.T) {
	root := t.TempDir()
	configPath := filepath.Join(root, "config.toml")
	writeConfig(t, configPath, t.TempDir())

	svc := &Service{ConfigPath: configPath, Root: root, LockPath: store.LockPath(root)}
	report := svc.Run(context.Background())
	if !report.Healthy {
		t.Fatalf("expected healthy report, got %+v", report)
	}
	if len(report.Findings) != 0 {
		t.Fatalf("expected no findings, got %+v", report.Findings)
	}
}

func TestRunMissingConfig(t *testing.T) {
	root := t.TempDir()
	svc := &Service{ConfigPath: filepath.Join(root, "nope.toml"), Root: root, LockPath: store.LockPath(root)}
	report := svc.Run(context.Background())
	if report.Healthy {
		t.Fatalf("expected unhealthy report")
	}
	if len(report.Findings) == 0 || report.Findings[0].Code != "DOC_CONFIG_MISSING" {
		t.Fatalf("expected DOC_CONFIG_MISSING, got %+v", report.Findings)
	}
}

func TestRunInvalidConfig(t *testing.T) {
	root := t.TempDir()
	configPath := filepath.Join(root, "config.toml")
	if err := os.WriteFile(configPath, []byte("version = [broken"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	svc := &Service{ConfigPath: configPath, Root: root, LockPath: store.LockPath(root)}
	report := svc.Run(context.Background())
	if report.Healthy {
		t.Fatalf("expected unhealthy report")
	}
	if report.Findings[0].Code != "DOC_CONFIG_INVALID" {
		t.Fatalf("expected DOC_CONFIG_INVALID, got %+v", report.Findings)
	}
}

func TestRunCorruptLockIsWarningOnly(t *testing.T) {
	root := t.TempDir()
	configPath := filepath.Join(root, "config.toml")
	writeConfig(t, configPath, t.TempDir())
	if err := store.EnsureLayout(root); err != nil {
		t.Fatalf("ensure layout failed: %v", err)
	}
	if err := os.WriteFile(store.LockPath(root), []byte("{half a document"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	svc := &Service{ConfigPath: configPath, Root: root, LockPath: store.LockPath(root)}
	report := svc.Run(context.Background())
	if !report.Healthy {
		t.Fatalf("expected corrupt lock to stay a warning, got %+v", report)
	}
	found := false
	for _, f := range report.Findings {
		if f.Code == "LCK_PARSE" && f.Level == "warn" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected LCK_PARSE warning, got %+v", report.Findings)
	}
}
