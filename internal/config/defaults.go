package config

import "path/filepath"

const (
	SchemaVersion = 1
)

// DefaultConfig returns a fully-populated v1 config document.
func DefaultConfig() Config {
	return Config{
		Version: SchemaVersion,
		Registry: RegistryConfig{
			BaseURL:   "https://registry.skilldock.dev/api/v1/",
			Telemetry: true,
		},
		Storage: StorageConfig{
			Root: DefaultStorageRoot(),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Agents: []AgentConfig{
			{ID: "claude", Name: "Claude Code", Enabled: true, GlobalPath: "~/.claude/skills", ProjectPath: filepath.Join(".claude", "skills")},
			{ID: "codex", Name: "Codex", Enabled: true, GlobalPath: "~/.codex/skills", ProjectPath: filepath.Join(".codex", "skills")},
			{ID: "cursor", Name: "Cursor", Enabled: false, GlobalPath: "~/.cursor/skills", ProjectPath: filepath.Join(".cursor", "skills")},
		},
	}
}
