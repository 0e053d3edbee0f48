package config

// Config is the frozen v1 global schema.
type Config struct {
	Version  int            `toml:"version"`
	Registry RegistryConfig `toml:"registry"`
	Storage  StorageConfig  `toml:"storage"`
	Logging  LoggingConfig  `toml:"logging"`
	Agents   []AgentConfig  `toml:"agents"`
}

type RegistryConfig struct {
	BaseURL   string `toml:"base_url" json:"baseUrl"`
	PublicKey string `toml:"public_key,omitempty" json:"publicKey,omitempty"`
	Telemetry bool   `toml:"telemetry" json:"telemetry"`
}

type StorageConfig struct {
	Root string `toml:"root"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// AgentConfig identifies one installation target. The paths are supplied
// by the user; skilldock never derives them from agent internals.
type AgentConfig struct {
	ID          string `toml:"id" json:"id"`
	Name        string `toml:"name" json:"name"`
	Enabled     bool   `toml:"enabled" json:"enabled"`
	GlobalPath  string `toml:"global_path" json:"globalPath"`
	ProjectPath string `toml:"project_path,omitempty" json:"projectPath,omitempty"`
}
