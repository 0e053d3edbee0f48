package config

import "strings"

func Normalize(cfg Config) Config {
	if cfg.Version == 0 {
		cfg.Version = SchemaVersion
	}
	if cfg.Registry.BaseURL == "" {
		cfg.Registry.BaseURL = DefaultConfig().Registry.BaseURL
	}
	if !strings.HasSuffix(cfg.Registry.BaseURL, "/") {
		cfg.Registry.BaseURL += "/"
	}
	if cfg.Storage.Root == "" {
		cfg.Storage.Root = DefaultStorageRoot()
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	for i := range cfg.Agents {
		if cfg.Agents[i].Name == "" {
			cfg.Agents[i].Name = cfg.Agents[i].ID
		}
	}
	return cfg
}
