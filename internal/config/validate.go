package config

import (
	"fmt"
	"net/url"
	"strings"
)

func Validate(cfg Config) error {
	if cfg.Version != SchemaVersion {
		return fmt.Errorf("DOC_CONFIG_VERSION: unsupported version %d", cfg.Version)
	}
	if cfg.Registry.BaseURL == "" {
		return fmt.Errorf("DOC_CONFIG_REGISTRY: missing registry base_url")
	}
	u, err := url.Parse(cfg.Registry.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("DOC_CONFIG_REGISTRY: invalid registry base_url %q", cfg.Registry.BaseURL)
	}
	if cfg.Storage.Root == "" {
		return fmt.Errorf("DOC_CONFIG_STORAGE: missing storage root")
	}
	if cfg.Logging.Level == "" || cfg.Logging.Format == "" {
		return fmt.Errorf("DOC_CONFIG_LOGGING: missing logging level/format")
	}

	ids := map[string]struct{}{}
	for _, a := range cfg.Agents {
		if strings.TrimSpace(a.ID) == "" {
			return fmt.Errorf("AGT_CONFIG_AGENT: agent id is required")
		}
		if _, ok := ids[a.ID]; ok {
			return fmt.Errorf("AGT_CONFIG_AGENT: duplicate agent %q", a.ID)
		}
		ids[a.ID] = struct{}{}
		if a.Enabled && a.GlobalPath == "" && a.ProjectPath == "" {
			return fmt.Errorf("AGT_CONFIG_AGENT: agent %q has no target path", a.ID)
		}
	}
	return nil
}
