package doctor

import (
	"context"
	"encoding/json"
	"os"

	"skilldock/internal/config"
	"skilldock/internal/store"
)

type Finding struct {
	Code    string `json:"code"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

type Report struct {
	Healthy  bool      `json:"healthy"`
	Findings []Finding `json:"findings"`
}

type Service struct {
	ConfigPath string
	Root       string
	LockPath   string
}

// Run inspects the local environment: config document, storage layout,
// lock file, and every enabled agent's target root. It never mutates
// anything.
func (s *Service) Run(_ context.Context) Report {
	findings := []Finding{}
	var agents []config.AgentConfig

	if _, err := os.Stat(s.ConfigPath); err != nil {
		findings = append(findings, Finding{Code: "DOC_CONFIG_MISSING", Level: "error", Message: err.Error()})
	} else if cfg, err := config.Load(s.ConfigPath); err != nil {
		findings = append(findings, Finding{Code: "DOC_CONFIG_INVALID", Level: "error", Message: err.Error()})
	} else {
		agents = cfg.Agents
	}

	if err := store.EnsureLayout(s.Root); err != nil {
		findings = append(findings, Finding{Code: "DOC_STORE_ROOT", Level: "error", Message: err.Error()})
	}

	// The lock store reads a broken file as empty by contract, so probe
	// the raw document here to surface corruption as a warning.
	if blob, err := os.ReadFile(s.LockPath); err == nil {
		var doc store.LockFile
		if err := json.Unmarshal(blob, &doc); err != nil {
			findings = append(findings, Finding{Code: "LCK_PARSE", Level: "warn", Message: "lock file is unreadable and will be treated as empty: " + err.Error()})
		}
	}

	for _, agent := range agents {
		if !agent.Enabled {
			continue
		}
		if agent.GlobalPath == "" {
			continue
		}
		expanded, err := config.ExpandPath(agent.GlobalPath)
		if err != nil {
			findings = append(findings, Finding{Code: "AGT_PATH", Level: "warn", Message: agent.ID + ": " + err.Error()})
			continue
		}
		if _, err := os.Stat(expanded); err != nil && !os.IsNotExist(err) {
			findings = append(findings, Finding{Code: "AGT_PATH", Level: "warn", Message: agent.ID + ": " + err.Error()})
		}
	}

	healthy := true
	for _, f := range findings {
		if f.Level == "error" {
			healthy = false
			break
		}
	}
	return Report{Healthy: healthy, Findings: findings}
}
