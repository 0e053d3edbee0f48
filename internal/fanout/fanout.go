package fanout

import (
	"fmt"
	"os"
	"path/filepath"

	"skilldock/internal/config"
	"skilldock/internal/fsutil"
)

// Result is the per-agent outcome. A batch of these never collapses to a
// single boolean: callers get one row per attempted agent.
type Result struct {
	AgentID       string `json:"agentId"`
	Success       bool   `json:"success"`
	SymlinkFailed bool   `json:"symlinkFailed,omitempty"`
	Err           string `json:"error,omitempty"`
}

type Summary struct {
	SuccessCount int      `json:"successCount"`
	Agents       []Result `json:"agents"`
}

// Swapped out in tests to exercise the copy fallback.
var symlink = os.Symlink

// Install distributes the canonical store directory for slug into every
// enabled agent's target directory, preferring a symlink and falling back
// to a recursive copy. Agents are independent: one failure never aborts
// the rest.
func Install(slug, storeDir string, agents []config.AgentConfig, global bool) Summary {
	summary := Summary{Agents: []Result{}}
	for _, agent := range agents {
		if !agent.Enabled {
			continue
		}
		res := installOne(agent, slug, storeDir, global)
		if res.Success {
			summary.SuccessCount++
		}
		summary.Agents = append(summary.Agents, res)
	}
	return summary
}

func installOne(agent config.AgentConfig, slug, storeDir string, global bool) Result {
	res := Result{AgentID: agent.ID}
	target, err := targetPath(agent, slug, global)
	if err != nil {
		res.Err = err.Error()
		return res
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		res.Err = fmt.Sprintf("FAN_TARGET_DIR: %v", err)
		return res
	}
	// Replace whatever a previous install left here, link or copy.
	if err := os.RemoveAll(target); err != nil {
		res.Err = fmt.Sprintf("FAN_TARGET_CLEAR: %v", err)
		return res
	}
	if err := symlink(storeDir, target); err == nil {
		res.Success = true
		return res
	}
	// Symlink denied or unsupported on this filesystem: fall back to a
	// full copy of the canonical directory.
	if err := fsutil.CopyDir(storeDir, target); err != nil {
		res.SymlinkFailed = true
		res.Err = fmt.Sprintf("FAN_COPY: %v", err)
		return res
	}
	res.Success = true
	res.SymlinkFailed = true
	return res
}

func targetPath(agent config.AgentConfig, slug string, global bool) (string, error) {
	root := agent.GlobalPath
	if !global {
		root = agent.ProjectPath
	}
	if root == "" {
		return "", fmt.Errorf("FAN_NO_TARGET: agent %q has no target path for this scope", agent.ID)
	}
	expanded, err := config.ExpandPath(root)
	if err != nil {
		return "", fmt.Errorf("FAN_NO_TARGET: agent %q: %w", agent.ID, err)
	}
	return filepath.Join(expanded, filepath.FromSlash(slug)), nil
}
