package pipeline

import (
	"context"
	"strings"

	"golang.org/x/mod/semver"

	"skilldock/internal/registry"
)

// UpdateStatus is the drift report for one locked slug. HasUpdate is
// driven by zipHash, not version: the hash is the source of truth for
// "has this artifact changed".
type UpdateStatus struct {
	Slug           string `json:"slug"`
	CurrentVersion string `json:"currentVersion"`
	LatestVersion  string `json:"latestVersion,omitempty"`
	HasUpdate      bool   `json:"hasUpdate"`
	Downgrade      bool   `json:"downgrade,omitempty"`
	Missing        bool   `json:"missing,omitempty"`
}

// Check fetches the latest manifest for every locked slug and compares
// hashes. It never mutates the lock. A 404 marks the entry as no longer
// available rather than failing the whole run.
func (s *Service) Check(ctx context.Context) ([]UpdateStatus, error) {
	entries := s.Lock.List()
	out := make([]UpdateStatus, 0, len(entries))
	for _, entry := range entries {
		status := UpdateStatus{Slug: entry.Slug, CurrentVersion: entry.Version}
		m, err := s.Client.FetchSkill(ctx, entry.Slug)
		if err != nil {
			if registry.IsNotFound(err) {
				status.Missing = true
				out = append(out, status)
				continue
			}
			return nil, err
		}
		status.LatestVersion = m.Version
		status.HasUpdate = m.ZipHash != entry.ZipHash
		if status.HasUpdate && olderVersion(m.Version, entry.Version) {
			status.Downgrade = true
		}
		out = append(out, status)
	}
	return out, nil
}

// Update re-runs the full install pipeline for every slug Check flagged.
// Per-slug failures are captured, not terminal.
func (s *Service) Update(ctx context.Context) (BatchResult, error) {
	statuses, err := s.Check(ctx)
	if err != nil {
		return BatchResult{}, err
	}
	out := BatchResult{Results: []SkillResult{}}
	for _, status := range statuses {
		if !status.HasUpdate {
			continue
		}
		row := SkillResult{Slug: status.Slug, Version: status.LatestVersion}
		rep, err := s.InstallSkill(ctx, status.Slug)
		switch {
		case err != nil:
			row.Status = StatusFailed
			row.Err = err.Error()
			out.Failed++
		case rep.DryRun:
			row.Status = StatusPlanned
			out.Planned++
		default:
			row.Status = StatusSuccess
			out.Success++
		}
		out.Results = append(out.Results, row)
	}
	return out, nil
}

// olderVersion reports whether latest is semantically older than current,
// which flags a registry rollback in the check output.
func olderVersion(latest, current string) bool {
	l, c := normalizeSemver(latest), normalizeSemver(current)
	if l == "" || c == "" {
		return false
	}
	return semver.Compare(l, c) < 0
}

func normalizeSemver(v string) string {
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	return v
}
