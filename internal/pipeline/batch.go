package pipeline

import (
	"context"

	"skilldock/internal/registry"
)

type SkillStatus string

const (
	StatusSuccess SkillStatus = "success"
	StatusSkipped SkillStatus = "skipped"
	StatusFailed  SkillStatus = "failed"
	// StatusPlanned marks a dry run: the manifest verified but nothing
	// was downloaded or written.
	StatusPlanned SkillStatus = "planned"
)

type SkillResult struct {
	Slug    string      `json:"slug"`
	Version string      `json:"version,omitempty"`
	Status  SkillStatus `json:"status"`
	Err     string      `json:"error,omitempty"`
}

// BatchResult aggregates a plugin install. Results always has one row per
// input skill, whatever failed.
type BatchResult struct {
	Plugin  string        `json:"plugin,omitempty"`
	Success int           `json:"success"`
	Skipped int           `json:"skipped"`
	Failed  int           `json:"failed"`
	Planned int           `json:"planned,omitempty"`
	Results []SkillResult `json:"results"`
}

// InstallPlugin fetches a plugin manifest and installs every skill it
// lists, sequentially. A 403 from the registry surfaces here as a
// Forbidden error (private or paid plugin).
func (s *Service) InstallPlugin(ctx context.Context, slug string) (BatchResult, error) {
	pm, err := s.Client.FetchPlugin(ctx, slug)
	if err != nil {
		return BatchResult{}, err
	}
	res := s.installSkills(ctx, pm.Skills)
	res.Plugin = pm.Plugin.Slug
	if !s.Opts.DryRun {
		s.reportInstalls(res)
	}
	return res, nil
}

func (s *Service) installSkills(ctx context.Context, skills []registry.Manifest) BatchResult {
	out := BatchResult{Results: make([]SkillResult, 0, len(skills))}
	for _, m := range skills {
		row := SkillResult{Slug: m.Slug, Version: m.Version}
		if prev, ok := s.Lock.Get(m.Slug); ok && prev.ZipHash == m.ZipHash && !s.Opts.Overwrite {
			row.Status = StatusSkipped
			out.Skipped++
			out.Results = append(out.Results, row)
			continue
		}
		rep, err := s.installManifest(ctx, m, !s.Opts.SkipVerify)
		if err != nil {
			row.Status = StatusFailed
			row.Err = err.Error()
			out.Failed++
			out.Results = append(out.Results, row)
			continue
		}
		if rep.DryRun {
			row.Status = StatusPlanned
			out.Planned++
			out.Results = append(out.Results, row)
			continue
		}
		row.Status = StatusSuccess
		out.Success++
		out.Results = append(out.Results, row)
	}
	return out
}

// reportInstalls dispatches one telemetry report per installed skill as
// background goroutines. They are never joined and their errors are
// discarded by contract; the command's exit code is already decided.
func (s *Service) reportInstalls(res BatchResult) {
	if !s.Telemetry {
		return
	}
	for _, row := range res.Results {
		if row.Status != StatusSuccess {
			continue
		}
		go func(slug, version string) {
			_, _ = s.Client.ReportInstall(context.Background(), slug, version)
		}(row.Slug, row.Version)
	}
}
