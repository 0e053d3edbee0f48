package pipeline

import (
	"context"
	"fmt"

	"skilldock/internal/archive"
	"skilldock/internal/audit"
	"skilldock/internal/fanout"
	"skilldock/internal/registry"
	"skilldock/internal/store"
	"skilldock/internal/verify"
)

type InstallReport struct {
	Slug    string         `json:"slug"`
	Version string         `json:"version"`
	ZipHash string         `json:"zipHash"`
	Warning string         `json:"warning,omitempty"`
	DryRun  bool           `json:"dryRun,omitempty"`
	Fanout  fanout.Summary `json:"fanout"`
}

// InstallSkill runs the full pipeline for a single skill slug. Any
// verification failure is terminal: nothing is written under the
// canonical store until both the manifest signature and the archive
// digest have passed.
func (s *Service) InstallSkill(ctx context.Context, slug string) (InstallReport, error) {
	m, err := s.Client.FetchSkill(ctx, slug)
	if err != nil {
		return InstallReport{}, err
	}
	return s.installManifest(ctx, m, true)
}

func (s *Service) installManifest(ctx context.Context, m registry.Manifest, verifyHash bool) (InstallReport, error) {
	res := verify.Manifest(m, s.PublicKey, s.Opts.SkipVerify)
	if !res.Valid {
		s.log(audit.OpInstall, audit.PhaseVerify, "fail", m.Slug+": "+res.Reason)
		return InstallReport{}, fmt.Errorf("PIPE_MANIFEST_VERIFY: %s: %s", m.Slug, res.Reason)
	}
	report := InstallReport{Slug: m.Slug, Version: m.Version, ZipHash: m.ZipHash, Warning: res.Warning}
	if s.Opts.DryRun {
		report.DryRun = true
		return report, nil
	}

	data, err := s.Client.DownloadArchive(ctx, m.Slug)
	if err != nil {
		return InstallReport{}, err
	}
	if verifyHash {
		if err := verify.Archive(data, m.ZipHash); err != nil {
			s.log(audit.OpInstall, audit.PhaseVerify, "fail", m.Slug+": "+err.Error())
			return InstallReport{}, err
		}
	}

	dir := store.SkillPath(s.Root, m.Slug)
	if err := archive.Extract(data, dir); err != nil {
		return InstallReport{}, err
	}
	report.Fanout = fanout.Install(m.Slug, dir, s.Agents, s.Opts.Global)

	entry := store.LockEntry{
		Slug:    m.Slug,
		Version: m.Version,
		ZipHash: m.ZipHash,
		Source:  s.Source,
	}
	if err := s.Lock.Write(entry); err != nil {
		return InstallReport{}, err
	}
	s.log(audit.OpInstall, audit.PhaseCommit, "ok", fmt.Sprintf("%s@%s agents=%d", m.Slug, m.Version, report.Fanout.SuccessCount))
	return report, nil
}
