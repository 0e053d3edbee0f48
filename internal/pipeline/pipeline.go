package pipeline

import (
	"crypto/ed25519"

	"skilldock/internal/audit"
	"skilldock/internal/config"
	"skilldock/internal/registry"
	"skilldock/internal/store"
)

// Options is the immutable per-command configuration. It is constructed
// once by the caller and threaded through every component call.
type Options struct {
	SkipVerify bool
	Overwrite  bool
	Global     bool
	DryRun     bool
}

// Service composes the install pipeline: fetch manifest, verify
// signature, download, verify digest, extract, fan out, record lock.
type Service struct {
	Client    *registry.Client
	Lock      *store.Lock
	Root      string
	Agents    []config.AgentConfig
	PublicKey ed25519.PublicKey
	Telemetry bool
	Source    string
	Audit     *audit.Logger
	Opts      Options
}

func (s *Service) log(operation, phase, status, message string) {
	_ = s.Audit.Phase(operation, phase, status, message)
}
