package app

import (
	"context"
	"net/http"

	"skilldock/internal/audit"
	"skilldock/internal/config"
	"skilldock/internal/doctor"
	"skilldock/internal/pipeline"
	"skilldock/internal/registry"
	"skilldock/internal/store"
	"skilldock/internal/verify"
)

type Options struct {
	ConfigPath string
	HTTPClient *http.Client
	Pipeline   pipeline.Options
}

// Service wires config, registry client, lock store, and the pipeline
// for the CLI commands.
type Service struct {
	ConfigPath string
	Config     config.Config
	Root       string

	Client   *registry.Client
	Lock     *store.Lock
	Pipeline *pipeline.Service
	Doctor   *doctor.Service
	Audit    *audit.Logger
}

func New(opts Options) (*Service, error) {
	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = config.DefaultConfigPath()
	}
	cfg, err := config.Ensure(configPath)
	if err != nil {
		return nil, err
	}
	root, err := config.ResolveStorageRoot(cfg)
	if err != nil {
		return nil, err
	}
	if err := store.EnsureLayout(root); err != nil {
		return nil, err
	}
	pub, err := verify.ParseKey(cfg.Registry.PublicKey)
	if err != nil {
		return nil, err
	}

	logger := audit.New(store.AuditPath(root))
	client := registry.NewClient(cfg.Registry.BaseURL, opts.HTTPClient)
	lock := store.NewLock(store.LockPath(root))
	pipe := &pipeline.Service{
		Client:    client,
		Lock:      lock,
		Root:      root,
		Agents:    cfg.Agents,
		PublicKey: pub,
		Telemetry: cfg.Registry.Telemetry,
		Source:    cfg.Registry.BaseURL,
		Audit:     logger,
		Opts:      opts.Pipeline,
	}
	doctorSvc := &doctor.Service{ConfigPath: configPath, Root: root, LockPath: store.LockPath(root)}

	return &Service{
		ConfigPath: configPath,
		Config:     cfg,
		Root:       root,
		Client:     client,
		Lock:       lock,
		Pipeline:   pipe,
		Doctor:     doctorSvc,
		Audit:      logger,
	}, nil
}

// InstallOutcome holds whichever install path ran. Exactly one of Skill
// or Batch is set.
type InstallOutcome struct {
	Skill *pipeline.InstallReport `json:"skill,omitempty"`
	Batch *pipeline.BatchResult   `json:"batch,omitempty"`
}

// Install dispatches a slug: the skill endpoint is tried first, and a
// NotFound falls through to the plugin endpoint.
func (s *Service) Install(ctx context.Context, slug string) (InstallOutcome, error) {
	report, err := s.Pipeline.InstallSkill(ctx, slug)
	if err == nil {
		return InstallOutcome{Skill: &report}, nil
	}
	if !registry.IsNotFound(err) {
		return InstallOutcome{}, err
	}
	batch, err := s.Pipeline.InstallPlugin(ctx, slug)
	if err != nil {
		return InstallOutcome{}, err
	}
	return InstallOutcome{Batch: &batch}, nil
}

func (s *Service) List() []store.LockEntry {
	return s.Lock.List()
}
