package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sustactical/squadlink/pkg/analysis"
	"github.com/sustactical/squadlink/pkg/audit"
	"github.com/sustactical/squadlink/pkg/cache"
	cachesqlite "github.com/sustactical/squadlink/pkg/cache/sqlite"
	"github.com/sustactical/squadlink/pkg/config"
	"github.com/sustactical/squadlink/pkg/retry"
	"github.com/sustactical/squadlink/pkg/upstream"
	"github.com/sustactical/squadlink/pkg/upstream/gemini"
	"github.com/sustactical/squadlink/pkg/upstream/openai"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func newUpstream(ctx context.Context, cfg config.UpstreamConfig) (upstream.Client, error) {
	switch cfg.Provider {
	case "openai":
		return openai.New(openai.Config{APIKey: cfg.APIKey, Model: cfg.Model, BaseURL: cfg.BaseURL})
	default:
		return gemini.New(ctx, gemini.Config{APIKey: cfg.APIKey, Model: cfg.Model, BaseURL: cfg.BaseURL})
	}
}

func openCacheStore(cfg *config.Config) (cache.Store, error) {
	if cfg.Cache.Backend == "sqlite" {
		s, err := cachesqlite.New(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("init cache: %w", err)
		}
		return s, nil
	}
	return cache.NewMemory(), nil
}

// buildService wires the analysis pipeline. The returned cleanup drains
// pending audit writes before closing stores.
func buildService(ctx context.Context, cfg *config.Config, log *zap.Logger) (*analysis.Service, func(), error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	up, err := newUpstream(ctx, cfg.Upstream)
	if err != nil {
		return nil, nil, fmt.Errorf("init upstream: %w", err)
	}

	store, err := openCacheStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	auditStore, err := audit.Open(cfg.Audit, log)
	if err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("init audit log: %w", err)
	}

	svc := analysis.New(analysis.Deps{
		Upstream: up,
		Store:    store,
		Audit:    auditStore,
		Logger:   log,
		Retry: retry.Policy{
			MaxRetries:   cfg.Retry.MaxRetries,
			InitialDelay: cfg.Retry.InitialDelay,
		},
		AnalysisTTL:     cfg.Cache.AnalysisTTL,
		BriefingTTL:     cfg.Cache.BriefingTTL,
		UpstreamTimeout: cfg.Upstream.Timeout,
	})

	cleanup := func() {
		svc.Wait()
		_ = auditStore.Close()
		_ = store.Close()
	}
	return svc, cleanup, nil
}
