package commands

import (
	"context"
	"fmt"

	"github.com/finsight/dashis/pkg/models/domain"
	"github.com/finsight/dashis/pkg/services/agent"
	"github.com/finsight/dashis/pkg/services/analysis"
	"github.com/finsight/dashis/pkg/services/analysis/anomaly"
	"github.com/finsight/dashis/pkg/services/analysis/forecast"
	"github.com/finsight/dashis/pkg/services/analysis/patterns"
	"github.com/finsight/dashis/pkg/services/analysis/scoring"
	"github.com/finsight/dashis/pkg/services/config"
	"github.com/finsight/dashis/pkg/services/kpi"
	"github.com/finsight/dashis/pkg/services/normalizer"
	"github.com/finsight/dashis/pkg/services/simulation"
)

// Reporter renders a pipeline report to the terminal.
type Reporter interface {
	Handle(report *domain.Report) error
}

// CommonFlags are shared by every pipeline command.
type CommonFlags struct {
	ConfigPath  string
	ProfilePath string
	Profile     string
	RecordsPath string
}

// BuildAgent wires the full pipeline from the config file and an
// optional business profile.
func BuildAgent(ctx context.Context, flags CommonFlags) (*agent.Agent, error) {
	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load agent config: %w", err)
	}

	identity := agent.Identity{
		ID:            cfg.Agent.ID,
		Version:       cfg.Agent.Version,
		Capabilities:  cfg.Agent.Capabilities,
		FuseAllowList: cfg.Agent.FuseAllowList,
	}

	analysisCfg := cfg.Analysis
	if flags.Profile != "" {
		registry, err := config.NewRegistry(flags.ProfilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load profile registry: %w", err)
		}
		profile, err := registry.GetProfile(ctx, flags.Profile)
		if err != nil {
			return nil, err
		}
		identity.Sector = profile.Sector
		identity.CompanyName = profile.CompanyName
		identity.TeamSize = profile.TeamSize
		if len(profile.Capabilities) > 0 {
			identity.Capabilities = profile.Capabilities
		}
		analysisCfg.Context = analysis.PatternContext{
			Sector:      profile.Sector,
			CompanyName: profile.CompanyName,
			TeamSize:    profile.TeamSize,
		}
	}

	orchestrator := analysis.NewOrchestrator(
		anomaly.NewDetector(
			anomaly.WithThreshold(cfg.Anomaly.Threshold),
			anomaly.WithMinSamples(cfg.Anomaly.MinSamples),
		),
		forecast.NewPredictor(),
		patterns.NewDetector(),
		scoring.NewScorer(),
		analysisCfg,
	)

	return agent.New(
		identity,
		normalizer.New(),
		kpi.New(),
		orchestrator,
		simulation.New(),
	), nil
}

// Dataset returns the processed dataset from an agent snapshot,
// failing when processing has not produced one.
func Dataset(snap agent.Snapshot) (*domain.Dataset, error) {
	if snap.Dataset == nil {
		return nil, fmt.Errorf("no dataset available")
	}
	return snap.Dataset, nil
}
