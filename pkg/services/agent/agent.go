// Package agent owns the DASHIS lifecycle: it wires the normalizer,
// KPI engine, analysis orchestrator and simulation engine into the
// processData → analyze → simulate sequence and holds the latest
// outputs as the authoritative state.
package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/finsight/dashis/pkg/models/domain"
	"github.com/finsight/dashis/pkg/services/analysis"
	"github.com/finsight/dashis/pkg/services/kpi"
	"github.com/finsight/dashis/pkg/services/normalizer"
	"github.com/finsight/dashis/pkg/services/simulation"
	"github.com/rs/zerolog"
)

// Precondition errors. These are returned synchronously and leave the
// lifecycle state untouched.
var (
	ErrNoDataset   = errors.New("no dataset available: run ProcessData first")
	ErrNoKPIs      = errors.New("no KPIs available: run ProcessData first")
	ErrNoScenarios = errors.New("at least one scenario is required")
)

// Identity names an agent and what it can do. Capabilities feed the
// cross-agent compatibility score.
type Identity struct {
	ID            string
	Version       string
	Sector        string
	CompanyName   string
	TeamSize      int
	Capabilities  []string
	FuseAllowList []string
}

// Agent is the DASHIS state machine. It is the sole mutable shared
// resource of the pipeline; concurrent calls into the same instance
// are the caller's responsibility to serialize.
type Agent struct {
	identity Identity

	normalizer   *normalizer.Normalizer
	kpis         *kpi.Engine
	orchestrator *analysis.Orchestrator
	simulator    *simulation.Engine

	state state
}

func New(
	identity Identity,
	norm *normalizer.Normalizer,
	kpiEngine *kpi.Engine,
	orchestrator *analysis.Orchestrator,
	simulator *simulation.Engine,
) *Agent {
	return &Agent{
		identity:     identity,
		normalizer:   norm,
		kpis:         kpiEngine,
		orchestrator: orchestrator,
		simulator:    simulator,
		state:        newState(),
	}
}

// ID returns the agent's identity tag.
func (a *Agent) ID() string { return a.identity.ID }

// Identity returns a copy of the agent's identity.
func (a *Agent) Identity() Identity {
	id := a.identity
	id.Capabilities = append([]string(nil), a.identity.Capabilities...)
	id.FuseAllowList = append([]string(nil), a.identity.FuseAllowList...)
	return id
}

// State returns a snapshot copy of the current state. Callers can poll
// it for {current: error, error: message} after a failed operation.
func (a *Agent) State() Snapshot {
	return a.state.snapshot()
}

// ProcessData runs the full ingestion pipeline: normalize raw records,
// compute KPIs and charts, then replace the stored state wholesale.
// It always re-enters loading first, so it also recovers from the
// error state.
func (a *Agent) ProcessData(ctx context.Context, raw []domain.RawRecord) (Snapshot, error) {
	if err := a.state.transition(StatusLoading); err != nil {
		return a.state.snapshot(), err
	}

	ds := a.normalizer.Process(ctx, raw)
	report := a.kpis.CalculateKPIs(ds)
	charts := a.kpis.CalculateAllCharts(ds.Records)

	a.state.dataset = &ds
	a.state.kpis = report.KPIs
	a.state.charts = &charts
	a.state.analysis = nil
	a.state.simulation = nil

	if err := a.state.transition(StatusReady); err != nil {
		a.state.fail(err.Error())
		return a.state.snapshot(), err
	}

	zerolog.Ctx(ctx).Info().
		Str("agent", a.identity.ID).
		Int("records", len(ds.Records)).
		Int("kpis", len(report.KPIs)).
		Msg("dataset processed")

	return a.state.snapshot(), nil
}

// Analyze orchestrates the four analyzer stages over the stored
// dataset (or an explicitly supplied one). It fails with a
// precondition error when no dataset exists, and transitions to the
// error state only on an orchestration-level failure.
func (a *Agent) Analyze(ctx context.Context, ds *domain.Dataset) (domain.AnalysisResult, error) {
	if ds == nil {
		ds = a.state.dataset
	}
	if ds == nil {
		return domain.AnalysisResult{}, ErrNoDataset
	}

	if err := a.state.transition(StatusAnalyzing); err != nil {
		return domain.AnalysisResult{}, err
	}

	result, err := a.orchestrator.Analyze(ctx, *ds)
	if err != nil {
		a.state.fail(err.Error())
		return domain.AnalysisResult{}, fmt.Errorf("analysis failed: %w", err)
	}

	a.state.analysis = &result
	if err := a.state.transition(StatusReady); err != nil {
		a.state.fail(err.Error())
		return domain.AnalysisResult{}, err
	}
	return result, nil
}

// AnalyzeParallel is Analyze with the settle-all concurrent mode.
func (a *Agent) AnalyzeParallel(ctx context.Context, ds *domain.Dataset) (domain.AnalysisResult, error) {
	if ds == nil {
		ds = a.state.dataset
	}
	if ds == nil {
		return domain.AnalysisResult{}, ErrNoDataset
	}

	if err := a.state.transition(StatusAnalyzing); err != nil {
		return domain.AnalysisResult{}, err
	}

	result, err := a.orchestrator.AnalyzeParallel(ctx, *ds)
	if err != nil {
		a.state.fail(err.Error())
		return domain.AnalysisResult{}, fmt.Errorf("analysis failed: %w", err)
	}

	a.state.analysis = &result
	if err := a.state.transition(StatusReady); err != nil {
		a.state.fail(err.Error())
		return domain.AnalysisResult{}, err
	}
	return result, nil
}

// Simulate applies the what-if levers against the stored dataset and
// KPIs. Both must exist; invalid lever values are rejected before any
// state transition.
func (a *Agent) Simulate(ctx context.Context, params domain.SimulationParams) (domain.SimulationResult, error) {
	if a.state.dataset == nil {
		return domain.SimulationResult{}, ErrNoDataset
	}
	if len(a.state.kpis) == 0 {
		return domain.SimulationResult{}, ErrNoKPIs
	}
	if errs := a.simulator.ValidateParams(params); len(errs) > 0 {
		return domain.SimulationResult{}, errors.Join(errs...)
	}

	if err := a.state.transition(StatusSimulating); err != nil {
		return domain.SimulationResult{}, err
	}

	result := a.simulator.Simulate(*a.state.dataset, a.state.kpis, params)
	a.state.simulation = &result

	if err := a.state.transition(StatusReady); err != nil {
		a.state.fail(err.Error())
		return domain.SimulationResult{}, err
	}

	zerolog.Ctx(ctx).Debug().
		Str("agent", a.identity.ID).
		Str("summary", result.Summary).
		Msg("simulation applied")

	return result, nil
}

// FindBestScenario simulates every scenario and returns only the
// top-scored one. Preconditions are the same as Simulate.
func (a *Agent) FindBestScenario(ctx context.Context, scenarios []domain.Scenario) (domain.ScoredScenario, error) {
	if a.state.dataset == nil {
		return domain.ScoredScenario{}, ErrNoDataset
	}
	if len(a.state.kpis) == 0 {
		return domain.ScoredScenario{}, ErrNoKPIs
	}
	if len(scenarios) == 0 {
		return domain.ScoredScenario{}, ErrNoScenarios
	}

	ranked := a.simulator.FindBestScenario(*a.state.dataset, a.state.kpis, scenarios)
	best := ranked[0]

	zerolog.Ctx(ctx).Debug().
		Str("agent", a.identity.ID).
		Str("scenario", best.Scenario.Name).
		Float64("score", best.Score).
		Msg("best scenario selected")

	return best, nil
}
