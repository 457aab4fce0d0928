package analysis

import (
	"context"
	"time"

	"github.com/finsight/dashis/pkg/models/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// StageGate controls whether a stage runs and how many records it
// needs before it is worth running.
type StageGate struct {
	Enabled    bool `mapstructure:"enabled"`
	MinRecords int  `mapstructure:"min_records"`
}

// Config gates the four analyzer stages.
type Config struct {
	Anomalies   StageGate      `mapstructure:"anomalies"`
	Predictions StageGate      `mapstructure:"predictions"`
	Patterns    StageGate      `mapstructure:"patterns"`
	Scoring     StageGate      `mapstructure:"scoring"`
	Context     PatternContext `mapstructure:"-"`
}

// DefaultConfig enables every stage with its documented record floor.
func DefaultConfig() Config {
	return Config{
		Anomalies:   StageGate{Enabled: true, MinRecords: 1},
		Predictions: StageGate{Enabled: true, MinRecords: 10},
		Patterns:    StageGate{Enabled: true, MinRecords: 20},
		Scoring:     StageGate{Enabled: true},
	}
}

// Orchestrator sequences the four pluggable analyzers over a dataset,
// isolating each stage's failure: a throwing collaborator degrades to
// an empty result for that stage only.
type Orchestrator struct {
	anomalies   AnomalyDetector
	predictions CashFlowPredictor
	patterns    PatternDetector
	scoring     Scorer
	config      Config
}

func NewOrchestrator(
	anomalies AnomalyDetector,
	predictions CashFlowPredictor,
	patterns PatternDetector,
	scoring Scorer,
	config Config,
) *Orchestrator {
	return &Orchestrator{
		anomalies:   anomalies,
		predictions: predictions,
		patterns:    patterns,
		scoring:     scoring,
		config:      config,
	}
}

// Analyze runs the enabled stages sequentially, anomaly first. It only
// returns an error on an orchestration-level failure outside the four
// guarded stages; per-stage failures degrade to neutral results.
func (o *Orchestrator) Analyze(ctx context.Context, ds domain.Dataset) (domain.AnalysisResult, error) {
	start := time.Now()
	result := emptyResult(len(ds.Records))

	if executed := o.runAnomalies(ctx, ds.Records, &result); executed {
		result.Metadata.ModulesExecuted = append(result.Metadata.ModulesExecuted, StageAnomalies)
	}
	if executed := o.runPredictions(ctx, ds.Records, &result); executed {
		result.Metadata.ModulesExecuted = append(result.Metadata.ModulesExecuted, StagePredictions)
	}
	if executed := o.runPatterns(ctx, ds.Records, &result); executed {
		result.Metadata.ModulesExecuted = append(result.Metadata.ModulesExecuted, StagePatterns)
	}
	if executed := o.runScoring(ctx, ds, &result); executed {
		result.Metadata.ModulesExecuted = append(result.Metadata.ModulesExecuted, StageScoring)
	}

	result.Metadata.ExecutionTimeMs = time.Since(start).Milliseconds()
	return result, nil
}

// AnalyzeParallel dispatches all four stages concurrently with
// settle-all semantics: every stage's outcome is captured
// independently and no stage's failure cancels a sibling.
// ModulesExecuted is populated in settle order and is informational
// only in this mode.
func (o *Orchestrator) AnalyzeParallel(ctx context.Context, ds domain.Dataset) (domain.AnalysisResult, error) {
	start := time.Now()
	result := emptyResult(len(ds.Records))

	type settled struct {
		stage    string
		executed bool
		apply    func(*domain.AnalysisResult)
	}
	outcomes := make(chan settled, 4)

	go func() {
		var partial domain.AnalysisResult
		executed := o.runAnomalies(ctx, ds.Records, &partial)
		outcomes <- settled{StageAnomalies, executed, func(r *domain.AnalysisResult) {
			r.Anomalies = partial.Anomalies
		}}
	}()
	go func() {
		var partial domain.AnalysisResult
		executed := o.runPredictions(ctx, ds.Records, &partial)
		outcomes <- settled{StagePredictions, executed, func(r *domain.AnalysisResult) {
			r.CashFlowPredictions = partial.CashFlowPredictions
			r.PredictionAlerts = partial.PredictionAlerts
			r.SeasonalityDetected = partial.SeasonalityDetected
		}}
	}()
	go func() {
		var partial domain.AnalysisResult
		executed := o.runPatterns(ctx, ds.Records, &partial)
		outcomes <- settled{StagePatterns, executed, func(r *domain.AnalysisResult) {
			r.Patterns = partial.Patterns
		}}
	}()
	go func() {
		var partial domain.AnalysisResult
		executed := o.runScoring(ctx, ds, &partial)
		outcomes <- settled{StageScoring, executed, func(r *domain.AnalysisResult) {
			r.Score = partial.Score
		}}
	}()

	for i := 0; i < 4; i++ {
		s := <-outcomes
		s.apply(&result)
		if s.executed {
			result.Metadata.ModulesExecuted = append(result.Metadata.ModulesExecuted, s.stage)
		}
	}

	result.Metadata.ExecutionTimeMs = time.Since(start).Milliseconds()
	return result, nil
}

func emptyResult(recordCount int) domain.AnalysisResult {
	return domain.AnalysisResult{
		Anomalies:           []domain.Anomaly{},
		CashFlowPredictions: []domain.CashFlowPrediction{},
		PredictionAlerts:    []domain.PredictionAlert{},
		Patterns:            []domain.Pattern{},
		Metadata: domain.AnalysisMetadata{
			AnalyzedAt:      time.Now(),
			RecordCount:     recordCount,
			ModulesExecuted: []string{},
		},
	}
}

// runAnomalies executes the anomaly stage. The boolean reports whether
// the stage contributed non-empty output, which is what qualifies it
// for the ModulesExecuted log.
func (o *Orchestrator) runAnomalies(ctx context.Context, records []domain.CanonicalRecord, out *domain.AnalysisResult) bool {
	gate := o.config.Anomalies
	if !gate.Enabled || len(records) < gate.MinRecords || o.anomalies == nil {
		return false
	}

	detected, err := o.anomalies.Detect(ctx, records)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("anomaly detection failed, continuing without it")
		return false
	}

	for _, d := range detected {
		out.Anomalies = append(out.Anomalies, mapAnomaly(d))
	}
	return len(out.Anomalies) > 0
}

func mapAnomaly(d DetectedAnomaly) domain.Anomaly {
	a := domain.Anomaly{
		ID:          d.ID,
		Date:        d.Date,
		Type:        d.Type,
		Severity:    d.Severity,
		Description: d.Description,
		Details:     d.Details,
		Confidence:  d.Confidence,
		Transaction: d.Transaction,
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if d.ExpectedValue != nil && d.Deviation != nil {
		a.ExpectedRange = &domain.ExpectedRange{
			Min: *d.ExpectedValue - *d.Deviation,
			Max: *d.ExpectedValue + *d.Deviation,
		}
	}
	return a
}

func (o *Orchestrator) runPredictions(ctx context.Context, records []domain.CanonicalRecord, out *domain.AnalysisResult) bool {
	gate := o.config.Predictions
	if !gate.Enabled || len(records) < gate.MinRecords || o.predictions == nil {
		return false
	}

	outcome, err := o.predictions.Predict(ctx, records)
	if err != nil || !outcome.Success {
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("cash-flow prediction failed, continuing without it")
		} else {
			zerolog.Ctx(ctx).Warn().Str("reason", outcome.Err).Msg("predictor reported failure, continuing without it")
		}
		out.SeasonalityDetected = false
		return false
	}

	out.CashFlowPredictions = append(out.CashFlowPredictions, outcome.Predictions...)
	out.PredictionAlerts = append(out.PredictionAlerts, outcome.Alerts...)
	out.SeasonalityDetected = outcome.SeasonalityDetected
	return len(out.CashFlowPredictions) > 0
}

func (o *Orchestrator) runPatterns(ctx context.Context, records []domain.CanonicalRecord, out *domain.AnalysisResult) bool {
	gate := o.config.Patterns
	if !gate.Enabled || len(records) < gate.MinRecords || o.patterns == nil {
		return false
	}

	outcome, err := o.patterns.Detect(ctx, records, o.config.Context)
	if err != nil || !outcome.Success {
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("pattern detection failed, continuing without it")
		} else {
			zerolog.Ctx(ctx).Warn().Str("reason", outcome.Err).Msg("pattern detector reported failure, continuing without it")
		}
		return false
	}

	for _, p := range outcome.Patterns {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		out.Patterns = append(out.Patterns, p)
	}
	return len(out.Patterns) > 0
}

func (o *Orchestrator) runScoring(ctx context.Context, ds domain.Dataset, out *domain.AnalysisResult) bool {
	if !o.config.Scoring.Enabled || o.scoring == nil {
		return false
	}

	score, err := o.scoring.Score(ctx, ScoringInput{
		Dataset:        ds,
		Summary:        map[string]any{},
		KPIs:           []domain.KPI{},
		QualityMetrics: map[string]float64{},
	})
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("scoring failed, continuing without it")
		return false
	}

	out.Score = score
	return score != nil
}
