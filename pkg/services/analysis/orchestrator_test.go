package analysis

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/finsight/dashis/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDetector struct {
	anomalies []DetectedAnomaly
	err       error
}

func (s *stubDetector) Detect(context.Context, []domain.CanonicalRecord) ([]DetectedAnomaly, error) {
	return s.anomalies, s.err
}

type stubPredictor struct {
	outcome PredictionOutcome
	err     error
}

func (s *stubPredictor) Predict(context.Context, []domain.CanonicalRecord) (PredictionOutcome, error) {
	return s.outcome, s.err
}

type stubPatterns struct {
	outcome PatternOutcome
	err     error
	gotCtx  PatternContext
}

func (s *stubPatterns) Detect(_ context.Context, _ []domain.CanonicalRecord, pctx PatternContext) (PatternOutcome, error) {
	s.gotCtx = pctx
	return s.outcome, s.err
}

type stubScorer struct {
	score *domain.FinSightScore
	err   error
}

func (s *stubScorer) Score(context.Context, ScoringInput) (*domain.FinSightScore, error) {
	return s.score, s.err
}

func recordsOf(n int) domain.Dataset {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	records := make([]domain.CanonicalRecord, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, domain.CanonicalRecord{
			Date:   start.AddDate(0, 0, i),
			Kind:   domain.KindIncome,
			Amount: 100,
		})
	}
	return domain.Dataset{Records: records}
}

func happyOrchestrator() (*Orchestrator, *stubPatterns) {
	patterns := &stubPatterns{outcome: PatternOutcome{
		Success:  true,
		Patterns: []domain.Pattern{{Type: "recurring_charges", Description: "Hosting"}},
	}}
	return NewOrchestrator(
		&stubDetector{anomalies: []DetectedAnomaly{{Type: "unusual_expense", Severity: domain.SeverityHigh}}},
		&stubPredictor{outcome: PredictionOutcome{
			Success:     true,
			Predictions: []domain.CashFlowPrediction{{Month: "2024-04"}},
		}},
		patterns,
		&stubScorer{score: &domain.FinSightScore{Total: 72, Grade: "B"}},
		DefaultConfig(),
	), patterns
}

func TestAnalyze_AllStagesContribute(t *testing.T) {
	// Given all four collaborators succeed on a dataset past every gate
	o, _ := happyOrchestrator()

	// When
	result, err := o.Analyze(context.Background(), recordsOf(25))

	// Then
	require.NoError(t, err)
	assert.Len(t, result.Anomalies, 1)
	assert.Len(t, result.CashFlowPredictions, 1)
	assert.Len(t, result.Patterns, 1)
	require.NotNil(t, result.Score)
	assert.Equal(t, 72.0, result.Score.Total)
	assert.Equal(t,
		[]string{StageAnomalies, StagePredictions, StagePatterns, StageScoring},
		result.Metadata.ModulesExecuted)
	assert.Equal(t, 25, result.Metadata.RecordCount)
}

func TestAnalyze_FailedStageDoesNotAbortSiblings(t *testing.T) {
	// A predictor transport error degrades only the prediction stage.
	o, _ := happyOrchestrator()
	o.predictions = &stubPredictor{err: errors.New("model unavailable")}

	result, err := o.Analyze(context.Background(), recordsOf(25))

	require.NoError(t, err)
	assert.Empty(t, result.CashFlowPredictions)
	assert.Len(t, result.Anomalies, 1)
	assert.Len(t, result.Patterns, 1)
	assert.NotNil(t, result.Score)
	assert.NotContains(t, result.Metadata.ModulesExecuted, StagePredictions)
}

func TestAnalyze_CollaboratorReportedFailure(t *testing.T) {
	// Success=false outcomes count as failures even without a Go error.
	o, _ := happyOrchestrator()
	o.predictions = &stubPredictor{outcome: PredictionOutcome{Success: false, Err: "not enough history"}}

	result, err := o.Analyze(context.Background(), recordsOf(25))

	require.NoError(t, err)
	assert.Empty(t, result.CashFlowPredictions)
	assert.False(t, result.SeasonalityDetected)
	assert.NotContains(t, result.Metadata.ModulesExecuted, StagePredictions)
}

func TestAnalyze_GatesByRecordCount(t *testing.T) {
	// Nine records pass the anomaly gate only.
	o, _ := happyOrchestrator()

	result, err := o.Analyze(context.Background(), recordsOf(9))

	require.NoError(t, err)
	assert.Len(t, result.Anomalies, 1)
	assert.Empty(t, result.CashFlowPredictions)
	assert.Empty(t, result.Patterns)
	assert.NotContains(t, result.Metadata.ModulesExecuted, StagePredictions)
	assert.NotContains(t, result.Metadata.ModulesExecuted, StagePatterns)
	assert.Contains(t, result.Metadata.ModulesExecuted, StageScoring)
}

func TestAnalyze_DisabledStageSkipped(t *testing.T) {
	o, _ := happyOrchestrator()
	o.config.Anomalies.Enabled = false

	result, err := o.Analyze(context.Background(), recordsOf(25))

	require.NoError(t, err)
	assert.Empty(t, result.Anomalies)
	assert.NotContains(t, result.Metadata.ModulesExecuted, StageAnomalies)
}

func TestAnalyze_PassesPatternContext(t *testing.T) {
	o, patterns := happyOrchestrator()
	o.config.Context = PatternContext{Sector: "services", CompanyName: "Acme", TeamSize: 4}

	_, err := o.Analyze(context.Background(), recordsOf(25))

	require.NoError(t, err)
	assert.Equal(t, "services", patterns.gotCtx.Sector)
	assert.Equal(t, "Acme", patterns.gotCtx.CompanyName)
}

func TestAnalyze_FillsMissingIdentifiers(t *testing.T) {
	o, _ := happyOrchestrator()

	result, err := o.Analyze(context.Background(), recordsOf(25))

	require.NoError(t, err)
	require.Len(t, result.Anomalies, 1)
	assert.NotEmpty(t, result.Anomalies[0].ID)
	require.Len(t, result.Patterns, 1)
	assert.NotEmpty(t, result.Patterns[0].ID)
}

func TestAnalyze_DerivesExpectedRange(t *testing.T) {
	expected, deviation := 500.0, 120.0
	o, _ := happyOrchestrator()
	o.anomalies = &stubDetector{anomalies: []DetectedAnomaly{{
		Type:          "unusual_expense",
		ExpectedValue: &expected,
		Deviation:     &deviation,
	}}}

	result, err := o.Analyze(context.Background(), recordsOf(5))

	require.NoError(t, err)
	require.Len(t, result.Anomalies, 1)
	rng := result.Anomalies[0].ExpectedRange
	require.NotNil(t, rng)
	assert.Equal(t, 380.0, rng.Min)
	assert.Equal(t, 620.0, rng.Max)
}

func TestAnalyzeParallel_SettlesAllStages(t *testing.T) {
	// Given a failing scorer alongside three healthy collaborators
	o, _ := happyOrchestrator()
	o.scoring = &stubScorer{err: errors.New("scorer down")}

	// When
	result, err := o.AnalyzeParallel(context.Background(), recordsOf(25))

	// Then every other stage still lands
	require.NoError(t, err)
	assert.Len(t, result.Anomalies, 1)
	assert.Len(t, result.CashFlowPredictions, 1)
	assert.Len(t, result.Patterns, 1)
	assert.Nil(t, result.Score)

	executed := append([]string{}, result.Metadata.ModulesExecuted...)
	sort.Strings(executed)
	assert.Equal(t, []string{StageAnomalies, StagePatterns, StagePredictions}, executed)
}

func TestAnalyzeParallel_MatchesSequentialContent(t *testing.T) {
	o, _ := happyOrchestrator()
	ds := recordsOf(25)

	seq, err := o.Analyze(context.Background(), ds)
	require.NoError(t, err)
	par, err := o.AnalyzeParallel(context.Background(), ds)
	require.NoError(t, err)

	assert.Equal(t, len(seq.Anomalies), len(par.Anomalies))
	assert.Equal(t, seq.CashFlowPredictions, par.CashFlowPredictions)
	assert.Equal(t, seq.Patterns[0].Type, par.Patterns[0].Type)
	assert.Equal(t, seq.Score, par.Score)
}

func TestAnalyze_EmptyDatasetYieldsNeutralResult(t *testing.T) {
	o, _ := happyOrchestrator()

	result, err := o.Analyze(context.Background(), domain.Dataset{})

	require.NoError(t, err)
	assert.Empty(t, result.Anomalies)
	assert.Empty(t, result.CashFlowPredictions)
	assert.Empty(t, result.Patterns)
	// Scoring has no record floor and still runs.
	assert.Contains(t, result.Metadata.ModulesExecuted, StageScoring)
}
