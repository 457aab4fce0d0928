package analysis

import (
	"context"

	"github.com/finsight/dashis/pkg/models/domain"
)

// Stage names as recorded in AnalysisMetadata.ModulesExecuted.
const (
	StageAnomalies   = "anomalies"
	StagePredictions = "predictions"
	StagePatterns    = "patterns"
	StageScoring     = "scoring"
)

// DetectedAnomaly is the anomaly shape as reported by a detector,
// before mapping into the canonical domain form. Expected/actual/
// deviation are optional; when expected value and deviation are both
// present the orchestrator derives an expected range from them.
type DetectedAnomaly struct {
	ID            string
	Date          string
	Type          string
	Severity      domain.AnomalySeverity
	Description   string
	Details       string
	Confidence    float64
	Transaction   *domain.AnomalyTransaction
	ExpectedValue *float64
	ActualValue   *float64
	Deviation     *float64
}

// AnomalyDetector flags irregular records. Detection is synchronous;
// the context is carried for interface uniformity with the async
// collaborators.
type AnomalyDetector interface {
	Detect(ctx context.Context, records []domain.CanonicalRecord) ([]DetectedAnomaly, error)
}

// PredictionOutcome is the discriminated result of a forecast call.
// Success false with Err set is a collaborator-reported failure, as
// opposed to a transport error returned alongside.
type PredictionOutcome struct {
	Success             bool
	Err                 string
	Predictions         []domain.CashFlowPrediction
	Alerts              []domain.PredictionAlert
	SeasonalityDetected bool
}

// CashFlowPredictor projects future monthly net flow.
type CashFlowPredictor interface {
	Predict(ctx context.Context, records []domain.CanonicalRecord) (PredictionOutcome, error)
}

// PatternContext carries business context into pattern detection.
type PatternContext struct {
	Sector      string
	CompanyName string
	TeamSize    int
}

// PatternOutcome is the discriminated result of a pattern call.
type PatternOutcome struct {
	Success  bool
	Err      string
	Patterns []domain.Pattern
}

// PatternDetector finds recurring or structural behaviours.
type PatternDetector interface {
	Detect(ctx context.Context, records []domain.CanonicalRecord, pctx PatternContext) (PatternOutcome, error)
}

// ScoringInput is the scorer-compatible projection of a dataset. The
// summary and quality metrics are placeholders the scorer may ignore.
type ScoringInput struct {
	Dataset        domain.Dataset
	Summary        map[string]any
	KPIs           []domain.KPI
	QualityMetrics map[string]float64
}

// Scorer rates overall financial health. A nil score with a nil error
// means the scorer declined to rate the dataset.
type Scorer interface {
	Score(ctx context.Context, input ScoringInput) (*domain.FinSightScore, error)
}
