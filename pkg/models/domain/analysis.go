package domain

import "time"

// AnomalySeverity ranks how far an anomaly sits from expectation.
type AnomalySeverity string

const (
	SeverityLow    AnomalySeverity = "low"
	SeverityMedium AnomalySeverity = "medium"
	SeverityHigh   AnomalySeverity = "high"
)

// AnomalyTransaction is the offending record as seen by the detector.
type AnomalyTransaction struct {
	Amount       float64 `json:"amount"`
	Counterparty string  `json:"counterparty,omitempty"`
	Category     string  `json:"category,omitempty"`
}

// ExpectedRange is the band a value was expected to fall into.
type ExpectedRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Anomaly is one flagged irregularity in the record stream.
type Anomaly struct {
	ID            string              `json:"id"`
	Date          string              `json:"date"` // YYYY-MM-DD
	Type          string              `json:"type"`
	Severity      AnomalySeverity     `json:"severity"`
	Description   string              `json:"description"`
	Details       string              `json:"details,omitempty"`
	Confidence    float64             `json:"confidence,omitempty"`
	Transaction   *AnomalyTransaction `json:"transaction,omitempty"`
	ExpectedRange *ExpectedRange      `json:"expectedRange,omitempty"`
}

// CashFlowPrediction is one projected month of net flow.
type CashFlowPrediction struct {
	Month      string             `json:"month"` // YYYY-MM
	Predicted  float64            `json:"predicted"`
	Confidence float64            `json:"confidence"`
	Breakdown  map[string]float64 `json:"breakdown,omitempty"`
}

// PredictionAlert is a forward-looking warning attached to a forecast.
type PredictionAlert struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Month   string `json:"month,omitempty"`
}

// Pattern is a recurring or structural behaviour found in the records.
type Pattern struct {
	ID              string   `json:"id"`
	Type            string   `json:"type"`
	Description     string   `json:"description"`
	Impact          string   `json:"impact"`
	Confidence      float64  `json:"confidence"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// ScoreBreakdown splits the FinSight score into its four axes.
type ScoreBreakdown struct {
	CashFlow      float64 `json:"cashFlow"`
	Profitability float64 `json:"profitability"`
	Efficiency    float64 `json:"efficiency"`
	Growth        float64 `json:"growth"`
}

// FinSightScore is the overall financial health score.
type FinSightScore struct {
	Total           float64        `json:"total"`
	Breakdown       ScoreBreakdown `json:"breakdown"`
	Recommendations []string       `json:"recommendations"`
	Strengths       []string       `json:"strengths"`
	Weaknesses      []string       `json:"weaknesses"`
	Grade           string         `json:"grade"`
	Color           string         `json:"color"`
}

// AnalysisMetadata is the audit trail of one orchestrated analysis run.
// ModulesExecuted lists only the stages that contributed non-empty
// output, in completion order.
type AnalysisMetadata struct {
	AnalyzedAt      time.Time `json:"analyzedAt"`
	RecordCount     int       `json:"recordCount"`
	ModulesExecuted []string  `json:"modulesExecuted"`
	ExecutionTimeMs int64     `json:"executionTimeMs"`
}

// AnalysisResult aggregates the four analyzer stages' outputs.
type AnalysisResult struct {
	Anomalies           []Anomaly            `json:"anomalies"`
	CashFlowPredictions []CashFlowPrediction `json:"cashFlowPredictions"`
	PredictionAlerts    []PredictionAlert    `json:"predictionAlerts"`
	Patterns            []Pattern            `json:"patterns"`
	Score               *FinSightScore       `json:"finSightScore"`
	SeasonalityDetected bool                 `json:"seasonalityDetected"`
	Metadata            AnalysisMetadata     `json:"metadata"`
}
