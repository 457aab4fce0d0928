package forecast

import (
	"context"
	"testing"
	"time"

	"github.com/finsight/dashis/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// monthlyRecords yields one income record per month with the given net
// amounts, starting January 2024.
func monthlyRecords(nets ...float64) []domain.CanonicalRecord {
	records := make([]domain.CanonicalRecord, 0, len(nets))
	for i, net := range nets {
		date := time.Date(2024, time.Month(i+1), 15, 0, 0, 0, 0, time.UTC)
		kind := domain.KindIncome
		amount := net
		if net < 0 {
			kind = domain.KindExpense
			amount = -net
		}
		records = append(records, domain.CanonicalRecord{Date: date, Kind: kind, Amount: amount})
	}
	return records
}

func TestPredict_FailsWithoutThreeMonths(t *testing.T) {
	// Given only two distinct months of history
	p := NewPredictor()

	// When
	outcome, err := p.Predict(context.Background(), monthlyRecords(1000, 1200))

	// Then the failure is reported in-band, not as an error
	require.NoError(t, err)
	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.Err, "3 distinct months")
	assert.Empty(t, outcome.Predictions)
}

func TestPredict_FlatHistoryProjectsAverage(t *testing.T) {
	p := NewPredictor()

	outcome, err := p.Predict(context.Background(), monthlyRecords(1000, 1000, 1000))

	require.NoError(t, err)
	require.True(t, outcome.Success)
	require.Len(t, outcome.Predictions, 3)
	assert.Equal(t, "2024-04", outcome.Predictions[0].Month)
	assert.Equal(t, "2024-06", outcome.Predictions[2].Month)
	for _, pr := range outcome.Predictions {
		assert.InDelta(t, 1000.0, pr.Predicted, 1e-9)
	}
	assert.Empty(t, outcome.Alerts)
}

func TestPredict_ExtendsTrend(t *testing.T) {
	// Net flow climbs 100 per month: 1000, 1100, 1200.
	p := NewPredictor()

	outcome, err := p.Predict(context.Background(), monthlyRecords(1000, 1100, 1200))

	require.NoError(t, err)
	require.True(t, outcome.Success)
	// avg 1100, trend +100/month.
	assert.InDelta(t, 1200.0, outcome.Predictions[0].Predicted, 1e-9)
	assert.InDelta(t, 1300.0, outcome.Predictions[1].Predicted, 1e-9)
	assert.InDelta(t, 1400.0, outcome.Predictions[2].Predicted, 1e-9)
}

func TestPredict_NegativeProjectionRaisesAlert(t *testing.T) {
	// Sharply declining: avg 400, trend -600 goes negative by month one.
	p := NewPredictor()

	outcome, err := p.Predict(context.Background(), monthlyRecords(1000, 400, -200))

	require.NoError(t, err)
	require.True(t, outcome.Success)

	var negative, declining int
	for _, a := range outcome.Alerts {
		switch a.Type {
		case "negative_cashflow":
			negative++
		case "declining_trend":
			declining++
		}
	}
	assert.Equal(t, 3, negative, "all three projected months are below zero")
	assert.Equal(t, 1, declining)
}

func TestPredict_ConfidenceDecaysWithHorizon(t *testing.T) {
	p := NewPredictor()

	outcome, err := p.Predict(context.Background(), monthlyRecords(1000, 1000, 1000, 1000, 1000, 1000))

	require.NoError(t, err)
	require.Len(t, outcome.Predictions, 3)
	assert.InDelta(t, 0.9, outcome.Predictions[0].Confidence, 1e-9)
	assert.InDelta(t, 0.75, outcome.Predictions[1].Confidence, 1e-9)
	assert.InDelta(t, 0.6, outcome.Predictions[2].Confidence, 1e-9)
}

func TestPredict_NoSeasonalityOnShortHistory(t *testing.T) {
	p := NewPredictor()

	outcome, err := p.Predict(context.Background(), monthlyRecords(1000, 1100, 1200))

	require.NoError(t, err)
	assert.False(t, outcome.SeasonalityDetected)
}

func TestPredict_SeasonalitySpikeDetected(t *testing.T) {
	// Twelve months of 1000 plus a December spike.
	nets := make([]float64, 12)
	for i := range nets {
		nets[i] = 1000
	}
	nets[11] = 5000
	p := NewPredictor()

	outcome, err := p.Predict(context.Background(), monthlyRecords(nets...))

	require.NoError(t, err)
	assert.True(t, outcome.SeasonalityDetected)
}
