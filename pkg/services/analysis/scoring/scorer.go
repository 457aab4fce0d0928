// Package scoring provides the built-in FinSight scorer: a weighted
// four-axis rating of overall financial health.
package scoring

import (
	"context"
	"math"

	"github.com/finsight/dashis/pkg/models/domain"
	"github.com/finsight/dashis/pkg/services/analysis"
)

// Axis weights. Cash flow and profitability carry most of the score.
const (
	weightCashFlow      = 0.3
	weightProfitability = 0.3
	weightEfficiency    = 0.2
	weightGrowth        = 0.2
)

// Scorer rates a dataset on cash flow, profitability, efficiency and
// growth, each on a 0–100 scale.
type Scorer struct{}

func NewScorer() *Scorer { return &Scorer{} }

var _ analysis.Scorer = (*Scorer)(nil)

// Score returns nil (declined) for an empty dataset; anything else
// gets a full breakdown, grade and recommendations.
func (s *Scorer) Score(_ context.Context, input analysis.ScoringInput) (*domain.FinSightScore, error) {
	ds := input.Dataset
	if len(ds.Records) == 0 {
		return nil, nil
	}

	breakdown := domain.ScoreBreakdown{
		CashFlow:      scoreCashFlow(ds),
		Profitability: scoreProfitability(ds),
		Efficiency:    scoreEfficiency(ds),
		Growth:        scoreGrowth(ds),
	}
	total := breakdown.CashFlow*weightCashFlow +
		breakdown.Profitability*weightProfitability +
		breakdown.Efficiency*weightEfficiency +
		breakdown.Growth*weightGrowth

	score := &domain.FinSightScore{
		Total:     math.Round(total),
		Breakdown: breakdown,
	}
	score.Grade, score.Color = gradeFor(score.Total)
	fillNarrative(score)
	return score, nil
}

// scoreCashFlow maps the net-flow-to-income ratio onto 0–100, with a
// 25% ratio saturating the axis.
func scoreCashFlow(ds domain.Dataset) float64 {
	if ds.TotalIncome == 0 {
		return 0
	}
	ratio := ds.NetFlow / ds.TotalIncome
	return clamp(ratio/0.25*100, 0, 100)
}

// scoreProfitability maps the margin onto 0–100, with a 30% margin
// saturating the axis.
func scoreProfitability(ds domain.Dataset) float64 {
	if ds.TotalIncome == 0 {
		return 0
	}
	margin := (ds.TotalIncome - ds.TotalExpense) / ds.TotalIncome * 100
	return clamp(margin/30*100, 0, 100)
}

// scoreEfficiency penalizes income stuck in pending or overdue
// invoices.
func scoreEfficiency(ds domain.Dataset) float64 {
	if ds.TotalIncome == 0 {
		return 0
	}
	stuck := 0.0
	for _, r := range ds.Records {
		if r.Kind != domain.KindIncome {
			continue
		}
		if r.Status == domain.StatusPending || r.Status == domain.StatusOverdue {
			stuck += r.Amount
		}
	}
	return clamp(100-stuck/ds.TotalIncome*100, 0, 100)
}

// scoreGrowth compares the income of the newer half of records with
// the older half, 50 meaning flat.
func scoreGrowth(ds domain.Dataset) float64 {
	var income []float64
	for _, r := range ds.Records {
		if r.Kind == domain.KindIncome {
			income = append(income, r.Amount)
		}
	}
	if len(income) < 2 {
		return 50
	}

	half := len(income) / 2
	olderSum, recentSum := 0.0, 0.0
	for _, v := range income[:half] {
		olderSum += v
	}
	for _, v := range income[half:] {
		recentSum += v
	}
	if olderSum == 0 {
		return 50
	}
	growth := (recentSum - olderSum) / olderSum
	return clamp(50+growth*100, 0, 100)
}

func gradeFor(total float64) (string, string) {
	switch {
	case total >= 80:
		return "A", "green"
	case total >= 65:
		return "B", "lightgreen"
	case total >= 50:
		return "C", "yellow"
	case total >= 35:
		return "D", "orange"
	default:
		return "E", "red"
	}
}

func fillNarrative(score *domain.FinSightScore) {
	axes := []struct {
		name     string
		value    float64
		strength string
		weakness string
		advice   string
	}{
		{"cash flow", score.Breakdown.CashFlow,
			"Healthy cash generation", "Weak cash generation",
			"Tighten working capital to free up cash"},
		{"profitability", score.Breakdown.Profitability,
			"Solid margins", "Thin margins",
			"Review pricing or cut the least productive charges"},
		{"efficiency", score.Breakdown.Efficiency,
			"Invoices are collected promptly", "Too much income locked in unpaid invoices",
			"Chase pending and overdue invoices"},
		{"growth", score.Breakdown.Growth,
			"Revenue is trending up", "Revenue is flat or shrinking",
			"Invest in acquisition or upsell existing clients"},
	}

	score.Recommendations = []string{}
	score.Strengths = []string{}
	score.Weaknesses = []string{}
	for _, axis := range axes {
		switch {
		case axis.value >= 70:
			score.Strengths = append(score.Strengths, axis.strength)
		case axis.value < 40:
			score.Weaknesses = append(score.Weaknesses, axis.weakness)
			score.Recommendations = append(score.Recommendations, axis.advice)
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
