// Package forecast provides the built-in cash-flow predictor: a
// trend-adjusted moving average over monthly net flows.
package forecast

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/finsight/dashis/pkg/models/domain"
	"github.com/finsight/dashis/pkg/services/analysis"
)

const (
	windowMonths  = 3
	horizonMonths = 3
)

// Predictor projects future monthly net flow from historical months.
type Predictor struct{}

func NewPredictor() *Predictor { return &Predictor{} }

var _ analysis.CashFlowPredictor = (*Predictor)(nil)

type monthFlow struct {
	month string // YYYY-MM
	net   float64
}

// Predict averages the last three months of net flow, extends the
// observed month-over-month trend over a three-month horizon, and
// attaches alerts for months projected below zero. It reports failure
// (Success=false) when fewer than three distinct months exist.
func (p *Predictor) Predict(_ context.Context, records []domain.CanonicalRecord) (analysis.PredictionOutcome, error) {
	months := monthlyNet(records)
	if len(months) < windowMonths {
		return analysis.PredictionOutcome{
			Success: false,
			Err:     fmt.Sprintf("need at least %d distinct months, have %d", windowMonths, len(months)),
		}, nil
	}

	recent := months[len(months)-windowMonths:]
	avg := 0.0
	for _, m := range recent {
		avg += m.net
	}
	avg /= windowMonths

	// Average month-over-month delta inside the window.
	trend := (recent[windowMonths-1].net - recent[0].net) / float64(windowMonths-1)

	last, err := time.Parse("2006-01", months[len(months)-1].month)
	if err != nil {
		return analysis.PredictionOutcome{Success: false, Err: "unreadable month key"}, nil
	}

	outcome := analysis.PredictionOutcome{
		Success:             true,
		SeasonalityDetected: detectSeasonality(months),
	}
	for i := 1; i <= horizonMonths; i++ {
		month := last.AddDate(0, i, 0).Format("2006-01")
		predicted := avg + trend*float64(i)
		outcome.Predictions = append(outcome.Predictions, domain.CashFlowPrediction{
			Month:      month,
			Predicted:  predicted,
			Confidence: confidenceAt(i, len(months)),
			Breakdown: map[string]float64{
				"baseline": avg,
				"trend":    trend * float64(i),
			},
		})

		if predicted < 0 {
			outcome.Alerts = append(outcome.Alerts, domain.PredictionAlert{
				Type:    "negative_cashflow",
				Message: fmt.Sprintf("Projected net flow turns negative in %s", month),
				Month:   month,
			})
		}
	}

	if trend < 0 && avg > 0 {
		outcome.Alerts = append(outcome.Alerts, domain.PredictionAlert{
			Type:    "declining_trend",
			Message: "Net flow has been declining over the last three months",
		})
	}

	return outcome, nil
}

func monthlyNet(records []domain.CanonicalRecord) []monthFlow {
	byMonth := map[string]float64{}
	for _, r := range records {
		k := r.Date.Format("2006-01")
		if r.Kind == domain.KindIncome {
			byMonth[k] += r.Amount
		} else {
			byMonth[k] -= r.Amount
		}
	}

	months := make([]monthFlow, 0, len(byMonth))
	for m, net := range byMonth {
		months = append(months, monthFlow{month: m, net: net})
	}
	sort.Slice(months, func(i, j int) bool { return months[i].month < months[j].month })
	return months
}

// detectSeasonality is a coarse check: with a full year of history, a
// calendar month whose average net flow strays more than 50% from the
// overall average suggests a seasonal business.
func detectSeasonality(months []monthFlow) bool {
	if len(months) < 12 {
		return false
	}

	overall := 0.0
	byCalendarMonth := map[string][]float64{}
	for _, m := range months {
		overall += m.net
		byCalendarMonth[m.month[5:]] = append(byCalendarMonth[m.month[5:]], m.net)
	}
	overall /= float64(len(months))
	if overall == 0 {
		return false
	}

	for _, nets := range byCalendarMonth {
		sum := 0.0
		for _, n := range nets {
			sum += n
		}
		avg := sum / float64(len(nets))
		if avg/overall > 1.5 || avg/overall < 0.5 {
			return true
		}
	}
	return false
}

func confidenceAt(step, historyMonths int) float64 {
	base := 0.9 - 0.15*float64(step-1)
	if historyMonths < 6 {
		base -= 0.2
	}
	if base < 0.1 {
		base = 0.1
	}
	return base
}
