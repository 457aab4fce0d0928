// Package anomaly provides the built-in statistical anomaly detector.
package anomaly

import (
	"context"
	"fmt"
	"math"

	"github.com/finsight/dashis/pkg/models/domain"
	"github.com/finsight/dashis/pkg/services/analysis"
	"github.com/google/uuid"
)

// Detector flags expense amounts whose z-score within their category
// exceeds a configurable threshold.
type Detector struct {
	threshold  float64
	minSamples int
}

type Option func(*Detector)

// WithThreshold sets the absolute z-score above which an amount is
// flagged.
func WithThreshold(t float64) Option {
	return func(d *Detector) { d.threshold = t }
}

// WithMinSamples sets how many amounts a category needs before its
// distribution is considered meaningful.
func WithMinSamples(n int) Option {
	return func(d *Detector) { d.minSamples = n }
}

func NewDetector(opts ...Option) *Detector {
	d := &Detector{threshold: 2.0, minSamples: 5}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var _ analysis.AnomalyDetector = (*Detector)(nil)

// Detect computes per-category mean and standard deviation over expense
// amounts and reports every record whose amount sits more than the
// threshold away, in standard deviations. Categories with too few
// samples or zero variance are skipped.
func (d *Detector) Detect(_ context.Context, records []domain.CanonicalRecord) ([]analysis.DetectedAnomaly, error) {
	type categoryStats struct {
		amounts []float64
		records []domain.CanonicalRecord
	}
	byCategory := map[string]*categoryStats{}
	for _, r := range records {
		if r.Kind != domain.KindExpense {
			continue
		}
		cat := r.Category
		if cat == "" {
			cat = "uncategorized"
		}
		cs, ok := byCategory[cat]
		if !ok {
			cs = &categoryStats{}
			byCategory[cat] = cs
		}
		cs.amounts = append(cs.amounts, r.Amount)
		cs.records = append(cs.records, r)
	}

	var anomalies []analysis.DetectedAnomaly
	for cat, cs := range byCategory {
		if len(cs.amounts) < d.minSamples {
			continue
		}

		mean, stddev := meanStddev(cs.amounts)
		if stddev == 0 {
			continue
		}

		for i, amt := range cs.amounts {
			z := (amt - mean) / stddev
			if math.Abs(z) <= d.threshold {
				continue
			}

			rec := cs.records[i]
			expected := mean
			actual := amt
			deviation := stddev
			anomalies = append(anomalies, analysis.DetectedAnomaly{
				ID:       uuid.NewString(),
				Date:     rec.Date.Format("2006-01-02"),
				Type:     "amount_outlier",
				Severity: severityFor(math.Abs(z)),
				Description: fmt.Sprintf(
					"Unusual %s amount: %.2f against a category average of %.2f", cat, amt, mean),
				Details:    fmt.Sprintf("z-score %.2f over %d records", z, len(cs.amounts)),
				Confidence: math.Min(1, math.Abs(z)/4),
				Transaction: &domain.AnomalyTransaction{
					Amount:       rec.Amount,
					Counterparty: rec.Counterparty,
					Category:     rec.Category,
				},
				ExpectedValue: &expected,
				ActualValue:   &actual,
				Deviation:     &deviation,
			})
		}
	}
	return anomalies, nil
}

func severityFor(absZ float64) domain.AnomalySeverity {
	switch {
	case absZ > 3.0:
		return domain.SeverityHigh
	case absZ > 2.5:
		return domain.SeverityMedium
	default:
		return domain.SeverityLow
	}
}

func meanStddev(values []float64) (float64, float64) {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	varianceSum := 0.0
	for _, v := range values {
		diff := v - mean
		varianceSum += diff * diff
	}
	return mean, math.Sqrt(varianceSum / float64(len(values)))
}
