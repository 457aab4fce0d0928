// Package patterns provides the built-in pattern detector: recurring
// charges, revenue concentration and expense drift.
package patterns

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/finsight/dashis/pkg/models/domain"
	"github.com/finsight/dashis/pkg/services/analysis"
	"github.com/google/uuid"
	"golang.org/x/exp/maps"
)

const (
	minRecurrences     = 3
	recurringMaxCV     = 0.2 // coefficient of variation for "same amount"
	concentrationShare = 0.5 // single client share of income
	driftFactor        = 1.3 // last month vs average expenses
	minMonthsForDrift  = 3
)

// Detector derives behavioural patterns from the record stream.
type Detector struct{}

func NewDetector() *Detector { return &Detector{} }

var _ analysis.PatternDetector = (*Detector)(nil)

func (d *Detector) Detect(
	_ context.Context,
	records []domain.CanonicalRecord,
	pctx analysis.PatternContext,
) (analysis.PatternOutcome, error) {
	var patterns []domain.Pattern
	patterns = append(patterns, recurringCharges(records)...)
	if p, ok := revenueConcentration(records, pctx); ok {
		patterns = append(patterns, p)
	}
	if p, ok := expenseDrift(records); ok {
		patterns = append(patterns, p)
	}
	return analysis.PatternOutcome{Success: true, Patterns: patterns}, nil
}

// recurringCharges flags counterparties billed at least three times for
// near-identical amounts.
func recurringCharges(records []domain.CanonicalRecord) []domain.Pattern {
	byParty := map[string][]float64{}
	for _, r := range records {
		if r.Kind != domain.KindExpense {
			continue
		}
		name := r.Counterparty
		if name == "" {
			name = r.Description
		}
		if name == "" {
			continue
		}
		byParty[name] = append(byParty[name], r.Amount)
	}

	names := maps.Keys(byParty)
	sort.Strings(names)

	var patterns []domain.Pattern
	for _, name := range names {
		amounts := byParty[name]
		if len(amounts) < minRecurrences {
			continue
		}
		mean, stddev := meanStddev(amounts)
		if mean == 0 || stddev/mean > recurringMaxCV {
			continue
		}

		patterns = append(patterns, domain.Pattern{
			ID:          uuid.NewString(),
			Type:        "recurring_charge",
			Description: fmt.Sprintf("%s bills about %.2f on a recurring basis (%d occurrences)", name, mean, len(amounts)),
			Impact:      fmt.Sprintf("%.2f of committed spend over the period", mean*float64(len(amounts))),
			Confidence:  math.Min(1, float64(len(amounts))/6),
			Recommendations: []string{
				fmt.Sprintf("Review whether the %s subscription is still needed", name),
			},
		})
	}
	return patterns
}

// revenueConcentration flags a single client carrying more than half
// of total income.
func revenueConcentration(records []domain.CanonicalRecord, pctx analysis.PatternContext) (domain.Pattern, bool) {
	byClient := map[string]float64{}
	total := 0.0
	for _, r := range records {
		if r.Kind != domain.KindIncome {
			continue
		}
		name := r.Counterparty
		if name == "" {
			name = r.Description
		}
		if name == "" {
			continue
		}
		byClient[name] += r.Amount
		total += r.Amount
	}
	if total == 0 {
		return domain.Pattern{}, false
	}

	topName, topRevenue := "", 0.0
	names := maps.Keys(byClient)
	sort.Strings(names)
	for _, name := range names {
		if byClient[name] > topRevenue {
			topName, topRevenue = name, byClient[name]
		}
	}

	share := topRevenue / total
	if share <= concentrationShare {
		return domain.Pattern{}, false
	}

	description := fmt.Sprintf("%s represents %.0f%% of revenue", topName, share*100)
	if pctx.Sector != "" {
		description += fmt.Sprintf(" (%s sector)", pctx.Sector)
	}
	return domain.Pattern{
		ID:          uuid.NewString(),
		Type:        "revenue_concentration",
		Description: description,
		Impact:      "Losing this client would remove most of the revenue base",
		Confidence:  0.9,
		Recommendations: []string{
			"Diversify the client portfolio to reduce dependency",
		},
	}, true
}

// expenseDrift flags the latest month running well above the average
// of the preceding months.
func expenseDrift(records []domain.CanonicalRecord) (domain.Pattern, bool) {
	byMonth := map[string]float64{}
	for _, r := range records {
		if r.Kind != domain.KindExpense {
			continue
		}
		byMonth[r.Date.Format("2006-01")] += r.Amount
	}
	if len(byMonth) < minMonthsForDrift {
		return domain.Pattern{}, false
	}

	months := maps.Keys(byMonth)
	sort.Strings(months)

	last := months[len(months)-1]
	previousAvg := 0.0
	for _, m := range months[:len(months)-1] {
		previousAvg += byMonth[m]
	}
	previousAvg /= float64(len(months) - 1)
	if previousAvg == 0 || byMonth[last] < previousAvg*driftFactor {
		return domain.Pattern{}, false
	}

	return domain.Pattern{
		ID:   uuid.NewString(),
		Type: "expense_drift",
		Description: fmt.Sprintf("Expenses in %s ran %.0f%% above the prior average",
			last, (byMonth[last]/previousAvg-1)*100),
		Impact:     fmt.Sprintf("%.2f of extra spend versus the usual month", byMonth[last]-previousAvg),
		Confidence: 0.7,
		Recommendations: []string{
			"Break down the latest month's expenses to locate the increase",
		},
	}, true
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
