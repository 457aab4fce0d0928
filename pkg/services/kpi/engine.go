package kpi

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/finsight/dashis/pkg/models/domain"
)

// Engine computes the fixed KPI set and the chart bundle. All methods
// are pure, synchronous and total over empty input.
type Engine struct {
	now func() time.Time
}

type Option func(*Engine)

// WithClock overrides the time source used for "today"-relative
// figures (outstanding invoices, metadata timestamps).
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func New(opts ...Option) *Engine {
	e := &Engine{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CalculateKPIs derives the fixed KPI set: revenue, expenses, margin,
// cashflow, and DSO when at least one paid income record carries a
// due date.
func (e *Engine) CalculateKPIs(ds domain.Dataset) domain.KPIReport {
	hasData := len(ds.Records) > 0

	kpis := []domain.KPI{
		{
			ID:           domain.KPIRevenue,
			Title:        "Revenue",
			DisplayValue: FormatEuro(ds.TotalIncome),
			NumericValue: ds.TotalIncome,
			Change:       changeIndicator(ds.Records, domain.KindIncome),
			Description:  "Total income over the period",
			IsAvailable:  hasData,
			Confidence:   1,
		},
		{
			ID:           domain.KPIExpenses,
			Title:        "Expenses",
			DisplayValue: FormatEuro(ds.TotalExpense),
			NumericValue: ds.TotalExpense,
			Change:       changeIndicator(ds.Records, domain.KindExpense),
			Description:  "Total expenses over the period",
			IsAvailable:  hasData,
			Confidence:   1,
		},
		{
			ID:           domain.KPIMargin,
			Title:        "Margin",
			NumericValue: marginPct(ds.TotalIncome, ds.TotalExpense),
			Description:  "Net margin as a share of revenue",
			IsAvailable:  hasData,
			Confidence:   1,
		},
		{
			ID:           domain.KPICashFlow,
			Title:        "Cash flow",
			DisplayValue: FormatEuro(ds.NetFlow),
			NumericValue: ds.NetFlow,
			Change:       changeIndicator(ds.Records, domain.KindIncome) - changeIndicator(ds.Records, domain.KindExpense),
			Description:  "Net flow (income minus expenses)",
			IsAvailable:  hasData,
			Confidence:   1,
		},
	}

	// Revenue and cashflow read up as good, expenses read down as good.
	kpis[0].Direction = trendDirection(kpis[0].Change, false)
	kpis[1].Direction = trendDirection(kpis[1].Change, true)
	kpis[3].Direction = trendDirection(kpis[3].Change, false)

	margin := &kpis[2]
	margin.DisplayValue = fmt.Sprintf("%.1f%%", margin.NumericValue)
	switch {
	case margin.NumericValue > 20:
		margin.Direction = domain.ChangePositive
	case margin.NumericValue >= 10:
		margin.Direction = domain.ChangeNeutral
	default:
		margin.Direction = domain.ChangeNegative
	}

	if dso, ok := e.calculateDSO(ds.Records); ok {
		kpis = append(kpis, dso)
	}

	return domain.KPIReport{
		KPIs: kpis,
		Metadata: domain.KPIMetadata{
			CalculatedAt: e.now(),
			RecordCount:  len(ds.Records),
			Period:       ds.Period,
		},
	}
}

// calculateDSO averages dueDate−issueDate in days over paid income
// records that carry a due date, flooring per-record deviations at
// zero. The second return is false when no such record exists, which
// distinguishes "0 days" from "not computable".
func (e *Engine) calculateDSO(records []domain.CanonicalRecord) (domain.KPI, bool) {
	totalDays := 0.0
	count := 0
	for _, r := range records {
		if r.Kind != domain.KindIncome || r.Status != domain.StatusPaid || r.DueDate == nil {
			continue
		}
		days := r.DueDate.Sub(r.Date).Hours() / 24
		if days < 0 {
			days = 0
		}
		totalDays += days
		count++
	}
	if count == 0 {
		return domain.KPI{}, false
	}

	avg := totalDays / float64(count)
	return domain.KPI{
		ID:           domain.KPIDSO,
		Title:        "DSO",
		DisplayValue: fmt.Sprintf("%.0f days", avg),
		NumericValue: avg,
		Direction:    domain.ChangeNeutral,
		Description:  "Average days between invoice issue and settlement",
		IsAvailable:  true,
		Confidence:   math.Min(1, float64(count)/10),
	}, true
}

// changeIndicator splits the records of one kind most-recent-first into
// two halves by count, then reports the percentage delta between the
// half sums. This is a recency-skew heuristic, not a calendar-aligned
// month-over-month comparison.
func changeIndicator(records []domain.CanonicalRecord, kind domain.RecordKind) float64 {
	var ofKind []domain.CanonicalRecord
	for _, r := range records {
		if r.Kind == kind {
			ofKind = append(ofKind, r)
		}
	}
	n := len(ofKind)
	if n < 2 {
		return 0
	}

	// Records arrive oldest-first; the back half is the recent one.
	half := n / 2
	olderSum, recentSum := 0.0, 0.0
	for _, r := range ofKind[:half] {
		olderSum += r.Amount
	}
	for _, r := range ofKind[half:] {
		recentSum += r.Amount
	}
	if olderSum == 0 {
		return 0
	}
	return (recentSum - olderSum) / olderSum * 100
}

func trendDirection(change float64, inverted bool) domain.ChangeDirection {
	if change == 0 {
		return domain.ChangeNeutral
	}
	positive := change > 0
	if inverted {
		positive = !positive
	}
	if positive {
		return domain.ChangePositive
	}
	return domain.ChangeNegative
}

func marginPct(income, expense float64) float64 {
	if income == 0 {
		return 0
	}
	return (income - expense) / income * 100
}

// FormatEuro renders an amount with space-separated thousands
// grouping, the way the dashboard displays monetary figures.
func FormatEuro(v float64) string {
	neg := v < 0
	s := fmt.Sprintf("%.0f", math.Abs(v))

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s[i : i+3])
	}

	if neg {
		return "-" + b.String() + " €"
	}
	return b.String() + " €"
}
