package normalizer

import (
	"github.com/finsight/dashis/pkg/models/domain"
)

const minPeriodDays = 30

// ValidateQuality runs the independent dataset checks and grades the
// result. Every failed check lands in Issues; the grade combines the
// issue count with record volume and category coverage.
func (n *Normalizer) ValidateQuality(ds domain.Dataset) domain.QualityReport {
	issues := []string{}
	count := len(ds.Records)

	if count < 10 {
		issues = append(issues, "fewer than 10 records")
	}

	hasIncome, hasExpense := false, false
	categorized := 0
	for _, r := range ds.Records {
		switch r.Kind {
		case domain.KindIncome:
			hasIncome = true
		case domain.KindExpense:
			hasExpense = true
		}
		if r.Category != "" {
			categorized++
		}
	}
	if !hasIncome {
		issues = append(issues, "no income records")
	}
	if !hasExpense {
		issues = append(issues, "no expense records")
	}

	spanDays := int(ds.Period.End.Sub(ds.Period.Start).Hours() / 24)
	if spanDays < minPeriodDays {
		issues = append(issues, "period spans fewer than 30 days")
	}

	coverage := 0.0
	if count > 0 {
		coverage = float64(categorized) / float64(count)
	}
	if coverage < 0.5 {
		issues = append(issues, "less than half of records are categorized")
	}

	quality := domain.QualityLow
	switch {
	case len(issues) == 0 && count > 50 && coverage > 0.8:
		quality = domain.QualityHigh
	case len(issues) <= 2 && count > 20:
		quality = domain.QualityMedium
	}

	return domain.QualityReport{
		Valid:   len(issues) == 0,
		Quality: quality,
		Issues:  issues,
	}
}

// Enrich derives summary stats from a dataset without mutating it.
func (n *Normalizer) Enrich(ds domain.Dataset) domain.EnrichedDataset {
	stats := domain.DatasetStats{TransactionCount: len(ds.Records)}

	categories := map[string]struct{}{}
	clients := map[string]struct{}{}
	total := 0.0
	for _, r := range ds.Records {
		total += r.Amount
		if r.Category != "" {
			categories[r.Category] = struct{}{}
		}
		if r.Counterparty != "" {
			clients[r.Counterparty] = struct{}{}
		}
	}
	if len(ds.Records) > 0 {
		stats.AvgTransactionAmount = total / float64(len(ds.Records))
	}
	stats.UniqueCategories = len(categories)
	stats.UniqueClients = len(clients)

	return domain.EnrichedDataset{Dataset: ds, Stats: stats}
}
