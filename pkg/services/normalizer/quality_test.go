package normalizer

import (
	"testing"
	"time"

	"github.com/finsight/dashis/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func syntheticDataset(count int, categorized bool) domain.Dataset {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	records := make([]domain.CanonicalRecord, 0, count)
	for i := 0; i < count; i++ {
		kind := domain.KindIncome
		if i%2 == 0 {
			kind = domain.KindExpense
		}
		rec := domain.CanonicalRecord{
			Date:   start.AddDate(0, 0, i),
			Kind:   kind,
			Amount: 100,
		}
		if categorized {
			rec.Category = "General"
		}
		records = append(records, rec)
	}
	ds := domain.Dataset{Records: records}
	if count > 0 {
		ds.Period = domain.Period{Start: records[0].Date, End: records[count-1].Date}
	}
	return ds
}

func TestValidateQuality_HighGrade(t *testing.T) {
	// Given a large, fully categorized dataset spanning two months
	n := New()
	ds := syntheticDataset(60, true)

	// When
	report := n.ValidateQuality(ds)

	// Then
	assert.True(t, report.Valid)
	assert.Empty(t, report.Issues)
	assert.Equal(t, domain.QualityHigh, report.Quality)
}

func TestValidateQuality_MediumGrade(t *testing.T) {
	// 25 uncategorized records over ~25 days: two issues, medium volume
	n := New()
	ds := syntheticDataset(25, false)

	report := n.ValidateQuality(ds)

	assert.False(t, report.Valid)
	assert.Len(t, report.Issues, 2)
	assert.Equal(t, domain.QualityMedium, report.Quality)
}

func TestValidateQuality_LowGradeOnTinyDataset(t *testing.T) {
	n := New()
	ds := syntheticDataset(4, false)

	report := n.ValidateQuality(ds)

	assert.False(t, report.Valid)
	assert.Equal(t, domain.QualityLow, report.Quality)
	assert.Contains(t, report.Issues, "fewer than 10 records")
}

func TestValidateQuality_MissingKinds(t *testing.T) {
	n := New()
	ds := syntheticDataset(60, true)
	for i := range ds.Records {
		ds.Records[i].Kind = domain.KindIncome
	}

	report := n.ValidateQuality(ds)

	assert.Contains(t, report.Issues, "no expense records")
	assert.NotContains(t, report.Issues, "no income records")
}

func TestEnrich_ComputesStatsWithoutMutation(t *testing.T) {
	n := New()
	ds := syntheticDataset(10, true)
	ds.Records[0].Counterparty = "Acme"
	ds.Records[1].Counterparty = "Globex"
	ds.Records[2].Counterparty = "Acme"
	original := len(ds.Records)

	enriched := n.Enrich(ds)

	require.Equal(t, original, len(ds.Records))
	assert.Equal(t, 10, enriched.Stats.TransactionCount)
	assert.InDelta(t, 100.0, enriched.Stats.AvgTransactionAmount, 1e-9)
	assert.Equal(t, 1, enriched.Stats.UniqueCategories)
	assert.Equal(t, 2, enriched.Stats.UniqueClients)
}

func TestEnrich_EmptyDataset(t *testing.T) {
	n := New()

	enriched := n.Enrich(domain.Dataset{})

	assert.Zero(t, enriched.Stats.TransactionCount)
	assert.Zero(t, enriched.Stats.AvgTransactionAmount)
}
