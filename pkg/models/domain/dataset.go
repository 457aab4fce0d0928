package domain

import "time"

// Period is the inclusive date range covered by a dataset.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Dataset is the aggregated view over an ordered run of canonical records.
// Records are sorted ascending by date (stable); totals are sums by kind.
type Dataset struct {
	Records      []CanonicalRecord `json:"records"`
	TotalIncome  float64           `json:"totalIncome"`
	TotalExpense float64           `json:"totalExpense"`
	NetFlow      float64           `json:"netFlow"`
	Period       Period            `json:"period"`
}

// DataQuality grades how usable a dataset is for analysis.
type DataQuality string

const (
	QualityHigh   DataQuality = "high"
	QualityMedium DataQuality = "medium"
	QualityLow    DataQuality = "low"
)

// QualityReport is the outcome of the dataset quality checks.
type QualityReport struct {
	Valid   bool        `json:"valid"`
	Quality DataQuality `json:"quality"`
	Issues  []string    `json:"issues"`
}

// DatasetStats carries derived figures appended by Enrich.
type DatasetStats struct {
	AvgTransactionAmount float64 `json:"avgTransactionAmount"`
	TransactionCount     int     `json:"transactionCount"`
	UniqueCategories     int     `json:"uniqueCategories"`
	UniqueClients        int     `json:"uniqueClients"`
}

// EnrichedDataset is a dataset plus its derived stats. The embedded
// dataset is a copy; enrichment never mutates its input.
type EnrichedDataset struct {
	Dataset
	Stats DatasetStats `json:"stats"`
}
