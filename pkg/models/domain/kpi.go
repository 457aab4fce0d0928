package domain

import "time"

// ChangeDirection signals how a KPI movement should be read.
type ChangeDirection string

const (
	ChangePositive ChangeDirection = "positive"
	ChangeNegative ChangeDirection = "negative"
	ChangeNeutral  ChangeDirection = "neutral"
)

// Fixed KPI identifiers. DSO is conditional: it only exists when at
// least one paid income record carries a due date.
const (
	KPIRevenue  = "revenue"
	KPIExpenses = "expenses"
	KPIMargin   = "margin"
	KPICashFlow = "cashflow"
	KPIDSO      = "dso"
)

// KPI is one computed indicator ready for display.
type KPI struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	DisplayValue string          `json:"displayValue"`
	NumericValue float64         `json:"numericValue"`
	Change       float64         `json:"change"`
	Direction    ChangeDirection `json:"changeDirection"`
	Description  string          `json:"description"`
	IsAvailable  bool            `json:"isAvailable"`
	Confidence   float64         `json:"confidence"`
}

// KPIMetadata records provenance for a KPI computation.
type KPIMetadata struct {
	CalculatedAt time.Time `json:"calculatedAt"`
	RecordCount  int       `json:"recordCount"`
	Period       Period    `json:"period"`
}

// KPIReport is the full KPI set for one dataset.
type KPIReport struct {
	KPIs     []KPI       `json:"kpis"`
	Metadata KPIMetadata `json:"metadata"`
}
