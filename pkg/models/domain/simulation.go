package domain

// Simulation lever bounds. ValidateParams rejects values outside them.
const (
	MaxChargesReductionPct = 30.0
	MaxPaymentAccelDays    = 15.0
	MaxPriceIncreasePct    = 15.0
	PaymentCycleDays       = 30.0 // reference cycle for cash liberation
)

// SimulationParams are the three what-if levers. Zero means inactive.
type SimulationParams struct {
	ChargesReduction    float64 `json:"chargesReduction"`    // percent, 0..30
	PaymentAcceleration float64 `json:"paymentAcceleration"` // days, 0..15
	PriceIncrease       float64 `json:"priceIncrease"`       // percent, 0..15
}

// IsZero reports whether no lever is active.
func (p SimulationParams) IsZero() bool {
	return p.ChargesReduction == 0 && p.PaymentAcceleration == 0 && p.PriceIncrease == 0
}

// SimulationImpact holds signed deltas versus the unsimulated dataset.
type SimulationImpact struct {
	RevenueChange  float64 `json:"revenueChange"`
	ExpensesChange float64 `json:"expensesChange"`
	CashFlowChange float64 `json:"cashFlowChange"`
	MarginChange   float64 `json:"marginChange"`
}

// SimulationResult is the outcome of applying the levers to a dataset.
type SimulationResult struct {
	SimulatedKPIs []KPI            `json:"simulatedKPIs"`
	Impact        SimulationImpact `json:"impact"`
	Summary       string           `json:"summary"`
}

// Scenario is a named lever combination submitted to FindBestScenario.
type Scenario struct {
	Name   string           `json:"name"`
	Params SimulationParams `json:"params"`
}

// ScoredScenario is a scenario with its simulation outcome and the
// weighted score used for ranking.
type ScoredScenario struct {
	Scenario Scenario         `json:"scenario"`
	Result   SimulationResult `json:"result"`
	Score    float64          `json:"score"`
}
