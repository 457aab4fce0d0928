package simulation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/finsight/dashis/pkg/models/domain"
	"github.com/finsight/dashis/pkg/services/kpi"
)

// Scenario ranking weights: cash flow dominates, revenue gains and
// expense savings weigh equally.
const (
	weightRevenue  = 0.3
	weightExpenses = 0.3
	weightCashFlow = 0.4
)

// Engine applies the what-if levers to a dataset and its KPIs. All
// methods are pure and synchronous.
type Engine struct{}

func New() *Engine { return &Engine{} }

// Simulate composes the three levers over the dataset. Levers default
// to zero, so a single-lever call is a degenerate case of the combined
// formula rather than a separate path. Only KPIs whose relevant
// lever(s) are active get their values rewritten; the rest pass
// through untouched.
func (e *Engine) Simulate(
	ds domain.Dataset,
	currentKPIs []domain.KPI,
	params domain.SimulationParams,
) domain.SimulationResult {
	newExpense := ds.TotalExpense * (1 - params.ChargesReduction/100)
	newRevenue := ds.TotalIncome * (1 + params.PriceIncrease/100)
	cashLiberated := pendingIncomeTotal(ds.Records) / domain.PaymentCycleDays * params.PaymentAcceleration

	combinedMargin := 0.0
	if newRevenue != 0 {
		combinedMargin = (newRevenue - newExpense) / newRevenue * 100
	}
	combinedCashFlow := (newRevenue - newExpense) + cashLiberated

	baseMargin := 0.0
	if ds.TotalIncome != 0 {
		baseMargin = (ds.TotalIncome - ds.TotalExpense) / ds.TotalIncome * 100
	}

	simulated := make([]domain.KPI, len(currentKPIs))
	copy(simulated, currentKPIs)
	for i := range simulated {
		k := &simulated[i]
		switch {
		case matches(*k, domain.KPIRevenue, "revenue"):
			if params.PriceIncrease != 0 {
				rewrite(k, newRevenue, kpi.FormatEuro(newRevenue))
			}
		case matches(*k, domain.KPIExpenses, "expense"):
			if params.ChargesReduction != 0 {
				rewrite(k, newExpense, kpi.FormatEuro(newExpense))
			}
		case matches(*k, domain.KPIMargin, "margin"):
			if params.PriceIncrease != 0 || params.ChargesReduction != 0 {
				rewrite(k, combinedMargin, fmt.Sprintf("%.1f%%", combinedMargin))
			}
		case matches(*k, domain.KPICashFlow, "cash"):
			if !params.IsZero() {
				rewrite(k, combinedCashFlow, kpi.FormatEuro(combinedCashFlow))
			}
		}
	}

	return domain.SimulationResult{
		SimulatedKPIs: simulated,
		Impact: domain.SimulationImpact{
			RevenueChange:  newRevenue - ds.TotalIncome,
			ExpensesChange: newExpense - ds.TotalExpense,
			CashFlowChange: combinedCashFlow - ds.NetFlow,
			MarginChange:   combinedMargin - baseMargin,
		},
		Summary: summarize(params),
	}
}

// FindBestScenario simulates every scenario and returns them sorted
// descending by the weighted score. Ties keep input order.
func (e *Engine) FindBestScenario(
	ds domain.Dataset,
	currentKPIs []domain.KPI,
	scenarios []domain.Scenario,
) []domain.ScoredScenario {
	scored := make([]domain.ScoredScenario, 0, len(scenarios))
	for _, sc := range scenarios {
		result := e.Simulate(ds, currentKPIs, sc.Params)
		scored = append(scored, domain.ScoredScenario{
			Scenario: sc,
			Result:   result,
			Score: weightRevenue*result.Impact.RevenueChange +
				weightExpenses*abs(result.Impact.ExpensesChange) +
				weightCashFlow*result.Impact.CashFlowChange,
		})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// ValidateParams range-checks every lever and reports all violations,
// not just the first.
func (e *Engine) ValidateParams(params domain.SimulationParams) []error {
	var errs []error
	if params.ChargesReduction < 0 || params.ChargesReduction > domain.MaxChargesReductionPct {
		errs = append(errs, fmt.Errorf("charges reduction must be between 0 and %.0f%%, got %.1f",
			domain.MaxChargesReductionPct, params.ChargesReduction))
	}
	if params.PaymentAcceleration < 0 || params.PaymentAcceleration > domain.MaxPaymentAccelDays {
		errs = append(errs, fmt.Errorf("payment acceleration must be between 0 and %.0f days, got %.1f",
			domain.MaxPaymentAccelDays, params.PaymentAcceleration))
	}
	if params.PriceIncrease < 0 || params.PriceIncrease > domain.MaxPriceIncreasePct {
		errs = append(errs, fmt.Errorf("price increase must be between 0 and %.0f%%, got %.1f",
			domain.MaxPriceIncreasePct, params.PriceIncrease))
	}
	return errs
}

// pendingIncomeTotal is the cash pool eligible for acceleration: the
// sum of income records currently marked pending.
func pendingIncomeTotal(records []domain.CanonicalRecord) float64 {
	total := 0.0
	for _, r := range records {
		if r.Kind == domain.KindIncome && r.Status == domain.StatusPending {
			total += r.Amount
		}
	}
	return total
}

// matches checks a KPI by id, falling back to a case-insensitive title
// substring for KPI sets produced by older exports.
func matches(k domain.KPI, id, titleToken string) bool {
	if k.ID == id {
		return true
	}
	return k.ID == "" && strings.Contains(strings.ToLower(k.Title), titleToken)
}

func rewrite(k *domain.KPI, value float64, display string) {
	k.NumericValue = value
	k.DisplayValue = display
}

func summarize(params domain.SimulationParams) string {
	if params.IsZero() {
		return "No active simulation"
	}

	var clauses []string
	if params.ChargesReduction != 0 {
		clauses = append(clauses, fmt.Sprintf("charges reduced by %.0f%%", params.ChargesReduction))
	}
	if params.PaymentAcceleration != 0 {
		clauses = append(clauses, fmt.Sprintf("payments accelerated by %.0f days", params.PaymentAcceleration))
	}
	if params.PriceIncrease != 0 {
		clauses = append(clauses, fmt.Sprintf("prices increased by %.0f%%", params.PriceIncrease))
	}

	summary := strings.Join(clauses, ", ")
	return strings.ToUpper(summary[:1]) + summary[1:]
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
