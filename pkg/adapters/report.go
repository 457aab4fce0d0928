package adapters

import (
	"fmt"
	"time"

	"github.com/finsight/dashis/pkg/models/domain"
)

// MapKPIReportToReport projects a KPI report into the renderable form
// consumed by the terminal reporter.
func MapKPIReportToReport(report domain.KPIReport, charts domain.ChartBundle) *domain.Report {
	out := &domain.Report{
		Title:       "Financial overview",
		Period:      mapPeriod(report.Metadata.Period),
		GeneratedAt: report.Metadata.CalculatedAt,
		Currency:    "EUR",
	}

	kpiSection := domain.ReportSection{
		Title: "Key indicators",
		Summary: map[string]any{
			"Records": report.Metadata.RecordCount,
		},
	}
	for _, k := range report.KPIs {
		kpiSection.Details = append(kpiSection.Details, domain.ReportDetail{
			Name:        k.Title,
			Value:       k.DisplayValue,
			Unit:        trendArrow(k.Direction),
			Description: k.Description,
		})
	}
	out.Sections = append(out.Sections, kpiSection)

	if len(charts.CategoryBreakdown) > 0 {
		section := domain.ReportSection{Title: "Expenses by category"}
		for _, slice := range charts.CategoryBreakdown {
			section.Details = append(section.Details, domain.ReportDetail{
				Name:        slice.Name,
				Value:       fmt.Sprintf("%.2f", slice.Value),
				Unit:        "EUR",
				Description: fmt.Sprintf("%.1f%% of expenses", slice.Percentage),
			})
		}
		out.Sections = append(out.Sections, section)
	}

	if len(charts.TopClients) > 0 {
		section := domain.ReportSection{Title: "Top clients"}
		for _, client := range charts.TopClients {
			section.Details = append(section.Details, domain.ReportDetail{
				Name:        client.Name,
				Value:       fmt.Sprintf("%.2f", client.Revenue),
				Unit:        "EUR",
				Description: fmt.Sprintf("%.1f%% of revenue", client.Percentage),
			})
		}
		out.Sections = append(out.Sections, section)
	}

	if len(charts.Outstanding) > 0 {
		section := domain.ReportSection{Title: "Outstanding invoices"}
		for _, inv := range charts.Outstanding {
			section.Details = append(section.Details, domain.ReportDetail{
				Name:        inv.InvoiceID,
				Value:       fmt.Sprintf("%.2f", inv.Amount),
				Unit:        "EUR",
				Description: fmt.Sprintf("%s, due %s, %d days overdue",
					inv.Status, inv.DueDate, inv.DaysOverdue),
			})
		}
		out.Sections = append(out.Sections, section)
	}

	return out
}

// MapAnalysisToReport projects an analysis result into renderable form.
func MapAnalysisToReport(result domain.AnalysisResult, period domain.Period) *domain.Report {
	out := &domain.Report{
		Title:       "Financial analysis",
		Period:      mapPeriod(period),
		GeneratedAt: result.Metadata.AnalyzedAt,
		Currency:    "EUR",
	}

	summary := map[string]any{
		"Records":  result.Metadata.RecordCount,
		"Stages":   fmt.Sprintf("%v", result.Metadata.ModulesExecuted),
		"Duration": fmt.Sprintf("%d ms", result.Metadata.ExecutionTimeMs),
	}
	if result.SeasonalityDetected {
		summary["Seasonality"] = "detected"
	}

	anomalySection := domain.ReportSection{Title: "Anomalies", Summary: summary}
	for _, a := range result.Anomalies {
		anomalySection.Details = append(anomalySection.Details, domain.ReportDetail{
			Name:        fmt.Sprintf("%s (%s)", a.Type, a.Severity),
			Value:       a.Date,
			Description: a.Description,
		})
	}
	out.Sections = append(out.Sections, anomalySection)

	if len(result.CashFlowPredictions) > 0 {
		section := domain.ReportSection{Title: "Cash-flow forecast"}
		for _, p := range result.CashFlowPredictions {
			section.Details = append(section.Details, domain.ReportDetail{
				Name:        p.Month,
				Value:       fmt.Sprintf("%.2f", p.Predicted),
				Unit:        "EUR",
				Description: fmt.Sprintf("confidence %.0f%%", p.Confidence*100),
			})
		}
		for _, alert := range result.PredictionAlerts {
			section.Details = append(section.Details, domain.ReportDetail{
				Name:        alert.Type,
				Value:       alert.Month,
				Description: alert.Message,
			})
		}
		out.Sections = append(out.Sections, section)
	}

	if len(result.Patterns) > 0 {
		section := domain.ReportSection{Title: "Patterns"}
		for _, p := range result.Patterns {
			section.Details = append(section.Details, domain.ReportDetail{
				Name:        p.Type,
				Value:       fmt.Sprintf("%.0f%%", p.Confidence*100),
				Description: p.Description,
			})
		}
		out.Sections = append(out.Sections, section)
	}

	if result.Score != nil {
		out.Sections = append(out.Sections, domain.ReportSection{
			Title: "FinSight score",
			Summary: map[string]any{
				"Total": result.Score.Total,
				"Grade": result.Score.Grade,
			},
			Details: []domain.ReportDetail{
				{Name: "Cash flow", Value: fmt.Sprintf("%.0f", result.Score.Breakdown.CashFlow)},
				{Name: "Profitability", Value: fmt.Sprintf("%.0f", result.Score.Breakdown.Profitability)},
				{Name: "Efficiency", Value: fmt.Sprintf("%.0f", result.Score.Breakdown.Efficiency)},
				{Name: "Growth", Value: fmt.Sprintf("%.0f", result.Score.Breakdown.Growth)},
			},
		})
	}

	return out
}

// MapSimulationToReport projects a simulation result into renderable
// form.
func MapSimulationToReport(result domain.SimulationResult, period domain.Period) *domain.Report {
	out := &domain.Report{
		Title:       "What-if simulation",
		Period:      mapPeriod(period),
		GeneratedAt: time.Now(),
		Currency:    "EUR",
	}

	impact := domain.ReportSection{
		Title:   "Impact",
		Summary: map[string]any{"Scenario": result.Summary},
		Details: []domain.ReportDetail{
			{Name: "Revenue change", Value: fmt.Sprintf("%+.2f", result.Impact.RevenueChange), Unit: "EUR"},
			{Name: "Expenses change", Value: fmt.Sprintf("%+.2f", result.Impact.ExpensesChange), Unit: "EUR"},
			{Name: "Cash flow change", Value: fmt.Sprintf("%+.2f", result.Impact.CashFlowChange), Unit: "EUR"},
			{Name: "Margin change", Value: fmt.Sprintf("%+.2f", result.Impact.MarginChange), Unit: "pts"},
		},
	}
	out.Sections = append(out.Sections, impact)

	kpis := domain.ReportSection{Title: "Simulated indicators"}
	for _, k := range result.SimulatedKPIs {
		kpis.Details = append(kpis.Details, domain.ReportDetail{
			Name:        k.Title,
			Value:       k.DisplayValue,
			Description: k.Description,
		})
	}
	out.Sections = append(out.Sections, kpis)

	return out
}

func mapPeriod(p domain.Period) domain.TimePeriod {
	return domain.TimePeriod{
		Start:    p.Start,
		End:      p.End,
		Duration: int(p.End.Sub(p.Start).Hours() / 24),
	}
}

func trendArrow(d domain.ChangeDirection) string {
	switch d {
	case domain.ChangePositive:
		return "up"
	case domain.ChangeNegative:
		return "down"
	default:
		return ""
	}
}
