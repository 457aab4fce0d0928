package kpi

import (
	"sort"

	"github.com/finsight/dashis/pkg/models/domain"
	"golang.org/x/exp/maps"
)

// longTailThreshold is the share below which a category is folded into
// the synthetic "Other" bucket.
const longTailThreshold = 3.0

const (
	fallbackCategory = "Other"
	fallbackClient   = "Unknown client"
)

// CalculateAllCharts derives the eight chart views from the same
// record run. Each view is an independent pure function of records.
func (e *Engine) CalculateAllCharts(records []domain.CanonicalRecord) domain.ChartBundle {
	return domain.ChartBundle{
		MonthlySeries:     MonthlySeries(records),
		CategoryBreakdown: CategoryBreakdown(records),
		MarginEvolution:   MarginEvolution(records),
		TopClients:        TopClients(records),
		Outstanding:       e.OutstandingInvoices(records),
		StatusBreakdown:   StatusBreakdown(records),
		CashFlow:          CashFlowGraph(records),
		Hierarchy:         CategoryHierarchy(records),
	}
}

func monthKeys(records []domain.CanonicalRecord) []string {
	seen := map[string]struct{}{}
	for _, r := range records {
		seen[r.Date.Format("2006-01")] = struct{}{}
	}
	keys := maps.Keys(seen)
	sort.Strings(keys)
	return keys
}

// MonthlySeries buckets income and expenses per calendar month.
func MonthlySeries(records []domain.CanonicalRecord) []domain.MonthlyPoint {
	income := map[string]float64{}
	expense := map[string]float64{}
	for _, r := range records {
		k := r.Date.Format("2006-01")
		if r.Kind == domain.KindIncome {
			income[k] += r.Amount
		} else {
			expense[k] += r.Amount
		}
	}

	points := []domain.MonthlyPoint{}
	for _, k := range monthKeys(records) {
		points = append(points, domain.MonthlyPoint{
			Month:   k,
			Income:  income[k],
			Expense: expense[k],
			Net:     income[k] - expense[k],
		})
	}
	return points
}

// CategoryBreakdown sums expenses per category, assigns uncategorized
// spend to "Other", then folds every slice below the 3% threshold into
// the same "Other" bucket. A slice can therefore be folded twice: once
// as the default bucket, once by the long-tail merge. The slice values
// always sum to the exact total expense.
func CategoryBreakdown(records []domain.CanonicalRecord) []domain.CategorySlice {
	byCategory := map[string]float64{}
	total := 0.0
	for _, r := range records {
		if r.Kind != domain.KindExpense {
			continue
		}
		cat := r.Category
		if cat == "" {
			cat = fallbackCategory
		}
		byCategory[cat] += r.Amount
		total += r.Amount
	}
	if total == 0 {
		return []domain.CategorySlice{}
	}

	slices := make([]domain.CategorySlice, 0, len(byCategory))
	for name, value := range byCategory {
		slices = append(slices, domain.CategorySlice{
			Name:       name,
			Value:      value,
			Percentage: value / total * 100,
		})
	}
	sort.SliceStable(slices, func(i, j int) bool {
		return slices[i].Value > slices[j].Value
	})

	kept := []domain.CategorySlice{}
	otherValue := 0.0
	for _, s := range slices {
		if s.Name != fallbackCategory && s.Percentage >= longTailThreshold {
			kept = append(kept, s)
			continue
		}
		otherValue += s.Value
	}
	if otherValue > 0 {
		kept = append(kept, domain.CategorySlice{
			Name:       fallbackCategory,
			Value:      otherValue,
			Percentage: otherValue / total * 100,
		})
		sort.SliceStable(kept, func(i, j int) bool {
			return kept[i].Value > kept[j].Value
		})
	}
	return kept
}

// MarginEvolution reports the month-by-month margin ratio.
func MarginEvolution(records []domain.CanonicalRecord) []domain.MarginPoint {
	points := []domain.MarginPoint{}
	for _, m := range MonthlySeries(records) {
		points = append(points, domain.MarginPoint{
			Month:   m.Month,
			Income:  m.Income,
			Expense: m.Expense,
			Margin:  marginPct(m.Income, m.Expense),
		})
	}
	return points
}

// TopClients ranks counterparties by income and keeps the top five.
// Records without a counterparty fall back to their description, then
// to a shared "Unknown client" label.
func TopClients(records []domain.CanonicalRecord) []domain.ClientRevenue {
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
			name = fallbackClient
		}
		byClient[name] += r.Amount
		total += r.Amount
	}
	if total == 0 {
		return []domain.ClientRevenue{}
	}

	clients := make([]domain.ClientRevenue, 0, len(byClient))
	for name, revenue := range byClient {
		clients = append(clients, domain.ClientRevenue{
			Name:       name,
			Revenue:    revenue,
			Percentage: revenue / total * 100,
		})
	}
	sort.SliceStable(clients, func(i, j int) bool {
		return clients[i].Revenue > clients[j].Revenue
	})
	if len(clients) > 5 {
		clients = clients[:5]
	}
	return clients
}

// OutstandingInvoices lists unsettled income records that carry both an
// invoice id and a due date. Status is recomputed from the due date:
// anything past due reads overdue regardless of the stored status.
func (e *Engine) OutstandingInvoices(records []domain.CanonicalRecord) []domain.OutstandingInvoice {
	today := e.now()
	invoices := []domain.OutstandingInvoice{}
	for _, r := range records {
		if r.Kind != domain.KindIncome {
			continue
		}
		if r.Status != domain.StatusPending && r.Status != domain.StatusOverdue {
			continue
		}
		if r.InvoiceID == "" || r.DueDate == nil {
			continue
		}

		daysOverdue := int(today.Sub(*r.DueDate).Hours() / 24)
		if daysOverdue < 0 {
			daysOverdue = 0
		}
		status := domain.StatusPending
		if daysOverdue > 0 {
			status = domain.StatusOverdue
		}

		invoices = append(invoices, domain.OutstandingInvoice{
			InvoiceID:    r.InvoiceID,
			Counterparty: r.Counterparty,
			Amount:       r.Amount,
			DueDate:      r.DueDate.Format("2006-01-02"),
			DaysOverdue:  daysOverdue,
			Status:       status,
		})
	}
	sort.SliceStable(invoices, func(i, j int) bool {
		return invoices[i].DaysOverdue > invoices[j].DaysOverdue
	})
	return invoices
}

// StatusBreakdown groups income records by payment status. Records
// with an unrecognized status land in the zero-status bucket.
func StatusBreakdown(records []domain.CanonicalRecord) []domain.StatusSlice {
	order := []domain.PaymentStatus{
		domain.StatusPaid,
		domain.StatusPending,
		domain.StatusOverdue,
		domain.StatusUnknown,
	}
	counts := map[domain.PaymentStatus]int{}
	amounts := map[domain.PaymentStatus]float64{}
	for _, r := range records {
		if r.Kind != domain.KindIncome {
			continue
		}
		counts[r.Status]++
		amounts[r.Status] += r.Amount
	}

	slices := []domain.StatusSlice{}
	for _, s := range order {
		if counts[s] == 0 {
			continue
		}
		slices = append(slices, domain.StatusSlice{
			Status: s,
			Count:  counts[s],
			Amount: amounts[s],
		})
	}
	return slices
}

// CashFlowGraph builds the fixed three-node flow diagram. A negative
// net flow yields a zero-value Revenue→Treasury edge, never a negative
// one.
func CashFlowGraph(records []domain.CanonicalRecord) domain.CashFlowGraph {
	income, expense := 0.0, 0.0
	for _, r := range records {
		if r.Kind == domain.KindIncome {
			income += r.Amount
		} else {
			expense += r.Amount
		}
	}
	treasury := income - expense
	if treasury < 0 {
		treasury = 0
	}

	return domain.CashFlowGraph{
		Nodes: []domain.FlowNode{
			{ID: "revenue", Label: "Revenue"},
			{ID: "expenses", Label: "Expenses"},
			{ID: "treasury", Label: "Treasury"},
		},
		Edges: []domain.FlowEdge{
			{From: "revenue", To: "expenses", Value: expense},
			{From: "revenue", To: "treasury", Value: treasury},
		},
	}
}

// CategoryHierarchy nests categories under their kind, rooted at the
// whole activity.
func CategoryHierarchy(records []domain.CanonicalRecord) domain.HierarchyNode {
	build := func(kind domain.RecordKind, label string) domain.HierarchyNode {
		byCategory := map[string]float64{}
		total := 0.0
		for _, r := range records {
			if r.Kind != kind {
				continue
			}
			cat := r.Category
			if cat == "" {
				cat = fallbackCategory
			}
			byCategory[cat] += r.Amount
			total += r.Amount
		}

		names := maps.Keys(byCategory)
		sort.Strings(names)

		node := domain.HierarchyNode{Name: label, Value: total}
		for _, name := range names {
			node.Children = append(node.Children, domain.HierarchyNode{
				Name:  name,
				Value: byCategory[name],
			})
		}
		return node
	}

	incomeNode := build(domain.KindIncome, "Income")
	expenseNode := build(domain.KindExpense, "Expenses")
	return domain.HierarchyNode{
		Name:     "Activity",
		Value:    incomeNode.Value + expenseNode.Value,
		Children: []domain.HierarchyNode{incomeNode, expenseNode},
	}
}
