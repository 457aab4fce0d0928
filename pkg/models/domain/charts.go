package domain

// MonthlyPoint is one month of income/expense activity.
type MonthlyPoint struct {
	Month   string  `json:"month"` // YYYY-MM
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Net     float64 `json:"net"`
}

// CategorySlice is one slice of the expense category breakdown.
type CategorySlice struct {
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
}

// MarginPoint is the margin ratio for one month.
type MarginPoint struct {
	Month   string  `json:"month"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Margin  float64 `json:"margin"` // percent
}

// ClientRevenue is one client's share of total income.
type ClientRevenue struct {
	Name       string  `json:"name"`
	Revenue    float64 `json:"revenue"`
	Percentage float64 `json:"percentage"`
}

// OutstandingInvoice is an unsettled income record with invoice identity.
// Status is recomputed from the due date, overriding the stored status.
type OutstandingInvoice struct {
	InvoiceID    string        `json:"invoiceId"`
	Counterparty string        `json:"counterparty"`
	Amount       float64       `json:"amount"`
	DueDate      string        `json:"dueDate"` // YYYY-MM-DD
	DaysOverdue  int           `json:"daysOverdue"`
	Status       PaymentStatus `json:"status"`
}

// StatusSlice is one slice of the payment status breakdown.
type StatusSlice struct {
	Status PaymentStatus `json:"status"`
	Count  int           `json:"count"`
	Amount float64       `json:"amount"`
}

// FlowNode and FlowEdge describe the fixed three-node cash-flow graph
// (Revenue, Expenses, Treasury).
type FlowNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type FlowEdge struct {
	From  string  `json:"from"`
	To    string  `json:"to"`
	Value float64 `json:"value"`
}

type CashFlowGraph struct {
	Nodes []FlowNode `json:"nodes"`
	Edges []FlowEdge `json:"edges"`
}

// HierarchyNode is one node of the category hierarchy, rooted at the
// kind level (income/expense) with categories as children.
type HierarchyNode struct {
	Name     string          `json:"name"`
	Value    float64         `json:"value"`
	Children []HierarchyNode `json:"children,omitempty"`
}

// ChartBundle is the full set of chart-ready views over one dataset.
// Every member derives from records alone; none mutate shared state.
type ChartBundle struct {
	MonthlySeries     []MonthlyPoint       `json:"monthlySeries"`
	CategoryBreakdown []CategorySlice      `json:"categoryBreakdown"`
	MarginEvolution   []MarginPoint        `json:"marginEvolution"`
	TopClients        []ClientRevenue      `json:"topClients"`
	Outstanding       []OutstandingInvoice `json:"outstandingInvoices"`
	StatusBreakdown   []StatusSlice        `json:"statusBreakdown"`
	CashFlow          CashFlowGraph        `json:"cashFlowGraph"`
	Hierarchy         HierarchyNode        `json:"categoryHierarchy"`
}
