package domain

import "time"

// RawRecord is an untyped transaction record as produced by an upstream
// export. Field names are loose (English or French) and values may be
// malformed; the normalizer is the only component that looks inside one.
type RawRecord = map[string]any

// RecordKind classifies a canonical record as money in or money out.
type RecordKind string

const (
	KindIncome  RecordKind = "income"
	KindExpense RecordKind = "expense"
)

// PaymentStatus is the settlement state of an invoice-backed record.
// The zero value means the status could not be derived from the source.
type PaymentStatus string

const (
	StatusUnknown PaymentStatus = ""
	StatusPaid    PaymentStatus = "paid"
	StatusPending PaymentStatus = "pending"
	StatusOverdue PaymentStatus = "overdue"
)

// CanonicalRecord is a validated, normalized unit of financial activity.
// Amount is always > 0 and Date always resolves to a real calendar day.
type CanonicalRecord struct {
	Date         time.Time     `json:"date"`
	Kind         RecordKind    `json:"kind"`
	Amount       float64       `json:"amount"`
	Category     string        `json:"category,omitempty"`
	Counterparty string        `json:"counterparty,omitempty"`
	Description  string        `json:"description,omitempty"`
	InvoiceID    string        `json:"invoiceId,omitempty"`
	Status       PaymentStatus `json:"paymentStatus,omitempty"`
	DueDate      *time.Time    `json:"dueDate,omitempty"`
}
