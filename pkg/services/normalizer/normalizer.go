package normalizer

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/finsight/dashis/pkg/models/domain"
	"github.com/rs/zerolog"
)

// Normalizer turns raw heterogeneous transaction records into a
// canonical, aggregated dataset. Processing is a single synchronous
// pass; malformed records are dropped, never surfaced as errors.
type Normalizer struct {
	now func() time.Time
}

// Option customizes a Normalizer.
type Option func(*Normalizer)

// WithClock overrides the time source. Used by tests and by callers
// that need reproducible degenerate periods.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) { n.now = now }
}

func New(opts ...Option) *Normalizer {
	n := &Normalizer{now: time.Now}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Field aliases accepted on raw records, English and French.
var (
	dateFields     = []string{"date", "transactionDate", "date_transaction", "dateOperation"}
	typeFields     = []string{"type", "kind", "nature", "operation"}
	amountFields   = []string{"amount", "montant", "value", "valeur"}
	categoryFields = []string{"category", "categorie", "catégorie"}
	clientFields   = []string{"client", "counterparty", "customer", "fournisseur", "supplier"}
	descFields     = []string{"description", "libelle", "libellé", "label", "memo"}
	invoiceFields  = []string{"invoiceId", "invoice_id", "facture", "numeroFacture", "numero_facture"}
	statusFields   = []string{"status", "statut", "paymentStatus", "etat", "état"}
	dueDateFields  = []string{"dueDate", "due_date", "echeance", "échéance", "date_echeance"}
)

var incomeTokens = []string{
	"income", "revenue", "sale", "sales", "invoice",
	"revenu", "vente", "recette", "encaissement", "prestation", "facture",
}

var expenseTokens = []string{
	"expense", "cost", "charge", "purchase", "fee",
	"depense", "dépense", "achat", "frais", "abonnement",
}

// Process validates, normalizes and aggregates raw records.
//
// A record is kept iff it carries a parseable date, a non-empty
// type-like field and a numeric amount strictly greater than zero.
// Negative amounts are rejected rather than sign-coerced, and records
// whose date cannot be resolved never reach sorting. Everything else
// is dropped silently; the drop count is only logged.
func (n *Normalizer) Process(ctx context.Context, raw []domain.RawRecord) domain.Dataset {
	records := make([]domain.CanonicalRecord, 0, len(raw))
	dropped := 0

	for _, r := range raw {
		rec, ok := n.normalize(r)
		if !ok {
			dropped++
			continue
		}
		records = append(records, rec)
	}

	if dropped > 0 {
		zerolog.Ctx(ctx).Debug().
			Int("dropped", dropped).
			Int("kept", len(records)).
			Msg("raw records excluded during normalization")
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})

	return n.aggregate(records)
}

func (n *Normalizer) normalize(raw domain.RawRecord) (domain.CanonicalRecord, bool) {
	dateStr, ok := stringField(raw, dateFields)
	if !ok || dateStr == "" {
		return domain.CanonicalRecord{}, false
	}
	typeStr, ok := stringField(raw, typeFields)
	if !ok || typeStr == "" {
		return domain.CanonicalRecord{}, false
	}
	amount, ok := numericField(raw, amountFields)
	if !ok || amount <= 0 {
		return domain.CanonicalRecord{}, false
	}
	date, ok := ParseDate(dateStr)
	if !ok {
		return domain.CanonicalRecord{}, false
	}

	rec := domain.CanonicalRecord{
		Date:   date,
		Kind:   classifyKind(typeStr),
		Amount: amount,
	}

	if v, ok := stringField(raw, categoryFields); ok {
		rec.Category = v
	}
	if v, ok := stringField(raw, clientFields); ok {
		rec.Counterparty = v
	}
	if v, ok := stringField(raw, descFields); ok {
		rec.Description = v
	}
	if v, ok := stringField(raw, invoiceFields); ok {
		rec.InvoiceID = v
	}
	if v, ok := stringField(raw, statusFields); ok {
		rec.Status = classifyStatus(v)
	}
	if v, ok := stringField(raw, dueDateFields); ok {
		if due, ok := ParseDate(v); ok {
			rec.DueDate = &due
		}
	}

	return rec, true
}

func (n *Normalizer) aggregate(records []domain.CanonicalRecord) domain.Dataset {
	ds := domain.Dataset{Records: records}

	for _, r := range records {
		switch r.Kind {
		case domain.KindIncome:
			ds.TotalIncome += r.Amount
		case domain.KindExpense:
			ds.TotalExpense += r.Amount
		}
	}
	ds.NetFlow = ds.TotalIncome - ds.TotalExpense

	if len(records) == 0 {
		now := n.now()
		ds.Period = domain.Period{Start: now, End: now}
		return ds
	}
	// Records are already sorted ascending by date.
	ds.Period = domain.Period{
		Start: records[0].Date,
		End:   records[len(records)-1].Date,
	}
	return ds
}

// ParseDate resolves the date formats seen in upstream exports: ISO
// (with or without a time part), DD/MM/YYYY, and a handful of fallback
// layouts. The boolean is false when nothing matches.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if len(s) >= 10 && s[4] == '-' && s[7] == '-' {
		if t, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return t, true
		}
	}
	if t, err := time.Parse("02/01/2006", s); err == nil {
		return t, true
	}
	for _, layout := range []string{"2006/01/02", "02-01-2006", "Jan 2, 2006", "2 Jan 2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func classifyKind(s string) domain.RecordKind {
	lower := strings.ToLower(s)
	for _, tok := range incomeTokens {
		if strings.Contains(lower, tok) {
			return domain.KindIncome
		}
	}
	for _, tok := range expenseTokens {
		if strings.Contains(lower, tok) {
			return domain.KindExpense
		}
	}
	// Ambiguous classifications default to expense.
	return domain.KindExpense
}

func classifyStatus(s string) domain.PaymentStatus {
	lower := strings.ToLower(s)
	// Order matters: "unpaid" must resolve before the "paid" probe,
	// and "overdue" before the generic "due" probe.
	switch {
	case containsAny(lower, "overdue", "late", "retard", "impay"):
		return domain.StatusOverdue
	case containsAny(lower, "pending", "attente", "unpaid", "due"):
		return domain.StatusPending
	case containsAny(lower, "paid", "payé", "paye", "regl", "régl", "settled"):
		return domain.StatusPaid
	default:
		return domain.StatusUnknown
	}
}

func containsAny(s string, tokens ...string) bool {
	for _, tok := range tokens {
		if strings.Contains(s, tok) {
			return true
		}
	}
	return false
}

func stringField(raw domain.RawRecord, names []string) (string, bool) {
	for _, name := range names {
		v, ok := raw[name]
		if !ok {
			continue
		}
		switch s := v.(type) {
		case string:
			trimmed := strings.TrimSpace(s)
			if trimmed != "" {
				return trimmed, true
			}
		}
	}
	return "", false
}

func numericField(raw domain.RawRecord, names []string) (float64, bool) {
	for _, name := range names {
		v, ok := raw[name]
		if !ok {
			continue
		}
		switch x := v.(type) {
		case float64:
			return x, true
		case float32:
			return float64(x), true
		case int:
			return float64(x), true
		case int64:
			return float64(x), true
		case string:
			// French exports use a comma decimal separator.
			cleaned := strings.ReplaceAll(strings.TrimSpace(x), ",", ".")
			if f, err := strconv.ParseFloat(cleaned, 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}
