package telemetry

import (
	"context"
	"errors"

	"github.com/ledgerbook/backend/internal/domain/document"
	"github.com/ledgerbook/backend/internal/domain/finance"
	"github.com/ledgerbook/backend/internal/domain/ledger"
	"github.com/ledgerbook/backend/internal/domain/partner"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when a metrics component is built without a meter
var ErrMeterNil = errors.New("meter cannot be nil")

// LedgerMetrics turns domain events into business metrics. It subscribes to
// the event bus as a wildcard handler, so services stay unaware of metrics.
type LedgerMetrics struct {
	eventsTotal   *Counter
	invoiceAmount *Histogram
	paymentAmount *Histogram
	expenseAmount *Histogram
	entryAmount   *Histogram
	uploadedBytes *Counter
}

// NewLedgerMetrics registers the ledger instruments on meter
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	m := &LedgerMetrics{}
	var err error

	if m.eventsTotal, err = NewCounter(meter,
		"ledger_domain_events_total", "Domain events published, by type", "{events}"); err != nil {
		return nil, err
	}
	if m.uploadedBytes, err = NewCounter(meter,
		"ledger_file_uploaded_bytes_total", "Bytes accepted by file uploads", "By"); err != nil {
		return nil, err
	}

	amount := func(name, desc string) (*Histogram, error) {
		return NewHistogram(meter, HistogramOpts{
			Name:        name,
			Description: desc,
			Unit:        "{currency}",
			Boundaries:  AmountBuckets,
		})
	}
	if m.invoiceAmount, err = amount("ledger_invoice_amount", "Amount of created invoices"); err != nil {
		return nil, err
	}
	if m.paymentAmount, err = amount("ledger_payment_amount", "Amount of recorded payments"); err != nil {
		return nil, err
	}
	if m.expenseAmount, err = amount("ledger_partner_expense_amount", "Amount of recorded partner expenses"); err != nil {
		return nil, err
	}
	if m.entryAmount, err = amount("ledger_transaction_amount", "Amount of recorded ledger transactions"); err != nil {
		return nil, err
	}

	return m, nil
}

// EventTypes returns nil: every event is counted
func (m *LedgerMetrics) EventTypes() []string {
	return nil
}

// Handle records event into the instruments. It never fails.
func (m *LedgerMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	m.eventsTotal.Inc(ctx,
		AttrEventType.String(event.EventType()),
		AttrAggregateType.String(event.AggregateType()))

	switch e := event.(type) {
	case *finance.InvoiceCreatedEvent:
		m.invoiceAmount.Record(ctx, e.Amount.InexactFloat64(), AttrInvoiceStatus.String(string(e.Status)))
	case *finance.PaymentRecordedEvent:
		m.paymentAmount.Record(ctx, e.Amount.InexactFloat64(), AttrPaymentMethod.String(string(e.Method)))
	case *partner.ExpenseEvent:
		if e.EventType() == partner.EventTypeExpenseRecorded {
			m.expenseAmount.Record(ctx, e.Amount.InexactFloat64())
		}
	case *ledger.TransactionEvent:
		if e.EventType() == ledger.EventTypeTransactionCreated {
			m.entryAmount.Record(ctx, e.Amount.InexactFloat64(), AttrEntryType.String(string(e.Kind)))
		}
	case *document.FileEvent:
		if e.EventType() == document.EventTypeFileUploaded {
			m.uploadedBytes.Add(ctx, e.Size)
		}
	}
	return nil
}

var _ shared.EventHandler = (*LedgerMetrics)(nil)
