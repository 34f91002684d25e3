package telemetry

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/domain/document"
	"github.com/ledgerbook/backend/internal/domain/finance"
	"github.com/ledgerbook/backend/internal/domain/ledger"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*LedgerMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := NewLedgerMetrics(provider.Meter("test"))
	require.NoError(t, err)
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestNewLedgerMetrics_NilMeter(t *testing.T) {
	_, err := NewLedgerMetrics(nil)
	assert.ErrorIs(t, err, ErrMeterNil)
}

func TestLedgerMetrics_Handle(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	invoice := &finance.InvoiceCreatedEvent{InvoiceEvent: finance.InvoiceEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(finance.EventTypeInvoiceCreated, finance.AggregateTypeInvoice, uuid.New()),
		Amount:          decimal.NewFromInt(1200),
		Status:          finance.InvoiceStatusUnpaid,
	}}
	payment := &finance.PaymentRecordedEvent{PaymentEvent: finance.PaymentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(finance.EventTypePaymentRecorded, finance.AggregateTypePayment, uuid.New()),
		Amount:          decimal.RequireFromString("450.50"),
		Method:          finance.PaymentMethodBankTransfer,
	}}
	entry := &ledger.TransactionEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(ledger.EventTypeTransactionCreated, ledger.AggregateTypeTransaction, uuid.New()),
		Kind:            ledger.EntryTypeIncome,
		Amount:          decimal.NewFromInt(80),
	}
	upload := &document.FileEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(document.EventTypeFileUploaded, document.AggregateTypeFile, uuid.New()),
		Size:            2048,
	}

	for _, e := range []shared.DomainEvent{invoice, payment, entry, upload} {
		require.NoError(t, m.Handle(ctx, e))
	}

	metrics := collect(t, reader)

	events := metrics["ledger_domain_events_total"].Data.(metricdata.Sum[int64])
	var total int64
	for _, dp := range events.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(4), total)
	assert.Len(t, events.DataPoints, 4, "one series per event type")

	invoices := metrics["ledger_invoice_amount"].Data.(metricdata.Histogram[float64])
	require.Len(t, invoices.DataPoints, 1)
	assert.Equal(t, uint64(1), invoices.DataPoints[0].Count)
	assert.InDelta(t, 1200.0, invoices.DataPoints[0].Sum, 0.001)

	payments := metrics["ledger_payment_amount"].Data.(metricdata.Histogram[float64])
	require.Len(t, payments.DataPoints, 1)
	assert.InDelta(t, 450.5, payments.DataPoints[0].Sum, 0.001)
	method, ok := payments.DataPoints[0].Attributes.Value(AttrPaymentMethod)
	require.True(t, ok)
	assert.Equal(t, "bank_transfer", method.AsString())

	entries := metrics["ledger_transaction_amount"].Data.(metricdata.Histogram[float64])
	require.Len(t, entries.DataPoints, 1)
	assert.InDelta(t, 80.0, entries.DataPoints[0].Sum, 0.001)

	bytes := metrics["ledger_file_uploaded_bytes_total"].Data.(metricdata.Sum[int64])
	require.Len(t, bytes.DataPoints, 1)
	assert.Equal(t, int64(2048), bytes.DataPoints[0].Value)
}

func TestLedgerMetrics_IgnoresAmountsOfNonCreationEvents(t *testing.T) {
	m, reader := newTestMetrics(t)

	deleted := &ledger.TransactionEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(ledger.EventTypeTransactionDeleted, ledger.AggregateTypeTransaction, uuid.New()),
		Amount:          decimal.NewFromInt(10),
	}
	require.NoError(t, m.Handle(context.Background(), deleted))

	metrics := collect(t, reader)
	assert.Contains(t, metrics, "ledger_domain_events_total")
	if h, ok := metrics["ledger_transaction_amount"]; ok {
		assert.Empty(t, h.Data.(metricdata.Histogram[float64]).DataPoints)
	}
}

func TestLedgerMetrics_IsWildcardHandler(t *testing.T) {
	m, _ := newTestMetrics(t)
	assert.Nil(t, m.EventTypes())
}
