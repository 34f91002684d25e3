package finance

import (
	"context"

	"github.com/ledgerbook/backend/internal/application/common"
	"github.com/ledgerbook/backend/internal/domain/customer"
	"github.com/ledgerbook/backend/internal/domain/finance"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// SummaryInvalidator drops cached account summaries when a customer's
// invoices, payments or projects change
type SummaryInvalidator struct {
	cache  finance.AccountSummaryCache
	logger *zap.Logger
}

// NewSummaryInvalidator creates a new SummaryInvalidator
func NewSummaryInvalidator(cache finance.AccountSummaryCache, logger *zap.Logger) *SummaryInvalidator {
	return &SummaryInvalidator{cache: cache, logger: common.LoggerOrNop(logger)}
}

// EventTypes returns the event types this handler is interested in
func (h *SummaryInvalidator) EventTypes() []string {
	return []string{
		finance.EventTypeInvoiceCreated,
		finance.EventTypeInvoiceUpdated,
		finance.EventTypeInvoiceStatusChanged,
		finance.EventTypeInvoiceDeleted,
		finance.EventTypePaymentRecorded,
		finance.EventTypePaymentUpdated,
		finance.EventTypePaymentDeleted,
		customer.EventTypeProjectCreated,
		customer.EventTypeProjectUpdated,
		customer.EventTypeProjectStatusChanged,
		customer.EventTypeProjectDeleted,
		customer.EventTypeCustomerUpdated,
		customer.EventTypeCustomerDeleted,
	}
}

// Handle invalidates the summary of the customer the event belongs to
func (h *SummaryInvalidator) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.cache == nil {
		return nil
	}

	customerID := event.AggregateID()
	if scoped, ok := event.(finance.CustomerScoped); ok {
		customerID = scoped.CustomerRef()
	} else if event.AggregateType() != customer.AggregateTypeCustomer {
		h.logger.Debug("Event carries no customer reference",
			zap.String("event_type", event.EventType()),
		)
		return nil
	}

	if err := h.cache.Invalidate(ctx, customerID); err != nil {
		h.logger.Warn("Failed to invalidate account summary",
			zap.String("customer_id", customerID.String()),
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
		return err
	}
	return nil
}
