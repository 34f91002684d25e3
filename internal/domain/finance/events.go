package finance

import (
	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeInvoice = "CustomerInvoice"
	AggregateTypePayment = "CustomerPayment"
)

// Event type constants
const (
	EventTypeInvoiceCreated       = "InvoiceCreated"
	EventTypeInvoiceUpdated       = "InvoiceUpdated"
	EventTypeInvoiceStatusChanged = "InvoiceStatusChanged"
	EventTypeInvoiceDeleted       = "InvoiceDeleted"
	EventTypePaymentRecorded      = "PaymentRecorded"
	EventTypePaymentUpdated       = "PaymentUpdated"
	EventTypePaymentDeleted       = "PaymentDeleted"
)

// CustomerScoped is implemented by events that affect one customer's account
type CustomerScoped interface {
	CustomerRef() uuid.UUID
}

// InvoiceEvent carries the invoice fields shared by every invoice event
type InvoiceEvent struct {
	shared.BaseDomainEvent
	CustomerID    uuid.UUID       `json:"customer_id"`
	InvoiceNumber string          `json:"invoice_number"`
	Amount        decimal.Decimal `json:"amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	Status        InvoiceStatus   `json:"status"`
}

// CustomerRef implements CustomerScoped
func (e *InvoiceEvent) CustomerRef() uuid.UUID {
	return e.CustomerID
}

func newInvoiceEvent(eventType string, inv *CustomerInvoice) InvoiceEvent {
	return InvoiceEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeInvoice, inv.ID),
		CustomerID:      inv.CustomerID,
		InvoiceNumber:   inv.InvoiceNumber,
		Amount:          inv.Amount,
		PaidAmount:      inv.PaidAmount,
		Status:          inv.Status,
	}
}

// InvoiceCreatedEvent is published when an invoice is issued
type InvoiceCreatedEvent struct {
	InvoiceEvent
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(inv *CustomerInvoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{InvoiceEvent: newInvoiceEvent(EventTypeInvoiceCreated, inv)}
}

// InvoiceUpdatedEvent is published when invoice details change
type InvoiceUpdatedEvent struct {
	InvoiceEvent
}

// NewInvoiceUpdatedEvent creates a new InvoiceUpdatedEvent
func NewInvoiceUpdatedEvent(inv *CustomerInvoice) *InvoiceUpdatedEvent {
	return &InvoiceUpdatedEvent{InvoiceEvent: newInvoiceEvent(EventTypeInvoiceUpdated, inv)}
}

// InvoiceStatusChangedEvent is published when payments move the invoice between statuses
type InvoiceStatusChangedEvent struct {
	InvoiceEvent
	OldStatus InvoiceStatus `json:"old_status"`
}

// NewInvoiceStatusChangedEvent creates a new InvoiceStatusChangedEvent
func NewInvoiceStatusChangedEvent(inv *CustomerInvoice, old InvoiceStatus) *InvoiceStatusChangedEvent {
	return &InvoiceStatusChangedEvent{
		InvoiceEvent: newInvoiceEvent(EventTypeInvoiceStatusChanged, inv),
		OldStatus:    old,
	}
}

// InvoiceDeletedEvent is published after an invoice is removed
type InvoiceDeletedEvent struct {
	InvoiceEvent
}

// NewInvoiceDeletedEvent creates a new InvoiceDeletedEvent
func NewInvoiceDeletedEvent(inv *CustomerInvoice) *InvoiceDeletedEvent {
	return &InvoiceDeletedEvent{InvoiceEvent: newInvoiceEvent(EventTypeInvoiceDeleted, inv)}
}

// PaymentEvent carries the payment fields shared by every payment event
type PaymentEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID       `json:"customer_id"`
	InvoiceID  *uuid.UUID      `json:"invoice_id,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Method     PaymentMethod   `json:"method"`
}

// CustomerRef implements CustomerScoped
func (e *PaymentEvent) CustomerRef() uuid.UUID {
	return e.CustomerID
}

func newPaymentEvent(eventType string, p *CustomerPayment) PaymentEvent {
	return PaymentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypePayment, p.ID),
		CustomerID:      p.CustomerID,
		InvoiceID:       p.InvoiceID,
		Amount:          p.Amount,
		Method:          p.Method,
	}
}

// PaymentRecordedEvent is published when a payment is stored
type PaymentRecordedEvent struct {
	PaymentEvent
}

// NewPaymentRecordedEvent creates a new PaymentRecordedEvent
func NewPaymentRecordedEvent(p *CustomerPayment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{PaymentEvent: newPaymentEvent(EventTypePaymentRecorded, p)}
}

// PaymentUpdatedEvent is published when a payment changes
type PaymentUpdatedEvent struct {
	PaymentEvent
}

// NewPaymentUpdatedEvent creates a new PaymentUpdatedEvent
func NewPaymentUpdatedEvent(p *CustomerPayment) *PaymentUpdatedEvent {
	return &PaymentUpdatedEvent{PaymentEvent: newPaymentEvent(EventTypePaymentUpdated, p)}
}

// PaymentDeletedEvent is published after a payment is removed
type PaymentDeletedEvent struct {
	PaymentEvent
}

// NewPaymentDeletedEvent creates a new PaymentDeletedEvent
func NewPaymentDeletedEvent(p *CustomerPayment) *PaymentDeletedEvent {
	return &PaymentDeletedEvent{PaymentEvent: newPaymentEvent(EventTypePaymentDeleted, p)}
}
