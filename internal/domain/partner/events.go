package partner

import (
	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypePartner = "Partner"
	AggregateTypeExpense = "PartnerExpense"
)

// Event type constants
const (
	EventTypePartnerCreated    = "PartnerCreated"
	EventTypePartnerUpdated    = "PartnerUpdated"
	EventTypePartnerDeleted    = "PartnerDeleted"
	EventTypeExpenseRecorded   = "PartnerExpenseRecorded"
	EventTypeExpenseUpdated    = "PartnerExpenseUpdated"
	EventTypeExpenseReimbursed = "PartnerExpenseReimbursed"
	EventTypeExpenseDeleted    = "PartnerExpenseDeleted"
)

// PartnerEvent is published for partner lifecycle changes
type PartnerEvent struct {
	shared.BaseDomainEvent
	Name            string          `json:"name"`
	SharePercentage decimal.Decimal `json:"share_percentage"`
}

func newPartnerEvent(eventType string, p *Partner) *PartnerEvent {
	return &PartnerEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypePartner, p.ID),
		Name:            p.Name,
		SharePercentage: p.SharePercentage,
	}
}

// NewPartnerCreatedEvent creates the event for a new partner
func NewPartnerCreatedEvent(p *Partner) *PartnerEvent {
	return newPartnerEvent(EventTypePartnerCreated, p)
}

// NewPartnerUpdatedEvent creates the event for a changed partner
func NewPartnerUpdatedEvent(p *Partner) *PartnerEvent {
	return newPartnerEvent(EventTypePartnerUpdated, p)
}

// NewPartnerDeletedEvent creates the event for a removed partner
func NewPartnerDeletedEvent(p *Partner) *PartnerEvent {
	return newPartnerEvent(EventTypePartnerDeleted, p)
}

// ExpenseEvent is published for partner expense changes
type ExpenseEvent struct {
	shared.BaseDomainEvent
	PartnerID uuid.UUID       `json:"partner_id"`
	Amount    decimal.Decimal `json:"amount"`
}

func newExpenseEvent(eventType string, e *Expense) *ExpenseEvent {
	return &ExpenseEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeExpense, e.ID),
		PartnerID:       e.PartnerID,
		Amount:          e.Amount,
	}
}

// NewExpenseRecordedEvent creates the event for a new expense
func NewExpenseRecordedEvent(e *Expense) *ExpenseEvent {
	return newExpenseEvent(EventTypeExpenseRecorded, e)
}

// NewExpenseUpdatedEvent creates the event for a changed expense
func NewExpenseUpdatedEvent(e *Expense) *ExpenseEvent {
	return newExpenseEvent(EventTypeExpenseUpdated, e)
}

// NewExpenseReimbursedEvent creates the event for a reimbursed expense
func NewExpenseReimbursedEvent(e *Expense) *ExpenseEvent {
	return newExpenseEvent(EventTypeExpenseReimbursed, e)
}

// NewExpenseDeletedEvent creates the event for a removed expense
func NewExpenseDeletedEvent(e *Expense) *ExpenseEvent {
	return newExpenseEvent(EventTypeExpenseDeleted, e)
}
