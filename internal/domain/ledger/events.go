package ledger

import (
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeCategory    = "Category"
	AggregateTypeTransaction = "Transaction"
)

// Event type constants
const (
	EventTypeCategoryCreated    = "CategoryCreated"
	EventTypeCategoryUpdated    = "CategoryUpdated"
	EventTypeCategoryDeleted    = "CategoryDeleted"
	EventTypeTransactionCreated = "TransactionCreated"
	EventTypeTransactionUpdated = "TransactionUpdated"
	EventTypeTransactionDeleted = "TransactionDeleted"
)

// CategoryEvent is published for category changes
type CategoryEvent struct {
	shared.BaseDomainEvent
	Name string    `json:"name"`
	Kind EntryType `json:"kind"`
}

// NewCategoryEvent creates a category event of the given type
func NewCategoryEvent(eventType string, c *Category) *CategoryEvent {
	return &CategoryEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeCategory, c.ID),
		Name:            c.Name,
		Kind:            c.Type,
	}
}

// TransactionEvent is published for transaction changes
type TransactionEvent struct {
	shared.BaseDomainEvent
	Kind   EntryType       `json:"kind"`
	Amount decimal.Decimal `json:"amount"`
}

// NewTransactionEvent creates a transaction event of the given type
func NewTransactionEvent(eventType string, t *Transaction) *TransactionEvent {
	return &TransactionEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeTransaction, t.ID),
		Kind:            t.Type,
		Amount:          t.Amount,
	}
}
