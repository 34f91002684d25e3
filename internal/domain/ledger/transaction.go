package ledger

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Transaction is a company income or expense entry
type Transaction struct {
	shared.BaseAggregateRoot
	Type            EntryType
	Amount          decimal.Decimal
	CategoryID      *uuid.UUID
	CustomerID      *uuid.UUID
	ProjectID       *uuid.UUID
	TransactionDate time.Time
	Description     string
	PaymentMethod   string
	Reference       string
}

// NewTransaction creates an income or expense entry
func NewTransaction(entryType EntryType, amount decimal.Decimal, date time.Time, description string) (*Transaction, error) {
	if !entryType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", "Transaction type must be income or expense")
	}
	if err := shared.ValidatePositiveAmount(amount); err != nil {
		return nil, err
	}
	if date.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Transaction date is required")
	}

	t := &Transaction{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Type:              entryType,
		Amount:            shared.RoundMoney(amount),
		TransactionDate:   date,
		Description:       strings.TrimSpace(description),
	}
	t.AddDomainEvent(NewTransactionEvent(EventTypeTransactionCreated, t))
	return t, nil
}

// AssignCategory sets the category after checking its type matches
func (t *Transaction) AssignCategory(c *Category) error {
	if c == nil {
		t.CategoryID = nil
		return nil
	}
	if c.Type != t.Type {
		return shared.NewDomainError("CATEGORY_TYPE_MISMATCH",
			"Category '"+c.Name+"' is for "+string(c.Type)+" entries, not "+string(t.Type))
	}
	id := c.ID
	t.CategoryID = &id
	return nil
}

// LinkCustomer associates the entry with a customer and optionally a project
func (t *Transaction) LinkCustomer(customerID, projectID *uuid.UUID) {
	t.CustomerID = customerID
	t.ProjectID = projectID
}

// SetPayment sets the payment method and reference
func (t *Transaction) SetPayment(method, reference string) {
	t.PaymentMethod = strings.TrimSpace(method)
	t.Reference = strings.TrimSpace(reference)
}

// Update changes type, amount, date and description.
// Changing the type clears a category of the old type.
func (t *Transaction) Update(entryType EntryType, amount decimal.Decimal, date time.Time, description string) error {
	if !entryType.IsValid() {
		return shared.NewDomainError("INVALID_TYPE", "Transaction type must be income or expense")
	}
	if err := shared.ValidatePositiveAmount(amount); err != nil {
		return err
	}
	if date.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "Transaction date is required")
	}
	if entryType != t.Type {
		t.CategoryID = nil
	}
	t.Type = entryType
	t.Amount = shared.RoundMoney(amount)
	t.TransactionDate = date
	t.Description = strings.TrimSpace(description)
	t.Touch()
	t.AddDomainEvent(NewTransactionEvent(EventTypeTransactionUpdated, t))
	return nil
}

// SignedAmount returns the amount as positive for income and negative for expense
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Type == EntryTypeExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}
