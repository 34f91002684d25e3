package finance

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentMethod is how a customer paid
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodCheck        PaymentMethod = "check"
	PaymentMethodOther        PaymentMethod = "other"
)

// IsValid reports whether m is a known payment method
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCard, PaymentMethodCheck, PaymentMethodOther:
		return true
	}
	return false
}

// CustomerPayment is money received from a customer, optionally against an invoice
type CustomerPayment struct {
	shared.BaseAggregateRoot
	CustomerID  uuid.UUID
	InvoiceID   *uuid.UUID
	ProjectID   *uuid.UUID
	Amount      decimal.Decimal
	PaymentDate time.Time
	Method      PaymentMethod
	Reference   string
	Notes       string
}

// NewCustomerPayment creates a payment that is not yet linked to an invoice
func NewCustomerPayment(customerID uuid.UUID, amount decimal.Decimal, paymentDate time.Time, method PaymentMethod) (*CustomerPayment, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if err := shared.ValidatePositiveAmount(amount); err != nil {
		return nil, err
	}
	if paymentDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Payment date is required")
	}
	if method == "" {
		method = PaymentMethodBankTransfer
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method must be cash, bank_transfer, card, check or other")
	}

	p := &CustomerPayment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		Amount:            shared.RoundMoney(amount),
		PaymentDate:       paymentDate,
		Method:            method,
	}
	return p, nil
}

// LinkInvoice attaches the payment to an invoice of the same customer
func (p *CustomerPayment) LinkInvoice(inv *CustomerInvoice) error {
	if inv.CustomerID != p.CustomerID {
		return shared.NewDomainError("CUSTOMER_MISMATCH", "Invoice belongs to a different customer")
	}
	id := inv.ID
	p.InvoiceID = &id
	if p.ProjectID == nil && inv.ProjectID != nil {
		projectID := *inv.ProjectID
		p.ProjectID = &projectID
	}
	return nil
}

// SetProject links the payment to a project
func (p *CustomerPayment) SetProject(projectID *uuid.UUID) {
	p.ProjectID = projectID
}

// SetDetails sets the reference and notes
func (p *CustomerPayment) SetDetails(reference, notes string) {
	p.Reference = strings.TrimSpace(reference)
	p.Notes = notes
}

// ChangeAmount updates the paid amount
func (p *CustomerPayment) ChangeAmount(amount decimal.Decimal) error {
	if err := shared.ValidatePositiveAmount(amount); err != nil {
		return err
	}
	p.Amount = shared.RoundMoney(amount)
	p.Touch()
	return nil
}

// Reschedule changes the payment date and method
func (p *CustomerPayment) Reschedule(paymentDate time.Time, method PaymentMethod) error {
	if paymentDate.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "Payment date is required")
	}
	if !method.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method must be cash, bank_transfer, card, check or other")
	}
	p.PaymentDate = paymentDate
	p.Method = method
	p.Touch()
	return nil
}

// Recorded raises the event announcing a newly stored payment
func (p *CustomerPayment) Recorded() {
	p.AddDomainEvent(NewPaymentRecordedEvent(p))
}

// Updated raises the event announcing a changed payment
func (p *CustomerPayment) Updated() {
	p.AddDomainEvent(NewPaymentUpdatedEvent(p))
}
