package finance

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InvoiceStatus is derived from the paid amount relative to the invoice amount
type InvoiceStatus string

const (
	InvoiceStatusUnpaid        InvoiceStatus = "unpaid"
	InvoiceStatusPartiallyPaid InvoiceStatus = "partially_paid"
	InvoiceStatusPaid          InvoiceStatus = "paid"
)

// IsValid reports whether s is a known invoice status
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusUnpaid, InvoiceStatusPartiallyPaid, InvoiceStatusPaid:
		return true
	}
	return false
}

// DefaultCurrency is used when an invoice is created without one
const DefaultCurrency = "USD"

var invoiceNumberRegex = regexp.MustCompile(`^[A-Za-z0-9_\-/.]{1,50}$`)

// DeriveInvoiceStatus maps a paid amount onto an invoice status:
// nothing paid is unpaid, anything short of the amount is partially paid,
// and the full amount (or more) is paid.
func DeriveInvoiceStatus(amount, paid decimal.Decimal) InvoiceStatus {
	switch {
	case !paid.IsPositive():
		return InvoiceStatusUnpaid
	case paid.LessThan(amount):
		return InvoiceStatusPartiallyPaid
	default:
		return InvoiceStatusPaid
	}
}

// GenerateInvoiceNumber formats a sequential invoice number for the issue month
func GenerateInvoiceNumber(issueDate time.Time, seq int) string {
	return fmt.Sprintf("INV-%s-%04d", issueDate.Format("200601"), seq)
}

// InvoiceNumberPrefix returns the prefix shared by all generated numbers of a month
func InvoiceNumberPrefix(issueDate time.Time) string {
	return fmt.Sprintf("INV-%s-", issueDate.Format("200601"))
}

// CustomerInvoice is an invoice issued to a customer
type CustomerInvoice struct {
	shared.BaseAggregateRoot
	CustomerID    uuid.UUID
	ProjectID     *uuid.UUID
	InvoiceNumber string
	Amount        decimal.Decimal
	PaidAmount    decimal.Decimal
	Currency      string
	Status        InvoiceStatus
	IssueDate     time.Time
	DueDate       *time.Time
	PaidAt        *time.Time
	Description   string
	FileID        *uuid.UUID
}

// NewCustomerInvoice creates an unpaid invoice
func NewCustomerInvoice(customerID uuid.UUID, number string, amount decimal.Decimal, issueDate time.Time) (*CustomerInvoice, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	number = strings.TrimSpace(number)
	if !invoiceNumberRegex.MatchString(number) {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number must be 1-50 letters, digits or - _ / .")
	}
	if err := shared.ValidatePositiveAmount(amount); err != nil {
		return nil, err
	}
	if issueDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Issue date is required")
	}

	inv := &CustomerInvoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		InvoiceNumber:     strings.ToUpper(number),
		Amount:            shared.RoundMoney(amount),
		PaidAmount:        decimal.Zero,
		Currency:          DefaultCurrency,
		Status:            InvoiceStatusUnpaid,
		IssueDate:         issueDate,
	}
	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))
	return inv, nil
}

// Remaining returns amount minus paid amount
func (i *CustomerInvoice) Remaining() decimal.Decimal {
	return i.Amount.Sub(i.PaidAmount)
}

// IsPaid returns true when the invoice is fully settled
func (i *CustomerInvoice) IsPaid() bool {
	return i.Status == InvoiceStatusPaid
}

// IsOverdue reports whether the due date has passed while money is still owed
func (i *CustomerInvoice) IsOverdue(now time.Time) bool {
	if i.DueDate == nil || i.IsPaid() {
		return false
	}
	return now.After(endOfDay(*i.DueDate))
}

// SetCurrency sets the ISO 4217 currency code used for display
func (i *CustomerInvoice) SetCurrency(currency string) error {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	if len(currency) != 3 {
		return shared.NewDomainError("INVALID_CURRENCY", "Currency must be a 3-letter code")
	}
	i.Currency = currency
	return nil
}

// SetDueDate sets or clears the due date
func (i *CustomerInvoice) SetDueDate(due *time.Time) error {
	if due != nil && due.Before(startOfDay(i.IssueDate)) {
		return shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot be before issue date")
	}
	i.DueDate = due
	i.Touch()
	return nil
}

// SetIssueDate moves the issue date, keeping the due date consistent
func (i *CustomerInvoice) SetIssueDate(issue time.Time) error {
	if issue.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "Issue date is required")
	}
	if i.DueDate != nil && i.DueDate.Before(startOfDay(issue)) {
		return shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot be before issue date")
	}
	i.IssueDate = issue
	i.Touch()
	return nil
}

// SetProject links or unlinks the project the invoice bills for
func (i *CustomerInvoice) SetProject(projectID *uuid.UUID) {
	i.ProjectID = projectID
	i.Touch()
}

// SetDescription sets the free text description
func (i *CustomerInvoice) SetDescription(description string) {
	i.Description = description
	i.Touch()
}

// AttachFile links an uploaded file (scan, PDF) to the invoice
func (i *CustomerInvoice) AttachFile(fileID *uuid.UUID) {
	i.FileID = fileID
	i.Touch()
}

// ChangeAmount updates the invoiced amount. It cannot drop below what is already paid.
func (i *CustomerInvoice) ChangeAmount(amount decimal.Decimal) error {
	if err := shared.ValidatePositiveAmount(amount); err != nil {
		return err
	}
	amount = shared.RoundMoney(amount)
	if amount.LessThan(i.PaidAmount) {
		return shared.NewDomainError("AMOUNT_BELOW_PAID",
			fmt.Sprintf("Amount %s cannot be less than the paid amount %s", amount.StringFixed(2), i.PaidAmount.StringFixed(2)))
	}
	i.Amount = amount
	i.Touch()
	i.AddDomainEvent(NewInvoiceUpdatedEvent(i))
	i.refreshStatus()
	return nil
}

// MarkUpdated records a generic change to the invoice details
func (i *CustomerInvoice) MarkUpdated() {
	i.AddDomainEvent(NewInvoiceUpdatedEvent(i))
}

// ApplyPayment adds a payment to the paid amount. The payment cannot exceed the remaining balance.
func (i *CustomerInvoice) ApplyPayment(amount decimal.Decimal) error {
	if err := shared.ValidatePositiveAmount(amount); err != nil {
		return err
	}
	amount = shared.RoundMoney(amount)
	if amount.GreaterThan(i.Remaining()) {
		return shared.NewDomainError("EXCEEDS_REMAINING",
			fmt.Sprintf("Payment amount %s exceeds remaining amount %s", amount.StringFixed(2), i.Remaining().StringFixed(2)))
	}
	i.PaidAmount = i.PaidAmount.Add(amount)
	i.Touch()
	i.refreshStatus()
	return nil
}

// Reconcile replaces the paid amount with the authoritative sum of the invoice's payments
func (i *CustomerInvoice) Reconcile(totalPaid decimal.Decimal) error {
	totalPaid = shared.RoundMoney(totalPaid)
	if totalPaid.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Paid amount cannot be negative")
	}
	if totalPaid.GreaterThan(i.Amount) {
		return shared.NewDomainError("EXCEEDS_REMAINING",
			fmt.Sprintf("Payments %s exceed invoice amount %s", totalPaid.StringFixed(2), i.Amount.StringFixed(2)))
	}
	if totalPaid.Equal(i.PaidAmount) {
		return nil
	}
	i.PaidAmount = totalPaid
	i.Touch()
	i.refreshStatus()
	return nil
}

func (i *CustomerInvoice) refreshStatus() {
	old := i.Status
	i.Status = DeriveInvoiceStatus(i.Amount, i.PaidAmount)
	if i.Status == old {
		return
	}
	if i.Status == InvoiceStatusPaid {
		now := time.Now()
		i.PaidAt = &now
	} else {
		i.PaidAt = nil
	}
	i.AddDomainEvent(NewInvoiceStatusChangedEvent(i, old))
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}
