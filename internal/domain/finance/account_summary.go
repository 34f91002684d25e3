package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/domain/customer"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AccountSummary aggregates a customer's invoices, payments and projects
type AccountSummary struct {
	CustomerID         uuid.UUID       `json:"customer_id"`
	CustomerName       string          `json:"customer_name"`
	TotalInvoiced      decimal.Decimal `json:"total_invoiced"`
	TotalPaid          decimal.Decimal `json:"total_paid"`
	TotalOutstanding   decimal.Decimal `json:"total_outstanding"`
	Balance            decimal.Decimal `json:"balance"` // TotalInvoiced - TotalPaid; negative means credit
	InvoiceCount       int             `json:"invoice_count"`
	UnpaidCount        int             `json:"unpaid_count"`
	PartiallyPaidCount int             `json:"partially_paid_count"`
	PaidCount          int             `json:"paid_count"`
	OverdueCount       int             `json:"overdue_count"`
	OverdueAmount      decimal.Decimal `json:"overdue_amount"`
	PaymentCount       int             `json:"payment_count"`
	LastPaymentDate    *time.Time      `json:"last_payment_date,omitempty"`
	ProjectCount       int             `json:"project_count"`
	ActiveProjectCount int             `json:"active_project_count"`
	TotalProjectBudget decimal.Decimal `json:"total_project_budget"`
	ComputedAt         time.Time       `json:"computed_at"`
}

// ComputeAccountSummary builds the summary from the customer's rows.
// now decides which invoices are overdue.
func ComputeAccountSummary(
	c *customer.Customer,
	invoices []CustomerInvoice,
	payments []CustomerPayment,
	projects []customer.Project,
	now time.Time,
) *AccountSummary {
	s := &AccountSummary{
		CustomerID:         c.ID,
		CustomerName:       c.Name,
		TotalInvoiced:      decimal.Zero,
		TotalPaid:          decimal.Zero,
		TotalOutstanding:   decimal.Zero,
		OverdueAmount:      decimal.Zero,
		TotalProjectBudget: decimal.Zero,
		ComputedAt:         now,
	}

	for i := range invoices {
		inv := &invoices[i]
		s.InvoiceCount++
		s.TotalInvoiced = s.TotalInvoiced.Add(inv.Amount)
		s.TotalOutstanding = s.TotalOutstanding.Add(inv.Remaining())

		switch DeriveInvoiceStatus(inv.Amount, inv.PaidAmount) {
		case InvoiceStatusUnpaid:
			s.UnpaidCount++
		case InvoiceStatusPartiallyPaid:
			s.PartiallyPaidCount++
		case InvoiceStatusPaid:
			s.PaidCount++
		}

		if inv.IsOverdue(now) {
			s.OverdueCount++
			s.OverdueAmount = s.OverdueAmount.Add(inv.Remaining())
		}
	}

	for i := range payments {
		p := &payments[i]
		s.PaymentCount++
		s.TotalPaid = s.TotalPaid.Add(p.Amount)
		if s.LastPaymentDate == nil || p.PaymentDate.After(*s.LastPaymentDate) {
			d := p.PaymentDate
			s.LastPaymentDate = &d
		}
	}

	for i := range projects {
		p := &projects[i]
		s.ProjectCount++
		if p.IsActive() {
			s.ActiveProjectCount++
		}
		s.TotalProjectBudget = s.TotalProjectBudget.Add(p.Budget)
	}

	s.Balance = s.TotalInvoiced.Sub(s.TotalPaid)
	s.TotalInvoiced = shared.RoundMoney(s.TotalInvoiced)
	s.TotalPaid = shared.RoundMoney(s.TotalPaid)
	s.TotalOutstanding = shared.RoundMoney(s.TotalOutstanding)
	s.Balance = shared.RoundMoney(s.Balance)
	s.OverdueAmount = shared.RoundMoney(s.OverdueAmount)
	s.TotalProjectBudget = shared.RoundMoney(s.TotalProjectBudget)
	return s
}

// HasOutstanding returns true when any invoice still has money owed
func (s *AccountSummary) HasOutstanding() bool {
	return s.TotalOutstanding.IsPositive()
}
