package partner

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Expense is money a partner spent personally on behalf of the business
type Expense struct {
	shared.BaseAggregateRoot
	PartnerID    uuid.UUID
	CategoryID   *uuid.UUID
	Amount       decimal.Decimal
	ExpenseDate  time.Time
	Description  string
	FileID       *uuid.UUID
	Reimbursed   bool
	ReimbursedAt *time.Time
}

// NewExpense creates an unreimbursed partner expense
func NewExpense(partnerID uuid.UUID, amount decimal.Decimal, expenseDate time.Time, description string) (*Expense, error) {
	if partnerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTNER", "Partner ID cannot be empty")
	}
	if err := shared.ValidatePositiveAmount(amount); err != nil {
		return nil, err
	}
	if expenseDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Expense date is required")
	}

	e := &Expense{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PartnerID:         partnerID,
		Amount:            shared.RoundMoney(amount),
		ExpenseDate:       expenseDate,
		Description:       strings.TrimSpace(description),
	}
	e.AddDomainEvent(NewExpenseRecordedEvent(e))
	return e, nil
}

// Update changes amount, date and description
func (e *Expense) Update(amount decimal.Decimal, expenseDate time.Time, description string) error {
	if err := shared.ValidatePositiveAmount(amount); err != nil {
		return err
	}
	if expenseDate.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "Expense date is required")
	}
	if e.Reimbursed && !shared.RoundMoney(amount).Equal(e.Amount) {
		return shared.NewDomainError("ALREADY_REIMBURSED", "Cannot change the amount of a reimbursed expense")
	}
	e.Amount = shared.RoundMoney(amount)
	e.ExpenseDate = expenseDate
	e.Description = strings.TrimSpace(description)
	e.Touch()
	e.AddDomainEvent(NewExpenseUpdatedEvent(e))
	return nil
}

// SetCategory assigns the expense category
func (e *Expense) SetCategory(categoryID *uuid.UUID) {
	e.CategoryID = categoryID
}

// AttachReceipt links an uploaded receipt
func (e *Expense) AttachReceipt(fileID *uuid.UUID) {
	e.FileID = fileID
}

// MarkReimbursed records that the business paid the partner back
func (e *Expense) MarkReimbursed(at time.Time) error {
	if e.Reimbursed {
		return shared.NewDomainError("ALREADY_REIMBURSED", "Expense has already been reimbursed")
	}
	e.Reimbursed = true
	e.ReimbursedAt = &at
	e.Touch()
	e.AddDomainEvent(NewExpenseReimbursedEvent(e))
	return nil
}

// ExpenseSummary totals one partner's expenses
type ExpenseSummary struct {
	PartnerID    uuid.UUID       `json:"partner_id"`
	PartnerName  string          `json:"partner_name"`
	ExpenseCount int             `json:"expense_count"`
	Total        decimal.Decimal `json:"total"`
	Reimbursed   decimal.Decimal `json:"reimbursed"`
	Outstanding  decimal.Decimal `json:"outstanding"`
}

// ComputeExpenseSummary sums a partner's expenses by reimbursement state
func ComputeExpenseSummary(p *Partner, expenses []Expense) *ExpenseSummary {
	s := &ExpenseSummary{
		PartnerID:   p.ID,
		PartnerName: p.Name,
		Total:       decimal.Zero,
		Reimbursed:  decimal.Zero,
		Outstanding: decimal.Zero,
	}
	for i := range expenses {
		e := &expenses[i]
		s.ExpenseCount++
		s.Total = s.Total.Add(e.Amount)
		if e.Reimbursed {
			s.Reimbursed = s.Reimbursed.Add(e.Amount)
		} else {
			s.Outstanding = s.Outstanding.Add(e.Amount)
		}
	}
	return s
}
