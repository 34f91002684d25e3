package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/application/common"
	"github.com/ledgerbook/backend/internal/domain/finance"
	"github.com/shopspring/decimal"
)

// CreateInvoiceRequest represents a request to issue an invoice.
// An empty InvoiceNumber is generated as INV-YYYYMM-NNNN.
type CreateInvoiceRequest struct {
	CustomerID    uuid.UUID       `json:"customer_id" binding:"required"`
	ProjectID     *uuid.UUID      `json:"project_id"`
	InvoiceNumber string          `json:"invoice_number" binding:"omitempty,max=50"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	Currency      string          `json:"currency" binding:"omitempty,currency_code"`
	IssueDate     *common.Date    `json:"issue_date"`
	DueDate       *common.Date    `json:"due_date"`
	Description   string          `json:"description" binding:"omitempty,max=2000"`
	FileID        *uuid.UUID      `json:"file_id"`
}

// UpdateInvoiceRequest represents a request to update an invoice.
// Nil fields are left unchanged; the Clear flags remove optional links.
type UpdateInvoiceRequest struct {
	ProjectID    *uuid.UUID       `json:"project_id"`
	ClearProject bool             `json:"clear_project"`
	Amount       *decimal.Decimal `json:"amount"`
	Currency     *string          `json:"currency" binding:"omitempty,currency_code"`
	IssueDate    *common.Date     `json:"issue_date"`
	DueDate      *common.Date     `json:"due_date"`
	ClearDueDate bool             `json:"clear_due_date"`
	Description  *string          `json:"description" binding:"omitempty,max=2000"`
	FileID       *uuid.UUID       `json:"file_id"`
	ClearFile    bool             `json:"clear_file"`
	Version      *int             `json:"version" binding:"omitempty,min=1"`
}

// InvoiceListFilter represents the filter options for listing invoices
type InvoiceListFilter struct {
	common.ListQuery
	common.DateRange
	CustomerID string `form:"customer_id" binding:"omitempty,uuid"`
	ProjectID  string `form:"project_id" binding:"omitempty,uuid"`
	Status     string `form:"status" binding:"omitempty,oneof=unpaid partially_paid paid"`
	Overdue    bool   `form:"overdue"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID            uuid.UUID       `json:"id"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	ProjectID     *uuid.UUID      `json:"project_id,omitempty"`
	InvoiceNumber string          `json:"invoice_number"`
	Amount        decimal.Decimal `json:"amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	Remaining     decimal.Decimal `json:"remaining"`
	Currency      string          `json:"currency"`
	Status        string          `json:"status"`
	IsOverdue     bool            `json:"is_overdue"`
	IssueDate     common.Date     `json:"issue_date"`
	DueDate       *common.Date    `json:"due_date,omitempty"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	Description   string          `json:"description,omitempty"`
	FileID        *uuid.UUID      `json:"file_id,omitempty"`
	Version       int             `json:"version"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ToInvoiceResponse converts a domain invoice; now decides is_overdue
func ToInvoiceResponse(inv *finance.CustomerInvoice, now time.Time) InvoiceResponse {
	return InvoiceResponse{
		ID:            inv.ID,
		CustomerID:    inv.CustomerID,
		ProjectID:     inv.ProjectID,
		InvoiceNumber: inv.InvoiceNumber,
		Amount:        inv.Amount,
		PaidAmount:    inv.PaidAmount,
		Remaining:     inv.Remaining(),
		Currency:      inv.Currency,
		Status:        string(inv.Status),
		IsOverdue:     inv.IsOverdue(now),
		IssueDate:     common.NewDate(inv.IssueDate),
		DueDate:       common.DatePtr(inv.DueDate),
		PaidAt:        inv.PaidAt,
		Description:   inv.Description,
		FileID:        inv.FileID,
		Version:       inv.Version,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}
}

// ToInvoiceResponses converts a slice of invoices
func ToInvoiceResponses(invoices []finance.CustomerInvoice, now time.Time) []InvoiceResponse {
	out := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		out[i] = ToInvoiceResponse(&invoices[i], now)
	}
	return out
}

// RecordPaymentRequest represents a payment received from a customer
type RecordPaymentRequest struct {
	CustomerID  uuid.UUID       `json:"customer_id" binding:"required"`
	InvoiceID   *uuid.UUID      `json:"invoice_id"`
	ProjectID   *uuid.UUID      `json:"project_id"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	PaymentDate *common.Date    `json:"payment_date"`
	Method      string          `json:"method" binding:"omitempty,oneof=cash bank_transfer card check other"`
	Reference   string          `json:"reference" binding:"omitempty,max=100"`
	Notes       string          `json:"notes" binding:"omitempty,max=2000"`
}

// UpdatePaymentRequest represents a change to a recorded payment.
// The invoice link is fixed once recorded.
type UpdatePaymentRequest struct {
	ProjectID   *uuid.UUID       `json:"project_id"`
	Amount      *decimal.Decimal `json:"amount"`
	PaymentDate *common.Date     `json:"payment_date"`
	Method      *string          `json:"method" binding:"omitempty,oneof=cash bank_transfer card check other"`
	Reference   *string          `json:"reference" binding:"omitempty,max=100"`
	Notes       *string          `json:"notes" binding:"omitempty,max=2000"`
}

// PaymentListFilter represents the filter options for listing payments
type PaymentListFilter struct {
	common.ListQuery
	common.DateRange
	CustomerID string `form:"customer_id" binding:"omitempty,uuid"`
	InvoiceID  string `form:"invoice_id" binding:"omitempty,uuid"`
	ProjectID  string `form:"project_id" binding:"omitempty,uuid"`
	Method     string `form:"method" binding:"omitempty,oneof=cash bank_transfer card check other"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID          uuid.UUID       `json:"id"`
	CustomerID  uuid.UUID       `json:"customer_id"`
	InvoiceID   *uuid.UUID      `json:"invoice_id,omitempty"`
	ProjectID   *uuid.UUID      `json:"project_id,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate common.Date     `json:"payment_date"`
	Method      string          `json:"method"`
	Reference   string          `json:"reference,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ToPaymentResponse converts a domain payment
func ToPaymentResponse(p *finance.CustomerPayment) PaymentResponse {
	return PaymentResponse{
		ID:          p.ID,
		CustomerID:  p.CustomerID,
		InvoiceID:   p.InvoiceID,
		ProjectID:   p.ProjectID,
		Amount:      p.Amount,
		PaymentDate: common.NewDate(p.PaymentDate),
		Method:      string(p.Method),
		Reference:   p.Reference,
		Notes:       p.Notes,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ToPaymentResponses converts a slice of payments
func ToPaymentResponses(payments []finance.CustomerPayment) []PaymentResponse {
	out := make([]PaymentResponse, len(payments))
	for i := range payments {
		out[i] = ToPaymentResponse(&payments[i])
	}
	return out
}

// RecordPaymentResult is the stored payment together with the invoice it settled
type RecordPaymentResult struct {
	Payment PaymentResponse  `json:"payment"`
	Invoice *InvoiceResponse `json:"invoice,omitempty"`
}
