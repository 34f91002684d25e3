package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/application/common"
	"github.com/ledgerbook/backend/internal/domain/partner"
	"github.com/shopspring/decimal"
)

// CreatePartnerRequest represents a request to add a partner
type CreatePartnerRequest struct {
	Name            string          `json:"name" binding:"required,min=1,max=200"`
	Email           string          `json:"email" binding:"omitempty,email"`
	Phone           string          `json:"phone" binding:"omitempty,max=50"`
	SharePercentage decimal.Decimal `json:"share_percentage"`
	Status          string          `json:"status" binding:"omitempty,oneof=active inactive"`
	Notes           string          `json:"notes" binding:"omitempty,max=2000"`
}

// UpdatePartnerRequest represents a request to update a partner
type UpdatePartnerRequest struct {
	Name            *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Email           *string          `json:"email" binding:"omitempty"`
	Phone           *string          `json:"phone" binding:"omitempty,max=50"`
	SharePercentage *decimal.Decimal `json:"share_percentage"`
	Status          *string          `json:"status" binding:"omitempty,oneof=active inactive"`
	Notes           *string          `json:"notes" binding:"omitempty,max=2000"`
	Version         *int             `json:"version"`
}

// PartnerListFilter represents the filter options for listing partners
type PartnerListFilter struct {
	common.ListQuery
	Status string `form:"status" binding:"omitempty,oneof=active inactive"`
}

// PartnerResponse represents a partner in API responses
type PartnerResponse struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	Email           string          `json:"email,omitempty"`
	Phone           string          `json:"phone,omitempty"`
	SharePercentage decimal.Decimal `json:"share_percentage"`
	Status          string          `json:"status"`
	Notes           string          `json:"notes,omitempty"`
	Version         int             `json:"version"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ToPartnerResponse converts a domain partner
func ToPartnerResponse(p *partner.Partner) PartnerResponse {
	return PartnerResponse{
		ID:              p.ID,
		Name:            p.Name,
		Email:           p.Email,
		Phone:           p.Phone,
		SharePercentage: p.SharePercentage,
		Status:          string(p.Status),
		Notes:           p.Notes,
		Version:         p.Version,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// ToPartnerResponses converts a slice of partners
func ToPartnerResponses(partners []partner.Partner) []PartnerResponse {
	out := make([]PartnerResponse, len(partners))
	for i := range partners {
		out[i] = ToPartnerResponse(&partners[i])
	}
	return out
}

// CreateExpenseRequest represents money a partner spent for the business
type CreateExpenseRequest struct {
	PartnerID   uuid.UUID       `json:"partner_id" binding:"required"`
	CategoryID  *uuid.UUID      `json:"category_id"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	ExpenseDate *common.Date    `json:"expense_date"`
	Description string          `json:"description" binding:"omitempty,max=2000"`
	FileID      *uuid.UUID      `json:"file_id"`
}

// UpdateExpenseRequest represents a change to a partner expense
type UpdateExpenseRequest struct {
	CategoryID    *uuid.UUID       `json:"category_id"`
	ClearCategory bool             `json:"clear_category"`
	Amount        *decimal.Decimal `json:"amount"`
	ExpenseDate   *common.Date     `json:"expense_date"`
	Description   *string          `json:"description" binding:"omitempty,max=2000"`
	FileID        *uuid.UUID       `json:"file_id"`
	ClearFile     bool             `json:"clear_file"`
}

// ReimburseExpenseRequest optionally backdates a reimbursement
type ReimburseExpenseRequest struct {
	ReimbursedAt *common.Date `json:"reimbursed_at"`
}

// ExpenseListFilter represents the filter options for listing expenses
type ExpenseListFilter struct {
	common.ListQuery
	common.DateRange
	PartnerID  string `form:"partner_id" binding:"omitempty,uuid"`
	CategoryID string `form:"category_id" binding:"omitempty,uuid"`
	Reimbursed *bool  `form:"reimbursed"`
}

// ExpenseResponse represents a partner expense in API responses
type ExpenseResponse struct {
	ID           uuid.UUID       `json:"id"`
	PartnerID    uuid.UUID       `json:"partner_id"`
	CategoryID   *uuid.UUID      `json:"category_id,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	ExpenseDate  common.Date     `json:"expense_date"`
	Description  string          `json:"description,omitempty"`
	FileID       *uuid.UUID      `json:"file_id,omitempty"`
	Reimbursed   bool            `json:"reimbursed"`
	ReimbursedAt *time.Time      `json:"reimbursed_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ToExpenseResponse converts a domain expense
func ToExpenseResponse(e *partner.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:           e.ID,
		PartnerID:    e.PartnerID,
		CategoryID:   e.CategoryID,
		Amount:       e.Amount,
		ExpenseDate:  common.NewDate(e.ExpenseDate),
		Description:  e.Description,
		FileID:       e.FileID,
		Reimbursed:   e.Reimbursed,
		ReimbursedAt: e.ReimbursedAt,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

// ToExpenseResponses converts a slice of expenses
func ToExpenseResponses(expenses []partner.Expense) []ExpenseResponse {
	out := make([]ExpenseResponse, len(expenses))
	for i := range expenses {
		out[i] = ToExpenseResponse(&expenses[i])
	}
	return out
}
