package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/application/common"
	"github.com/ledgerbook/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Type        string `json:"type" binding:"required,oneof=income expense"`
	Color       string `json:"color" binding:"omitempty,hexcolor"`
	Description string `json:"description" binding:"omitempty,max=500"`
}

// UpdateCategoryRequest represents a request to update a category.
// The type cannot change.
type UpdateCategoryRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Color       *string `json:"color" binding:"omitempty"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

// CategoryListFilter represents the filter options for listing categories
type CategoryListFilter struct {
	common.ListQuery
	Type string `form:"type" binding:"omitempty,oneof=income expense"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Color       string    `json:"color"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToCategoryResponse converts a domain category
func ToCategoryResponse(c *ledger.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Type:        string(c.Type),
		Color:       c.Color,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// ToCategoryResponses converts a slice of categories
func ToCategoryResponses(categories []ledger.Category) []CategoryResponse {
	out := make([]CategoryResponse, len(categories))
	for i := range categories {
		out[i] = ToCategoryResponse(&categories[i])
	}
	return out
}

// CreateTransactionRequest represents a request to record income or expense
type CreateTransactionRequest struct {
	Type            string          `json:"type" binding:"required,oneof=income expense"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	CategoryID      *uuid.UUID      `json:"category_id"`
	CustomerID      *uuid.UUID      `json:"customer_id"`
	ProjectID       *uuid.UUID      `json:"project_id"`
	TransactionDate *common.Date    `json:"transaction_date"`
	Description     string          `json:"description" binding:"omitempty,max=2000"`
	PaymentMethod   string          `json:"payment_method" binding:"omitempty,max=50"`
	Reference       string          `json:"reference" binding:"omitempty,max=100"`
}

// UpdateTransactionRequest represents a request to update a transaction
type UpdateTransactionRequest struct {
	Type            *string          `json:"type" binding:"omitempty,oneof=income expense"`
	Amount          *decimal.Decimal `json:"amount"`
	CategoryID      *uuid.UUID       `json:"category_id"`
	ClearCategory   bool             `json:"clear_category"`
	CustomerID      *uuid.UUID       `json:"customer_id"`
	ProjectID       *uuid.UUID       `json:"project_id"`
	ClearCustomer   bool             `json:"clear_customer"`
	TransactionDate *common.Date     `json:"transaction_date"`
	Description     *string          `json:"description" binding:"omitempty,max=2000"`
	PaymentMethod   *string          `json:"payment_method" binding:"omitempty,max=50"`
	Reference       *string          `json:"reference" binding:"omitempty,max=100"`
}

// TransactionListFilter represents the filter options for listing transactions
type TransactionListFilter struct {
	common.ListQuery
	common.DateRange
	Type       string `form:"type" binding:"omitempty,oneof=income expense"`
	CategoryID string `form:"category_id" binding:"omitempty,uuid"`
	CustomerID string `form:"customer_id" binding:"omitempty,uuid"`
	ProjectID  string `form:"project_id" binding:"omitempty,uuid"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID              uuid.UUID       `json:"id"`
	Type            string          `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	CategoryID      *uuid.UUID      `json:"category_id,omitempty"`
	CustomerID      *uuid.UUID      `json:"customer_id,omitempty"`
	ProjectID       *uuid.UUID      `json:"project_id,omitempty"`
	TransactionDate common.Date     `json:"transaction_date"`
	Description     string          `json:"description,omitempty"`
	PaymentMethod   string          `json:"payment_method,omitempty"`
	Reference       string          `json:"reference,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ToTransactionResponse converts a domain transaction
func ToTransactionResponse(t *ledger.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:              t.ID,
		Type:            string(t.Type),
		Amount:          t.Amount,
		CategoryID:      t.CategoryID,
		CustomerID:      t.CustomerID,
		ProjectID:       t.ProjectID,
		TransactionDate: common.NewDate(t.TransactionDate),
		Description:     t.Description,
		PaymentMethod:   t.PaymentMethod,
		Reference:       t.Reference,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

// ToTransactionResponses converts a slice of transactions
func ToTransactionResponses(txs []ledger.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, len(txs))
	for i := range txs {
		out[i] = ToTransactionResponse(&txs[i])
	}
	return out
}
