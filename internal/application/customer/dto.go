package customer

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/application/common"
	"github.com/ledgerbook/backend/internal/domain/customer"
	"github.com/shopspring/decimal"
)

// CreateCustomerRequest represents a request to create a new customer
type CreateCustomerRequest struct {
	Name      string `json:"name" binding:"required,min=1,max=200"`
	Email     string `json:"email" binding:"omitempty,email,max=200"`
	Phone     string `json:"phone" binding:"omitempty,max=50"`
	Address   string `json:"address" binding:"omitempty,max=500"`
	TaxNumber string `json:"tax_number" binding:"omitempty,max=50"`
	Notes     string `json:"notes"`
}

// UpdateCustomerRequest represents a request to update a customer.
// Nil fields are left unchanged.
type UpdateCustomerRequest struct {
	Name      *string `json:"name" binding:"omitempty,min=1,max=200"`
	Email     *string `json:"email" binding:"omitempty,max=200"`
	Phone     *string `json:"phone" binding:"omitempty,max=50"`
	Address   *string `json:"address" binding:"omitempty,max=500"`
	TaxNumber *string `json:"tax_number" binding:"omitempty,max=50"`
	Notes     *string `json:"notes"`
	Version   *int    `json:"version" binding:"omitempty,min=1"`
}

// CustomerListFilter represents the filter options for listing customers
type CustomerListFilter struct {
	common.ListQuery
	Status string `form:"status" binding:"omitempty,oneof=active inactive"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	TaxNumber string    `json:"tax_number,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Status    string    `json:"status"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToCustomerResponse converts a domain Customer to CustomerResponse
func ToCustomerResponse(c *customer.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		TaxNumber: c.TaxNumber,
		Notes:     c.Notes,
		Status:    string(c.Status),
		Version:   c.Version,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// ToCustomerResponses converts a slice of customers
func ToCustomerResponses(customers []customer.Customer) []CustomerResponse {
	out := make([]CustomerResponse, len(customers))
	for i := range customers {
		out[i] = ToCustomerResponse(&customers[i])
	}
	return out
}

// CreateProjectRequest represents a request to create a project
type CreateProjectRequest struct {
	CustomerID  uuid.UUID       `json:"customer_id" binding:"required"`
	Name        string          `json:"name" binding:"required,min=1,max=200"`
	Description string          `json:"description"`
	Budget      decimal.Decimal `json:"budget"`
	Status      string          `json:"status" binding:"omitempty,oneof=planned active completed cancelled"`
	StartDate   *common.Date    `json:"start_date"`
	EndDate     *common.Date    `json:"end_date"`
}

// UpdateProjectRequest represents a request to update a project
type UpdateProjectRequest struct {
	Name        *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string          `json:"description"`
	Budget      *decimal.Decimal `json:"budget"`
	StartDate   *common.Date     `json:"start_date"`
	EndDate     *common.Date     `json:"end_date"`
	// ClearSchedule removes both dates
	ClearSchedule bool `json:"clear_schedule"`
}

// ChangeProjectStatusRequest moves a project to a new status
type ChangeProjectStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=planned active completed cancelled"`
}

// ProjectListFilter represents the filter options for listing projects
type ProjectListFilter struct {
	common.ListQuery
	CustomerID string `form:"customer_id" binding:"omitempty,uuid"`
	Status     string `form:"status" binding:"omitempty,oneof=planned active completed cancelled"`
}

// ProjectResponse represents a project in API responses
type ProjectResponse struct {
	ID          uuid.UUID       `json:"id"`
	CustomerID  uuid.UUID       `json:"customer_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Budget      decimal.Decimal `json:"budget"`
	Status      string          `json:"status"`
	StartDate   *common.Date    `json:"start_date,omitempty"`
	EndDate     *common.Date    `json:"end_date,omitempty"`
	Version     int             `json:"version"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ToProjectResponse converts a domain Project to ProjectResponse
func ToProjectResponse(p *customer.Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		CustomerID:  p.CustomerID,
		Name:        p.Name,
		Description: p.Description,
		Budget:      p.Budget,
		Status:      string(p.Status),
		StartDate:   common.DatePtr(p.StartDate),
		EndDate:     common.DatePtr(p.EndDate),
		Version:     p.Version,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ToProjectResponses converts a slice of projects
func ToProjectResponses(projects []customer.Project) []ProjectResponse {
	out := make([]ProjectResponse, len(projects))
	for i := range projects {
		out[i] = ToProjectResponse(&projects[i])
	}
	return out
}
