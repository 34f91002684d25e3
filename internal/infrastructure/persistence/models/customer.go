package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/domain/customer"
	"github.com/shopspring/decimal"
)

// CustomerModel is the persistence model for the Customer domain entity.
type CustomerModel struct {
	AggregateModel
	Name      string          `gorm:"type:varchar(200);not null;index"`
	Email     string          `gorm:"type:varchar(200);index"`
	Phone     string          `gorm:"type:varchar(50)"`
	Address   string          `gorm:"type:text"`
	TaxNumber string          `gorm:"type:varchar(50)"`
	Notes     string          `gorm:"type:text"`
	Status    customer.Status `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer entity.
func (m *CustomerModel) ToDomain() *customer.Customer {
	return &customer.Customer{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		Email:             m.Email,
		Phone:             m.Phone,
		Address:           m.Address,
		TaxNumber:         m.TaxNumber,
		Notes:             m.Notes,
		Status:            m.Status,
	}
}

// FromDomain populates the persistence model from a domain Customer entity.
func (m *CustomerModel) FromDomain(c *customer.Customer) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Name = c.Name
	m.Email = c.Email
	m.Phone = c.Phone
	m.Address = c.Address
	m.TaxNumber = c.TaxNumber
	m.Notes = c.Notes
	m.Status = c.Status
}

// CustomerModelFromDomain creates a new persistence model from a domain Customer entity.
func CustomerModelFromDomain(c *customer.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomain(c)
	return m
}

// ProjectModel is the persistence model for the Project domain entity.
type ProjectModel struct {
	AggregateModel
	CustomerID  uuid.UUID              `gorm:"type:uuid;not null;index"`
	Name        string                 `gorm:"type:varchar(200);not null"`
	Description string                 `gorm:"type:text"`
	Budget      decimal.Decimal        `gorm:"type:decimal(18,2);not null;default:0"`
	Status      customer.ProjectStatus `gorm:"type:varchar(20);not null;default:'planned';index"`
	StartDate   *time.Time             `gorm:"type:date"`
	EndDate     *time.Time             `gorm:"type:date"`
}

// TableName returns the table name for GORM
func (ProjectModel) TableName() string {
	return "projects"
}

// ToDomain converts the persistence model to a domain Project entity.
func (m *ProjectModel) ToDomain() *customer.Project {
	return &customer.Project{
		BaseAggregateRoot: m.ToAggregateRoot(),
		CustomerID:        m.CustomerID,
		Name:              m.Name,
		Description:       m.Description,
		Budget:            m.Budget,
		Status:            m.Status,
		StartDate:         m.StartDate,
		EndDate:           m.EndDate,
	}
}

// FromDomain populates the persistence model from a domain Project entity.
func (m *ProjectModel) FromDomain(p *customer.Project) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.CustomerID = p.CustomerID
	m.Name = p.Name
	m.Description = p.Description
	m.Budget = p.Budget
	m.Status = p.Status
	m.StartDate = p.StartDate
	m.EndDate = p.EndDate
}

// ProjectModelFromDomain creates a new persistence model from a domain Project entity.
func ProjectModelFromDomain(p *customer.Project) *ProjectModel {
	m := &ProjectModel{}
	m.FromDomain(p)
	return m
}
