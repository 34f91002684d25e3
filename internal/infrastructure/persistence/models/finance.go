package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/domain/finance"
	"github.com/shopspring/decimal"
)

// CustomerInvoiceModel is the persistence model for the CustomerInvoice entity.
type CustomerInvoiceModel struct {
	AggregateModel
	CustomerID    uuid.UUID             `gorm:"type:uuid;not null;index"`
	ProjectID     *uuid.UUID            `gorm:"type:uuid;index"`
	InvoiceNumber string                `gorm:"type:varchar(50);not null;uniqueIndex"`
	Amount        decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	PaidAmount    decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	Currency      string                `gorm:"type:varchar(3);not null;default:'USD'"`
	Status        finance.InvoiceStatus `gorm:"type:varchar(20);not null;default:'unpaid';index"`
	IssueDate     time.Time             `gorm:"type:date;not null;index"`
	DueDate       *time.Time            `gorm:"type:date"`
	PaidAt        *time.Time
	Description   string     `gorm:"type:text"`
	FileID        *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (CustomerInvoiceModel) TableName() string {
	return "customer_invoices"
}

// ToDomain converts the persistence model to a domain CustomerInvoice.
func (m *CustomerInvoiceModel) ToDomain() *finance.CustomerInvoice {
	return &finance.CustomerInvoice{
		BaseAggregateRoot: m.ToAggregateRoot(),
		CustomerID:        m.CustomerID,
		ProjectID:         m.ProjectID,
		InvoiceNumber:     m.InvoiceNumber,
		Amount:            m.Amount,
		PaidAmount:        m.PaidAmount,
		Currency:          m.Currency,
		Status:            m.Status,
		IssueDate:         m.IssueDate,
		DueDate:           m.DueDate,
		PaidAt:            m.PaidAt,
		Description:       m.Description,
		FileID:            m.FileID,
	}
}

// FromDomain populates the persistence model from a domain CustomerInvoice.
func (m *CustomerInvoiceModel) FromDomain(i *finance.CustomerInvoice) {
	m.FromDomainAggregateRoot(i.BaseAggregateRoot)
	m.CustomerID = i.CustomerID
	m.ProjectID = i.ProjectID
	m.InvoiceNumber = i.InvoiceNumber
	m.Amount = i.Amount
	m.PaidAmount = i.PaidAmount
	m.Currency = i.Currency
	m.Status = i.Status
	m.IssueDate = i.IssueDate
	m.DueDate = i.DueDate
	m.PaidAt = i.PaidAt
	m.Description = i.Description
	m.FileID = i.FileID
}

// CustomerInvoiceModelFromDomain creates a new persistence model from a domain CustomerInvoice.
func CustomerInvoiceModelFromDomain(i *finance.CustomerInvoice) *CustomerInvoiceModel {
	m := &CustomerInvoiceModel{}
	m.FromDomain(i)
	return m
}

// CustomerPaymentModel is the persistence model for the CustomerPayment entity.
type CustomerPaymentModel struct {
	AggregateModel
	CustomerID  uuid.UUID             `gorm:"type:uuid;not null;index"`
	InvoiceID   *uuid.UUID            `gorm:"type:uuid;index"`
	ProjectID   *uuid.UUID            `gorm:"type:uuid;index"`
	Amount      decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	PaymentDate time.Time             `gorm:"type:date;not null;index"`
	Method      finance.PaymentMethod `gorm:"type:varchar(20);not null;default:'bank_transfer'"`
	Reference   string                `gorm:"type:varchar(100)"`
	Notes       string                `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CustomerPaymentModel) TableName() string {
	return "customer_payments"
}

// ToDomain converts the persistence model to a domain CustomerPayment.
func (m *CustomerPaymentModel) ToDomain() *finance.CustomerPayment {
	return &finance.CustomerPayment{
		BaseAggregateRoot: m.ToAggregateRoot(),
		CustomerID:        m.CustomerID,
		InvoiceID:         m.InvoiceID,
		ProjectID:         m.ProjectID,
		Amount:            m.Amount,
		PaymentDate:       m.PaymentDate,
		Method:            m.Method,
		Reference:         m.Reference,
		Notes:             m.Notes,
	}
}

// FromDomain populates the persistence model from a domain CustomerPayment.
func (m *CustomerPaymentModel) FromDomain(p *finance.CustomerPayment) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.CustomerID = p.CustomerID
	m.InvoiceID = p.InvoiceID
	m.ProjectID = p.ProjectID
	m.Amount = p.Amount
	m.PaymentDate = p.PaymentDate
	m.Method = p.Method
	m.Reference = p.Reference
	m.Notes = p.Notes
}

// CustomerPaymentModelFromDomain creates a new persistence model from a domain CustomerPayment.
func CustomerPaymentModelFromDomain(p *finance.CustomerPayment) *CustomerPaymentModel {
	m := &CustomerPaymentModel{}
	m.FromDomain(p)
	return m
}
