package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// CategoryModel is the persistence model for the Category entity.
type CategoryModel struct {
	AggregateModel
	Name        string           `gorm:"type:varchar(100);not null"`
	NameKey     string           `gorm:"type:varchar(100);not null;uniqueIndex:idx_category_type_name,priority:2"`
	Type        ledger.EntryType `gorm:"type:varchar(20);not null;uniqueIndex:idx_category_type_name,priority:1"`
	Color       string           `gorm:"type:varchar(7);not null;default:'#6B7280'"`
	Description string           `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the persistence model to a domain Category.
func (m *CategoryModel) ToDomain() *ledger.Category {
	return &ledger.Category{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		Type:              m.Type,
		Color:             m.Color,
		Description:       m.Description,
	}
}

// FromDomain populates the persistence model from a domain Category.
func (m *CategoryModel) FromDomain(c *ledger.Category) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Name = c.Name
	m.NameKey = c.NameKey()
	m.Type = c.Type
	m.Color = c.Color
	m.Description = c.Description
}

// CategoryModelFromDomain creates a new persistence model from a domain Category.
func CategoryModelFromDomain(c *ledger.Category) *CategoryModel {
	m := &CategoryModel{}
	m.FromDomain(c)
	return m
}

// TransactionModel is the persistence model for the Transaction entity.
type TransactionModel struct {
	AggregateModel
	Type            ledger.EntryType `gorm:"type:varchar(20);not null;index"`
	Amount          decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	CategoryID      *uuid.UUID       `gorm:"type:uuid;index"`
	CustomerID      *uuid.UUID       `gorm:"type:uuid;index"`
	ProjectID       *uuid.UUID       `gorm:"type:uuid;index"`
	TransactionDate time.Time        `gorm:"type:date;not null;index"`
	Description     string           `gorm:"type:text"`
	PaymentMethod   string           `gorm:"type:varchar(50)"`
	Reference       string           `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToDomain converts the persistence model to a domain Transaction.
func (m *TransactionModel) ToDomain() *ledger.Transaction {
	return &ledger.Transaction{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Type:              m.Type,
		Amount:            m.Amount,
		CategoryID:        m.CategoryID,
		CustomerID:        m.CustomerID,
		ProjectID:         m.ProjectID,
		TransactionDate:   m.TransactionDate,
		Description:       m.Description,
		PaymentMethod:     m.PaymentMethod,
		Reference:         m.Reference,
	}
}

// FromDomain populates the persistence model from a domain Transaction.
func (m *TransactionModel) FromDomain(t *ledger.Transaction) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.Type = t.Type
	m.Amount = t.Amount
	m.CategoryID = t.CategoryID
	m.CustomerID = t.CustomerID
	m.ProjectID = t.ProjectID
	m.TransactionDate = t.TransactionDate
	m.Description = t.Description
	m.PaymentMethod = t.PaymentMethod
	m.Reference = t.Reference
}

// TransactionModelFromDomain creates a new persistence model from a domain Transaction.
func TransactionModelFromDomain(t *ledger.Transaction) *TransactionModel {
	m := &TransactionModel{}
	m.FromDomain(t)
	return m
}
