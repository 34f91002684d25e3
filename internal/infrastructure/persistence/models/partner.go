package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/domain/partner"
	"github.com/shopspring/decimal"
)

// PartnerModel is the persistence model for the Partner entity.
type PartnerModel struct {
	AggregateModel
	Name            string          `gorm:"type:varchar(200);not null"`
	Email           string          `gorm:"type:varchar(200)"`
	Phone           string          `gorm:"type:varchar(50)"`
	SharePercentage decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	Status          partner.Status  `gorm:"type:varchar(20);not null;default:'active'"`
	Notes           string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PartnerModel) TableName() string {
	return "partners"
}

// ToDomain converts the persistence model to a domain Partner.
func (m *PartnerModel) ToDomain() *partner.Partner {
	return &partner.Partner{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		Email:             m.Email,
		Phone:             m.Phone,
		SharePercentage:   m.SharePercentage,
		Status:            m.Status,
		Notes:             m.Notes,
	}
}

// FromDomain populates the persistence model from a domain Partner.
func (m *PartnerModel) FromDomain(p *partner.Partner) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Name = p.Name
	m.Email = p.Email
	m.Phone = p.Phone
	m.SharePercentage = p.SharePercentage
	m.Status = p.Status
	m.Notes = p.Notes
}

// PartnerModelFromDomain creates a new persistence model from a domain Partner.
func PartnerModelFromDomain(p *partner.Partner) *PartnerModel {
	m := &PartnerModel{}
	m.FromDomain(p)
	return m
}

// PartnerExpenseModel is the persistence model for the partner Expense entity.
type PartnerExpenseModel struct {
	AggregateModel
	PartnerID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	CategoryID   *uuid.UUID      `gorm:"type:uuid;index"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ExpenseDate  time.Time       `gorm:"type:date;not null;index"`
	Description  string          `gorm:"type:text"`
	FileID       *uuid.UUID      `gorm:"type:uuid"`
	Reimbursed   bool            `gorm:"not null;default:false"`
	ReimbursedAt *time.Time
}

// TableName returns the table name for GORM
func (PartnerExpenseModel) TableName() string {
	return "partner_expenses"
}

// ToDomain converts the persistence model to a domain Expense.
func (m *PartnerExpenseModel) ToDomain() *partner.Expense {
	return &partner.Expense{
		BaseAggregateRoot: m.ToAggregateRoot(),
		PartnerID:         m.PartnerID,
		CategoryID:        m.CategoryID,
		Amount:            m.Amount,
		ExpenseDate:       m.ExpenseDate,
		Description:       m.Description,
		FileID:            m.FileID,
		Reimbursed:        m.Reimbursed,
		ReimbursedAt:      m.ReimbursedAt,
	}
}

// FromDomain populates the persistence model from a domain Expense.
func (m *PartnerExpenseModel) FromDomain(e *partner.Expense) {
	m.FromDomainAggregateRoot(e.BaseAggregateRoot)
	m.PartnerID = e.PartnerID
	m.CategoryID = e.CategoryID
	m.Amount = e.Amount
	m.ExpenseDate = e.ExpenseDate
	m.Description = e.Description
	m.FileID = e.FileID
	m.Reimbursed = e.Reimbursed
	m.ReimbursedAt = e.ReimbursedAt
}

// PartnerExpenseModelFromDomain creates a new persistence model from a domain Expense.
func PartnerExpenseModelFromDomain(e *partner.Expense) *PartnerExpenseModel {
	m := &PartnerExpenseModel{}
	m.FromDomain(e)
	return m
}
