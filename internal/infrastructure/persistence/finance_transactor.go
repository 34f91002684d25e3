package persistence

import (
	"context"

	"github.com/ledgerbook/backend/internal/domain/finance"
	"gorm.io/gorm"
)

// GormFinanceTransactor runs invoice and payment changes in one transaction
type GormFinanceTransactor struct {
	db *gorm.DB
}

// NewGormFinanceTransactor creates a new GormFinanceTransactor
func NewGormFinanceTransactor(db *gorm.DB) *GormFinanceTransactor {
	return &GormFinanceTransactor{db: db}
}

// WithinTransaction implements finance.Transactor
func (t *GormFinanceTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos finance.TxRepositories) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, finance.TxRepositories{
			Invoices: NewGormInvoiceRepository(tx),
			Payments: NewGormPaymentRepository(tx),
		})
	})
}

var _ finance.Transactor = (*GormFinanceTransactor)(nil)
