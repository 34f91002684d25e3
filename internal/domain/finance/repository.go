package finance

import (
	"context"

	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*CustomerInvoice, error)
	// FindByIDForUpdate loads the invoice with a row lock when the database supports it.
	// Must be called inside a transaction.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*CustomerInvoice, error)
	FindByNumber(ctx context.Context, number string) (*CustomerInvoice, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]CustomerInvoice, error)
	FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]CustomerInvoice, error)
	// FindOutstanding returns every invoice that is not fully paid
	FindOutstanding(ctx context.Context) ([]CustomerInvoice, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error)
	CountByProject(ctx context.Context, projectID uuid.UUID) (int64, error)
	ExistsByNumber(ctx context.Context, number string) (bool, error)
	// CountByNumberPrefix counts invoices whose number starts with prefix
	CountByNumberPrefix(ctx context.Context, prefix string) (int64, error)

	Save(ctx context.Context, invoice *CustomerInvoice) error
	// SaveWithLock saves with an optimistic version check
	SaveWithLock(ctx context.Context, invoice *CustomerInvoice) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PaymentRepository defines the interface for customer payment persistence
type PaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*CustomerPayment, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]CustomerPayment, error)
	FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]CustomerPayment, error)
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]CustomerPayment, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error)
	CountByInvoice(ctx context.Context, invoiceID uuid.UUID) (int64, error)
	CountByProject(ctx context.Context, projectID uuid.UUID) (int64, error)
	// SumByInvoice returns the total of all payments linked to the invoice
	SumByInvoice(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error)

	Save(ctx context.Context, payment *CustomerPayment) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// TxRepositories are the repositories bound to one database transaction
type TxRepositories struct {
	Invoices InvoiceRepository
	Payments PaymentRepository
}

// Transactor runs fn inside a single database transaction. The repositories
// handed to fn share that transaction; fn returning an error rolls it back.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos TxRepositories) error) error
}
