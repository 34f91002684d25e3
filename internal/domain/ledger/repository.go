package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/domain/shared"
)

// CategoryRepository defines the interface for category persistence
type CategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Category, error)
	FindByType(ctx context.Context, entryType EntryType) ([]Category, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// ExistsByName checks for a category with the same case-insensitive name and type
	ExistsByName(ctx context.Context, name string, entryType EntryType, excludeID uuid.UUID) (bool, error)
	Save(ctx context.Context, category *Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// TransactionRepository defines the interface for transaction persistence
type TransactionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Transaction, error)
	// FindInPeriod returns every transaction dated within [from, to]
	FindInPeriod(ctx context.Context, from, to time.Time) ([]Transaction, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error)
	CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error)
	Save(ctx context.Context, tx *Transaction) error
	Delete(ctx context.Context, id uuid.UUID) error
}
