package customer

import (
	"context"

	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/domain/shared"
)

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Customer, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Customer, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	ExistsByEmail(ctx context.Context, email string, excludeID uuid.UUID) (bool, error)

	Save(ctx context.Context, customer *Customer) error
	// SaveWithLock saves with an optimistic version check
	SaveWithLock(ctx context.Context, customer *Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProjectRepository defines the interface for project persistence
type ProjectRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Project, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Project, error)
	FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]Project, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error)
	CountByStatus(ctx context.Context, status ProjectStatus) (int64, error)

	Save(ctx context.Context, project *Project) error
	Delete(ctx context.Context, id uuid.UUID) error
}
