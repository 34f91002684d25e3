package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/domain/shared"
)

// PartnerRepository defines the interface for partner persistence
type PartnerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Partner, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Partner, error)
	FindActive(ctx context.Context) ([]Partner, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, partner *Partner) error
	// SaveWithLock updates a partner only if its stored version still matches
	SaveWithLock(ctx context.Context, partner *Partner) error
	Delete(ctx context.Context, id uuid.UUID) error
	// WithinShareLock runs fn in one transaction during which no other
	// share change can commit, so a share check and the write that follows
	// it see the same set of active partners.
	WithinShareLock(ctx context.Context, fn func(ctx context.Context, repo PartnerRepository) error) error
}

// ExpenseRepository defines the interface for partner expense persistence
type ExpenseRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Expense, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Expense, error)
	FindByPartner(ctx context.Context, partnerID uuid.UUID) ([]Expense, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	CountByPartner(ctx context.Context, partnerID uuid.UUID) (int64, error)
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error)
	Save(ctx context.Context, expense *Expense) error
	Delete(ctx context.Context, id uuid.UUID) error
}
