package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/domain/shared"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]User, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	CountActiveAdmins(ctx context.Context) (int64, error)
	ExistsByEmail(ctx context.Context, email string, excludeID uuid.UUID) (bool, error)
	Save(ctx context.Context, user *User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ActivityLogRepository defines the interface for activity log persistence.
// Entries are never updated or deleted.
type ActivityLogRepository interface {
	Create(ctx context.Context, log *ActivityLog) error
	FindAll(ctx context.Context, filter shared.Filter) ([]ActivityLog, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
