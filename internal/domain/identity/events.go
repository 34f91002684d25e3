package identity

import (
	"github.com/ledgerbook/backend/internal/domain/shared"
)

// AggregateTypeUser is the aggregate type for users
const AggregateTypeUser = "User"

// Event type constants
const (
	EventTypeUserCreated         = "UserCreated"
	EventTypeUserUpdated         = "UserUpdated"
	EventTypeUserRoleChanged     = "UserRoleChanged"
	EventTypeUserPasswordChanged = "UserPasswordChanged"
	EventTypeUserActivated       = "UserActivated"
	EventTypeUserDeactivated     = "UserDeactivated"
	EventTypeUserDeleted         = "UserDeleted"
	EventTypeUserLoggedIn        = "UserLoggedIn"
	EventTypeUserLoggedOut       = "UserLoggedOut"
)

// UserEvent is published for user changes and sign-ins
type UserEvent struct {
	shared.BaseDomainEvent
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// NewUserEvent creates a user event of the given type
func NewUserEvent(eventType string, u *User) *UserEvent {
	return &UserEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeUser, u.ID),
		Email:           u.Email,
		Role:            u.Role,
	}
}
