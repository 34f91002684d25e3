package identity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/domain/shared"
)

// Action is what a user did
type Action string

const (
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionLogin   Action = "login"
	ActionLogout  Action = "logout"
	ActionPayment Action = "payment"
	ActionUpload  Action = "upload"
)

// IsValid reports whether a is a known action
func (a Action) IsValid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete, ActionLogin, ActionLogout, ActionPayment, ActionUpload:
		return true
	}
	return false
}

// ActivityLog is an append-only record of a change made through the system
type ActivityLog struct {
	shared.BaseEntity
	UserID      *uuid.UUID
	Action      Action
	EntityType  string
	EntityID    *uuid.UUID
	Description string
	Metadata    map[string]interface{}
	IPAddress   string
}

// NewActivityLog creates a log entry. A nil user means a system action.
func NewActivityLog(userID *uuid.UUID, action Action, entityType string, entityID *uuid.UUID, description string) (*ActivityLog, error) {
	if !action.IsValid() {
		return nil, shared.NewDomainError("INVALID_ACTION", "Unknown activity action")
	}
	if entityType == "" {
		return nil, shared.NewDomainError("INVALID_ENTITY_TYPE", "Entity type cannot be empty")
	}
	if userID != nil && *userID == uuid.Nil {
		userID = nil
	}
	return &ActivityLog{
		BaseEntity:  shared.NewBaseEntity(),
		UserID:      userID,
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		Description: description,
		Metadata:    make(map[string]interface{}),
	}, nil
}

// WithMetadata attaches an arbitrary JSON-serialisable payload.
// Values that cannot be marshalled are dropped.
func (l *ActivityLog) WithMetadata(key string, value interface{}) *ActivityLog {
	if _, err := json.Marshal(value); err != nil {
		return l
	}
	l.Metadata[key] = value
	return l
}

// OccurredAt returns when the activity happened
func (l *ActivityLog) OccurredAt() time.Time {
	return l.CreatedAt
}
