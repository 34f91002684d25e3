package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/domain/identity"
	"github.com/ledgerbook/backend/internal/domain/shared"
)

// UserModel is the persistence model for the User entity.
type UserModel struct {
	AggregateModel
	Email        string              `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash string              `gorm:"type:varchar(255);not null"`
	FullName     string              `gorm:"type:varchar(200)"`
	Role         identity.Role       `gorm:"type:varchar(20);not null;default:'user'"`
	Status       identity.UserStatus `gorm:"type:varchar(20);not null;default:'active'"`
	LastLoginAt  *time.Time
	LastLoginIP  string `gorm:"type:varchar(45)"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Email:             m.Email,
		PasswordHash:      m.PasswordHash,
		FullName:          m.FullName,
		Role:              m.Role,
		Status:            m.Status,
		LastLoginAt:       m.LastLoginAt,
		LastLoginIP:       m.LastLoginIP,
	}
}

// FromDomain populates the persistence model from a domain User.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.FullName = u.FullName
	m.Role = u.Role
	m.Status = u.Status
	m.LastLoginAt = u.LastLoginAt
	m.LastLoginIP = u.LastLoginIP
}

// UserModelFromDomain creates a new persistence model from a domain User.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}

// ActivityLogModel is the persistence model for activity log entries.
// Rows are insert-only so there is no version column.
type ActivityLogModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID      *uuid.UUID      `gorm:"type:uuid;index"`
	Action      identity.Action `gorm:"type:varchar(20);not null;index"`
	EntityType  string          `gorm:"type:varchar(50);not null;index:idx_activity_entity,priority:1"`
	EntityID    *uuid.UUID      `gorm:"type:uuid;index:idx_activity_entity,priority:2"`
	Description string          `gorm:"type:text"`
	Metadata    string          `gorm:"type:jsonb;not null;default:'{}'"`
	IPAddress   string          `gorm:"type:varchar(45)"`
	CreatedAt   time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (ActivityLogModel) TableName() string {
	return "activity_logs"
}

// ToDomain converts the persistence model to a domain ActivityLog.
// Undecodable metadata yields an empty map.
func (m *ActivityLogModel) ToDomain() *identity.ActivityLog {
	metadata := make(map[string]interface{})
	if m.Metadata != "" {
		_ = json.Unmarshal([]byte(m.Metadata), &metadata)
	}
	return &identity.ActivityLog{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.CreatedAt,
		},
		UserID:      m.UserID,
		Action:      m.Action,
		EntityType:  m.EntityType,
		EntityID:    m.EntityID,
		Description: m.Description,
		Metadata:    metadata,
		IPAddress:   m.IPAddress,
	}
}

// ActivityLogModelFromDomain creates a new persistence model from a domain ActivityLog.
func ActivityLogModelFromDomain(l *identity.ActivityLog) (*ActivityLogModel, error) {
	metadata := []byte("{}")
	if len(l.Metadata) > 0 {
		var err error
		if metadata, err = json.Marshal(l.Metadata); err != nil {
			return nil, err
		}
	}
	return &ActivityLogModel{
		ID:          l.ID,
		UserID:      l.UserID,
		Action:      l.Action,
		EntityType:  l.EntityType,
		EntityID:    l.EntityID,
		Description: l.Description,
		Metadata:    string(metadata),
		IPAddress:   l.IPAddress,
		CreatedAt:   l.CreatedAt,
	}, nil
}
