package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/application/common"
	"github.com/ledgerbook/backend/internal/domain/identity"
	"github.com/ledgerbook/backend/internal/infrastructure/auth"
)

// ===================== Auth =====================

// LoginInput contains the credentials for signing in
type LoginInput struct {
	Email    string `json:"email" binding:"required,email,max=200"`
	Password string `json:"password" binding:"required,max=72"`
	IP       string `json:"-"`
}

// RefreshTokenInput carries the refresh token to exchange
type RefreshTokenInput struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutInput identifies the session to end. Claims come from the
// validated access token; the refresh token is revoked as well when given.
type LogoutInput struct {
	Claims       *auth.Claims `json:"-"`
	RefreshToken string       `json:"refresh_token"`
}

// ChangePasswordRequest is the self-service password change
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}

// TokenResult is an issued access/refresh token pair
type TokenResult struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// LoginResult is returned after a successful sign-in
type LoginResult struct {
	TokenResult
	User UserResponse `json:"user"`
}

func toTokenResult(pair *auth.TokenPair) TokenResult {
	return TokenResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
	}
}

// ===================== Users =====================

// CreateUserRequest is used by administrators to add an account
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email,max=200"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	FullName string `json:"full_name" binding:"max=200"`
	Role     string `json:"role" binding:"omitempty,oneof=admin user"`
}

// UpdateUserRequest changes profile fields; nil fields are left as they are
type UpdateUserRequest struct {
	Email    *string `json:"email" binding:"omitempty,email,max=200"`
	FullName *string `json:"full_name" binding:"omitempty,max=200"`
	Version  *int    `json:"version"`
}

// ChangeRoleRequest sets a user's role
type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin user"`
}

// ResetPasswordRequest sets a new password without the old one
type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}

// UserListFilter filters the user list
type UserListFilter struct {
	common.ListQuery
	Role   string `form:"role" binding:"omitempty,oneof=admin user"`
	Status string `form:"status" binding:"omitempty,oneof=active inactive"`
}

// UserResponse never includes the password hash
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	DisplayName string     `json:"display_name"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Version     int        `json:"version"`
}

// ToUserResponse converts a domain user to its response
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		DisplayName: u.DisplayName(),
		Role:        string(u.Role),
		Status:      string(u.Status),
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
		Version:     u.Version,
	}
}

// ToUserResponses converts a slice of users
func ToUserResponses(users []identity.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = ToUserResponse(&users[i])
	}
	return out
}

// ===================== Activity =====================

// ActivityLogListFilter filters the activity log
type ActivityLogListFilter struct {
	common.ListQuery
	common.DateRange
	UserID     string `form:"user_id" binding:"omitempty,uuid"`
	EntityType string `form:"entity_type" binding:"omitempty,max=50"`
	EntityID   string `form:"entity_id" binding:"omitempty,uuid"`
	Action     string `form:"action" binding:"omitempty,oneof=create update delete login logout payment upload"`
}

// ActivityLogResponse is one activity entry
type ActivityLogResponse struct {
	ID          uuid.UUID              `json:"id"`
	UserID      *uuid.UUID             `json:"user_id,omitempty"`
	Action      string                 `json:"action"`
	EntityType  string                 `json:"entity_type"`
	EntityID    *uuid.UUID             `json:"entity_id,omitempty"`
	Description string                 `json:"description"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	IPAddress   string                 `json:"ip_address,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}

// ToActivityLogResponses converts a slice of log entries
func ToActivityLogResponses(logs []identity.ActivityLog) []ActivityLogResponse {
	out := make([]ActivityLogResponse, len(logs))
	for i := range logs {
		l := &logs[i]
		out[i] = ActivityLogResponse{
			ID:          l.ID,
			UserID:      l.UserID,
			Action:      string(l.Action),
			EntityType:  l.EntityType,
			EntityID:    l.EntityID,
			Description: l.Description,
			Metadata:    l.Metadata,
			IPAddress:   l.IPAddress,
			CreatedAt:   l.CreatedAt,
		}
	}
	return out
}
