package identity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Run("valid user", func(t *testing.T) {
		u, err := NewUser("  Owner@Example.COM ", "secret123", " Jane Owner ", RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, "owner@example.com", u.Email)
		assert.Equal(t, "Jane Owner", u.FullName)
		assert.Equal(t, RoleAdmin, u.Role)
		assert.True(t, u.IsActive())
		assert.True(t, u.IsAdmin())
		assert.NotEqual(t, "secret123", u.PasswordHash)
		assert.True(t, u.VerifyPassword("secret123"))
		assert.False(t, u.VerifyPassword("wrong1234"))
		require.Len(t, u.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeUserCreated, u.GetDomainEvents()[0].EventType())
	})

	tests := []struct {
		name     string
		email    string
		password string
		role     Role
		code     string
	}{
		{"empty email", "", "secret123", RoleUser, "INVALID_EMAIL"},
		{"bad email", "not-an-email", "secret123", RoleUser, "INVALID_EMAIL"},
		{"short password", "a@b.co", "abc1", RoleUser, "INVALID_PASSWORD"},
		{"no digit", "a@b.co", "abcdefghij", RoleUser, "INVALID_PASSWORD"},
		{"no letter", "a@b.co", "1234567890", RoleUser, "INVALID_PASSWORD"},
		{"bad role", "a@b.co", "secret123", Role("owner"), "INVALID_ROLE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUser(tt.email, tt.password, "", tt.role)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.code)
		})
	}
}

func TestUser_ChangePassword(t *testing.T) {
	u, err := NewUser("user@example.com", "secret123", "", RoleUser)
	require.NoError(t, err)

	err = u.ChangePassword("wrong1234", "newpass99")
	assert.Error(t, err)

	require.NoError(t, u.ChangePassword("secret123", "newpass99"))
	assert.True(t, u.VerifyPassword("newpass99"))
	assert.False(t, u.VerifyPassword("secret123"))
}

func TestUser_StatusAndRole(t *testing.T) {
	u, err := NewUser("user@example.com", "secret123", "", RoleUser)
	require.NoError(t, err)

	assert.Error(t, u.Activate())
	require.NoError(t, u.Deactivate())
	assert.False(t, u.IsActive())
	assert.Error(t, u.Deactivate())
	require.NoError(t, u.Activate())

	require.NoError(t, u.ChangeRole(RoleAdmin))
	assert.True(t, u.IsAdmin())
	assert.Error(t, u.ChangeRole(Role("root")))
}

func TestUser_RecordLoginAndDisplayName(t *testing.T) {
	u, err := NewUser("user@example.com", "secret123", "", RoleUser)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", u.DisplayName())

	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	u.RecordLogin(at, "10.0.0.1")
	require.NotNil(t, u.LastLoginAt)
	assert.Equal(t, at, *u.LastLoginAt)
	assert.Equal(t, "10.0.0.1", u.LastLoginIP)
}

func TestNewActivityLog(t *testing.T) {
	uid := uuid.New()
	eid := uuid.New()

	log, err := NewActivityLog(&uid, ActionCreate, "customer", &eid, "Created customer Acme")
	require.NoError(t, err)
	assert.Equal(t, uid, *log.UserID)
	assert.Equal(t, "customer", log.EntityType)

	log.WithMetadata("amount", "100.00").WithMetadata("bad", make(chan int))
	assert.Equal(t, "100.00", log.Metadata["amount"])
	assert.NotContains(t, log.Metadata, "bad")

	nilUser := uuid.Nil
	system, err := NewActivityLog(&nilUser, ActionDelete, "invoice", nil, "")
	require.NoError(t, err)
	assert.Nil(t, system.UserID)

	_, err = NewActivityLog(nil, Action("approve"), "invoice", nil, "")
	assert.Error(t, err)
	_, err = NewActivityLog(nil, ActionUpdate, "", nil, "")
	assert.Error(t, err)
}
