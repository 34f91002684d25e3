package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/ledgerbook/backend/internal/domain/identity"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/ledgerbook/backend/internal/infrastructure/auth"
	"github.com/ledgerbook/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type userFixture struct {
	users     *testutil.MockUserRepository
	clock     *clockwork.FakeClock
	blacklist *auth.InMemoryTokenBlacklist
	publisher *testutil.RecordingPublisher
	service   *UserService
}

func newUserFixture() *userFixture {
	clock := clockwork.NewFakeClockAt(authNow)
	f := &userFixture{
		users:     new(testutil.MockUserRepository),
		clock:     clock,
		blacklist: auth.NewInMemoryTokenBlacklistWithClock(clock),
		publisher: testutil.NewRecordingPublisher(),
	}
	f.service = NewUserService(f.users, f.blacklist, f.publisher, 24*time.Hour, nil)
	return f
}

func asActor(u *identity.User) context.Context {
	return shared.WithActor(context.Background(), shared.Actor{UserID: u.ID, Email: u.Email, Role: string(u.Role)})
}

func (f *userFixture) sessionsInvalidated(t *testing.T, u *identity.User) bool {
	t.Helper()
	invalidated, err := f.blacklist.IsUserTokenInvalidated(context.Background(), u.ID.String(), authNow)
	require.NoError(t, err)
	return invalidated
}

func TestUserService_Create(t *testing.T) {
	f := newUserFixture()
	admin := newTestUser(t, "admin@example.com", identity.RoleAdmin)
	f.users.On("ExistsByEmail", mock.Anything, "new@example.com", uuid.Nil).Return(false, nil)
	f.users.On("Save", mock.Anything, mock.AnythingOfType("*identity.User")).Return(nil)

	resp, err := f.service.Create(asActor(admin), CreateUserRequest{
		Email:    "  New@Example.com ",
		Password: "welcome42",
		FullName: "New Person",
	})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", resp.Email)
	assert.Equal(t, "user", resp.Role)
	assert.Equal(t, "active", resp.Status)

	saved := f.users.Calls[1].Arguments.Get(1).(*identity.User)
	require.NotNil(t, saved.CreatedBy)
	assert.Equal(t, admin.ID, *saved.CreatedBy)
	assert.NotEqual(t, "welcome42", saved.PasswordHash)
	assert.Equal(t, []string{identity.EventTypeUserCreated}, f.publisher.EventTypes())
}

func TestUserService_Create_DuplicateEmail(t *testing.T) {
	f := newUserFixture()
	f.users.On("ExistsByEmail", mock.Anything, "taken@example.com", uuid.Nil).Return(true, nil)

	_, err := f.service.Create(context.Background(), CreateUserRequest{Email: "taken@example.com", Password: "welcome42"})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	f.users.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestUserService_Update_VersionMismatch(t *testing.T) {
	f := newUserFixture()
	u := newTestUser(t, "a@example.com", identity.RoleUser)
	f.users.On("FindByID", mock.Anything, u.ID).Return(u, nil)

	stale := u.Version + 1
	_, err := f.service.Update(context.Background(), u.ID, UpdateUserRequest{Version: &stale})
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
}

func TestUserService_Update(t *testing.T) {
	f := newUserFixture()
	u := newTestUser(t, "a@example.com", identity.RoleUser)
	f.users.On("FindByID", mock.Anything, u.ID).Return(u, nil)
	f.users.On("ExistsByEmail", mock.Anything, "b@example.com", u.ID).Return(false, nil)
	f.users.On("Save", mock.Anything, u).Return(nil)

	email, name := "B@example.com", "Renamed"
	resp, err := f.service.Update(context.Background(), u.ID, UpdateUserRequest{Email: &email, FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, "b@example.com", resp.Email)
	assert.Equal(t, "Renamed", resp.FullName)
}

func TestUserService_ChangeRole(t *testing.T) {
	t.Run("promote", func(t *testing.T) {
		f := newUserFixture()
		admin := newTestUser(t, "admin@example.com", identity.RoleAdmin)
		u := newTestUser(t, "a@example.com", identity.RoleUser)
		f.users.On("FindByID", mock.Anything, u.ID).Return(u, nil)
		f.users.On("Save", mock.Anything, u).Return(nil)

		resp, err := f.service.ChangeRole(asActor(admin), u.ID, ChangeRoleRequest{Role: "admin"})
		require.NoError(t, err)
		assert.Equal(t, "admin", resp.Role)
		assert.True(t, f.sessionsInvalidated(t, u))
		assert.Equal(t, []string{identity.EventTypeUserRoleChanged}, f.publisher.EventTypes())
	})

	t.Run("cannot demote self", func(t *testing.T) {
		f := newUserFixture()
		admin := newTestUser(t, "admin@example.com", identity.RoleAdmin)
		f.users.On("FindByID", mock.Anything, admin.ID).Return(admin, nil)

		_, err := f.service.ChangeRole(asActor(admin), admin.ID, ChangeRoleRequest{Role: "user"})
		requireCode(t, err, "CANNOT_MODIFY_SELF")
	})

	t.Run("last admin", func(t *testing.T) {
		f := newUserFixture()
		other := newTestUser(t, "other@example.com", identity.RoleUser)
		admin := newTestUser(t, "admin@example.com", identity.RoleAdmin)
		f.users.On("FindByID", mock.Anything, admin.ID).Return(admin, nil)
		f.users.On("CountActiveAdmins", mock.Anything).Return(int64(1), nil)

		_, err := f.service.ChangeRole(asActor(other), admin.ID, ChangeRoleRequest{Role: "user"})
		requireCode(t, err, "LAST_ADMIN")
		assert.Equal(t, identity.RoleAdmin, admin.Role)
	})

	t.Run("unchanged role is a no-op", func(t *testing.T) {
		f := newUserFixture()
		u := newTestUser(t, "a@example.com", identity.RoleUser)
		f.users.On("FindByID", mock.Anything, u.ID).Return(u, nil)

		_, err := f.service.ChangeRole(context.Background(), u.ID, ChangeRoleRequest{Role: "user"})
		require.NoError(t, err)
		f.users.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestUserService_Deactivate(t *testing.T) {
	f := newUserFixture()
	admin := newTestUser(t, "admin@example.com", identity.RoleAdmin)
	u := newTestUser(t, "a@example.com", identity.RoleUser)
	f.users.On("FindByID", mock.Anything, u.ID).Return(u, nil)
	f.users.On("Save", mock.Anything, u).Return(nil)

	resp, err := f.service.Deactivate(asActor(admin), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "inactive", resp.Status)
	assert.True(t, f.sessionsInvalidated(t, u))

	// deactivating twice is rejected by the domain
	_, err = f.service.Deactivate(asActor(admin), u.ID)
	requireCode(t, err, "ALREADY_INACTIVE")
}

func TestUserService_Deactivate_SecondAdminAllowed(t *testing.T) {
	f := newUserFixture()
	actor := newTestUser(t, "admin@example.com", identity.RoleAdmin)
	other := newTestUser(t, "second@example.com", identity.RoleAdmin)
	f.users.On("FindByID", mock.Anything, other.ID).Return(other, nil)
	f.users.On("CountActiveAdmins", mock.Anything).Return(int64(2), nil)
	f.users.On("Save", mock.Anything, other).Return(nil)

	_, err := f.service.Deactivate(asActor(actor), other.ID)
	require.NoError(t, err)
	assert.False(t, other.IsActive())
}

func TestUserService_Activate(t *testing.T) {
	f := newUserFixture()
	u := newTestUser(t, "a@example.com", identity.RoleUser)
	require.NoError(t, u.Deactivate())
	u.ClearDomainEvents()
	f.users.On("FindByID", mock.Anything, u.ID).Return(u, nil)
	f.users.On("Save", mock.Anything, u).Return(nil)

	resp, err := f.service.Activate(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "active", resp.Status)
	assert.Equal(t, []string{identity.EventTypeUserActivated}, f.publisher.EventTypes())
}

func TestUserService_ResetPassword(t *testing.T) {
	f := newUserFixture()
	u := newTestUser(t, "a@example.com", identity.RoleUser)
	f.users.On("FindByID", mock.Anything, u.ID).Return(u, nil)
	f.users.On("Save", mock.Anything, u).Return(nil)

	require.NoError(t, f.service.ResetPassword(context.Background(), u.ID, ResetPasswordRequest{NewPassword: "temporary7"}))
	assert.True(t, u.VerifyPassword("temporary7"))
	assert.True(t, f.sessionsInvalidated(t, u))

	err := f.service.ResetPassword(context.Background(), u.ID, ResetPasswordRequest{NewPassword: "short"})
	requireCode(t, err, "INVALID_PASSWORD")
}

func TestUserService_Delete(t *testing.T) {
	t.Run("regular user", func(t *testing.T) {
		f := newUserFixture()
		admin := newTestUser(t, "admin@example.com", identity.RoleAdmin)
		u := newTestUser(t, "a@example.com", identity.RoleUser)
		f.users.On("FindByID", mock.Anything, u.ID).Return(u, nil)
		f.users.On("Delete", mock.Anything, u.ID).Return(nil)

		require.NoError(t, f.service.Delete(asActor(admin), u.ID))
		assert.Equal(t, []string{identity.EventTypeUserDeleted}, f.publisher.EventTypes())
	})

	t.Run("self", func(t *testing.T) {
		f := newUserFixture()
		admin := newTestUser(t, "admin@example.com", identity.RoleAdmin)
		f.users.On("FindByID", mock.Anything, admin.ID).Return(admin, nil)

		requireCode(t, f.service.Delete(asActor(admin), admin.ID), "CANNOT_MODIFY_SELF")
		f.users.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("last admin", func(t *testing.T) {
		f := newUserFixture()
		admin := newTestUser(t, "admin@example.com", identity.RoleAdmin)
		f.users.On("FindByID", mock.Anything, admin.ID).Return(admin, nil)
		f.users.On("CountActiveAdmins", mock.Anything).Return(int64(1), nil)

		requireCode(t, f.service.Delete(context.Background(), admin.ID), "LAST_ADMIN")
	})

	t.Run("inactive admin skips the count", func(t *testing.T) {
		f := newUserFixture()
		admin := newTestUser(t, "old-admin@example.com", identity.RoleAdmin)
		require.NoError(t, admin.Deactivate())
		f.users.On("FindByID", mock.Anything, admin.ID).Return(admin, nil)
		f.users.On("Delete", mock.Anything, admin.ID).Return(nil)

		require.NoError(t, f.service.Delete(context.Background(), admin.ID))
		f.users.AssertNotCalled(t, "CountActiveAdmins", mock.Anything)
	})
}

func TestUserService_BootstrapAdmin(t *testing.T) {
	t.Run("creates the first admin", func(t *testing.T) {
		f := newUserFixture()
		f.users.On("Count", mock.Anything, shared.AllFilter()).Return(int64(0), nil)
		f.users.On("Save", mock.Anything, mock.AnythingOfType("*identity.User")).Return(nil)

		created, err := f.service.BootstrapAdmin(context.Background(), "Owner@Example.com", "changeme123")
		require.NoError(t, err)
		assert.True(t, created)

		saved := f.users.Calls[1].Arguments.Get(1).(*identity.User)
		assert.Equal(t, "owner@example.com", saved.Email)
		assert.True(t, saved.IsAdmin())
	})

	t.Run("existing users", func(t *testing.T) {
		f := newUserFixture()
		f.users.On("Count", mock.Anything, shared.AllFilter()).Return(int64(3), nil)

		created, err := f.service.BootstrapAdmin(context.Background(), "owner@example.com", "changeme123")
		require.NoError(t, err)
		assert.False(t, created)
		f.users.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("not configured", func(t *testing.T) {
		f := newUserFixture()
		created, err := f.service.BootstrapAdmin(context.Background(), "", "")
		require.NoError(t, err)
		assert.False(t, created)
		f.users.AssertNotCalled(t, "Count", mock.Anything, mock.Anything)
	})
}
