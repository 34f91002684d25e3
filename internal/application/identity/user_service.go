package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/application/common"
	"github.com/ledgerbook/backend/internal/domain/identity"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/ledgerbook/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

var (
	errSelfAction = shared.NewDomainError("CANNOT_MODIFY_SELF", "You cannot remove your own administrator access")
	errLastAdmin  = shared.NewDomainError("LAST_ADMIN", "At least one active administrator must remain")
)

// UserService handles user administration
type UserService struct {
	userRepo       identity.UserRepository
	blacklist      auth.TokenBlacklist
	eventPublisher shared.EventPublisher
	// how long a user-wide invalidation mark must outlive issued tokens
	tokenTTL time.Duration
	logger   *zap.Logger
}

// NewUserService creates a new UserService. tokenTTL is the longest token
// lifetime, normally the refresh token expiration.
func NewUserService(
	userRepo identity.UserRepository,
	blacklist auth.TokenBlacklist,
	eventPublisher shared.EventPublisher,
	tokenTTL time.Duration,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:       userRepo,
		blacklist:      blacklist,
		eventPublisher: eventPublisher,
		tokenTTL:       tokenTTL,
		logger:         common.LoggerOrNop(logger),
	}
}

// Create creates a new user
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	role := identity.Role(req.Role)
	if role == "" {
		role = identity.RoleUser
	}

	u, err := identity.NewUser(req.Email, req.Password, req.FullName, role)
	if err != nil {
		return nil, err
	}
	if err := s.ensureEmailAvailable(ctx, u.Email, uuid.Nil); err != nil {
		return nil, err
	}
	if actorID := shared.ActorID(ctx); actorID != uuid.Nil {
		u.SetCreatedBy(actorID)
	}

	if err := s.userRepo.Save(ctx, u); err != nil {
		return nil, err
	}
	common.PublishEvents(ctx, s.eventPublisher, s.logger, u)

	s.logger.Info("User created", zap.String("user_id", u.ID.String()), zap.String("role", string(u.Role)))
	response := ToUserResponse(u)
	return &response, nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	u, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToUserResponse(u)
	return &response, nil
}

// List retrieves a page of users
func (s *UserService) List(ctx context.Context, filter UserListFilter) (shared.Paginated[UserResponse], error) {
	f := filter.Filter()
	common.SetFilter(&f, "role", filter.Role)
	common.SetFilter(&f, "status", filter.Status)

	users, err := s.userRepo.FindAll(ctx, f)
	if err != nil {
		return shared.Paginated[UserResponse]{}, err
	}
	total, err := s.userRepo.Count(ctx, f)
	if err != nil {
		return shared.Paginated[UserResponse]{}, err
	}
	return shared.NewPaginated(ToUserResponses(users), total, f.Page, f.PageSize), nil
}

// Update changes a user's email and name
func (s *UserService) Update(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*UserResponse, error) {
	u, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Version != nil && *req.Version != u.Version {
		return nil, shared.ErrConcurrencyConflict
	}

	email, fullName := u.Email, u.FullName
	if req.Email != nil {
		email = *req.Email
	}
	if req.FullName != nil {
		fullName = *req.FullName
	}
	if err := u.UpdateProfile(email, fullName); err != nil {
		return nil, err
	}
	if err := s.ensureEmailAvailable(ctx, u.Email, u.ID); err != nil {
		return nil, err
	}

	if err := s.userRepo.Save(ctx, u); err != nil {
		return nil, err
	}
	common.PublishEvents(ctx, s.eventPublisher, s.logger, u)

	response := ToUserResponse(u)
	return &response, nil
}

// ChangeRole sets a user's role. Administrators cannot demote themselves
// and the last active administrator cannot be demoted.
func (s *UserService) ChangeRole(ctx context.Context, id uuid.UUID, req ChangeRoleRequest) (*UserResponse, error) {
	u, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	role := identity.Role(req.Role)
	if u.Role == role {
		response := ToUserResponse(u)
		return &response, nil
	}
	if u.IsAdmin() {
		if err := s.guardAdminRemoval(ctx, u); err != nil {
			return nil, err
		}
	}
	if err := u.ChangeRole(role); err != nil {
		return nil, err
	}

	if err := s.userRepo.Save(ctx, u); err != nil {
		return nil, err
	}
	// Tokens carry the role, so existing sessions must sign in again
	s.invalidateSessions(ctx, u.ID)
	common.PublishEvents(ctx, s.eventPublisher, s.logger, u)

	s.logger.Info("User role changed", zap.String("user_id", u.ID.String()), zap.String("role", string(role)))
	response := ToUserResponse(u)
	return &response, nil
}

// Activate lets a deactivated user sign in again
func (s *UserService) Activate(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	u, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := u.Activate(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, u); err != nil {
		return nil, err
	}
	common.PublishEvents(ctx, s.eventPublisher, s.logger, u)

	response := ToUserResponse(u)
	return &response, nil
}

// Deactivate blocks a user from signing in and ends their sessions
func (s *UserService) Deactivate(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	u, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.IsAdmin() && u.IsActive() {
		if err := s.guardAdminRemoval(ctx, u); err != nil {
			return nil, err
		}
	} else if u.ID == shared.ActorID(ctx) {
		return nil, shared.NewDomainError("CANNOT_MODIFY_SELF", "You cannot deactivate your own account")
	}
	if err := u.Deactivate(); err != nil {
		return nil, err
	}

	if err := s.userRepo.Save(ctx, u); err != nil {
		return nil, err
	}
	s.invalidateSessions(ctx, u.ID)
	common.PublishEvents(ctx, s.eventPublisher, s.logger, u)

	s.logger.Info("User deactivated", zap.String("user_id", u.ID.String()))
	response := ToUserResponse(u)
	return &response, nil
}

// ResetPassword sets a new password without the old one and ends the
// user's sessions
func (s *UserService) ResetPassword(ctx context.Context, id uuid.UUID, req ResetPasswordRequest) error {
	u, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := u.SetPassword(req.NewPassword); err != nil {
		return err
	}
	if err := s.userRepo.Save(ctx, u); err != nil {
		return err
	}
	s.invalidateSessions(ctx, u.ID)
	common.PublishEvents(ctx, s.eventPublisher, s.logger, u)

	s.logger.Info("User password reset", zap.String("user_id", u.ID.String()))
	return nil
}

// Delete removes a user. Administrators cannot delete themselves and the
// last active administrator cannot be deleted.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	u, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if u.ID == shared.ActorID(ctx) {
		return shared.NewDomainError("CANNOT_MODIFY_SELF", "You cannot delete your own account")
	}
	if u.IsAdmin() && u.IsActive() {
		if err := s.guardAdminRemoval(ctx, u); err != nil {
			return err
		}
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateSessions(ctx, u.ID)

	u.ClearDomainEvents()
	u.AddDomainEvent(identity.NewUserEvent(identity.EventTypeUserDeleted, u))
	common.PublishEvents(ctx, s.eventPublisher, s.logger, u)

	s.logger.Info("User deleted", zap.String("user_id", id.String()))
	return nil
}

// BootstrapAdmin creates the first administrator when no user exists.
// It reports whether an account was created.
func (s *UserService) BootstrapAdmin(ctx context.Context, email, password string) (bool, error) {
	if email == "" {
		return false, nil
	}
	count, err := s.userRepo.Count(ctx, shared.AllFilter())
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	u, err := identity.NewUser(email, password, "Administrator", identity.RoleAdmin)
	if err != nil {
		return false, err
	}
	if err := s.userRepo.Save(ctx, u); err != nil {
		return false, err
	}
	common.PublishEvents(ctx, s.eventPublisher, s.logger, u)

	s.logger.Info("Bootstrap administrator created", zap.String("email", u.Email))
	return true, nil
}

// guardAdminRemoval applies the self and last-admin rules before an admin
// loses admin access
func (s *UserService) guardAdminRemoval(ctx context.Context, u *identity.User) error {
	if u.ID == shared.ActorID(ctx) {
		return errSelfAction
	}
	if !u.IsActive() {
		return nil
	}
	admins, err := s.userRepo.CountActiveAdmins(ctx)
	if err != nil {
		return err
	}
	if admins <= 1 {
		return errLastAdmin
	}
	return nil
}

func (s *UserService) ensureEmailAvailable(ctx context.Context, email string, excludeID uuid.UUID) error {
	exists, err := s.userRepo.ExistsByEmail(ctx, email, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError("ALREADY_EXISTS", "A user with this email already exists")
	}
	return nil
}

func (s *UserService) invalidateSessions(ctx context.Context, userID uuid.UUID) {
	if s.blacklist == nil {
		return
	}
	if err := s.blacklist.InvalidateUserTokens(ctx, userID.String(), s.tokenTTL); err != nil {
		s.logger.Error("Failed to invalidate user tokens", zap.String("user_id", userID.String()), zap.Error(err))
	}
}
