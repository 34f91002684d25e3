package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/ledgerbook/backend/internal/application/common"
	"github.com/ledgerbook/backend/internal/domain/identity"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/ledgerbook/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

var errInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")

// AuthService handles authentication operations
type AuthService struct {
	userRepo       identity.UserRepository
	jwtService     *auth.JWTService
	blacklist      auth.TokenBlacklist
	eventPublisher shared.EventPublisher
	clock          clockwork.Clock
	logger         *zap.Logger
}

// NewAuthService creates a new authentication service. A nil blacklist
// disables logout revocation.
func NewAuthService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	eventPublisher shared.EventPublisher,
	clock clockwork.Clock,
	logger *zap.Logger,
) *AuthService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &AuthService{
		userRepo:       userRepo,
		jwtService:     jwtService,
		blacklist:      blacklist,
		eventPublisher: eventPublisher,
		clock:          clock,
		logger:         common.LoggerOrNop(logger),
	}
}

// Login authenticates a user and returns tokens
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login attempt for unknown email")
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	if !user.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("user_id", user.ID.String()))
		return nil, errInvalidCredentials
	}
	if !user.IsActive() {
		s.logger.Warn("Login attempt for inactive account", zap.String("user_id", user.ID.String()))
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account has been deactivated")
	}

	pair, err := s.jwtService.GenerateTokenPair(tokenInput(user))
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	user.RecordLogin(s.clock.Now(), input.IP)
	user.AddDomainEvent(identity.NewUserEvent(identity.EventTypeUserLoggedIn, user))
	if err := s.userRepo.Save(ctx, user); err != nil {
		// The tokens are already valid; a missing last-login stamp is not worth failing for
		s.logger.Error("Failed to record login", zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	ctx = shared.WithActor(ctx, shared.Actor{UserID: user.ID, Email: user.Email, Role: string(user.Role), IP: input.IP})
	common.PublishEvents(ctx, s.eventPublisher, s.logger, user)

	s.logger.Info("User logged in", zap.String("user_id", user.ID.String()))

	return &LoginResult{
		TokenResult: toTokenResult(pair),
		User:        ToUserResponse(user),
	}, nil
}

// Refresh exchanges a refresh token for a new pair. The presented refresh
// token is revoked so it cannot be replayed.
func (s *AuthService) Refresh(ctx context.Context, input RefreshTokenInput) (*TokenResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		return nil, mapTokenError(err)
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid user ID in token")
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("TOKEN_INVALID", "User no longer exists")
		}
		return nil, err
	}
	if !user.IsActive() {
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account has been deactivated")
	}

	pair, err := s.jwtService.RefreshTokenPair(claims, tokenInput(user))
	if err != nil {
		s.logger.Warn("Token refresh failed", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, mapTokenError(err)
	}
	s.revoke(ctx, claims)

	result := toTokenResult(pair)
	return &result, nil
}

// Logout revokes the access token and, when given, the refresh token
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if input.Claims == nil {
		return shared.NewDomainError("TOKEN_INVALID", "Missing token claims")
	}
	userID, err := input.Claims.GetUserUUID()
	if err != nil {
		return shared.NewDomainError("TOKEN_INVALID", "Invalid user ID in token")
	}

	if s.blacklist != nil {
		ttl := input.Claims.RemainingTTL(s.clock.Now())
		if err := s.blacklist.AddToBlacklist(ctx, input.Claims.ID, ttl); err != nil {
			s.logger.Error("Failed to revoke access token", zap.Error(err))
			return err
		}
	}
	if input.RefreshToken != "" {
		refresh, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
		if err == nil && refresh.UserID == input.Claims.UserID {
			s.revoke(ctx, refresh)
		}
	}

	if s.eventPublisher != nil {
		event := &identity.UserEvent{
			BaseDomainEvent: shared.NewBaseDomainEvent(identity.EventTypeUserLoggedOut, identity.AggregateTypeUser, userID),
			Email:           input.Claims.Email,
			Role:            identity.Role(input.Claims.Role),
		}
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("Failed to publish logout event", zap.Error(err))
		}
	}

	s.logger.Info("User logged out", zap.String("user_id", userID.String()))
	return nil
}

// Me returns the signed-in user
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	response := ToUserResponse(user)
	return &response, nil
}

// ChangePassword changes the signed-in user's password after checking the current one
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := user.ChangePassword(req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return err
	}

	common.PublishEvents(ctx, s.eventPublisher, s.logger, user)
	s.logger.Info("User password changed", zap.String("user_id", userID.String()))
	return nil
}

// ValidateSession checks an access token's revocation state. It is used by
// the authentication middleware after signature validation.
func (s *AuthService) ValidateSession(ctx context.Context, claims *auth.Claims) error {
	return s.checkRevoked(ctx, claims)
}

func (s *AuthService) checkRevoked(ctx context.Context, claims *auth.Claims) error {
	if s.blacklist == nil {
		return nil
	}
	revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		return err
	}
	if revoked {
		return shared.NewDomainError("TOKEN_REVOKED", "Token has been revoked")
	}
	invalidated, err := s.blacklist.IsUserTokenInvalidated(ctx, claims.UserID, claims.GetIssuedAtTime())
	if err != nil {
		return err
	}
	if invalidated {
		return shared.NewDomainError("TOKEN_REVOKED", "Token has been revoked")
	}
	return nil
}

func (s *AuthService) revoke(ctx context.Context, claims *auth.Claims) {
	if s.blacklist == nil {
		return
	}
	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.RemainingTTL(s.clock.Now())); err != nil {
		s.logger.Warn("Failed to revoke token", zap.String("user_id", claims.UserID), zap.Error(err))
	}
}

func tokenInput(u *identity.User) auth.GenerateTokenInput {
	return auth.GenerateTokenInput{
		UserID: u.ID,
		Email:  u.Email,
		Role:   string(u.Role),
	}
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
	case errors.Is(err, auth.ErrInvalidTokenType):
		return shared.NewDomainError("TOKEN_INVALID", "Wrong token type")
	default:
		return shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	}
}
