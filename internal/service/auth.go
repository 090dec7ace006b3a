// Package service — business logic.
//
// AuthService owns every authentication rule. It sits between the HTTP
// handlers and the repository/auth utilities:
//
//	AuthHandler (HTTP) → AuthService (rules) → UserRepository (MongoDB)
//	                   ↘ TokenService ×2 (access / refresh JWTs)
//	                   ↘ PasswordService (bcrypt)
//
// REFRESH TOKEN LIFECYCLE:
// issued → active (stored in the user's set) → rotated-out | revoked.
// Refresh consumes the presented token and stores a fresh pair; logout
// revokes. Neither leaves a token behind that can authenticate again.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/thinktank/internal/apperror"
	"github.com/sakif/thinktank/internal/auth"
	"github.com/sakif/thinktank/internal/model"
	"github.com/sakif/thinktank/internal/repository"
)

const minPasswordLen = 6

// invalidCredentials is deliberately the same for "no such user" and
// "wrong password" so the login endpoint can't be used to enumerate
// registered emails.
const invalidCredentials = "Invalid email or password"

// AuthService handles registration, login, and the refresh-token lifecycle.
type AuthService struct {
	users     repository.UserRepository
	access    *auth.TokenService
	refresh   *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all dependencies injected.
// access and refresh MUST be distinct TokenServices with distinct secrets.
func NewAuthService(
	users repository.UserRepository,
	access, refresh *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		access:    access,
		refresh:   refresh,
		passwords: passwords,
		logger:    logger,
	}
}

// TokenPair bundles the two tokens issued together on register, login,
// and refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthResult is returned by Register and Login: the user record (password
// hash never serialized) plus a fresh token pair.
type AuthResult struct {
	User   *model.User `json:"user"`
	Tokens TokenPair   `json:"tokens"`
}

// Register creates a new user account and issues its first token pair.
//
// Validation failures (missing fields, mismatched passwords, short
// password) return apperror.ErrValidation; a duplicate email returns
// apperror.ErrConflict. No user record is created on any failure path.
func (s *AuthService) Register(ctx context.Context, name, email, password, confirmPassword string) (*AuthResult, error) {
	if name == "" || email == "" || password == "" || confirmPassword == "" {
		return nil, apperror.ValidationFailed("", "All fields are required")
	}
	if password != confirmPassword {
		return nil, apperror.ValidationFailed("confirmPassword", "Passwords do not match")
	}
	if len(password) < minPasswordLen {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("Password must be at least %d characters long", minPasswordLen))
	}

	// Pre-check for a friendly 409; the unique index in the repository is
	// what actually closes the race between two concurrent registrations.
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("service/auth: checking email: %w", err)
	}
	if exists {
		return nil, &apperror.AppError{
			Err:     apperror.ErrConflict,
			Message: "User already exists with this email",
		}
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:            xid.New().String(),
		Name:          name,
		Email:         email,
		PasswordHash:  hash,
		RefreshTokens: []string{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: creating user: %w", err)
	}

	tokens, err := s.issueTokens(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("email", user.Email),
	)

	user.PasswordHash = ""
	return &AuthResult{User: user, Tokens: tokens}, nil
}

// Login authenticates an email/password pair and issues a new token pair,
// appending the refresh token to the user's stored set (one per session).
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if email == "" || password == "" {
		return nil, apperror.ValidationFailed("", "Email and password are required")
	}

	user, err := s.users.FindByEmailWithPassword(ctx, email)
	if err != nil {
		// Not-found gets the same answer as a bad password.
		return nil, apperror.Unauthorized(invalidCredentials)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthorized(invalidCredentials)
	}

	tokens, err := s.issueTokens(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))

	user.PasswordHash = ""
	return &AuthResult{User: user, Tokens: tokens}, nil
}

// Refresh exchanges a valid, stored refresh token for a new token pair.
//
// ROTATION: the presented token is removed from the stored set before the
// new pair is issued, so every refresh token is single-use. A token whose
// signature and expiry are fine but which is no longer in the set — i.e.
// it was already rotated out or revoked — is rejected, which is exactly
// the replay-of-a-stolen-token case.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, apperror.Unauthorized("Refresh token required")
	}

	userID, err := s.refresh.Validate(refreshToken)
	if err != nil {
		return nil, apperror.Unauthorized("Invalid refresh token")
	}

	stored, err := s.users.HasRefreshToken(ctx, userID, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("service/auth: checking refresh token: %w", err)
	}
	if !stored {
		s.logger.Warn("refresh with unknown token — possible replay",
			slog.String("userID", userID))
		return nil, apperror.Unauthorized("Invalid refresh token")
	}

	if err := s.users.RemoveRefreshToken(ctx, userID, refreshToken); err != nil {
		return nil, fmt.Errorf("service/auth: rotating refresh token: %w", err)
	}

	tokens, err := s.issueTokens(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &tokens, nil
}

// Logout removes the given refresh token from its user's stored set.
//
// Always succeeds from the caller's perspective: an invalid, expired, or
// already-removed token leaves nothing to revoke, which is the state the
// caller wanted anyway.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) {
	if refreshToken == "" {
		return
	}

	userID, err := s.refresh.Validate(refreshToken)
	if err != nil {
		return
	}

	if err := s.users.RemoveRefreshToken(ctx, userID, refreshToken); err != nil {
		s.logger.Warn("logout: token removal failed",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
	}
}

// LogoutAll revokes every session of a user by clearing the whole
// refresh-token set.
func (s *AuthService) LogoutAll(ctx context.Context, userID string) error {
	if err := s.users.RemoveAllRefreshTokens(ctx, userID); err != nil {
		return fmt.Errorf("service/auth: clearing refresh tokens: %w", err)
	}
	return nil
}

// GetProfile returns the user record for the given ID, password excluded.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, apperror.NotFound("user", userID)
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// issueTokens generates an access/refresh pair and stores the refresh
// token in the user's set.
func (s *AuthService) issueTokens(ctx context.Context, userID string) (TokenPair, error) {
	accessToken, err := s.access.Generate(userID)
	if err != nil {
		return TokenPair{}, fmt.Errorf("service/auth: generating access token: %w", err)
	}
	refreshToken, err := s.refresh.Generate(userID)
	if err != nil {
		return TokenPair{}, fmt.Errorf("service/auth: generating refresh token: %w", err)
	}
	if err := s.users.AddRefreshToken(ctx, userID, refreshToken); err != nil {
		return TokenPair{}, fmt.Errorf("service/auth: storing refresh token: %w", err)
	}
	return TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
