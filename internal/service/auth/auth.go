package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/vidtube/vidtube/internal/apperrors"
	"github.com/vidtube/vidtube/internal/logger"
	"github.com/vidtube/vidtube/internal/models"
	"github.com/vidtube/vidtube/internal/repository"
	"github.com/vidtube/vidtube/internal/service/auth/tokenmanager"
)

const (
	defaultAccessCookieName  = "accessToken"
	defaultRefreshCookieName = "refreshToken"
)

// Interface to create or compare user password hashes
type PasswordHasher interface {
	// Generate Hash from password
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Must be protected against timing attacks
	Compare(hashedPassword string, password string) error
}

type Config struct {
	// Hasher to use during login or password change
	// BcryptHasher is used if not set
	Hasher PasswordHasher

	// Cookie names for browser clients
	AccessCookieName  string
	RefreshCookieName string

	Logger logger.Logger
}

// AuthService owns the session lifecycle: login, refresh, logout and
// password change. The invariant it maintains: at most one valid refresh
// token exists per user, the one stored on the user row.
type AuthService struct {
	token  *tokenmanager.TokenManager
	hasher PasswordHasher

	accessCookieName  string
	refreshCookieName string

	userRepo repository.UserRepo
	logger   logger.Logger
}

func NewService(cfg Config, token *tokenmanager.TokenManager, userRepo repository.UserRepo) (*AuthService, error) {
	if token == nil {
		return nil, errors.New("token manager must not be nil")
	}
	if userRepo == nil {
		return nil, errors.New("user repo must not be nil")
	}

	if cfg.Hasher == nil {
		cfg.Hasher = BcryptHasher{}
	}
	if cfg.AccessCookieName == "" {
		cfg.AccessCookieName = defaultAccessCookieName
	}
	if cfg.RefreshCookieName == "" {
		cfg.RefreshCookieName = defaultRefreshCookieName
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNoOpLogger()
	}

	return &AuthService{
		token:             token,
		hasher:            cfg.Hasher,
		accessCookieName:  cfg.AccessCookieName,
		refreshCookieName: cfg.RefreshCookieName,
		userRepo:          userRepo,
		logger:            cfg.Logger,
	}, nil
}

// Login verifies credentials and starts a session. The issued refresh
// token is persisted on the user row, so any previously issued refresh
// token stops being valid right here.
func (s *AuthService) Login(ctx context.Context, usernameOrEmail string, password string) (models.User, models.TokenPair, error) {
	user, err := s.userRepo.GetUserByLogin(ctx, usernameOrEmail)
	if err != nil {
		return models.User{}, models.TokenPair{}, err
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return models.User{}, models.TokenPair{}, apperrors.ErrInvalidCredentials
	}

	pair, err := s.issueAndStore(ctx, user.ID)
	if err != nil {
		return models.User{}, models.TokenPair{}, err
	}

	return user, pair, nil
}

// RefreshPair rotates the token pair.
// A refresh token is honored iff it verifies cryptographically AND equals
// the value currently stored for the user. A verified token that no longer
// matches means it was already rotated: report reuse and keep the stored
// value untouched.
func (s *AuthService) RefreshPair(ctx context.Context, presented string) (models.TokenPair, error) {
	if presented == "" {
		return models.TokenPair{}, apperrors.ErrUnauthorized
	}

	userID, err := s.token.ParseRefresh(presented)
	if err != nil {
		return models.TokenPair{}, err
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return models.TokenPair{}, fmt.Errorf("%w: user from token not found", apperrors.ErrTokenInvalid)
		}
		return models.TokenPair{}, err
	}

	switch {
	case user.RefreshToken == nil:
		// Logged out: no session to refresh
		return models.TokenPair{}, apperrors.ErrUnauthorized
	case *user.RefreshToken != presented:
		s.logger.Warn("refresh token reuse detected", "user_id", user.ID)
		return models.TokenPair{}, apperrors.ErrTokenReused
	}

	return s.issueAndStore(ctx, user.ID)
}

// Logout drops the stored refresh token. Safe to call repeatedly.
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	return s.userRepo.SetRefreshToken(ctx, userID, nil)
}

// ChangePassword replaces the stored hash after verifying the old password.
// Outstanding tokens stay valid: password change is not a revocation point.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword string, newPassword string) error {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.hasher.Compare(user.HashedPassword, oldPassword); err != nil {
		return apperrors.ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("can't use this as password, Err: %w", err)
	}

	return s.userRepo.SetPassword(ctx, userID, hash)
}

// GetUserFromRequest authenticates the request by its access token
// (cookie or Authorization: Bearer header)
func (s *AuthService) GetUserFromRequest(ctx context.Context, r *http.Request) (models.User, error) {
	access := s.accessTokenString(r)
	if access == "" {
		return models.User{}, apperrors.ErrUnauthorized
	}

	userID, err := s.token.ParseAccess(access)
	if err != nil {
		return models.User{}, err
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return models.User{}, fmt.Errorf("%w: user from token not found", apperrors.ErrTokenInvalid)
		}
		return models.User{}, err
	}

	return user, nil
}

// GetRefreshString extracts refresh token from the request cookie
func (s *AuthService) GetRefreshString(r *http.Request) string {
	cookie, err := r.Cookie(s.refreshCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// SetTokenPairToResponse places both tokens into HttpOnly secure cookies
func (s *AuthService) SetTokenPairToResponse(w http.ResponseWriter, pair models.TokenPair) {
	http.SetCookie(w, s.tokenCookie(s.accessCookieName, pair.Access.Value, int(s.token.AccessTTL().Seconds())))
	http.SetCookie(w, s.tokenCookie(s.refreshCookieName, pair.Refresh.Value, int(s.token.RefreshTTL().Seconds())))
}

// ClearTokensFromResponse expires both auth cookies
func (s *AuthService) ClearTokensFromResponse(w http.ResponseWriter) {
	http.SetCookie(w, s.tokenCookie(s.accessCookieName, "", -1))
	http.SetCookie(w, s.tokenCookie(s.refreshCookieName, "", -1))
}

// SetTokenPairToRequest sets auth cookies on an outgoing request.
// Handy in tests and clients
func (s *AuthService) SetTokenPairToRequest(r *http.Request, pair models.TokenPair) {
	r.AddCookie(s.tokenCookie(s.accessCookieName, pair.Access.Value, int(s.token.AccessTTL().Seconds())))
	r.AddCookie(s.tokenCookie(s.refreshCookieName, pair.Refresh.Value, int(s.token.RefreshTTL().Seconds())))
}

func (s *AuthService) tokenCookie(name string, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}

func (s *AuthService) accessTokenString(r *http.Request) string {
	if cookie, err := r.Cookie(s.accessCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	const scheme = "Bearer "
	header := r.Header.Get("Authorization")
	if len(header) > len(scheme) && header[:len(scheme)] == scheme {
		return header[len(scheme):]
	}

	return ""
}

// Ordering inside every mutating flow: repo read, verification, token
// issue, repo write. The single-row update is the serialization point
// for concurrent sessions of the same user.
func (s *AuthService) issueAndStore(ctx context.Context, userID uuid.UUID) (models.TokenPair, error) {
	pair, err := s.token.IssuePair(userID)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	if err := s.userRepo.SetRefreshToken(ctx, userID, &pair.Refresh.Value); err != nil {
		return models.TokenPair{}, fmt.Errorf("error while saving refresh token. Err: %w", err)
	}

	return pair, nil
}
