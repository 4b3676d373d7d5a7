package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/udaykiran8062/schoolManagement/internal/core/domain"
	"github.com/udaykiran8062/schoolManagement/internal/core/port"
	"github.com/udaykiran8062/schoolManagement/internal/infra/logger"
	"github.com/udaykiran8062/schoolManagement/internal/infra/security"
	"github.com/udaykiran8062/schoolManagement/internal/repository"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveUser       = errors.New("user account is inactive")
	ErrSessionNotFound    = errors.New("session not found")
)

// AmbiguousLoginError signals that an identifier matched several
// accounts. The caller must re-submit with the chosen account's id;
// no tokens are issued until then.
type AmbiguousLoginError struct {
	Candidates []domain.User
}

func (e *AmbiguousLoginError) Error() string {
	return fmt.Sprintf("identifier matches %d accounts", len(e.Candidates))
}

// LoginInput carries everything one authentication attempt needs.
// UserType and UserID are optional narrowing fields; UserID wins when
// both are present.
type LoginInput struct {
	Identifier string
	Password   string
	UserType   *domain.UserType
	UserID     *int64
	IP         string
	Device     string
}

// LoginResult is a freshly issued token pair bound to the user.
type LoginResult struct {
	User         domain.User
	AccessToken  string
	RefreshToken string
}

// RotateResult carries the replacement access token after a refresh.
// The refresh token itself is unchanged by rotation.
type RotateResult struct {
	AccessToken string
	UserID      int64
	Role        int64
}

// AuthService implements login, logout, and token rotation on top of
// the session registry. Each user holds at most one live session;
// logging in from a second device invalidates the first.
type AuthService struct {
	users    port.UserRepository
	sessions port.SessionRepository
	codec    *security.TokenCodec
	logger   *zap.Logger
	now      func() time.Time
}

func NewAuthService(users port.UserRepository, sessions port.SessionRepository, codec *security.TokenCodec, lg *zap.Logger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		codec:    codec,
		logger:   lg,
		now:      time.Now,
	}
}

// Login resolves the identifier to exactly one account, checks the
// password, and installs a new session, displacing any previous one.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	if input.Identifier == "" || input.Password == "" {
		return nil, ErrInvalidCredentials
	}

	candidates, err := s.users.FindByIdentifier(ctx, port.IdentifierQuery{
		Identifier: input.Identifier,
		UserType:   input.UserType,
		ID:         input.UserID,
	})
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if len(candidates) == 0 {
		return nil, ErrUserNotFound
	}

	// Ambiguity is decided over password-matching candidates only: a
	// stranger sharing a username must not appear in the list.
	matched := make([]domain.User, 0, 1)
	for _, candidate := range candidates {
		ok, err := security.VerifyPassword(input.Password, candidate.PasswordHash)
		if err != nil {
			return nil, fmt.Errorf("verify password: %w", err)
		}
		if ok {
			matched = append(matched, candidate)
		}
	}

	switch len(matched) {
	case 0:
		s.logger.Warn("login rejected",
			zap.String("ip", logger.MaskIP(input.IP)),
		)
		return nil, ErrInvalidCredentials
	case 1:
	default:
		sanitized := make([]domain.User, 0, len(matched))
		for _, c := range matched {
			sanitized = append(sanitized, c.Sanitized())
		}
		return nil, &AmbiguousLoginError{Candidates: sanitized}
	}

	user := matched[0]

	if !user.IsActive() {
		return nil, ErrInactiveUser
	}

	now := s.now()

	accessToken, err := s.codec.IssueAccess(&user, now)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refreshToken, err := s.codec.IssueRefresh(&user, now)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	if _, err := s.sessions.Replace(ctx, domain.Session{
		UserID:       user.ID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		IP:           input.IP,
		Device:       input.Device,
		ExpiresAt:    now.Add(s.codec.AccessTokenTTL()),
		CreatedAt:    now,
	}); err != nil {
		return nil, fmt.Errorf("replace session: %w", err)
	}

	s.logger.Info("user logged in",
		zap.Int64("user_id", user.ID),
		zap.Int16("user_type", int16(user.UserType)),
		zap.String("ip", logger.MaskIP(input.IP)),
	)

	return &LoginResult{
		User:         user.Sanitized(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Logout tears down the session identified by the refresh token. It is
// idempotent: logging out an already-dead session succeeds.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	if err := s.sessions.DeleteByRefreshToken(ctx, refreshToken); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

// Rotate exchanges a live refresh token for a new access token. An
// expired refresh token removes the session row before the error is
// surfaced, so the dead pair cannot be replayed.
func (s *AuthService) Rotate(ctx context.Context, refreshToken string) (*RotateResult, error) {
	if refreshToken == "" {
		return nil, ErrSessionNotFound
	}

	session, err := s.sessions.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	claims, err := s.codec.VerifyRefresh(refreshToken)
	if err != nil {
		// Expired and invalid refresh tokens both kill the session row,
		// forcing a full re-login; the dead pair cannot be replayed.
		if delErr := s.sessions.DeleteByRefreshToken(ctx, refreshToken); delErr != nil {
			s.logger.Error("failed to purge dead session",
				zap.Int64("session_id", session.ID),
				zap.Error(delErr),
			)
		}
		return nil, err
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	now := s.now()

	accessToken, err := s.codec.IssueAccess(user, now)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	if err := s.sessions.UpdateAccessToken(ctx, session.ID, accessToken, now.Add(s.codec.AccessTokenTTL())); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("update session: %w", err)
	}

	s.logger.Debug("access token rotated", zap.Int64("user_id", user.ID))

	return &RotateResult{
		AccessToken: accessToken,
		UserID:      user.ID,
		Role:        user.Role,
	}, nil
}

// VerifySession confirms presented tokens still map to a live session
// row. Used by the gate on every protected request; header-only
// clients carry no refresh token, so the access token alone is matched
// against the registry.
func (s *AuthService) VerifySession(ctx context.Context, accessToken, refreshToken string) (*domain.Session, error) {
	var (
		session *domain.Session
		err     error
	)
	if refreshToken == "" {
		session, err = s.sessions.GetByAccessToken(ctx, accessToken)
	} else {
		session, err = s.sessions.GetByTokens(ctx, accessToken, refreshToken)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	return session, nil
}
