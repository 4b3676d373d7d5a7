package port

import (
	"context"
	"time"

	"github.com/udaykiran8062/schoolManagement/internal/core/domain"
)

// SessionRepository persists the single active token pair per user.
type SessionRepository interface {
	// Replace removes any existing session rows for the user and
	// inserts the supplied one as a single atomic operation.
	Replace(ctx context.Context, session domain.Session) (*domain.Session, error)
	GetByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error)
	// GetByAccessToken confirms an access token still belongs to a live
	// session row, for callers that hold no refresh token.
	GetByAccessToken(ctx context.Context, accessToken string) (*domain.Session, error)
	// GetByTokens confirms a presented access/refresh pair still maps
	// to a live session row.
	GetByTokens(ctx context.Context, accessToken, refreshToken string) (*domain.Session, error)
	// DeleteByRefreshToken is idempotent; deleting nothing is not an error.
	DeleteByRefreshToken(ctx context.Context, refreshToken string) error
	// UpdateAccessToken swaps the access token on rotation, leaving the
	// refresh token and row identity unchanged.
	UpdateAccessToken(ctx context.Context, sessionID int64, accessToken string, expiresAt time.Time) error
}
