package domain

import "time"

// Session is the single persisted token pair backing a user's login.
// At most one row exists per user at any time; issuing a new pair
// replaces the previous one (single-login policy).
type Session struct {
	ID           int64
	UserID       int64
	AccessToken  string
	RefreshToken string
	IP           string
	Device       string
	ExpiresAt    time.Time
	CreatedAt    time.Time
}

// AccessExpired reports whether the stored access token has elapsed
// its validity window.
func (s Session) AccessExpired(at time.Time) bool {
	return !s.ExpiresAt.After(at)
}
