package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/udaykiran8062/schoolManagement/internal/core/domain"
	"github.com/udaykiran8062/schoolManagement/internal/core/port"
	"github.com/udaykiran8062/schoolManagement/internal/infra/security"
	"github.com/udaykiran8062/schoolManagement/internal/repository"
	"github.com/udaykiran8062/schoolManagement/internal/transport/http/middleware"
	"github.com/udaykiran8062/schoolManagement/internal/usecase"
)

type stubUserRepo struct {
	user domain.User
}

func (s *stubUserRepo) Create(_ context.Context, user domain.User) (*domain.User, error) {
	return &user, nil
}

func (s *stubUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	if id == s.user.ID {
		user := s.user
		return &user, nil
	}
	return nil, repository.ErrNotFound
}

func (s *stubUserRepo) FindByIdentifier(_ context.Context, _ port.IdentifierQuery) ([]domain.User, error) {
	return []domain.User{s.user}, nil
}

func (s *stubUserRepo) ExistsByContact(_ context.Context, _, _ string, _ domain.UserType) (bool, error) {
	return false, nil
}

func (s *stubUserRepo) List(_ context.Context, _ port.UserFilter) ([]domain.User, error) {
	return []domain.User{s.user}, nil
}

type stubSessionRepo struct {
	sessions map[string]domain.Session
	nextID   int64
}

func newStubSessionRepo() *stubSessionRepo {
	return &stubSessionRepo{sessions: make(map[string]domain.Session)}
}

func (s *stubSessionRepo) Replace(_ context.Context, session domain.Session) (*domain.Session, error) {
	for key, existing := range s.sessions {
		if existing.UserID == session.UserID {
			delete(s.sessions, key)
		}
	}
	s.nextID++
	session.ID = s.nextID
	s.sessions[session.RefreshToken] = session
	return &session, nil
}

func (s *stubSessionRepo) GetByRefreshToken(_ context.Context, refreshToken string) (*domain.Session, error) {
	if session, ok := s.sessions[refreshToken]; ok {
		return &session, nil
	}
	return nil, repository.ErrNotFound
}

func (s *stubSessionRepo) GetByAccessToken(_ context.Context, accessToken string) (*domain.Session, error) {
	for _, session := range s.sessions {
		if session.AccessToken == accessToken {
			found := session
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *stubSessionRepo) GetByTokens(_ context.Context, accessToken, refreshToken string) (*domain.Session, error) {
	if session, ok := s.sessions[refreshToken]; ok && session.AccessToken == accessToken {
		return &session, nil
	}
	return nil, repository.ErrNotFound
}

func (s *stubSessionRepo) DeleteByRefreshToken(_ context.Context, refreshToken string) error {
	delete(s.sessions, refreshToken)
	return nil
}

func (s *stubSessionRepo) UpdateAccessToken(_ context.Context, sessionID int64, accessToken string, expiresAt time.Time) error {
	for key, session := range s.sessions {
		if session.ID == sessionID {
			session.AccessToken = accessToken
			session.ExpiresAt = expiresAt
			s.sessions[key] = session
			return nil
		}
	}
	return repository.ErrNotFound
}

type gateFixture struct {
	engine   *gin.Engine
	codec    *security.TokenCodec
	sessions *stubSessionRepo
	user     domain.User
}

func newGateFixture(t *testing.T) *gateFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	codec, err := security.NewTokenCodec("gate-access-secret", "gate-refresh-secret", 15*time.Minute, 24*time.Hour, "school-auth")
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}

	user := domain.User{ID: 42, Username: "alice", Role: 3, UserType: domain.UserTypeTeacher, Status: domain.UserStatusActive}
	users := &stubUserRepo{user: user}
	sessions := newStubSessionRepo()

	auth := usecase.NewAuthService(users, sessions, codec, zap.NewNop())
	cookies := middleware.CookiePolicy{
		SameSite:   http.SameSiteStrictMode,
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
	}

	engine := gin.New()
	engine.GET("/protected", middleware.Authenticate(auth, codec, cookies), func(c *gin.Context) {
		userID := c.GetInt64(middleware.UserIDKey)
		c.JSON(http.StatusOK, gin.H{"userId": userID})
	})

	return &gateFixture{engine: engine, codec: codec, sessions: sessions, user: user}
}

func (f *gateFixture) request(t *testing.T, accessCookie, refreshCookie, bearer string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if accessCookie != "" {
		req.AddCookie(&http.Cookie{Name: middleware.AccessTokenCookie, Value: accessCookie})
	}
	if refreshCookie != "" {
		req.AddCookie(&http.Cookie{Name: middleware.RefreshTokenCookie, Value: refreshCookie})
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)
	return rec
}

func (f *gateFixture) seedSession(t *testing.T, accessToken, refreshToken string) {
	t.Helper()

	if _, err := f.sessions.Replace(context.Background(), domain.Session{
		UserID:       f.user.ID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(15 * time.Minute),
		CreatedAt:    time.Now(),
	}); err != nil {
		t.Fatalf("seed session: %v", err)
	}
}

func cookieValues(rec *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := make(map[string]*http.Cookie)
	for _, c := range rec.Result().Cookies() {
		out[c.Name] = c
	}
	return out
}

func TestGateRejectsMissingCredentials(t *testing.T) {
	f := newGateFixture(t)

	rec := f.request(t, "", "", "")

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}

	cookies := cookieValues(rec)
	for _, name := range []string{middleware.AccessTokenCookie, middleware.RefreshTokenCookie} {
		c, ok := cookies[name]
		if !ok {
			t.Errorf("expected %s cookie to be cleared", name)
			continue
		}
		if c.Value != "" || c.MaxAge >= 0 {
			t.Errorf("%s cookie not expired: value=%q maxAge=%d", name, c.Value, c.MaxAge)
		}
	}
}

func TestGateAdmitsValidAccessWithLiveSession(t *testing.T) {
	f := newGateFixture(t)

	access, err := f.codec.IssueAccess(&f.user, time.Now())
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	refresh, err := f.codec.IssueRefresh(&f.user, time.Now())
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	f.seedSession(t, access, refresh)

	rec := f.request(t, access, refresh, "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body=%s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Authorization"); got != "Bearer "+access {
		t.Errorf("Authorization header = %q", got)
	}
}

func TestGateAdmitsBearerHeaderWithLiveSession(t *testing.T) {
	f := newGateFixture(t)

	access, err := f.codec.IssueAccess(&f.user, time.Now())
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	refresh, err := f.codec.IssueRefresh(&f.user, time.Now())
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	f.seedSession(t, access, refresh)

	// Header-only clients carry no refresh cookie; the access token is
	// matched against the registry on its own.
	rec := f.request(t, "", "", access)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body=%s", rec.Code, rec.Body.String())
	}
}

func TestGateRejectsDisplacedBearerToken(t *testing.T) {
	f := newGateFixture(t)

	oldAccess, err := f.codec.IssueAccess(&f.user, time.Now())
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	oldRefresh, err := f.codec.IssueRefresh(&f.user, time.Now())
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	f.seedSession(t, oldAccess, oldRefresh)

	// A second login replaces the session row.
	newAccess, err := f.codec.IssueAccess(&f.user, time.Now())
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	newRefresh, err := f.codec.IssueRefresh(&f.user, time.Now())
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	f.seedSession(t, newAccess, newRefresh)

	// The displaced token is cryptographically unexpired but must fail
	// the live-session check, with or without cookies.
	rec := f.request(t, oldAccess, oldRefresh, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("cookie status = %d, want 401", rec.Code)
	}

	rec = f.request(t, "", "", oldAccess)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bearer status = %d, want 401; body=%s", rec.Code, rec.Body.String())
	}
}

func TestGateRejectsRevokedSession(t *testing.T) {
	f := newGateFixture(t)

	access, err := f.codec.IssueAccess(&f.user, time.Now())
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	refresh, err := f.codec.IssueRefresh(&f.user, time.Now())
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	// No session row: pair was revoked or displaced by another login.

	rec := f.request(t, access, refresh, "")

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestGateRotatesExpiredAccessToken(t *testing.T) {
	f := newGateFixture(t)

	expired, err := f.codec.IssueAccess(&f.user, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	refresh, err := f.codec.IssueRefresh(&f.user, time.Now())
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	f.seedSession(t, expired, refresh)

	rec := f.request(t, expired, refresh, "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body=%s", rec.Code, rec.Body.String())
	}

	cookies := cookieValues(rec)
	newAccess, ok := cookies[middleware.AccessTokenCookie]
	if !ok || newAccess.Value == "" {
		t.Fatal("expected a replacement access cookie")
	}
	if newAccess.Value == expired {
		t.Error("replacement access token equals the expired one")
	}

	// Registry row was rotated in place; refresh token unchanged.
	stored := f.sessions.sessions[refresh]
	if stored.AccessToken != newAccess.Value {
		t.Error("session row not updated with rotated token")
	}
}

func TestGateRejectsExpiredAccessWithoutRefresh(t *testing.T) {
	f := newGateFixture(t)

	expired, err := f.codec.IssueAccess(&f.user, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	rec := f.request(t, expired, "", "")

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestGateRejectsExpiredAccessWithUnknownRefresh(t *testing.T) {
	f := newGateFixture(t)

	expired, err := f.codec.IssueAccess(&f.user, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	refresh, err := f.codec.IssueRefresh(&f.user, time.Now())
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	// Refresh token verifies but has no session row.

	rec := f.request(t, expired, refresh, "")

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestGateRejectsGarbageAccessToken(t *testing.T) {
	f := newGateFixture(t)

	rec := f.request(t, "not.a.jwt", "", "")

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestGateRejectionClearsAllRequestCookies(t *testing.T) {
	f := newGateFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: middleware.AccessTokenCookie, Value: "not.a.jwt"})
	req.AddCookie(&http.Cookie{Name: "theme", Value: "dark"})

	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}

	cookies := cookieValues(rec)
	for _, name := range []string{middleware.AccessTokenCookie, middleware.RefreshTokenCookie, "theme"} {
		c, ok := cookies[name]
		if !ok {
			t.Errorf("expected %s cookie to be cleared", name)
			continue
		}
		if c.Value != "" || c.MaxAge >= 0 {
			t.Errorf("%s cookie not expired: value=%q maxAge=%d", name, c.Value, c.MaxAge)
		}
	}
}

func TestGateCookieWinsOverHeader(t *testing.T) {
	f := newGateFixture(t)

	valid, err := f.codec.IssueAccess(&f.user, time.Now())
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	// A garbage cookie must not be rescued by a valid header token.
	rec := f.request(t, "not.a.jwt", "", valid)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}
