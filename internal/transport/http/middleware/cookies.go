package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/udaykiran8062/schoolManagement/internal/infra/config"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// CookiePolicy fixes the attributes of the two token cookies.
// Production uses Secure + SameSite=None so browser clients on other
// origins can carry the cookies; development relaxes to Strict over
// plain HTTP.
type CookiePolicy struct {
	Secure     bool
	SameSite   http.SameSite
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func NewCookiePolicy(app config.AppSettings, jwt config.JWTSettings) CookiePolicy {
	policy := CookiePolicy{
		Secure:     app.IsProduction(),
		SameSite:   http.SameSiteStrictMode,
		AccessTTL:  jwt.AccessTokenTTL,
		RefreshTTL: jwt.RefreshTokenTTL,
	}
	if app.IsProduction() {
		policy.SameSite = http.SameSiteNoneMode
	}
	return policy
}

// SetAccessToken writes the access cookie and mirrors the token on the
// Authorization response header for non-browser clients.
func (p CookiePolicy) SetAccessToken(c *gin.Context, token string) {
	p.set(c, AccessTokenCookie, token, p.AccessTTL)
	c.Header("Authorization", "Bearer "+token)
}

func (p CookiePolicy) SetRefreshToken(c *gin.Context, token string) {
	p.set(c, RefreshTokenCookie, token, p.RefreshTTL)
}

// Clear expires every cookie presented with the request, and always
// the two token cookies, so a rejected credential is not resent.
func (p CookiePolicy) Clear(c *gin.Context) {
	cleared := make(map[string]bool, 2)
	for _, ck := range c.Request.Cookies() {
		p.set(c, ck.Name, "", -time.Second)
		cleared[ck.Name] = true
	}

	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
		if !cleared[name] {
			p.set(c, name, "", -time.Second)
		}
	}
}

func (p CookiePolicy) set(c *gin.Context, name, value string, ttl time.Duration) {
	maxAge := int(ttl.Seconds())
	if ttl < 0 {
		maxAge = -1
	}

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: p.SameSite,
	})
}
