package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/udaykiran8062/schoolManagement/internal/infra/security"
	"github.com/udaykiran8062/schoolManagement/internal/usecase"
)

const (
	// ClaimsKey holds the verified *security.AccessClaims on the gin context.
	ClaimsKey = "auth_claims"
	// UserIDKey holds the authenticated user's id on the gin context.
	UserIDKey = "auth_user_id"
)

// Authenticate gates protected routes. The access token is read from
// the cookie first, falling back to the Authorization header; the
// refresh token only ever travels in its cookie. An expired access
// token is rotated in place when the refresh token is still live, so
// browser clients never see the expiry. Every rejection clears both
// cookies so a broken pair is not re-presented.
func Authenticate(auth *usecase.AuthService, codec *security.TokenCodec, cookies CookiePolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		accessToken := tokenFromCookieOrHeader(c)
		refreshToken, _ := c.Cookie(RefreshTokenCookie)

		if accessToken == "" && refreshToken == "" {
			reject(c, cookies, "no credentials provided")
			return
		}

		claims, err := codec.VerifyAccess(accessToken)
		if err == nil {
			// Signature validity is not enough: the registry must still
			// hold the token, or a displaced or logged-out session could
			// keep using its old pair until expiry.
			if _, err := auth.VerifySession(c.Request.Context(), accessToken, refreshToken); err != nil {
				reject(c, cookies, "invalid session")
				return
			}
			c.Header("Authorization", "Bearer "+accessToken)
			admit(c, claims)
			return
		}

		// Expired and malformed access tokens take the same path: a
		// live refresh token is the only way back in.
		if refreshToken == "" {
			reject(c, cookies, "no refresh token provided")
			return
		}

		rotated, err := auth.Rotate(c.Request.Context(), refreshToken)
		if err != nil {
			reject(c, cookies, "invalid refresh token")
			return
		}

		cookies.SetAccessToken(c, rotated.AccessToken)

		newClaims, err := codec.VerifyAccess(rotated.AccessToken)
		if err != nil {
			reject(c, cookies, "invalid access token")
			return
		}
		admit(c, newClaims)
	}
}

func admit(c *gin.Context, claims *security.AccessClaims) {
	c.Set(ClaimsKey, claims)
	c.Set(UserIDKey, claims.UserID)
	c.Next()
}

func reject(c *gin.Context, cookies CookiePolicy, message string) {
	cookies.Clear(c)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"status":  false,
		"message": message,
	})
}

func tokenFromCookieOrHeader(c *gin.Context) string {
	if token, err := c.Cookie(AccessTokenCookie); err == nil && token != "" {
		return token
	}

	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}

	return ""
}
