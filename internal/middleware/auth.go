package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"pettycash/internal/apperr"
	"pettycash/internal/identity"
	"pettycash/internal/model"
	"pettycash/pkg/response"

	"github.com/gin-gonic/gin"
)

// Context keys set by Authenticate.
const (
	ContextSession  = "session"
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
)

const accessTokenCookie = "access_token"

// SessionResolver turns a bearer token into a verified session.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*identity.Session, error)
}

// SetTokenCookie stores the access token as an HttpOnly cookie.
func SetTokenCookie(c *gin.Context, accessToken string, ttl time.Duration, secure bool) {
	// Cross-origin deployments need SameSite=None, which browsers only accept with Secure.
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode
	}
	c.SetSameSite(sameSite)
	c.SetCookie(accessTokenCookie, accessToken, int(ttl.Seconds()), "/", "", secure, true)
}

// ClearTokenCookie removes the access token cookie.
func ClearTokenCookie(c *gin.Context, secure bool) {
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode
	}
	c.SetSameSite(sameSite)
	c.SetCookie(accessTokenCookie, "", -1, "/", "", secure, true)
}

// extractToken reads the token from the access_token cookie, falling back to the
// Authorization header.
func extractToken(c *gin.Context) (string, string) {
	if token, err := c.Cookie(accessTokenCookie); err == nil && token != "" {
		return token, ""
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", "Authorization is missing"
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", "Invalid authorization format. Expected 'Bearer <token>'"
	}
	return parts[1], ""
}

// Authenticate verifies the caller and stores the session in the gin context.
func Authenticate(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, problem := extractToken(c)
		if problem != "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, problem))
			return
		}

		sess, err := resolver.ResolveSession(c.Request.Context(), token)
		if err != nil {
			switch apperr.KindOf(err) {
			case apperr.KindAuth, apperr.KindProvider:
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
			default:
				c.AbortWithStatusJSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to verify session"))
			}
			return
		}

		c.Set(ContextSession, sess)
		c.Set(ContextUserID, sess.UserID.String())
		c.Set(ContextUserRole, sess.Role)

		c.Next()
	}
}

// RequireCapability rejects callers whose role lacks any of the given capabilities.
// It must run after Authenticate.
func RequireCapability(required ...model.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := GetSession(c)
		if !sess.Valid() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
			return
		}
		for _, capability := range required {
			if !model.HasCapability(sess.Role, capability) {
				c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: missing capability '"+string(capability)+"'"))
				return
			}
		}
		c.Next()
	}
}

// GetSession returns the session stored by Authenticate, or nil.
func GetSession(c *gin.Context) *identity.Session {
	v, ok := c.Get(ContextSession)
	if !ok {
		return nil
	}
	sess, _ := v.(*identity.Session)
	return sess
}
