package middlewares

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmutuku/campushub/internal/auth"
	"github.com/mmutuku/campushub/internal/config"
	"github.com/mmutuku/campushub/internal/domain/user"
)

// Keep these interfaces small so tests can fake them easily.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type UserLoader interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

type AuthMiddleware struct {
	jwt   TokenVerifier
	users UserLoader
}

func NewAuthMiddleware(jwt TokenVerifier, users UserLoader) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, users: users}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    "unauthenticated",
			"message": message,
		},
	})
}

// RequireAuth verifies the bearer token and resolves the account behind it.
// A token for a deleted or deactivated account is as good as no token.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c, "Missing or invalid Authorization header")
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if raw == "" {
			abortUnauthorized(c, "Missing or invalid bearer token")
			return
		}

		claims, err := m.jwt.Verify(raw)
		if err != nil {
			// expired and invalid both end the session; the codec keeps
			// them distinct for clients that inspect the code
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		cctx, cancel := config.WithTimeout(2 * time.Second)
		defer cancel()

		u, err := m.users.GetByID(cctx, claims.UserID())

		if err != nil {
			abortUnauthorized(c, "Account no longer exists")
			return
		}

		if !u.IsActive {
			abortUnauthorized(c, "Account is deactivated")
			return
		}

		c.Set(ctxUserKey, u)

		c.Next()
	}
}

// Helpers so handlers don't need to know the magic keys.

func UserFromContext(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return user.User{}, false
	}
	u, ok := v.(user.User)
	return u, ok
}

func UserIDFromContext(c *gin.Context) (string, bool) {
	u, ok := UserFromContext(c)
	if !ok {
		return "", false
	}
	return u.ID, true
}

func RoleFromContext(c *gin.Context) (user.Role, bool) {
	u, ok := UserFromContext(c)
	if !ok {
		return "", false
	}
	return u.Role, true
}
