package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmutuku/campushub/internal/domain/user"
)

// RequireRole admits only the listed roles. super_admin gets no implicit
// pass: routes that want it list it.
func (m *AuthMiddleware) RequireRole(allowed ...user.Role) gin.HandlerFunc {
	allowedSet := make(map[user.Role]struct{}, len(allowed))

	for _, r := range allowed {
		allowedSet[r] = struct{}{}
	}

	return func(c *gin.Context) {
		role, ok := RoleFromContext(c)

		if !ok || role == "" {
			abortUnauthorized(c, "Missing identity context")
			return
		}

		if _, ok := allowedSet[role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "forbidden",
					"message": "Insufficient role for this operation",
				},
			})
			return
		}
		c.Next()
	}
}
