package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/velvetarcana/booking-api/pkg/auth"
)

const ContextUserID = "user_id"

type AuthMiddleware struct {
	verifier *auth.Verifier
}

func NewAuthMiddleware(verifier *auth.Verifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// OptionalIdentity extracts the authenticated user id when a valid bearer
// token is present. Requests without one proceed as anonymous; holds are then
// keyed by requester email.
func (m *AuthMiddleware) OptionalIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				if userID, err := m.verifier.UserID(parts[1]); err == nil {
					c.Set(ContextUserID, userID)
				}
			}
		}
		c.Next()
	}
}
