package api

import (
	"net/http"
	"strings"

	"messenger/domain"

	"github.com/gin-gonic/gin"
)

const currentUserKey = "current_user"

// RequireAuth resolves the bearer token to a user and injects it into the
// request context. Absence, malformation and expiry all yield the same 401.
func (s *Server) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		user, err := s.authService.CurrentUser(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

func currentUser(c *gin.Context) domain.User {
	return c.MustGet(currentUserKey).(domain.User)
}
