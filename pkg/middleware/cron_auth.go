package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"linkhub/pkg/utils"
)

// CronAuthMiddleware guards scheduler-triggered endpoints with a shared
// bearer secret. An empty secret rejects every request.
func CronAuthMiddleware(secret string) gin.HandlerFunc {
	expected := []byte("Bearer " + secret)
	return func(c *gin.Context) {
		got := []byte(strings.TrimSpace(c.GetHeader("Authorization")))
		if secret == "" || subtle.ConstantTimeCompare(got, expected) != 1 {
			utils.RespondError(c, http.StatusUnauthorized, "Unauthorized")
			c.Abort()
			return
		}
		c.Next()
	}
}
