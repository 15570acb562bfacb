package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"ailawyer/internal/transport/http/response"
)

// AdminBasicAuth guards corpus management with a single configured
// account. An empty password disables the admin API entirely.
func AdminBasicAuth(username, password string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if password == "" {
			response.Error(c, 403, response.CodeForbidden, "admin api disabled")
			c.Abort()
			return
		}
		user, pass, ok := c.Request.BasicAuth()
		if !ok ||
			subtle.ConstantTimeCompare([]byte(user), []byte(username)) != 1 ||
			subtle.ConstantTimeCompare([]byte(pass), []byte(password)) != 1 {
			c.Header("WWW-Authenticate", `Basic realm="admin"`)
			response.Error(c, 401, response.CodeUnauthorized, "invalid admin credentials")
			c.Abort()
			return
		}
		c.Next()
	}
}
