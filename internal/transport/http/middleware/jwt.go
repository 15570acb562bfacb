package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"ailawyer/internal/pkg/jwtutil"
	"ailawyer/internal/transport/http/response"
)

// Keys under which AuthJWT stores the caller identity.
const (
	ContextUserIDKey   = "user_id"
	ContextUsernameKey = "username"
)

const bearerRealm = `Bearer realm="ailawyer"`

// AuthJWT admits requests carrying an identity-provider token signed with
// secret. The service never issues tokens; it only reads the user id.
func AuthJWT(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Header("WWW-Authenticate", bearerRealm)
			response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "bearer token required")
			c.Abort()
			return
		}

		claims, err := jwtutil.ParseToken(secret, raw)
		if err != nil {
			msg := "token rejected"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "token expired"
			}
			c.Header("WWW-Authenticate", bearerRealm+`, error="invalid_token"`)
			response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, msg)
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextUsernameKey, claims.Username)
		c.Next()
	}
}

// bearerToken extracts the credentials of a Bearer authorization header.
// The scheme name is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
