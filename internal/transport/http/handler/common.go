package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ailawyer/internal/stream"
	"ailawyer/internal/transport/http/middleware"
	"ailawyer/internal/transport/http/response"
)

func getUserIDFromContext(c *gin.Context) (uint, bool) {
	userIDAny, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}
	userID, ok := userIDAny.(uint)
	return userID, ok && userID != 0
}

// requireUser writes the 401 envelope itself when the token carried no user.
func requireUser(c *gin.Context) (uint, bool) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
	}
	return userID, ok
}

func parseUintParam(c *gin.Context, key string) (uint, bool) {
	u, err := strconv.ParseUint(c.Param(key), 10, 64)
	if err != nil || u == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid "+key)
		return 0, false
	}
	return uint(u), true
}

func queryLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		return 0
	}
	return limit
}

// writeStream relays a generation stream as server-sent events until its
// terminal event. A failed write means the client left; closing the
// stream aborts generation.
func writeStream(c *gin.Context, s *stream.Stream) {
	defer s.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	enc := stream.NewEncoder(c.Writer)
	for ev := range s.Events() {
		if err := enc.Encode(ev); err != nil {
			return
		}
	}
}
