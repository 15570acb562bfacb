package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ailawyer/internal/apperr"
)

const (
	CodeOK               = 0
	CodeBadRequest       = 40000
	CodeUnauthorized     = 40100
	CodeForbidden        = 40300
	CodeNotFound         = 40400
	CodeConflict         = 40900
	CodeInternalServer   = 50000
	CodeGenerationFormat = 50201
	CodeModelUnavailable = 50301
	CodeModelTimeout     = 50401
)

type APIResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(200, APIResponse{
		Code:    CodeOK,
		Message: "ok",
		Data:    data,
	})
}

func Error(c *gin.Context, httpStatus, code int, message string) {
	c.JSON(httpStatus, APIResponse{
		Code:    code,
		Message: message,
	})
}

// Status maps a service error onto an HTTP status and envelope code.
func Status(err error) (int, int) {
	switch {
	case errors.Is(err, apperr.ErrInvalidInput):
		return http.StatusBadRequest, CodeBadRequest
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden, CodeForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict, CodeConflict
	case errors.Is(err, apperr.ErrGenerationFormat):
		return http.StatusBadGateway, CodeGenerationFormat
	case errors.Is(err, apperr.ErrModelUnavailable):
		return http.StatusServiceUnavailable, CodeModelUnavailable
	case errors.Is(err, apperr.ErrModelTimeout):
		return http.StatusGatewayTimeout, CodeModelTimeout
	}
	return http.StatusInternalServerError, CodeInternalServer
}

// FromError writes err as an envelope. Internal errors get fallback as
// their message so that driver and network details stay in the logs.
func FromError(c *gin.Context, err error, fallback string) {
	status, code := Status(err)
	msg := err.Error()
	if code == CodeInternalServer {
		msg = fallback
	}
	Error(c, status, code, msg)
}
