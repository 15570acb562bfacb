package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ailawyer/internal/apperr"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   int
	}{
		{fmt.Errorf("category: %w", apperr.ErrInvalidInput), http.StatusBadRequest, CodeBadRequest},
		{apperr.ErrForbidden, http.StatusForbidden, CodeForbidden},
		{fmt.Errorf("session 9: %w", apperr.ErrNotFound), http.StatusNotFound, CodeNotFound},
		{apperr.ErrConflict, http.StatusConflict, CodeConflict},
		{apperr.ErrGenerationFormat, http.StatusBadGateway, CodeGenerationFormat},
		{apperr.ErrModelUnavailable, http.StatusServiceUnavailable, CodeModelUnavailable},
		{apperr.ErrModelTimeout, http.StatusGatewayTimeout, CodeModelTimeout},
		{errors.New("dial tcp: refused"), http.StatusInternalServerError, CodeInternalServer},
	}
	for _, tc := range cases {
		status, code := Status(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.code, code, tc.err.Error())
	}
}

func TestFromErrorHidesInternalDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	FromError(c, errors.New("Error 1045: Access denied for user 'root'"), "list sessions failed")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, CodeInternalServer, body.Code)
	assert.Equal(t, "list sessions failed", body.Message)
}
