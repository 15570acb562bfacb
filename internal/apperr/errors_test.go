package apperr

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrRetrievalEmpty, "retrieval_empty"},
		{fmt.Errorf("stream: %w", ErrModelTimeout), "model_timeout"},
		{fmt.Errorf("chat: %w", ErrModelUnavailable), "model_unavailable"},
		{fmt.Errorf("audit: %w", ErrGenerationFormat), "generation_format"},
		{ErrInvalidInput, "invalid_input"},
		{ErrNotFound, "not_found"},
		{ErrForbidden, "forbidden"},
		{ErrConflict, "conflict"},
		{context.Canceled, "internal"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Code(tt.err))
	}
}
