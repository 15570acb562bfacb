package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactMasksSecretKeys(t *testing.T) {
	out := redact([]interface{}{"api_key", "sk-123", "source", "civil.docx", "JWT_Token", "abc"})
	assert.Equal(t, []interface{}{"api_key", "[REDACTED]", "source", "civil.docx", "JWT_Token", "[REDACTED]"}, out)
}

func TestRedactKeepsOddTrailingValue(t *testing.T) {
	out := redact([]interface{}{"password", "x", "dangling"})
	assert.Equal(t, []interface{}{"password", "[REDACTED]", "dangling"}, out)
}

func TestNopDoesNotPanic(t *testing.T) {
	l := Nop().With("component", "test")
	l.Info("hello", "k", 1)
	l.Sync()
}
