// Package textextract pulls plain text out of uploaded legal documents and
// contract templates.
package textextract

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"ailawyer/internal/apperr"
)

// Supported reports whether name has an extension FromFile understands.
func Supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf", ".docx", ".txt", ".md":
		return true
	}
	return false
}

// FromFile picks the extractor by file extension.
func FromFile(name string, b []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return PDF(b)
	case ".docx":
		return DOCX(b)
	case ".txt", ".md":
		if !utf8.Valid(b) {
			return "", fmt.Errorf("%s is not valid utf-8: %w", name, apperr.ErrInvalidInput)
		}
		return strings.TrimPrefix(string(b), "\ufeff"), nil
	default:
		return "", fmt.Errorf("unsupported file type %q: %w", filepath.Ext(name), apperr.ErrInvalidInput)
	}
}
