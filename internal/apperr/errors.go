// Package apperr holds the error kinds shared by every layer of the service.
// Callers match them with errors.Is; wrapping with fmt.Errorf keeps context.
package apperr

import "errors"

var (
	// ErrRetrievalEmpty means no chunk passed the similarity threshold.
	// It is never fatal: the answer proceeds ungrounded and says so.
	ErrRetrievalEmpty = errors.New("no relevant legal sources found")

	ErrModelUnavailable = errors.New("language model unavailable")
	ErrModelTimeout     = errors.New("language model timed out")

	// ErrGenerationFormat marks structured model output that could not be parsed.
	ErrGenerationFormat = errors.New("model output is not in the expected format")

	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("access denied")
	ErrConflict     = errors.New("already exists")
)

// Code returns the stable machine-readable name of a taxonomy error.
// Unknown errors map to "internal".
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrRetrievalEmpty):
		return "retrieval_empty"
	case errors.Is(err, ErrModelUnavailable):
		return "model_unavailable"
	case errors.Is(err, ErrModelTimeout):
		return "model_timeout"
	case errors.Is(err, ErrGenerationFormat):
		return "generation_format"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "internal"
	}
}
