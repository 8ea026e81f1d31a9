package gateway

import (
	"errors"
	"net/http"

	"github.com/kailas-cloud/patternengine/internal/domain"
)

// classifyErrorToWire maps a Classify error to the wire error_message and
// HTTP status the Gateway must report, per the error kind's designated code.
func classifyErrorToWire(err error) (message string, status int) {
	switch {
	case errors.Is(err, domain.ErrEmptyText):
		return "empty_text", http.StatusBadRequest
	case errors.Is(err, domain.ErrInputInvalid):
		return "input_invalid", http.StatusBadRequest
	case errors.Is(err, domain.ErrIndexEmpty):
		return "index_empty", http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrDeadlineExceeded):
		return "deadline_exceeded", http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrOverloaded):
		return "overloaded", http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrSearchFailure):
		return "search_failure", http.StatusInternalServerError
	case errors.Is(err, domain.ErrEmbeddingFailure):
		return "embedding_failure", http.StatusInternalServerError
	case errors.Is(err, domain.ErrUnknownPattern):
		return "search_failure", http.StatusInternalServerError
	default:
		return "internal_error", http.StatusInternalServerError
	}
}
