package api

import (
	"errors"
	"net/http"

	"github.com/okian/agenda/internal/domain/customevents"
)

// Sentinel kinds raised by the handlers themselves.
var (
	ErrBadRequest = errors.New("bad request")
	ErrMissingID  = errors.New("missing id")
)

// Error codes carried in the failure envelope.
const (
	codeBadRequest   = "bad_request"
	codeInvalidEvent = "invalid_event"
	codeNotFound     = "not_found"
	codeDuplicateID  = "duplicate_id"
	codeInternal     = "internal_error"
)

// classify maps a handler or dependency error to a status and code.
// Anything unrecognized, store write failures included, is a 500.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, ErrMissingID):
		return http.StatusBadRequest, codeBadRequest
	case errors.Is(err, customevents.ErrInvalidEvent):
		return http.StatusBadRequest, codeInvalidEvent
	case errors.Is(err, customevents.ErrNotFound):
		return http.StatusNotFound, codeNotFound
	case errors.Is(err, customevents.ErrDuplicateID):
		return http.StatusConflict, codeDuplicateID
	default:
		return http.StatusInternalServerError, codeInternal
	}
}
