package httpx

import (
	"errors"
	"net/http"

	"github.com/pennyledger/pennyledger/internal/shared"
)

// RespondError maps domain errors onto the response envelope. Unexpected
// errors are surfaced as a generic 500; the internal message is never echoed
// back to the client.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Error(w, http.StatusNotFound, shared.ErrNotFound.Error())
	case errors.Is(err, shared.ErrInvalidCredentials):
		Error(w, http.StatusUnauthorized, shared.ErrInvalidCredentials.Error())
	case errors.Is(err, shared.ErrInvalidReference):
		Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, shared.ErrInvalidInput):
		Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, shared.ErrDuplicate):
		Error(w, http.StatusConflict, shared.ErrDuplicate.Error())
	default:
		Error(w, http.StatusInternalServerError, "internal error")
	}
}
