package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/pkordes/clamcard/internal/domain"
)

// Error codes carried in ErrorDetail.Code.
const (
	codeNotFound         = "not_found"
	codeValidation       = "validation_error"
	codeJourneyConflict  = "journey_conflict"
	codeNoJourney        = "no_journey_in_progress"
	codePayloadTooLarge  = "payload_too_large"
	codeMethodNotAllowed = "method_not_allowed"
	codeInternal         = "internal_error"
)

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an ErrorResponse.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// requestError writes a 400 for a request rejected before reaching the
// service layer (e.g. malformed id or body).
func requestError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, codeValidation, message)
}

// handleError maps a service error to its HTTP status. notFound is the
// message used for domain.ErrNotFound because the handler is the layer that
// knows what was being looked up. Unknown errors are logged and become 500.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, notFound)
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidArgument):
		writeError(w, http.StatusUnprocessableEntity, codeValidation, unwrapMessage(err))
	case errors.Is(err, domain.ErrJourneyConflict):
		writeError(w, http.StatusConflict, codeJourneyConflict, domain.ErrJourneyConflict.Error())
	case errors.Is(err, domain.ErrNoJourneyInProgress):
		writeError(w, http.StatusConflict, codeNoJourney, domain.ErrNoJourneyInProgress.Error())
	default:
		s.log.ErrorContext(r.Context(), "unhandled error",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, codeInternal, "internal server error")
	}
}

// unwrapMessage extracts the human-readable part from a wrapped sentinel error.
// e.g. "service.CatalogService.UpsertZone: validation error: code is required" → "code is required"
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, sentinel := range []error{domain.ErrValidation, domain.ErrInvalidArgument} {
		marker := sentinel.Error() + ": "
		if i := strings.LastIndex(msg, marker); i >= 0 && len(msg) > i+len(marker) {
			return msg[i+len(marker):]
		}
	}
	return msg
}
