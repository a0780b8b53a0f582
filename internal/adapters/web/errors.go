package web

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"ledgerlite/internal/app"
	"ledgerlite/internal/core"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONStatus writes a JSON response with an explicit status code.
func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// respondError maps service-layer errors onto HTTP statuses and codes.
// Unrecognized errors are logged and hidden behind a generic 500.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *core.ValidationError
	var stErr *core.StateTransitionError
	var pwErr *core.PartialWriteError

	switch {
	case errors.As(err, &verr):
		writeError(w, r, verr.Error(), "VALIDATION_ERROR", http.StatusBadRequest)
	case errors.As(err, &stErr):
		writeError(w, r, stErr.Error(), "INVALID_TRANSITION", http.StatusConflict)
	case errors.Is(err, core.ErrForbidden):
		writeError(w, r, "you do not have access to this resource", "FORBIDDEN", http.StatusForbidden)
	case errors.Is(err, core.ErrNotFound):
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, core.ErrConflict):
		writeError(w, r, err.Error(), "CONFLICT", http.StatusConflict)
	case errors.As(err, &pwErr):
		log.Printf("partial write: %v", err)
		writeError(w, r, "the record could not be fully saved", "PARTIAL_WRITE", http.StatusInternalServerError)
	case errors.Is(err, app.ErrDraftingUnavailable):
		writeError(w, r, err.Error(), "DRAFTING_UNAVAILABLE", http.StatusServiceUnavailable)
	default:
		log.Printf("internal error: %v", err)
		writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}
