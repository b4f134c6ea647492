package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"gatewright-hq/gatewright/pkg/anchor"
	"gatewright-hq/gatewright/pkg/gate"
	"gatewright-hq/gatewright/pkg/server/middleware"
	"gatewright-hq/gatewright/pkg/store"
)

// errorBody is the wire shape of one API error.
type errorBody struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// errorResponse is the error envelope returned by every endpoint.
type errorResponse struct {
	Error errorBody `json:"error"`
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps a domain error to an HTTP status and writes the error
// envelope. Unrecognized errors become opaque 500s; the detail goes to the
// log, correlated by request ID.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		status = http.StatusInternalServerError
		body   = errorBody{Type: "internal_error", Message: "An internal error occurred."}
	)

	var anchorErr *anchor.ValidationError
	var gateErr *gate.ValidationError
	var transErr *gate.TransitionError

	switch {
	case store.IsNotFound(err):
		status = http.StatusNotFound
		body = errorBody{Type: "not_found", Message: err.Error()}
	case store.IsConflict(err):
		status = http.StatusConflict
		body = errorBody{Type: "conflict", Message: err.Error()}
	case errors.As(err, &anchorErr):
		status = http.StatusUnprocessableEntity
		body = errorBody{Type: "validation_error", Message: anchorErr.Error()}
	case errors.As(err, &gateErr):
		status = http.StatusUnprocessableEntity
		body = errorBody{Type: "validation_error", Message: gateErr.Error()}
	case errors.As(err, &transErr):
		status = http.StatusUnprocessableEntity
		body = errorBody{Type: "transition_error", Message: transErr.Error()}
	default:
		slog.ErrorContext(r.Context(), "request failed",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
		)
	}

	writeJSON(w, status, errorResponse{Error: body})
}

// writeBadRequest reports a malformed request body or parameter.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Error: errorBody{Type: "bad_request", Message: message},
	})
}

// decodeJSON decodes the request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
