// Package respond writes JSON bodies and maps domain errors to HTTP statuses.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocketly/internal/apperr"
)

type errorResponse struct {
	Error string `json:"error"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, errorResponse{Error: msg})
}

// Error maps validation failures to 400 and missing or foreign resources to 404.
// Anything else is logged and reported as a generic 500.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve *apperr.ValidationError
		nf *apperr.NotFoundError
		ta *apperr.TransactionAbortError
	)

	switch {
	case errors.As(err, &ve):
		Message(w, http.StatusBadRequest, ve.Message)
	case errors.As(err, &nf):
		Message(w, http.StatusNotFound, nf.Error())
	case errors.As(err, &ta):
		slog.Error("transaction aborted", "op", ta.Op, "error", ta.Err, "path", r.URL.Path)
		Message(w, http.StatusInternalServerError, "The operation could not be completed, please try again")
	default:
		slog.Error("request failed", "error", err, "method", r.Method, "path", r.URL.Path)
		Message(w, http.StatusInternalServerError, "Internal server error")
	}
}

// Decode reads a JSON body into dst.
func Decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Validation("Invalid request body")
	}

	return nil
}

// ID parses a path id. A malformed id cannot name an existing resource, so it is
// reported as not found.
func ID(raw, resource string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.NotFound(resource)
	}

	return id, nil
}

type MessageResponse struct {
	Message string `json:"message"`
}

// Deleted is the body of a successful DELETE.
func Deleted(resource string) MessageResponse {
	return MessageResponse{Message: resource + " deleted successfully"}
}
