package handlers

import (
	"context"
	"course-route-service/internal/domain"
	"course-route-service/internal/logging"
	"course-route-service/internal/ports"
	"course-route-service/internal/validation"
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"
)

// maxBodyBytes caps request bodies; a six-place request is well under 8 KiB.
const maxBodyBytes = 64 << 10

type errorResponse struct {
	Error   string                  `json:"error"`
	Details []validation.FieldError `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("encode response failed")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, errorResponse{Error: msg})
}

// decodeJSON reads exactly one JSON object and rejects unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}
	return true
}

// writeServiceError maps service errors onto status codes. Internal errors
// are logged and never echoed to the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.Error
	var derr *domain.ValidationError

	switch {
	case errors.As(err, &verr):
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: "validation failed", Details: verr.Fields})
	case errors.As(err, &derr):
		writeError(w, r, http.StatusBadRequest, derr.Reason)
	case errors.Is(err, ports.ErrPlaceNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		logging.Ctx(r.Context()).Warn().Err(err).Msg("request timed out")
		writeError(w, r, http.StatusGatewayTimeout, "request timed out")
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("request failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}
