package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/metas/internal/apperr"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error" validate:"required"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	return true
}

// writeError maps service errors to HTTP responses.
func writeError(w http.ResponseWriter, op string, err error) {
	var verr *apperr.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody(verr.Message))
	case errors.Is(err, apperr.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorBody("AI suggestions are not configured"))
	case errors.Is(err, apperr.ErrUpstream):
		writeJSON(w, http.StatusBadGateway, errorBody("could not get suggestions, please try again"))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
