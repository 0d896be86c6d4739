package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/stanstork/pollroom-api/internal/polls"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}

// kindStatus maps domain error kinds onto HTTP status codes.
var kindStatus = map[polls.Kind]int{
	polls.KindInvalidInput: http.StatusBadRequest,
	polls.KindNotFound:     http.StatusNotFound,
	polls.KindForbidden:    http.StatusForbidden,
	polls.KindConflict:     http.StatusConflict,
}

// requestLogger returns the request-scoped logger set by the logging
// middleware, or fallback when the request carries none.
func requestLogger(r *http.Request, fallback zerolog.Logger) *zerolog.Logger {
	if l := zerolog.Ctx(r.Context()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &fallback
}

// writeServiceError reports a polls.Service failure. Anything that is not a
// domain error is logged and hidden behind a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger zerolog.Logger, err error, msg string) {
	var pe *polls.Error
	if errors.As(err, &pe) {
		if status, ok := kindStatus[pe.Kind]; ok {
			writeError(w, status, pe.Code, pe.Message)
			return
		}
	}
	requestLogger(r, logger).Error().Err(err).Msg(msg)
	writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return false
	}
	return true
}
