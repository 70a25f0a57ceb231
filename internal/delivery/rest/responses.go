package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rpillai/dealwatch/internal/domain"
	"go.uber.org/zap"
)

type successEnvelope struct {
	Data any `json:"data"`
}

type errorEnvelope struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, successEnvelope{Data: data})
}

func writeError(w http.ResponseWriter, logger *zap.Logger, r *http.Request, err error) {
	status, code := classify(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		// Internal details go to the log, not the client.
		message = "internal error"
		logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}

	writeJSON(w, status, errorEnvelope{Error: apiError{Code: code, Message: message}})
}

// classify maps the domain error taxonomy onto HTTP statuses. Callers can
// tell invalid input, unknown resources, and flaky dependencies apart.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrUnavailable):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
