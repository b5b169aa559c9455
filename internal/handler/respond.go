package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/middleware"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/pkg/errors"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/pkg/logger"
)

// maxBodyBytes bounds JSON and webhook request bodies
const maxBodyBytes = 1 << 20

// Envelope is the success response shape
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Count   *int        `json:"count,omitempty"`
	Message string      `json:"message,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondData(w http.ResponseWriter, status int, data interface{}) {
	respondJSON(w, status, Envelope{Success: true, Data: data})
}

func respondList(w http.ResponseWriter, data interface{}, count int) {
	respondJSON(w, http.StatusOK, Envelope{Success: true, Data: data, Count: &count})
}

// respondError renders err as the JSON error envelope. Server side
// failures are logged with the request id.
func respondError(w http.ResponseWriter, r *http.Request, err error, log *logger.Logger) {
	appErr := errors.FromError(err)
	requestID := middleware.GetRequestID(r.Context())

	entry := log.WithError(err).WithFields(map[string]interface{}{
		"request_id": requestID,
		"path":       r.URL.Path,
		"status":     appErr.StatusCode,
	})
	if appErr.StatusCode >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Debug("Request rejected")
	}

	message := appErr.Message
	if appErr.Type == errors.ErrorTypeInternal {
		message = "Internal server error"
	}

	respondJSON(w, appErr.StatusCode, errors.ErrorResponse{
		Success:   false,
		Error:     appErr.Type,
		Code:      appErr.Code(),
		Message:   message,
		Details:   appErr.Details,
		RequestID: requestID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func decodeJSON(r *http.Request, w http.ResponseWriter, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.NewValidationError("Invalid request body", map[string]interface{}{"reason": err.Error()})
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewValidationError("ID 必須是正整數。\nThe id must be a positive number.", map[string]interface{}{"id": chi.URLParam(r, "id")})
	}
	return id, nil
}

// MethodNotAllowed renders 405 responses for the router
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusMethodNotAllowed, errors.ErrorResponse{
		Success:   false,
		Error:     errors.ErrorTypeValidation,
		Code:      "METHOD_NOT_ALLOWED",
		Message:   "Method " + r.Method + " not allowed",
		RequestID: middleware.GetRequestID(r.Context()),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// NotFound renders unknown routes as the JSON error envelope
func NotFound(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusNotFound, errors.ErrorResponse{
		Success:   false,
		Error:     errors.ErrorTypeNotFound,
		Code:      "NOT_FOUND",
		Message:   "Endpoint not found",
		RequestID: middleware.GetRequestID(r.Context()),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
