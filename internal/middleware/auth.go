package middleware

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/domain"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/service"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/pkg/errors"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/pkg/logger"
)

// ContextKey represents keys used in request context
type ContextKey string

const (
	// AdminContextKey is the key for the authenticated admin in context
	AdminContextKey ContextKey = "admin"
	// RequestIDContextKey is the key for request ID in context
	RequestIDContextKey ContextKey = "request_id"
)

// Request headers read by the middlewares
const (
	HeaderRequestID  = "X-Request-ID"
	HeaderLineUserID = "X-Line-User-Id"
	HeaderAPIKey     = "X-API-Key"
)

// AdminAuth admits callers that identify as an allow-listed LINE user, either
// with the X-Line-User-Id header or with an admin bearer token
func AdminAuth(authService service.AuthService, logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, appErr := resolveAdmin(r, authService)
			if appErr != nil {
				writeErrorResponse(w, r, appErr, logger)
				return
			}

			ctx := context.WithValue(r.Context(), AdminContextKey, claims)
			logger.WithField("user_id", claims.Subject).Debug("Admin authenticated successfully")
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAdmin stores the admin in context when valid credentials are
// present and lets every request through
func OptionalAdmin(authService service.AuthService, logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, appErr := resolveAdmin(r, authService)
			if appErr != nil {
				logger.WithField("reason", appErr.Message).Debug("Continuing without admin")
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), AdminContextKey, claims)))
		})
	}
}

func resolveAdmin(r *http.Request, authService service.AuthService) (*domain.AdminClaims, *errors.AppError) {
	if userID := strings.TrimSpace(r.Header.Get(HeaderLineUserID)); userID != "" {
		if !authService.IsAuthorized(userID) {
			return nil, errors.NewAuthorizationError("Not authorized to manage activities")
		}
		return &domain.AdminClaims{Subject: userID}, nil
	}

	token := bearerToken(r)
	if token == "" {
		return nil, errors.NewAuthenticationError("Authorization is required")
	}
	claims, err := authService.ValidateAdminToken(r.Context(), token)
	if err != nil {
		return nil, errors.FromError(err)
	}
	return claims, nil
}

// GetAdmin returns the admin stored by AdminAuth, if any
func GetAdmin(ctx context.Context) (*domain.AdminClaims, bool) {
	claims, ok := ctx.Value(AdminContextKey).(*domain.AdminClaims)
	return claims, ok && claims != nil
}

// CronAPIKey protects scheduler endpoints with a shared key taken from
// X-API-Key, a bearer token or the api_key query parameter
func CronAPIKey(apiKey string, logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey == "" {
				logger.Error("CRON_API_KEY not configured")
				writeErrorResponse(w, r, errors.NewInternalError("Server configuration error", nil), logger)
				return
			}

			provided := r.Header.Get(HeaderAPIKey)
			if provided == "" {
				provided = bearerToken(r)
			}
			if provided == "" {
				provided = r.URL.Query().Get("api_key")
			}

			if provided == "" {
				writeErrorResponse(w, r, errors.NewAuthenticationError("API key is required"), logger)
				return
			}
			if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
				logger.WithField("path", r.URL.Path).Warn("Invalid cron API key")
				writeErrorResponse(w, r, errors.NewAuthorizationError("Invalid API key"), logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequestID creates a middleware that adds a unique request ID to each request.
// An incoming X-Request-ID is kept.
func RequestID(logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(HeaderRequestID)
			if requestID == "" {
				requestID = uuid.NewString()
			}

			ctx := context.WithValue(r.Context(), RequestIDContextKey, requestID)
			w.Header().Set(HeaderRequestID, requestID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetRequestID returns the request id stored by RequestID
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDContextKey).(string)
	return id
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
}

// writeErrorResponse writes an error response to the client
func writeErrorResponse(w http.ResponseWriter, r *http.Request, appErr *errors.AppError, logger *logger.Logger) {
	logger.WithError(appErr).WithField("path", r.URL.Path).Info("Request rejected")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)

	response := errors.ErrorResponse{
		Success:   false,
		Error:     appErr.Type,
		Code:      appErr.Code(),
		Message:   appErr.Message,
		Details:   appErr.Details,
		RequestID: GetRequestID(r.Context()),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.WithError(err).Error("Failed to encode error response")
	}
}
