package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/domain"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/service"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/pkg/errors"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/pkg/logger"
)

// Service implements the AuthService interface
type Service struct {
	admins    map[string]bool
	jwtSecret []byte
	now       func() time.Time
	logger    *logger.Logger
}

// NewService creates a new auth service. An empty adminIDs list lets every
// LINE user manage the calendar.
func NewService(adminIDs []string, jwtSecret string, logger *logger.Logger) service.AuthService {
	return newService(adminIDs, jwtSecret, time.Now, logger)
}

func newService(adminIDs []string, jwtSecret string, now func() time.Time, logger *logger.Logger) *Service {
	admins := make(map[string]bool, len(adminIDs))
	for _, id := range adminIDs {
		if id = strings.TrimSpace(id); id != "" {
			admins[id] = true
		}
	}
	return &Service{
		admins:    admins,
		jwtSecret: []byte(jwtSecret),
		now:       now,
		logger:    logger.Named("auth"),
	}
}

// IsAuthorized reports whether userID may run mutating commands
func (s *Service) IsAuthorized(userID string) bool {
	if len(s.admins) == 0 {
		return true
	}
	return s.admins[userID]
}

// ValidateAdminToken validates an HS256 admin JWT whose subject is an
// allow-listed LINE user id
func (s *Service) ValidateAdminToken(ctx context.Context, tokenString string) (*domain.AdminClaims, error) {
	if len(s.jwtSecret) == 0 {
		s.logger.Error("ADMIN_JWT_SECRET not configured")
		return nil, errors.NewAuthenticationError("JWT validation not configured")
	}
	if !isJWTToken(tokenString) {
		return nil, errors.NewAuthenticationError("Unrecognized token format")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Verify the signing algorithm
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		s.logger.WithError(err).Warn("Failed to parse/validate admin token")
		return nil, errors.NewAuthenticationError("Invalid JWT token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.NewAuthenticationError("Invalid JWT token")
	}

	sub := getStringValue(claims, "sub")
	if sub == "" {
		return nil, errors.NewAuthenticationError("Invalid JWT token: no user identifier")
	}
	if !s.IsAuthorized(sub) {
		s.logger.WithField("user_id", sub).Warn("Admin token subject not in allow-list")
		return nil, errors.NewAuthorizationError("Not authorized to manage activities")
	}

	result := &domain.AdminClaims{Subject: sub}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		result.ExpiresAt = exp.Time
	}
	return result, nil
}

// IssueAdminToken signs an admin token for subject valid for ttl
func (s *Service) IssueAdminToken(subject string, ttl time.Duration) (string, error) {
	if len(s.jwtSecret) == 0 {
		return "", errors.NewInternalError("JWT signing not configured", nil)
	}
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})
	return token.SignedString(s.jwtSecret)
}

// isJWTToken checks for the three dot-separated segments of a compact JWT
func isJWTToken(token string) bool {
	return token != "" && strings.Count(token, ".") == 2
}

func getStringValue(m map[string]interface{}, key string) string {
	if val, ok := m[key].(string); ok {
		return val
	}
	return ""
}
