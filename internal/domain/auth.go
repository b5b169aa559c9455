package domain

import "time"

// AdminClaims identifies the caller of an admin API request
type AdminClaims struct {
	Subject   string    `json:"sub"`
	ExpiresAt time.Time `json:"exp,omitempty"`
}
