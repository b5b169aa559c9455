package redis

import "fmt"

// KeyBuilder provides environment-aware Redis key building functionality
type KeyBuilder struct {
	prefix string // Environment prefix (staging/prod)
}

// NewKeyBuilder creates a new key builder with environment-based prefix
func NewKeyBuilder(environment string) *KeyBuilder {
	prefix := "prod"
	if environment == "development" || environment == "staging" {
		prefix = "staging"
	}

	return &KeyBuilder{
		prefix: prefix,
	}
}

// BuildKey constructs a Redis key with the environment prefix
func (kb *KeyBuilder) BuildKey(key string) string {
	return fmt.Sprintf("%s:%s", kb.prefix, key)
}

// GetPrefix returns the current environment prefix
func (kb *KeyBuilder) GetPrefix() string {
	return kb.prefix
}

// Webhook key builders
func (kb *KeyBuilder) KeyWebhookEvent(eventID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyWebhookEvent, eventID))
}

// Activity cache key builders
func (kb *KeyBuilder) KeyActivitiesRange(start, end string) string {
	return kb.BuildKey(fmt.Sprintf(KeyActivitiesRange, start, end))
}

func (kb *KeyBuilder) KeyActivitiesAll() string {
	return kb.BuildKey(KeyActivitiesAll)
}

func (kb *KeyBuilder) KeyActivitiesPattern() string {
	return kb.BuildKey(KeyActivitiesPrefix)
}
