package redis

import (
	"testing"
)

func TestKeyBuilder_Environment_Prefixes(t *testing.T) {
	tests := []struct {
		name           string
		environment    string
		expectedPrefix string
	}{
		{
			name:           "Production environment should use prod prefix",
			environment:    "production",
			expectedPrefix: "prod",
		},
		{
			name:           "Development environment should use staging prefix",
			environment:    "development",
			expectedPrefix: "staging",
		},
		{
			name:           "Staging environment should use staging prefix",
			environment:    "staging",
			expectedPrefix: "staging",
		},
		{
			name:           "Unknown environment should default to prod prefix",
			environment:    "unknown",
			expectedPrefix: "prod",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kb := NewKeyBuilder(tt.environment)
			if kb.GetPrefix() != tt.expectedPrefix {
				t.Errorf("NewKeyBuilder(%s).GetPrefix() = %s, want %s",
					tt.environment, kb.GetPrefix(), tt.expectedPrefix)
			}
		})
	}
}

func TestKeyBuilder_KeyGeneration(t *testing.T) {
	kb := NewKeyBuilder("production")

	tests := []struct {
		name     string
		method   func() string
		expected string
	}{
		{
			name:     "WebhookEvent key",
			method:   func() string { return kb.KeyWebhookEvent("01FZ74A0TDDPYRVKNK77XKC3ZR") },
			expected: "prod:line:event:01FZ74A0TDDPYRVKNK77XKC3ZR",
		},
		{
			name:     "ActivitiesRange key",
			method:   func() string { return kb.KeyActivitiesRange("2025-01-01", "2025-01-31") },
			expected: "prod:calendar:activities:2025-01-01:2025-01-31",
		},
		{
			name:     "ActivitiesAll key",
			method:   kb.KeyActivitiesAll,
			expected: "prod:calendar:activities:all",
		},
		{
			name:     "ActivitiesPattern key",
			method:   kb.KeyActivitiesPattern,
			expected: "prod:calendar:activities:*",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.method()
			if result != tt.expected {
				t.Errorf("%s = %s, want %s", tt.name, result, tt.expected)
			}
		})
	}
}

func TestKeyBuilder_EnvironmentSeparation(t *testing.T) {
	prodKey := NewKeyBuilder("production").KeyActivitiesAll()
	stagingKey := NewKeyBuilder("development").KeyActivitiesAll()

	if prodKey == stagingKey {
		t.Errorf("Production and staging keys should be different. Got: prod=%s, staging=%s",
			prodKey, stagingKey)
	}
	if stagingKey != "staging:calendar:activities:all" {
		t.Errorf("Staging key = %s, want staging:calendar:activities:all", stagingKey)
	}
}
