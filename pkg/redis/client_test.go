package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *Client) {
	t.Helper()
	mr := miniredis.RunT(t)

	client, err := NewClient("redis://"+mr.Addr(), "test", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return mr, client
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		expectError bool
	}{
		{
			name:        "Invalid URL",
			url:         "invalid://url",
			expectError: true,
		},
		{
			name:        "Empty URL",
			url:         "",
			expectError: true,
		},
		{
			name:        "Unreachable server",
			url:         "redis://127.0.0.1:1/0",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.url, "test", nil)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, client)
			}
		})
	}

	t.Run("Reachable server", func(t *testing.T) {
		_, client := setupTestRedis(t)
		assert.NotNil(t, client.KeyBuilder)
		assert.Equal(t, "prod", client.KeyBuilder.GetPrefix())
	})
}

func TestClient_GetSet(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		key       string
		value     string
		ttl       time.Duration
		expectTTL bool
	}{
		{name: "with ttl", key: "test:key1", value: "value1", ttl: time.Minute, expectTTL: true},
		{name: "without ttl", key: "test:key2", value: "value2", ttl: 0, expectTTL: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, client.Set(ctx, tt.key, tt.value, tt.ttl))

			got, err := client.Get(ctx, tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.value, got)

			if tt.expectTTL {
				assert.Greater(t, mr.TTL(tt.key), time.Duration(0))
			} else {
				assert.Equal(t, time.Duration(0), mr.TTL(tt.key))
			}
		})
	}

	_, err := client.Get(ctx, "test:missing")
	assert.ErrorIs(t, err, Nil)
}

func TestClient_SetNX(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()
	key := client.KeyBuilder.KeyWebhookEvent("01H0EVENT")

	first, err := client.SetNX(ctx, key, "1", time.Hour)
	require.NoError(t, err)
	assert.True(t, first)

	second, err := client.SetNX(ctx, key, "1", time.Hour)
	require.NoError(t, err)
	assert.False(t, second)

	mr.FastForward(2 * time.Hour)

	third, err := client.SetNX(ctx, key, "1", time.Hour)
	require.NoError(t, err)
	assert.True(t, third)
}

func TestClient_Delete(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	mr.Set("test:key1", "value1")
	mr.Set("test:key2", "value2")

	require.NoError(t, client.Delete(ctx, "test:key1", "test:key2"))
	assert.False(t, mr.Exists("test:key1"))
	assert.False(t, mr.Exists("test:key2"))

	// Deleting a missing key is not an error
	assert.NoError(t, client.Delete(ctx, "test:nonexistent"))
}

func TestClient_InvalidatePattern(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()
	kb := client.KeyBuilder

	mr.Set(kb.KeyActivitiesAll(), "[]")
	mr.Set(kb.KeyActivitiesRange("2025-01-01", "2025-01-31"), "[]")
	mr.Set(kb.KeyActivitiesRange("2025-02-01", "2025-02-28"), "[]")
	mr.Set(kb.KeyWebhookEvent("keep"), "1")

	removed, err := client.InvalidatePattern(ctx, kb.KeyActivitiesPattern())
	require.NoError(t, err)
	assert.Equal(t, 3, removed)
	assert.False(t, mr.Exists(kb.KeyActivitiesAll()))
	assert.True(t, mr.Exists(kb.KeyWebhookEvent("keep")))
}

func TestClient_Health(t *testing.T) {
	_, client := setupTestRedis(t)

	assert.NoError(t, client.Health(context.Background()))
}
