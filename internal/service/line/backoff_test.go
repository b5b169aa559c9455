package line

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextDelay(t *testing.T) {
	tests := []struct {
		name    string
		attempt int
		mode    Mode
		want    time.Duration
	}{
		{"webhook first", 1, ModeWebhook, 250 * time.Millisecond},
		{"webhook second", 2, ModeWebhook, 500 * time.Millisecond},
		{"webhook capped", 10, ModeWebhook, time.Second},
		{"background first", 1, ModeBackground, time.Second},
		{"background second", 2, ModeBackground, 2 * time.Second},
		{"background third", 3, ModeBackground, 4 * time.Second},
		{"background capped", 12, ModeBackground, 30 * time.Second},
		{"zero attempt treated as first", 0, ModeBackground, time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextDelay(tt.attempt, tt.mode))
		})
	}
}

func TestMaxAttempts(t *testing.T) {
	assert.Equal(t, 2, maxAttempts(3, ModeWebhook))
	assert.Equal(t, 1, maxAttempts(1, ModeWebhook))
	assert.Equal(t, 5, maxAttempts(5, ModeBackground))
	assert.Equal(t, 1, maxAttempts(0, ModeBackground))
}

func TestSleep_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := sleep(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}
