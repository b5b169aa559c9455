package line

import (
	"context"
	"time"
)

// Mode selects the retry budget for a send. Webhook sends must finish
// inside the inbound request; background sends come from reminder triggers.
type Mode int

const (
	ModeWebhook Mode = iota
	ModeBackground
)

func (m Mode) String() string {
	if m == ModeWebhook {
		return "webhook"
	}
	return "background"
}

const (
	webhookStep        = 250 * time.Millisecond
	webhookMaxDelay    = time.Second
	webhookMaxAttempts = 2

	backgroundBase     = time.Second
	backgroundMaxDelay = 30 * time.Second
)

// NextDelay returns how long to wait after the given failed attempt
// (1-based) before trying again.
func NextDelay(attempt int, mode Mode) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if mode == ModeWebhook {
		d := webhookStep * time.Duration(attempt)
		if d > webhookMaxDelay {
			d = webhookMaxDelay
		}
		return d
	}

	d := backgroundBase
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= backgroundMaxDelay {
			return backgroundMaxDelay
		}
	}
	return d
}

// maxAttempts caps the configured budget for the mode
func maxAttempts(configured int, mode Mode) int {
	if configured < 1 {
		configured = 1
	}
	if mode == ModeWebhook && configured > webhookMaxAttempts {
		return webhookMaxAttempts
	}
	return configured
}

// sleep waits for d or until ctx is done
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
