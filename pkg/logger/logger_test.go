package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLogLevel(tt.input))
		})
	}
}

func TestLogger_WritesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("debug", &buf)

	log.Named("reminder").
		WithField("type", "monthly").
		WithFields(map[string]interface{}{"groups": 3}).
		WithError(errors.New("boom")).
		Info("reminder finished")
	require.NoError(t, log.Sync())

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "reminder finished", entry["message"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "reminder", entry["logger"])
	assert.Equal(t, "monthly", entry["type"])
	assert.Equal(t, float64(3), entry["groups"])
	assert.Equal(t, "boom", entry["error"])
	assert.Contains(t, entry, "timestamp")
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("warn", &buf)

	log.Info("dropped")
	require.NoError(t, log.Sync())
	assert.Empty(t, buf.String())

	log.Warn("kept")
	require.NoError(t, log.Sync())
	assert.Contains(t, buf.String(), "kept")
}

func TestNewNop(t *testing.T) {
	log := NewNop()
	assert.NotPanics(t, func() {
		log.WithField("k", "v").Error("ignored")
	})
}

func TestNew_Formats(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("info", WithFormat("console"), WithWriter(&buf))
	require.NoError(t, err)

	log.Info("console line")
	require.NoError(t, log.Sync())
	assert.Contains(t, buf.String(), "console line")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))

	_, err = New("info", WithFormat("xml"))
	assert.Error(t, err)
}
