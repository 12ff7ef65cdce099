package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSONLogger(&buf, false)

	log.Info("test message", slog.String("key", "value"), slog.Int64("product_id", 42))

	var logEntry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry), "output: %s", buf.String())

	assert.Equal(t, "test message", logEntry["msg"])
	assert.Equal(t, "value", logEntry["key"])
	assert.Equal(t, float64(42), logEntry["product_id"])
	assert.Equal(t, "INFO", logEntry["level"])
	assert.Contains(t, logEntry, "time")
}

func TestNewJSONLogger_DebugLevel(t *testing.T) {
	t.Run("debug entries are dropped by default", func(t *testing.T) {
		var buf bytes.Buffer
		NewJSONLogger(&buf, false).Debug("hidden")
		assert.Empty(t, buf.String())
	})

	t.Run("debug mode keeps debug entries", func(t *testing.T) {
		var buf bytes.Buffer
		NewJSONLogger(&buf, true).Debug("shown")
		assert.Contains(t, buf.String(), `"level":"DEBUG"`)
	})
}

// TestInitJSONLogger_OutputFormat verifies that InitJSONLogger sets up
// JSON formatted output for slog.
func TestInitJSONLogger_OutputFormat(t *testing.T) {
	oldStdout := os.Stdout
	oldDefault := slog.Default()
	defer slog.SetDefault(oldDefault)

	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	InitJSONLogger(false)
	slog.Info("test initialization", slog.String("service", "test"), slog.Int("port", 8080))

	w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	_, err = buf.ReadFrom(r)
	require.NoError(t, err)

	var logEntry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry), "output: %s", buf.String())

	assert.Equal(t, "test initialization", logEntry["msg"])
	assert.Equal(t, "test", logEntry["service"])
	assert.Equal(t, float64(8080), logEntry["port"])
}
