package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_DefaultLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "")
	require.NoError(t, err)
	assert.Equal(t, zapcore.WarnLevel, l.Level())

	l.Info("hidden")
	l.Warn("shown", zap.String("run_id", "abc"))
	require.NoError(t, l.Sync())

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "abc")
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "error")
	require.NoError(t, err)

	require.NoError(t, l.SetLevel("DEBUG"))
	l.Debug("now visible")
	assert.Contains(t, buf.String(), "now visible")

	assert.Error(t, l.SetLevel("verbose"))
	assert.Equal(t, zapcore.DebugLevel, l.Level())
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(&bytes.Buffer{}, "loud")
	assert.Error(t, err)
}
