package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_Levels(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Options{Level: "info", NoColor: true, Writer: &buf})
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("use {{payment_id}} as collection variable", zap.String("value", "pay_123"))
	require.NoError(t, log.Sync())

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "pay_123")
}

func TestNew_DefaultsToWarn(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Options{NoColor: true, Writer: &buf})
	require.NoError(t, err)

	log.Info("quiet")
	log.Warn("loud")

	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "loud")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(Options{Level: "chatty"})
	assert.Error(t, err)
}

func TestContextLogger(t *testing.T) {
	_, err := LoggerFromContext(context.Background())
	assert.ErrorIs(t, err, ErrNoLoggerInContext)
	assert.NotNil(t, FromContext(context.Background()))

	log := zap.NewExample()
	ctx := ContextWithLogger(context.Background(), log)
	got, err := LoggerFromContext(ctx)
	require.NoError(t, err)
	assert.Same(t, log, got)
}
