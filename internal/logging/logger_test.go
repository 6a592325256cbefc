package logging

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(level LogLevel, format string) (*SteadLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{
		Level:  level,
		Format: format,
		Output: &buf,
	})
	return logger, &buf
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel("warn"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("info"))
	assert.Equal(t, LevelInfo, ParseLevel("anything else"))
}

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", LogLevel(9).String())
}

func TestLevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger(LevelWarn, "text")
	ctx := context.Background()

	logger.Debug(ctx, "too quiet")
	logger.Info(ctx, "still too quiet")
	assert.Empty(t, buf.String())

	logger.Warn(ctx, nil, "loud enough")
	assert.Contains(t, buf.String(), "loud enough")
}

func TestStructuredFields(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, "json")
	ctx := context.Background()

	logger.Info(ctx, "compilation finished", "mode", "advanced", "islands", 3)

	out := buf.String()
	assert.Contains(t, out, `"msg":"compilation finished"`)
	assert.Contains(t, out, `"mode":"advanced"`)
	assert.Contains(t, out, `"islands":3`)
}

func TestErrorField(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, "json")

	logger.Error(context.Background(), fmt.Errorf("disk on fire"), "compile failed")
	assert.Contains(t, buf.String(), `"error":"disk on fire"`)
}

func TestWithComponent(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, "json")

	child := logger.WithComponent("compiler")
	child.Info(context.Background(), "ready")
	assert.Contains(t, buf.String(), `"component":"compiler"`)
}

func TestWithPersistentFields(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, "json")

	child := logger.With("template", "pixel-smith")
	child.Info(context.Background(), "first")
	child.Info(context.Background(), "second")

	out := buf.String()
	require.Contains(t, out, `"template":"pixel-smith"`)
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte(`"template":"pixel-smith"`)))

	// The parent logger stays untouched.
	buf.Reset()
	logger.Info(context.Background(), "parent")
	assert.NotContains(t, buf.String(), "pixel-smith")
}
