package logging

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	tests := []struct {
		name string
		min  slog.Leveler
		log  func(logger logr.Logger)
		want string
	}{
		{
			"info",
			slog.LevelInfo,
			func(logger logr.Logger) {
				logger.Info("something", "foo", "bar")
			},
			"level=INFO msg=something foo=bar\n",
		},
		{
			"masks sensitive keys",
			slog.LevelInfo,
			func(logger logr.Logger) {
				logger.Info("logging in", "username", "admin", "password", "password123")
			},
			"level=INFO msg=\"logging in\" username=admin password=***\n",
		},
		{
			"masks values",
			slog.LevelInfo,
			func(logger logr.Logger) {
				logger.Info("request", "url", "https://example.test/?password=hunter2&next=/", "auth", "Bearer abc.def")
			},
			"level=INFO msg=request url=\"https://example.test/?password=***&next=/\" auth=\"Bearer ***\"\n",
		},
		{
			"masks bound values",
			slog.LevelInfo,
			func(logger logr.Logger) {
				logger.WithValues("session_token", "abc").Info("restored")
			},
			"level=INFO msg=restored session_token=***\n",
		},
		{
			"hide verbose",
			slog.LevelInfo,
			func(logger logr.Logger) {
				logger.V(1).Info("should not see this", "foo", "bar")
			},
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got bytes.Buffer
			logger := logr.FromSlogHandler(Redact(slog.NewTextHandler(&got, newTestOptions(tt.min))))
			tt.log(logger)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestLoggerError(t *testing.T) {
	var got bytes.Buffer
	logger := logr.FromSlogHandler(Redact(slog.NewTextHandler(&got, newTestOptions(slog.LevelInfo))))

	logger.Error(errors.New("woops"), "scenario failed", "scenario", "TC001")

	assert.Contains(t, got.String(), "level=ERROR")
	assert.Contains(t, got.String(), `msg="scenario failed"`)
	assert.Contains(t, got.String(), "err=woops")
	assert.Contains(t, got.String(), "scenario=TC001")
}

func TestLoggerErrorIsRedacted(t *testing.T) {
	var got bytes.Buffer
	logger := logr.FromSlogHandler(Redact(slog.NewTextHandler(&got, newTestOptions(slog.LevelInfo))))

	err := fmt.Errorf("navigating: %w", errors.New(`Get "https://example.test/?password=hunter2": EOF`))
	logger.Error(err, "navigation failed")
	logger.Info("wrapped", "cause", err)

	assert.NotContains(t, got.String(), "hunter2")
	assert.Equal(t, 2, strings.Count(got.String(), "password=***"))
}

func TestRedactString(t *testing.T) {
	assert.Equal(t, `{"password": "***", "user": "admin"}`, RedactString(`{"password": "password123", "user": "admin"}`))
	assert.Equal(t, `{"token": "***"}`, RedactString(`{"Token":"abc"}`))
	assert.Equal(t, "nothing to hide", RedactString("nothing to hide"))
}

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter(Config{Format: "json", Verbosity: 1}, &buf)
	require.NoError(t, err)

	logger.V(1).Info("verbose", "password", "x")
	assert.Contains(t, buf.String(), `"msg":"verbose"`)
	assert.Contains(t, buf.String(), `"password":"***"`)

	_, err = NewWithWriter(Config{Format: "xml"}, &buf)
	assert.Error(t, err)
}

func newTestOptions(min slog.Leveler) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level: min,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Remove time.
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			return a
		},
	}
}
