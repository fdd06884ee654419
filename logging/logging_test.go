package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"", zap.InfoLevel},
		{"debug", zap.DebugLevel},
		{" WARN ", zap.WarnLevel},
		{"warning", zap.WarnLevel},
		{"error", zap.ErrorLevel},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
	_, err := ParseLevel("chatty")
	assert.Error(t, err)
}

func TestNewRejectsFormat(t *testing.T) {
	_, err := New(Options{Format: "xml"})
	assert.Error(t, err)
	_, err = New(Options{Level: "chatty"})
	assert.Error(t, err)
}

func TestNewJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")
	log, err := New(Options{Level: "warn", Format: "json", Output: []string{path}})
	require.NoError(t, err)

	log.Info("dropped")
	log.Warn("kept", zap.String("surface", "canvas"))
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, `"msg":"kept"`)
	assert.Contains(t, out, `"surface":"canvas"`)
	assert.Equal(t, 1, strings.Count(out, "\n"))
}
