package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_FileOutput(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "logs", "agentplane.log")

	l, err := New(Config{Level: "debug", File: logPath})
	require.NoError(t, err)
	defer l.Close()

	lg := l.Get()
	lg.Info().Str("component", "test").Msg("hello")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
	assert.Contains(t, string(data), `"component":"test"`)
}

func TestNew_InvalidLevelDefaultsToInfo(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "test.log")

	l, err := New(Config{Level: "not-a-level", File: logPath})
	require.NoError(t, err)
	defer l.Close()

	lg := l.Get()
	lg.Debug().Msg("should not appear")
	lg.Info().Msg("should appear")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "should not appear")
	assert.Contains(t, string(data), "should appear")
}

func TestNew_RedactionMasksCredentials(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "test.log")

	l, err := New(Config{Level: "info", File: logPath, Redaction: true})
	require.NoError(t, err)
	defer l.Close()

	lg := l.Get()
	lg.Info().Str("env", "ANTHROPIC_API_KEY=sk-ant-REDACTED").Msg("descriptor built")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "sk-ant-REDACTED")
	assert.True(t, strings.Contains(string(data), "[REDACTED]"))
}
