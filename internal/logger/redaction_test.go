package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactor_Redact(t *testing.T) {
	r := NewRedactor()

	tests := []struct {
		name    string
		input   string
		leaks   []string
		remains []string
	}{
		{
			name:    "anthropic api key",
			input:   "key sk-ant-REDACTED end",
			leaks:   []string{"sk-ant-REDACTED"},
			remains: []string{"key ", " end"},
		},
		{
			name:  "bearer token",
			input: "Authorization: Bearer abc.def.ghi",
			leaks: []string{"Bearer abc.def.ghi"},
		},
		{
			name:  "env style api key",
			input: `API_KEY="0123456789abcdef0123"`,
			leaks: []string{"0123456789abcdef0123"},
		},
		{
			name:    "plain text untouched",
			input:   "resolved provider=anthropic model=claude-sonnet-4",
			remains: []string{"resolved provider=anthropic model=claude-sonnet-4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := r.Redact(tt.input)
			for _, leak := range tt.leaks {
				assert.NotContains(t, out, leak)
			}
			for _, keep := range tt.remains {
				assert.Contains(t, out, keep)
			}
		})
	}
}

func TestRedactor_AddPattern(t *testing.T) {
	r := NewRedactor()
	require.NoError(t, r.AddPattern(`corp-[0-9]{6}`))
	assert.Equal(t, "[REDACTED]", r.Redact("corp-123456"))

	assert.Error(t, r.AddPattern(`([`))
}

func TestRedactingWriter(t *testing.T) {
	r := NewRedactor()
	var buf bytes.Buffer
	w := r.Wrap(&buf)

	_, err := w.Write([]byte("secret=topsecretvalue"))
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "topsecretvalue")
}
