package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWithWriter_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, int(slog.LevelInfo))

	l.Debug("hidden", "k", "v")
	assert.Empty(t, buf.String())

	l.Info("User service: user created", "user_id", 1)
	out := buf.String()
	assert.Contains(t, out, "User service: user created")
	assert.Contains(t, out, "user_id=1")
}
