package app

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLoggerRespectsLevelAndFormat(t *testing.T) {
	t.Run("json handler filters below the configured level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := newLogger("warn", "json", &buf)
		logger.Info("hidden")
		logger.Warn("shown")

		out := buf.String()
		assert.NotContains(t, out, "hidden")
		assert.Contains(t, out, `"msg":"shown"`)
	})

	t.Run("unrecognized level falls back to info on the text handler", func(t *testing.T) {
		var buf bytes.Buffer
		logger := newLogger("bogus", "text", &buf)
		logger.Debug("quiet")
		logger.Info("loud")

		out := buf.String()
		assert.NotContains(t, out, "quiet")
		assert.Contains(t, out, "msg=loud")
	})
}
