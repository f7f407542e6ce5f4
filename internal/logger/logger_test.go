package logger_test

import (
	"bytes"
	"testing"

	"db2graph/internal/logger"

	"github.com/stretchr/testify/assert"
)

func TestDebugOnlyWhenEnabled(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf, false)
	logger.Debugf("hidden %d", 1)
	logger.Infof("shown %d", 2)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "INFO: shown 2")

	buf.Reset()
	logger.SetOutput(&buf, true)
	logger.Debugf("visible")
	logger.Warnf("careful")
	assert.Contains(t, buf.String(), "DEBUG: ")
	assert.Contains(t, buf.String(), "visible")
	assert.Contains(t, buf.String(), "WARN: careful")
	assert.True(t, logger.DebugEnabled())
}
