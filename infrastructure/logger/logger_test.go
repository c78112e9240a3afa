package logger

import (
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestConfigure(t *testing.T) {
	t.Cleanup(func() { Configure("json", "debug") })

	Configure("text", "warn")
	assert.IsType(t, &log.TextFormatter{}, logger.Formatter)
	assert.Equal(t, log.WarnLevel, logger.GetLevel())

	Configure("json", "not-a-level")
	assert.IsType(t, &log.JSONFormatter{}, logger.Formatter)
	assert.Equal(t, log.WarnLevel, logger.GetLevel())
}

func TestGetLogger_CallerFields(t *testing.T) {
	entry := GetLogger()
	assert.Contains(t, entry.Data["function"], "TestGetLogger_CallerFields")
	assert.Contains(t, entry.Data["file"], "logger_test.go")
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "AQXabcdefg...", MaskToken("AQXabcdefghijklmnop"))
	assert.Equal(t, "***", MaskToken("abc"))
	assert.Equal(t, "", MaskToken(""))
}
