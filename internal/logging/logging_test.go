package logging

import (
	"bytes"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, log.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, log.WarnLevel, ParseLevel(" WARN "))
	assert.Equal(t, DefaultLevel, ParseLevel(""))
	assert.Equal(t, DefaultLevel, ParseLevel("loud"))
}

func TestSetupWritesPrefixedLines(t *testing.T) {
	defer Setup(nil, DefaultLevel)

	var buf bytes.Buffer
	Setup(&buf, log.WarnLevel)

	log.Info("hidden")
	log.WithField("prefix", "scene").Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "scene")
}
