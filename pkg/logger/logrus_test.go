package logger

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogrusContextHook(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: logrus.DebugLevel, Console: true})
	log.Out = &buf
	log.Formatter = &logrus.JSONFormatter{}

	log.WithField("module", "test").Info("запись")

	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, `"source":"logrus_test.go:`)
	assert.Contains(t, out, `"module":"test"`)
}

func TestNew_Level(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: logrus.WarnLevel})
	log.Out = &buf

	log.Info("не попадёт")
	assert.Empty(t, buf.String())

	log.Warn("попадёт")
	assert.Contains(t, buf.String(), "попадёт")
}

func TestDiscard(t *testing.T) {
	log := Discard()
	log.Error("в никуда")
	assert.NotNil(t, log.Out)
}
