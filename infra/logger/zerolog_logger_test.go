package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerMethods(t *testing.T) {
	assert.NoError(t, os.Setenv("APP_ENV", "dev"))
	defer func() { assert.NoError(t, os.Unsetenv("APP_ENV")) }()
	l := NewZerologLogger("test")
	if l == nil {
		t.Fatalf("nil logger")
	}
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
	l.Errorw("error", errors.New("boom"), map[string]any{"k": 2})
}

func TestZerologLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	l := newZerolog(&buf, "scheduler", "debug")
	l.Errorw("cycle failed", errors.New("store down"), map[string]any{"horizon_days": 7})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "scheduler", line["component"])
	assert.Equal(t, "store down", line["error"])
	assert.Equal(t, "cycle failed", line["message"])
	assert.EqualValues(t, 7, line["horizon_days"])
}

func TestZerologLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	l := newZerolog(&buf, "api", "warn")
	l.Infof("hidden")
	l.Debugw("hidden", nil)
	assert.Zero(t, buf.Len())
	l.Warnf("shown")
	assert.True(t, strings.Contains(buf.String(), "shown"))

	buf.Reset()
	l = newZerolog(&buf, "api", "not-a-level")
	l.Debugf("hidden")
	l.Infof("visible")
	assert.Contains(t, buf.String(), "visible")
	assert.NotContains(t, buf.String(), "hidden")
}

func TestSetOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stdout)
	SetOutput(nil)

	New("report").Infof("computed %d routes", 3)
	assert.Contains(t, buf.String(), `"component":"report"`)
	assert.Contains(t, buf.String(), "computed 3 routes")
}
