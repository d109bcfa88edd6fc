package log

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatterPattern(t *testing.T) {
	f := &formatter{pattern: "%time [%level][%field] %msg\n", time: "2006-01-02"}
	entry := &logrus.Entry{
		Time:    time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "plugin failed",
		Data:    logrus.Fields{"plugin": "upcase", "code": 3},
	}

	out, err := f.Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-06 [warning][code=3,plugin=upcase] plugin failed\n", string(out))
}

func TestFormatterCaller(t *testing.T) {
	f := &formatter{pattern: "%caller %func", time: DefaultTimeLayout}
	entry := &logrus.Entry{
		Caller: &runtime.Frame{
			File:     "/src/protosy/internal/plugin/registry.go",
			Line:     42,
			Function: "firestige.xyz/protosy/internal/plugin.(*Registry).Load",
		},
	}
	entry.Logger = logrus.New()
	entry.Logger.SetReportCaller(true)

	out, err := f.Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "plugin/registry.go:42 Load", string(out))
}

func TestFormatterWithoutCaller(t *testing.T) {
	f := &formatter{pattern: "%caller|%func", time: DefaultTimeLayout}
	out, err := f.Format(&logrus.Entry{})
	require.NoError(t, err)
	assert.Equal(t, "unknown|unknown", string(out))
}

func TestGoroutineID(t *testing.T) {
	id := getGoroutineID()
	assert.NotEmpty(t, id)
	assert.NotEqual(t, "unknown", id)
}

func TestNewWithFileAppender(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "protosy.log")

	l, err := New(&LoggerConfig{
		Level:   "debug",
		Pattern: "[%level] %msg\n",
		Appenders: []AppenderConfig{
			{Type: "file", Options: map[string]interface{}{
				"filename":    logPath,
				"max_size":    "1",
				"max_backups": 2,
			}},
		},
	})
	require.NoError(t, err)
	assert.True(t, l.IsDebugEnabled())

	l.WithField("plugin", "upcase").Debug("loaded")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Equal(t, "[debug] loaded\n", string(data))
}

func TestNewInvalidAppender(t *testing.T) {
	tests := []struct {
		name     string
		appender AppenderConfig
		errPart  string
	}{
		{"UnknownType", AppenderConfig{Type: "kafka"}, "unsupported appender type"},
		{"FileWithoutName", AppenderConfig{Type: "file"}, "requires 'filename'"},
		{"UnknownOption", AppenderConfig{Type: "file", Options: map[string]interface{}{"bogus": 1}}, "file appender"},
		{"UnknownTarget", AppenderConfig{Type: "console", Options: map[string]interface{}{"target": "tty"}}, "unknown console target"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(&LoggerConfig{Appenders: []AppenderConfig{tt.appender}})
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.errPart), "got %v", err)
		})
	}
}

func TestNewInvalidLevelFallsBackToInfo(t *testing.T) {
	l, err := New(&LoggerConfig{Level: "loud"})
	require.NoError(t, err)
	assert.True(t, l.IsInfoEnabled())
	assert.False(t, l.IsDebugEnabled())
}

func TestGetLoggerBeforeInit(t *testing.T) {
	assert.NotNil(t, GetLogger())
}

func TestMultiWriterKeepsWritingAfterError(t *testing.T) {
	var ok strings.Builder
	m := NewMultiWriter().Add(failingWriter{}).Add(&ok)

	n, err := m.Write([]byte("line"))
	assert.Error(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "line", ok.String())
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, os.ErrClosed }
