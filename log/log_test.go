package log

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestSetLevel(t *testing.T) {
	defer SetLevel(LevelInfo)

	cases := []struct {
		in   string
		want zapcore.Level
	}{
		{LevelDebug, zapcore.DebugLevel},
		{LevelInfo, zapcore.InfoLevel},
		{LevelWarn, zapcore.WarnLevel},
		{LevelError, zapcore.ErrorLevel},
		{LevelFatal, zapcore.FatalLevel},
		{"verbose", zapcore.InfoLevel},
	}
	for _, c := range cases {
		SetLevel(c.in)
		assert.Equal(t, c.want, zapLevel.Level(), "SetLevel(%q)", c.in)
	}
}

func TestHelpersForwardToDefault(t *testing.T) {
	rec := &recordingLogger{}
	old := Default
	Default = rec
	defer func() { Default = old }()

	Infof("uploaded %s", "a.mp4")
	Warnf("sniffed %s", "video/webm")
	Errorf("failed: %v", "boom")

	assert.Equal(t, []string{
		"info: uploaded a.mp4",
		"warn: sniffed video/webm",
		"error: failed: boom",
	}, rec.lines)
}

// recordingLogger keeps formatted calls; unformatted variants are no-ops.
type recordingLogger struct {
	lines []string
}

func (r *recordingLogger) add(level, format string, args ...any) {
	r.lines = append(r.lines, level+": "+fmt.Sprintf(format, args...))
}

func (r *recordingLogger) Debug(args ...any)                 {}
func (r *recordingLogger) Debugf(format string, args ...any) { r.add("debug", format, args...) }
func (r *recordingLogger) Info(args ...any)                  {}
func (r *recordingLogger) Infof(format string, args ...any)  { r.add("info", format, args...) }
func (r *recordingLogger) Warn(args ...any)                  {}
func (r *recordingLogger) Warnf(format string, args ...any)  { r.add("warn", format, args...) }
func (r *recordingLogger) Error(args ...any)                 {}
func (r *recordingLogger) Errorf(format string, args ...any) { r.add("error", format, args...) }
func (r *recordingLogger) Fatal(args ...any)                 {}
func (r *recordingLogger) Fatalf(format string, args ...any) { r.add("fatal", format, args...) }
