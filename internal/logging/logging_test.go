package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestLevelForClampsRange(t *testing.T) {
	cases := []struct {
		verbosity int
		want      zapcore.Level
	}{
		{-1, zapcore.ErrorLevel},
		{0, zapcore.ErrorLevel},
		{1, zapcore.WarnLevel},
		{2, zapcore.InfoLevel},
		{3, zapcore.DebugLevel},
		{4, zapcore.DebugLevel},
		{100, zapcore.DebugLevel},
	}
	for _, c := range cases {
		if got := levelFor(c.verbosity); got != c.want {
			t.Errorf("levelFor(%d) = %v, want %v", c.verbosity, got, c.want)
		}
	}
}

func TestNewBuildsLogger(t *testing.T) {
	logger, err := New(2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
}
