package logging

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func newTestLogger(t *testing.T) (*LogrusLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableColors: true})
	return NewLogrusLogger(l), &buf
}

func TestLogrusLogger_Levels(t *testing.T) {
	log, buf := newTestLogger(t)
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", errors.New("boom"))

	out := buf.String()
	for _, want := range []string{
		"level=debug", "msg=dbg", "a=1",
		"level=info", "msg=inf", "b=2",
		"level=warning", "msg=wrn", "c=3",
		"level=error", "msg=err", "d=boom",
	} {
		assert.Contains(t, out, want)
	}
}

func TestLogrusLogger_With(t *testing.T) {
	log, buf := newTestLogger(t)

	child := log.With("component", "meal", "backend", "memory")
	child.Info(context.Background(), "hello", "k", "v")

	out := buf.String()
	assert.Contains(t, out, "component=meal")
	assert.Contains(t, out, "backend=memory")
	assert.Contains(t, out, "k=v")
}

func TestLogrusLogger_DanglingKey(t *testing.T) {
	log, buf := newTestLogger(t)

	log.Info(context.Background(), "odd", "lonely")

	assert.Contains(t, buf.String(), "!BADKEY=lonely")
}

func TestLogrusLogger_LevelFilter(t *testing.T) {
	log, buf := newTestLogger(t)
	log.entry.Logger.SetLevel(logrus.WarnLevel)

	log.Info(context.Background(), "hidden")
	log.Warn(context.Background(), "shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewLogrus_DefaultsToInfo(t *testing.T) {
	l, out := NewLogrus(Options{Level: "nonsense"})

	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
	assert.NotNil(t, out)
}
