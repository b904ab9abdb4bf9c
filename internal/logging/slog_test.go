package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func newTestLogger(t *testing.T) (*SlogLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	l := slog.New(h)
	return NewSlogLogger(l), &buf
}

func TestSlogLogger_Levels_WriteExpectedOutput(t *testing.T) {
	log, buf := newTestLogger(t)
	ctx := context.Background()

	log.Debug(ctx, "file stored", "version", 1)
	log.Info(ctx, "joined project", "project", "demo")
	log.Warn(ctx, "subscriber queue full", "dropped", 3)
	log.Error(ctx, "upload failed", "path", "a.txt")

	out := buf.String()
	for _, want := range []string{
		`level=DEBUG msg="file stored" version=1`,
		`level=INFO msg="joined project" project=demo`,
		`level=WARN msg="subscriber queue full" dropped=3`,
		`level=ERROR msg="upload failed" path=a.txt`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestNewJSON_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSON(&buf, slog.LevelWarn)
	ctx := context.Background()

	log.Info(ctx, "file stored")
	log.Warn(ctx, "skipping file", "path", "big.bin")

	out := buf.String()
	if strings.Contains(out, "file stored") {
		t.Fatalf("info record should be filtered:\n%s", out)
	}
	if !strings.Contains(out, `"msg":"skipping file"`) || !strings.Contains(out, `"path":"big.bin"`) {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestSlogLogger_With_AddsAttributes(t *testing.T) {
	log, buf := newTestLogger(t)
	ctx := context.Background()

	log2 := log.With("module", "notifier", "room", "p-1")
	log2.Info(ctx, "hello", "k", "v")

	out := buf.String()
	wantSubs := []string{
		"level=INFO",
		"msg=hello",
		"module=notifier",
		"room=p-1",
		"k=v",
	}
	for _, s := range wantSubs {
		if !strings.Contains(out, s) {
			t.Fatalf("expected %q in output, got:\n%s", s, out)
		}
	}
}

func TestSlogLogger_Log_UsesGivenLevel(t *testing.T) {
	log, buf := newTestLogger(t)

	log.Log(context.Background(), slog.LevelWarn, "http request", "status", 404)

	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "status=404") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestDiscard_DropsOutput(t *testing.T) {
	var l Logger = Discard()
	l.With("a", 1).Error(context.Background(), "nothing to see")
}
