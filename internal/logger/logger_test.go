package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_RejectsBadLevel(t *testing.T) {
	if _, err := New("dev", "loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
	for _, mode := range []string{"dev", "prod", ""} {
		l, err := New(mode, "warn")
		if err != nil {
			t.Fatalf("New(%q): %v", mode, err)
		}
		if l.SugaredLogger.Desugar().Core().Enabled(zap.InfoLevel) {
			t.Errorf("mode %q: info enabled at warn level", mode)
		}
	}
}

func TestWith_CarriesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("user_id", "u1").Info("batch created", "batch_id", "b1")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["user_id"] != "u1" || fields["batch_id"] != "b1" {
		t.Errorf("fields = %v", fields)
	}
	if entries[0].Message != "batch created" {
		t.Errorf("message = %q", entries[0].Message)
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Info("ignored", "k", "v")
	l.Sync()
}
