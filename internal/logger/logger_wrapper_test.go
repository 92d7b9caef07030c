package logger

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leandrodaf/drumkit/sdk/contracts"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger_StructuredFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewZapLoggerWithCore(core)

	l.Info("port opened",
		l.Field().String("port", "USB MIDI 1"),
		l.Field().Int("index", 2),
		l.Field().Uint8("channel", 9),
		l.Field().Error("error", errors.New("boom")),
	)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["port"] != "USB MIDI 1" {
		t.Fatalf("port=%v", ctx["port"])
	}
	if ctx["index"] != int64(2) {
		t.Fatalf("index=%v (%T)", ctx["index"], ctx["index"])
	}
	if ctx["error"] != "boom" {
		t.Fatalf("error=%v", ctx["error"])
	}
}

func TestZapLogger_SetLevel(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewZapLoggerWithCore(core)
	l.SetLevel(contracts.WarnLevel)

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")
	l.Error("shown")

	if logs.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", logs.Len())
	}
	if logs.FilterMessage("hidden").Len() != 0 {
		t.Fatalf("entries below warn leaked through")
	}
}

func TestZapLogger_NilErrorFieldIsSkipped(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewZapLoggerWithCore(core)

	l.Warn("no error", l.Field().Error("error", nil))

	if got := len(logs.All()[0].Context); got != 0 {
		t.Fatalf("expected no context fields, got %d", got)
	}
}

func TestZapLogger_FileDestination(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drumkit.log")
	l := NewZapLogger()
	if err := l.SetDestination(contracts.FileLog, path); err != nil {
		t.Fatalf("SetDestination: %v", err)
	}
	l.Info("hello file", l.Field().String("port", "Kit"))
	_ = l.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"msg":"hello file"`) || !strings.Contains(string(data), `"port":"Kit"`) {
		t.Fatalf("unexpected log file content: %s", data)
	}
}

func TestZapLogger_FileDestinationNeedsPath(t *testing.T) {
	l := NewZapLogger()
	if err := l.SetDestination(contracts.FileLog); err == nil {
		t.Fatal("expected error for missing path")
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]contracts.LogLevel{
		"debug": contracts.DebugLevel,
		"":      contracts.InfoLevel,
		"warn":  contracts.WarnLevel,
		"error": contracts.ErrorLevel,
	}
	for in, want := range cases {
		got, ok := contracts.ParseLogLevel(in)
		if !ok || got != want {
			t.Fatalf("ParseLogLevel(%q) = %v, %v", in, got, ok)
		}
	}
	if _, ok := contracts.ParseLogLevel("loud"); ok {
		t.Fatal("expected unknown level to fail")
	}
}
