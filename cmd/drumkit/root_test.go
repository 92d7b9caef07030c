package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/leandrodaf/drumkit/internal/logger"
	"github.com/leandrodaf/drumkit/internal/midi/midimem"
	"github.com/leandrodaf/drumkit/sdk/contracts"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func execute(ctx context.Context, drv *midimem.Driver, args ...string) (string, error) {
	core, _ := observer.New(zapcore.DebugLevel)
	return executeLogged(ctx, drv, core, args...)
}

func executeLogged(ctx context.Context, drv *midimem.Driver, core zapcore.Core, args ...string) (string, error) {
	var out, errOut bytes.Buffer
	cmd := newRootCmd(
		contracts.WithLogger(logger.NewZapLoggerWithCore(core)),
		contracts.WithDriver(drv),
	)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestList(t *testing.T) {
	drv := midimem.New("Midi Through", "USB Drum Kit")
	out, err := execute(context.Background(), drv, "list")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "   0: Midi Through") || !strings.Contains(out, "*  1: USB Drum Kit") {
		t.Fatalf("unexpected listing:\n%s", out)
	}
}

func TestList_Empty(t *testing.T) {
	out, err := execute(context.Background(), midimem.New(), "list")
	if err != nil || !strings.Contains(out, "No MIDI input ports detected.") {
		t.Fatalf("out=%q err=%v", out, err)
	}
}

func TestRun_TimesOutWithoutPort(t *testing.T) {
	_, err := execute(context.Background(), midimem.New("Other"), "--headless", "--timeout", "30ms", "--poll-interval", "5ms")
	if !errors.Is(err, contracts.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestRun_BadLogLevel(t *testing.T) {
	_, err := execute(context.Background(), midimem.New(), "--headless", "--log-level", "loud")
	if err == nil || !strings.Contains(err.Error(), "loud") {
		t.Fatalf("expected log level error, got %v", err)
	}
}

func TestRun_HeadlessPrintsUntilDisconnect(t *testing.T) {
	drv := midimem.New("USB Drum Kit")
	port, _ := drv.Port("USB Drum Kit")
	core, logs := observer.New(zapcore.DebugLevel)

	type result struct {
		out string
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := executeLogged(context.Background(), drv, core, "--headless", "--timeout", "1s", "--log-level", "debug")
		done <- result{out, err}
	}()

	deadline := time.Now().Add(time.Second)
	for logs.FilterMessage("MIDI sink subscribed").Len() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("log sink was never subscribed")
		}
		time.Sleep(time.Millisecond)
	}
	_ = port.Send([]byte{0x99, 36, 100, 0xF8})
	drv.Detach("USB Drum Kit")

	select {
	case r := <-done:
		if !errors.Is(r.err, contracts.ErrDisconnected) {
			t.Fatalf("expected ErrDisconnected, got %v", r.err)
		}
		if !strings.Contains(r.out, "Bass Drum 1") || !strings.Contains(r.out, "error: ") {
			t.Fatalf("unexpected output:\n%s", r.out)
		}
		if strings.Contains(r.out, "Other") {
			t.Fatalf("clock should be filtered without --other:\n%s", r.out)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("drumkit did not exit after the device went away")
	}
}

func TestRun_HeadlessStopsOnCancel(t *testing.T) {
	drv := midimem.New("USB Drum Kit")
	port, _ := drv.Port("USB Drum Kit")
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := execute(ctx, drv, "--headless")
		done <- err
	}()
	for !port.IsOpen() {
		time.Sleep(time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("cancel should exit cleanly, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("drumkit did not exit on cancel")
	}
	if port.IsOpen() {
		t.Fatal("session must be closed on exit")
	}
}
