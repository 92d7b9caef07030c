package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leandrodaf/drumkit/internal/display"
	"github.com/leandrodaf/drumkit/internal/logger"
	"github.com/leandrodaf/drumkit/internal/ports"
	"github.com/leandrodaf/drumkit/internal/reader"
	"github.com/leandrodaf/drumkit/internal/sink"
	"github.com/leandrodaf/drumkit/sdk/contracts"
	"github.com/leandrodaf/drumkit/sdk/midi"
	"github.com/spf13/cobra"
)

type runFlags struct {
	portKeyword  string
	headless     bool
	timeout      time.Duration
	pollInterval time.Duration
	buffer       int
	other        bool
	logLevel     string
	logFile      string
}

// newRootCmd builds the drumkit command tree. extra options are applied after the
// ones derived from flags.
func newRootCmd(extra ...contracts.Option) *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:           "drumkit",
		Short:         "Listen to a USB drum kit and show every hit",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, f, extra)
		},
	}

	fl := cmd.PersistentFlags()
	fl.StringVar(&f.portKeyword, "port-keyword", "USB", "substring identifying the drum kit's MIDI input")
	fl.StringVar(&f.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	fl.StringVar(&f.logFile, "log-file", "", "write logs to this file instead of stderr")

	rf := cmd.Flags()
	rf.BoolVar(&f.headless, "headless", false, "print events as text lines instead of the hit display")
	rf.DurationVar(&f.timeout, "timeout", ports.DefaultWaitTimeout, "how long to wait for the port; negative waits forever")
	rf.DurationVar(&f.pollInterval, "poll-interval", ports.DefaultPollInterval, "how often to look for the port while waiting")
	rf.IntVar(&f.buffer, "buffer", reader.DefaultBufferSize, "event buffer size; events beyond it are dropped")
	rf.BoolVar(&f.other, "other", false, "also deliver clock, sysex and other non-note messages")

	cmd.AddCommand(newListCmd(f, extra))
	return cmd
}

func (f *runFlags) clientOptions(interactive bool, extra []contracts.Option) ([]contracts.Option, error) {
	level, ok := contracts.ParseLogLevel(f.logLevel)
	if !ok {
		return nil, fmt.Errorf("unknown log level %q", f.logLevel)
	}
	// The hit display owns the terminal; only errors may reach stderr.
	if interactive && f.logFile == "" && level < contracts.ErrorLevel {
		level = contracts.ErrorLevel
	}

	opts := []contracts.Option{
		contracts.WithLogger(logger.NewZapLogger()),
		contracts.WithLogLevel(level),
		contracts.WithBufferSize(f.buffer),
		contracts.WithPollInterval(f.pollInterval),
		contracts.WithOtherEvents(f.other),
	}
	if f.logFile != "" {
		opts = append(opts, contracts.WithLogFile(f.logFile))
	}
	return append(opts, extra...), nil
}

func run(cmd *cobra.Command, f *runFlags, extra []contracts.Option) error {
	opts, err := f.clientOptions(!f.headless, extra)
	if err != nil {
		return err
	}
	client, err := midi.NewMIDIClient(opts...)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	timeout := f.timeout
	if timeout < 0 {
		timeout = contracts.NoTimeout
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Waiting for a MIDI input matching %q...\n", f.portKeyword)
	port, err := client.WaitForPort(ctx, f.portKeyword, f.pollInterval, timeout)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	if err != nil {
		return err
	}

	session, err := client.Open(port)
	if err != nil {
		return err
	}
	defer session.Close()
	fmt.Fprintf(cmd.ErrOrStderr(), "Connected to MIDI input: %s\n", port.Name)

	if f.headless {
		err = runHeadless(ctx, cmd, session, opts)
	} else {
		err = runDisplay(ctx, session)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runHeadless(ctx context.Context, cmd *cobra.Command, session contracts.Session, opts []contracts.Option) error {
	var o contracts.ClientOptions
	for _, opt := range opts {
		opt(&o)
	}
	logSink := sink.NewLogSink(cmd.OutOrStdout(), o.Logger)

	failed := make(chan error, 1)
	err := session.Subscribe(contracts.SinkFuncs{
		Event: logSink.OnEvent,
		Err: func(err error) {
			logSink.OnError(err)
			failed <- err
		},
	})
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return nil
	case err := <-failed:
		return err
	}
}

func runDisplay(ctx context.Context, session contracts.Session) error {
	view := display.NewView(display.NewHitBoard(display.DefaultWindow), session.Port().Name, session.Stats)
	if err := session.Subscribe(view); err != nil {
		return err
	}
	return view.Run(ctx)
}
