// Package reader turns an open MIDI endpoint into a stream of decoded events.
package reader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/leandrodaf/drumkit/internal/wire"
	"github.com/leandrodaf/drumkit/sdk/contracts"
	"go.uber.org/multierr"
)

// DefaultBufferSize is the event buffer capacity used when Config.BufferSize is zero.
const DefaultBufferSize = 128

// Config tunes a session.
type Config struct {
	BufferSize              int
	Filter                  *contracts.EventFilter
	IncludeOther            bool
	DisconnectCheckInterval time.Duration // zero or negative disables the port watchdog
}

// Session is an exclusive reader on one endpoint.
//
// The driver calls into the session from its own thread. Decoding happens there under
// a mutex and events go into a bounded channel with a non-blocking send, so a slow
// consumer drops events instead of stalling the platform MIDI thread.
type Session struct {
	port   contracts.PortDescriptor
	driver contracts.Driver
	logger contracts.Logger
	cfg    Config

	mu      sync.Mutex
	decoder *wire.Decoder
	conn    contracts.Connection
	closed  bool
	cause   error

	release   func()
	events    chan contracts.Event
	done      chan struct{}
	closeOnce sync.Once

	subscribed atomic.Bool

	delivered atomic.Uint64
	dropped   atomic.Uint64
	filtered  atomic.Uint64
	malformed atomic.Uint64
}

var _ contracts.Session = (*Session)(nil)

// Open claims port in registry and connects to it through driver.
func Open(driver contracts.Driver, registry *Registry, port contracts.PortDescriptor, logger contracts.Logger, cfg Config) (*Session, error) {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultBufferSize
	}

	release, err := registry.Acquire(port)
	if err != nil {
		logger.Warn("MIDI port already held by another session", logger.Field().String("port", port.Name))
		return nil, err
	}

	s := &Session{
		port:    port,
		driver:  driver,
		logger:  logger,
		cfg:     cfg,
		decoder: wire.NewDecoder(),
		release: release,
		events:  make(chan contracts.Event, cfg.BufferSize),
		done:    make(chan struct{}),
	}

	conn, err := driver.Open(port, s.handleData, s.handleError)
	if err != nil {
		release()
		logger.Error("Failed to open MIDI port",
			logger.Field().String("port", port.Name),
			logger.Field().Error("error", err))
		return nil, fmt.Errorf("open %q: %w", port.Name, err)
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	if cfg.DisconnectCheckInterval > 0 {
		go s.watch(cfg.DisconnectCheckInterval)
	}

	logger.Info("MIDI port opened",
		logger.Field().String("port", port.Name),
		logger.Field().Int("index", port.Index),
		logger.Field().Int("buffer", cfg.BufferSize))
	return s, nil
}

// Port returns the endpoint this session reads from.
func (s *Session) Port() contracts.PortDescriptor { return s.port }

// Done is closed once the session is closed or its device is gone.
func (s *Session) Done() <-chan struct{} { return s.done }

// Stats returns a snapshot of the session counters.
func (s *Session) Stats() contracts.SessionStats {
	return contracts.SessionStats{
		Delivered: s.delivered.Load(),
		Dropped:   s.dropped.Load(),
		Filtered:  s.filtered.Load(),
		Malformed: s.malformed.Load(),
	}
}

// ReadNext blocks until the next event arrives.
//
// After Close it returns contracts.ErrClosed, including for calls already blocked.
// After a disconnect it returns the events still buffered, then an error matching
// contracts.ErrDisconnected. Cancelling ctx returns ctx.Err().
func (s *Session) ReadNext(ctx context.Context) (contracts.Event, error) {
	if s.subscribed.Load() {
		return contracts.Event{}, contracts.ErrSubscribed
	}
	return s.next(ctx)
}

func (s *Session) next(ctx context.Context) (contracts.Event, error) {
	for {
		select {
		case <-s.done:
			return s.drainAfterDone()
		default:
		}

		select {
		case ev := <-s.events:
			return ev, nil
		case <-s.done:
			// Re-check at the top so closing wins over buffered events.
		case <-ctx.Done():
			return contracts.Event{}, ctx.Err()
		}
	}
}

func (s *Session) drainAfterDone() (contracts.Event, error) {
	cause := s.terminalError()
	if errors.Is(cause, contracts.ErrClosed) {
		return contracts.Event{}, cause
	}
	select {
	case ev := <-s.events:
		return ev, nil
	default:
		return contracts.Event{}, cause
	}
}

// Subscribe starts a delivery goroutine that hands every event to sink in arrival
// order. sink runs on that goroutine, so it must synchronise access to state it
// shares with other goroutines, and it must not block for long: while it runs,
// new events queue in the bounded buffer and overflow is dropped.
// Streaming failures are passed to sink.OnError once, after which delivery stops.
func (s *Session) Subscribe(sink contracts.Sink) error {
	if sink == nil {
		return errors.New("nil sink")
	}
	select {
	case <-s.done:
		return s.terminalError()
	default:
	}
	if !s.subscribed.CompareAndSwap(false, true) {
		return contracts.ErrSubscribed
	}

	go s.deliver(sink)
	s.logger.Debug("MIDI sink subscribed", s.logger.Field().String("port", s.port.Name))
	return nil
}

func (s *Session) deliver(sink contracts.Sink) {
	for {
		ev, err := s.next(context.Background())
		if err != nil {
			if !errors.Is(err, contracts.ErrClosed) {
				sink.OnError(err)
			}
			return
		}
		sink.OnEvent(ev)
	}
}

// Close releases the endpoint. Calling it again is a no-op.
func (s *Session) Close() error {
	return s.shutdown(contracts.ErrClosed)
}

func (s *Session) shutdown(cause error) error {
	var err error
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.cause = cause
		conn := s.conn
		s.conn = nil
		s.decoder.Reset()
		s.mu.Unlock()

		close(s.done)
		if conn != nil {
			err = multierr.Append(err, conn.Close())
		}
		s.release()

		stats := s.Stats()
		fields := []contracts.Field{
			s.logger.Field().String("port", s.port.Name),
			s.logger.Field().Uint64("delivered", stats.Delivered),
			s.logger.Field().Uint64("dropped", stats.Dropped),
			s.logger.Field().Uint64("malformedBytes", stats.Malformed),
		}
		if errors.Is(cause, contracts.ErrClosed) {
			s.logger.Info("MIDI session closed", fields...)
		} else {
			s.logger.Warn("MIDI session ended", append(fields, s.logger.Field().Error("cause", cause))...)
		}
	})
	return err
}

func (s *Session) terminalError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cause == nil {
		return contracts.ErrClosed
	}
	return s.cause
}

// handleData runs on the driver's delivery thread.
func (s *Session) handleData(data []byte, ts time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	if err := s.decoder.Feed(data, ts, s.dispatch); err != nil {
		var merr *wire.MalformedError
		if errors.As(err, &merr) {
			s.malformed.Add(uint64(merr.Skipped))
		}
		s.logger.Warn("Skipped malformed MIDI bytes",
			s.logger.Field().String("port", s.port.Name),
			s.logger.Field().Error("error", err))
	}
}

// dispatch is called with s.mu held.
func (s *Session) dispatch(ev contracts.Event) {
	if (ev.Kind == contracts.Other && !s.cfg.IncludeOther) || !s.cfg.Filter.Allows(ev.Kind) {
		s.filtered.Add(1)
		return
	}
	select {
	case s.events <- ev:
		s.delivered.Add(1)
	default:
		s.dropped.Add(1)
		s.logger.Warn("MIDI event buffer full; event discarded",
			s.logger.Field().String("port", s.port.Name),
			s.logger.Field().String("event", ev.String()))
	}
}

// handleError runs on the driver's thread; teardown happens elsewhere because some
// drivers cannot be closed from inside their own callbacks.
func (s *Session) handleError(err error) {
	if !errors.Is(err, contracts.ErrDisconnected) {
		err = fmt.Errorf("%w: %v", contracts.ErrDisconnected, err)
	}
	go func() { _ = s.shutdown(err) }()
}

// watch fails the session when its endpoint disappears from the driver's list.
func (s *Session) watch(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
		}

		ports, err := s.driver.Ins()
		if err != nil {
			s.logger.Debug("Port watchdog could not list inputs", s.logger.Field().Error("error", err))
			continue
		}
		present := false
		for _, p := range ports {
			if p.Name == s.port.Name {
				present = true
				break
			}
		}
		if !present {
			_ = s.shutdown(fmt.Errorf("%w: %s no longer listed", contracts.ErrDisconnected, s.port.Name))
			return
		}
	}
}
