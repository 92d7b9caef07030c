package contracts

import "time"

// EventFilter restricts which event kinds a session delivers. An empty Kinds list allows all.
type EventFilter struct {
	Kinds []EventKind
}

// Allows reports whether kind passes the filter.
func (f *EventFilter) Allows(kind EventKind) bool {
	if f == nil || len(f.Kinds) == 0 {
		return true
	}
	for _, k := range f.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// CoreMIDIConfig holds configuration for CoreMIDI.
type CoreMIDIConfig struct {
	ClientName string // Name of the MIDI client.
}

// ClientOptions defines the configuration options for the MIDI client.
type ClientOptions struct {
	Logger                  Logger          // Logger for logging events and errors.
	LogLevel                LogLevel        // Level of logging to use.
	LogFilePath             string          // File path for logging if file logging is enabled.
	EventFilter             *EventFilter    // Optional filter for event kinds to deliver.
	IncludeOther            bool            // Deliver Other events (clock, sysex, ...) to readers.
	CoreMIDIConfig          *CoreMIDIConfig // Configuration specific to CoreMIDI.
	Driver                  Driver          // Overrides the platform driver.
	BufferSize              int             // Capacity of each session's event buffer.
	PollInterval            time.Duration   // Default discovery poll interval.
	DisconnectCheckInterval time.Duration   // Port watchdog period; negative disables it.
}

// Option is a function that modifies ClientOptions.
type Option func(*ClientOptions)

// WithLogger sets the logger for the MIDI client.
func WithLogger(l Logger) Option {
	return func(opts *ClientOptions) {
		opts.Logger = l
	}
}

// WithLogLevel sets the logging level for the MIDI client.
func WithLogLevel(level LogLevel) Option {
	return func(opts *ClientOptions) {
		opts.LogLevel = level
	}
}

// WithLogFile redirects the client logger to a file.
func WithLogFile(path string) Option {
	return func(opts *ClientOptions) {
		opts.LogFilePath = path
	}
}

// WithMIDIEventFilter sets the event filter for every session the client opens.
func WithMIDIEventFilter(filter EventFilter) Option {
	return func(opts *ClientOptions) {
		opts.EventFilter = &filter
	}
}

// WithOtherEvents controls whether Other events reach readers and sinks.
func WithOtherEvents(include bool) Option {
	return func(opts *ClientOptions) {
		opts.IncludeOther = include
	}
}

// WithCoreMIDIConfig sets the CoreMIDI configuration for the MIDI client.
func WithCoreMIDIConfig(config CoreMIDIConfig) Option {
	return func(opts *ClientOptions) {
		opts.CoreMIDIConfig = &config
	}
}

// WithDriver replaces the platform driver, e.g. with an in-memory one.
func WithDriver(d Driver) Option {
	return func(opts *ClientOptions) {
		opts.Driver = d
	}
}

// WithBufferSize sets the per-session event buffer capacity.
func WithBufferSize(n int) Option {
	return func(opts *ClientOptions) {
		opts.BufferSize = n
	}
}

// WithPollInterval sets the default interval used by WaitForPort when none is given.
func WithPollInterval(d time.Duration) Option {
	return func(opts *ClientOptions) {
		opts.PollInterval = d
	}
}

// WithDisconnectCheck enables the port watchdog that fails a session when its
// endpoint disappears from the driver's list. A negative interval disables it.
func WithDisconnectCheck(d time.Duration) Option {
	return func(opts *ClientOptions) {
		opts.DisconnectCheckInterval = d
	}
}
