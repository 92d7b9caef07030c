package contracts

import (
	"context"
	"time"
)

// Connection is an open driver-level endpoint. Close stops delivery and releases the handle.
type Connection interface {
	Close() error
}

// Driver adapts a platform MIDI subsystem.
//
// Open delivers raw message bytes to onData on a goroutine owned by the platform
// (CoreMIDI, WinMM or rtmidi thread). onErr is called when the platform reports that
// the endpoint failed or went away.
type Driver interface {
	Ins() ([]PortDescriptor, error)
	Open(port PortDescriptor, onData func(data []byte, ts time.Time), onErr func(error)) (Connection, error)
	Close() error
}

// NoTimeout makes WaitForPort poll until a port appears or the context ends.
const NoTimeout time.Duration = -1

// Session is an exclusive, open reader on one endpoint.
type Session interface {
	Port() PortDescriptor
	// ReadNext blocks until the next event. It returns ErrClosed once the session is
	// closed and ErrDisconnected after the device goes away.
	ReadNext(ctx context.Context) (Event, error)
	// Subscribe pushes every event to sink on a dedicated delivery goroutine.
	Subscribe(sink Sink) error
	Done() <-chan struct{}
	Stats() SessionStats
	Close() error
}

// Client is the public entry point: port discovery plus session opening.
type Client interface {
	ListPorts(ctx context.Context) ([]PortDescriptor, error)
	FindPort(keyword string, ports []PortDescriptor) (PortDescriptor, bool)
	WaitForPort(ctx context.Context, keyword string, pollInterval, timeout time.Duration) (PortDescriptor, error)
	Open(port PortDescriptor) (Session, error)
	Close() error
}
