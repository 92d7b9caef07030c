//go:build darwin
// +build darwin

package mididarwin

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/leandrodaf/drumkit/sdk/contracts"
	"github.com/youpy/go-coremidi"
)

// Error definitions for CoreMIDI setup issues.
var (
	ErrCreateInputPort     = errors.New("error creating input port")
	ErrMIDIConnectionError = errors.New("error connecting to MIDI device")
)

// internalPortConnection is an interface for handling disconnection from a MIDI port.
type internalPortConnection interface {
	Disconnect()
}

// Driver lists and opens CoreMIDI sources on Darwin (macOS) systems.
type Driver struct {
	logger contracts.Logger
	client coremidi.Client
	mu     sync.Mutex
}

// NewDriver creates the CoreMIDI client used for every connection.
func NewDriver(options *contracts.ClientOptions) (contracts.Driver, error) {
	client, err := coremidi.NewClient(options.CoreMIDIConfig.ClientName)
	if err != nil {
		return nil, fmt.Errorf("create CoreMIDI client: %w", err)
	}
	options.Logger.Info("CoreMIDI client created",
		options.Logger.Field().String("clientName", options.CoreMIDIConfig.ClientName))

	return &Driver{logger: options.Logger, client: client}, nil
}

// Ins lists the CoreMIDI sources currently visible.
func (d *Driver) Ins() ([]contracts.PortDescriptor, error) {
	sources, err := coremidi.AllSources()
	if err != nil {
		return nil, fmt.Errorf("error listing MIDI sources: %w", err)
	}

	ports := make([]contracts.PortDescriptor, len(sources))
	for i, source := range sources {
		entity := source.Entity()
		ports[i] = contracts.PortDescriptor{
			Name:         source.Name(),
			Index:        i,
			EntityName:   entity.Name(),
			Manufacturer: entity.Manufacturer(),
		}
	}
	return ports, nil
}

// Open connects a new input port to the source described by port.
func (d *Driver) Open(port contracts.PortDescriptor, onData func([]byte, time.Time), onErr func(error)) (contracts.Connection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	sources, err := coremidi.AllSources()
	if err != nil {
		return nil, fmt.Errorf("error retrieving MIDI sources: %w", err)
	}
	if port.Index < 0 || port.Index >= len(sources) || sources[port.Index].Name() != port.Name {
		return nil, fmt.Errorf("%w: %s", contracts.ErrDeviceUnavailable, port.Name)
	}
	source := sources[port.Index]

	c := &connection{onData: onData}
	inputPort, err := coremidi.NewInputPort(d.client, "drumkit input", c.handlePacket)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCreateInputPort, err)
	}

	conn, err := inputPort.Connect(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMIDIConnectionError, err)
	}
	c.portConn = conn

	d.logger.Debug("CoreMIDI source connected", d.logger.Field().String("port", port.Name))
	return c, nil
}

// Close is a no-op: CoreMIDI clients live for the whole process.
func (d *Driver) Close() error {
	return nil
}

// connection forwards packets from one CoreMIDI source until closed.
type connection struct {
	mu       sync.Mutex
	portConn internalPortConnection
	onData   func([]byte, time.Time)
	closed   bool
}

// handlePacket runs on the CoreMIDI read thread.
func (c *connection) handlePacket(_ coremidi.Source, packet coremidi.Packet) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed || len(packet.Data) == 0 {
		return
	}
	c.onData(packet.Data, time.Now())
}

func (c *connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.portConn != nil {
		c.portConn.Disconnect()
		c.portConn = nil
	}
	return nil
}
