// Package midimem is an in-memory MIDI driver. Ports can be attached and detached at
// runtime to mimic USB hot-plug, and bytes sent to a port are delivered to whoever has
// it open on the sender's goroutine.
package midimem

import (
	"fmt"
	"sync"
	"time"

	"github.com/leandrodaf/drumkit/sdk/contracts"
)

// Driver is a contracts.Driver backed by memory.
type Driver struct {
	mu     sync.Mutex
	ports  []*Port
	closed bool
	listed int // number of Ins calls, for poll assertions
}

// New creates a driver with the given ports already attached.
func New(names ...string) *Driver {
	d := &Driver{}
	for _, n := range names {
		d.Attach(n)
	}
	return d
}

// Port is an attached in-memory endpoint.
type Port struct {
	name string

	mu     sync.Mutex
	onData func([]byte, time.Time)
	onErr  func(error)
	open   bool
}

// Name returns the endpoint name.
func (p *Port) Name() string { return p.name }

// IsOpen reports whether a connection currently holds the port.
func (p *Port) IsOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}

// Send delivers raw bytes to the connection holding the port.
func (p *Port) Send(data []byte) error {
	p.mu.Lock()
	onData := p.onData
	open := p.open
	p.mu.Unlock()
	if !open {
		return fmt.Errorf("port %q is not open", p.name)
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	onData(buf, time.Now())
	return nil
}

// Fail reports err to the connection holding the port, as a driver error callback would.
func (p *Port) Fail(err error) {
	p.mu.Lock()
	onErr := p.onErr
	open := p.open
	p.mu.Unlock()
	if open && onErr != nil {
		onErr(err)
	}
}

// Attach plugs in a new endpoint and returns it.
func (d *Driver) Attach(name string) *Port {
	d.mu.Lock()
	defer d.mu.Unlock()
	p := &Port{name: name}
	d.ports = append(d.ports, p)
	return p
}

// Detach unplugs the first endpoint named name. An open connection is told the
// device went away. It reports whether a port was removed.
func (d *Driver) Detach(name string) bool {
	removed := d.remove(name)
	if removed == nil {
		return false
	}
	removed.Fail(contracts.ErrDisconnected)
	return true
}

// Vanish removes the endpoint from listings without notifying an open connection,
// like platforms that never report unplug events to readers.
func (d *Driver) Vanish(name string) bool {
	return d.remove(name) != nil
}

func (d *Driver) remove(name string) *Port {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, p := range d.ports {
		if p.name == name {
			d.ports = append(d.ports[:i:i], d.ports[i+1:]...)
			return p
		}
	}
	return nil
}

// Port returns the attached endpoint named name.
func (d *Driver) Port(name string) (*Port, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, p := range d.ports {
		if p.name == name {
			return p, true
		}
	}
	return nil, false
}

// ListCalls returns how many times Ins has been called.
func (d *Driver) ListCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.listed
}

// Ins lists the attached endpoints in attach order.
func (d *Driver) Ins() ([]contracts.PortDescriptor, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, contracts.ErrClosed
	}
	d.listed++
	out := make([]contracts.PortDescriptor, len(d.ports))
	for i, p := range d.ports {
		out[i] = contracts.PortDescriptor{Name: p.name, Index: i, Manufacturer: "midimem", EntityName: p.name}
	}
	return out, nil
}

// Open connects to the endpoint at port.Index, which must still carry port.Name.
func (d *Driver) Open(port contracts.PortDescriptor, onData func([]byte, time.Time), onErr func(error)) (contracts.Connection, error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil, contracts.ErrClosed
	}
	var p *Port
	if port.Index >= 0 && port.Index < len(d.ports) && d.ports[port.Index].name == port.Name {
		p = d.ports[port.Index]
	}
	d.mu.Unlock()

	if p == nil {
		return nil, fmt.Errorf("%w: %s", contracts.ErrDeviceUnavailable, port.Name)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.open {
		return nil, fmt.Errorf("%w: %s", contracts.ErrBusy, port.Name)
	}
	p.open = true
	p.onData = onData
	p.onErr = onErr
	return &conn{port: p}, nil
}

// Close releases the driver; further calls fail with ErrClosed.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

type conn struct {
	port *Port
	once sync.Once
}

func (c *conn) Close() error {
	c.once.Do(func() {
		c.port.mu.Lock()
		c.port.open = false
		c.port.onData = nil
		c.port.onErr = nil
		c.port.mu.Unlock()
	})
	return nil
}
