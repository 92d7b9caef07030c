//go:build linux && cgo
// +build linux,cgo

package midilinux

import (
	"fmt"
	"sync"
	"time"

	"github.com/leandrodaf/drumkit/sdk/contracts"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
	"go.uber.org/multierr"
)

// Driver lists and opens ALSA sequencer inputs through rtmidi.
type Driver struct {
	logger contracts.Logger
	drv    *rtmididrv.Driver
	mu     sync.Mutex
}

// NewDriver initialises the rtmidi driver. Call Close when done.
func NewDriver(options *contracts.ClientOptions) (contracts.Driver, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("rtmididrv: %w", err)
	}
	options.Logger.Info("rtmidi driver created")
	return &Driver{logger: options.Logger, drv: drv}, nil
}

// Ins lists the ALSA inputs currently visible.
func (d *Driver) Ins() ([]contracts.PortDescriptor, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ins, err := d.drv.Ins()
	if err != nil {
		return nil, fmt.Errorf("failed to get MIDI inputs: %w", err)
	}
	ports := make([]contracts.PortDescriptor, len(ins))
	for i, in := range ins {
		ports[i] = contracts.PortDescriptor{Name: in.String(), Index: in.Number(), EntityName: in.String()}
	}
	return ports, nil
}

func (d *Driver) lookup(port contracts.PortDescriptor) (drivers.In, error) {
	ins, err := d.drv.Ins()
	if err != nil {
		return nil, fmt.Errorf("failed to get MIDI inputs: %w", err)
	}
	for _, in := range ins {
		if in.Number() == port.Index && in.String() == port.Name {
			return in, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", contracts.ErrDeviceUnavailable, port.Name)
}

// Open opens the input and starts listening. rtmidi calls onData on its own thread.
func (d *Driver) Open(port contracts.PortDescriptor, onData func([]byte, time.Time), onErr func(error)) (contracts.Connection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	in, err := d.lookup(port)
	if err != nil {
		return nil, err
	}
	if in.IsOpen() {
		return nil, fmt.Errorf("%w: %s", contracts.ErrBusy, port.Name)
	}
	if err := in.Open(); err != nil {
		return nil, fmt.Errorf("%w: open %q: %v", contracts.ErrDeviceUnavailable, port.Name, err)
	}

	stop, err := in.Listen(func(msg []byte, _ int32) {
		if len(msg) > 0 {
			onData(msg, time.Now())
		}
	}, drivers.ListenConfig{
		SysEx:    true,
		TimeCode: true,
		OnErr: func(listenErr error) {
			d.logger.Warn("rtmidi listener error",
				d.logger.Field().String("port", port.Name),
				d.logger.Field().Error("error", listenErr))
			if onErr != nil {
				onErr(fmt.Errorf("%w: %v", contracts.ErrDisconnected, listenErr))
			}
		},
	})
	if err != nil {
		_ = in.Close()
		return nil, fmt.Errorf("failed to start listening on %q: %w", port.Name, err)
	}

	d.logger.Debug("rtmidi input listening", d.logger.Field().String("port", port.Name))
	return &connection{in: in, stop: stop}, nil
}

// Close shuts down the rtmidi driver.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.drv.Close()
}

type connection struct {
	in   drivers.In
	stop func()
	once sync.Once
}

func (c *connection) Close() error {
	var err error
	c.once.Do(func() {
		if c.stop != nil {
			c.stop()
		}
		err = multierr.Append(err, c.in.Close())
	})
	return err
}
