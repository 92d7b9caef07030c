//go:build !(linux && cgo)
// +build !linux !cgo

package midilinux

import (
	"time"

	"github.com/leandrodaf/drumkit/sdk/contracts"
)

type dummyDriver struct {
	logger contracts.Logger
}

// NewDriver initializes a dummy rtmidi driver when ALSA support is not compiled in.
func NewDriver(options *contracts.ClientOptions) (contracts.Driver, error) {
	options.Logger.Debug("Using dummy rtmidi driver (requires linux and cgo)")
	return &dummyDriver{logger: options.Logger}, nil
}

func (d *dummyDriver) Ins() ([]contracts.PortDescriptor, error) {
	d.logger.Warn("Ins called on dummy rtmidi driver")
	return nil, contracts.ErrUnsupportedPlatform
}

func (d *dummyDriver) Open(contracts.PortDescriptor, func([]byte, time.Time), func(error)) (contracts.Connection, error) {
	d.logger.Warn("Open called on dummy rtmidi driver")
	return nil, contracts.ErrUnsupportedPlatform
}

func (d *dummyDriver) Close() error {
	return nil
}
