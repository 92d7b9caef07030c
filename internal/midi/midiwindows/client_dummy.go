//go:build !windows
// +build !windows

package midiwindows

import (
	"time"

	"github.com/leandrodaf/drumkit/sdk/contracts"
)

type dummyDriver struct {
	logger contracts.Logger
}

// NewDriver initializes a dummy WinMM driver for non-Windows systems.
func NewDriver(options *contracts.ClientOptions) (contracts.Driver, error) {
	options.Logger.Debug("Using dummy WinMM driver for non-Windows system")
	return &dummyDriver{logger: options.Logger}, nil
}

// Ins logs a warning and returns ErrUnsupportedPlatform.
func (d *dummyDriver) Ins() ([]contracts.PortDescriptor, error) {
	d.logger.Warn("Ins called on dummy WinMM driver")
	return nil, contracts.ErrUnsupportedPlatform
}

// Open logs a warning and returns ErrUnsupportedPlatform.
func (d *dummyDriver) Open(contracts.PortDescriptor, func([]byte, time.Time), func(error)) (contracts.Connection, error) {
	d.logger.Warn("Open called on dummy WinMM driver")
	return nil, contracts.ErrUnsupportedPlatform
}

func (d *dummyDriver) Close() error {
	return nil
}
