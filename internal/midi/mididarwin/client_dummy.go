//go:build !darwin
// +build !darwin

package mididarwin

import (
	"time"

	"github.com/leandrodaf/drumkit/sdk/contracts"
)

type DummyDriver struct {
	logger contracts.Logger
}

func NewDriver(options *contracts.ClientOptions) (contracts.Driver, error) {
	options.Logger.Debug("Using dummy CoreMIDI driver for non-macOS system")
	return &DummyDriver{logger: options.Logger}, nil
}

func (d *DummyDriver) Ins() ([]contracts.PortDescriptor, error) {
	d.logger.Warn("Ins called on dummy CoreMIDI driver")
	return nil, contracts.ErrUnsupportedPlatform
}

func (d *DummyDriver) Open(contracts.PortDescriptor, func([]byte, time.Time), func(error)) (contracts.Connection, error) {
	d.logger.Warn("Open called on dummy CoreMIDI driver")
	return nil, contracts.ErrUnsupportedPlatform
}

func (d *DummyDriver) Close() error {
	return nil
}
