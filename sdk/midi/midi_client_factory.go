package midi

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/leandrodaf/drumkit/internal/midi/mididarwin"
	"github.com/leandrodaf/drumkit/internal/midi/midilinux"
	"github.com/leandrodaf/drumkit/internal/midi/midiwindows"
	"github.com/leandrodaf/drumkit/sdk/contracts"
)

// ErrUnsupportedOS is returned when the operating system is not supported by the MIDI client.
var ErrUnsupportedOS = errors.New("unsupported operating system")

// driverInitializers maps OS names to corresponding MIDI driver initializers.
var driverInitializers = map[string]func(*contracts.ClientOptions) (contracts.Driver, error){
	"darwin":  mididarwin.NewDriver,  // macOS (Darwin) CoreMIDI driver.
	"windows": midiwindows.NewDriver, // Windows WinMM driver.
	"linux":   midilinux.NewDriver,   // Linux ALSA driver through rtmidi.
}

// NewDriver initializes the MIDI driver for the current operating system, unless
// opts.Driver already provides one.
//
// opts *contracts.ClientOptions: Configuration options for the MIDI client.
//
// Returns:
//   - contracts.Driver: The platform driver.
//   - error: An error if the operating system is unsupported or if initialization fails.
func NewDriver(opts *contracts.ClientOptions) (contracts.Driver, error) {
	if opts.Driver != nil {
		return opts.Driver, nil
	}
	return newDriverFor(runtime.GOOS, opts)
}

func newDriverFor(goos string, opts *contracts.ClientOptions) (contracts.Driver, error) {
	if initializer, exists := driverInitializers[goos]; exists {
		return initializer(opts)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedOS, goos)
}
