package contracts

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by drivers, the port directory and sessions.
var (
	ErrDeviceUnavailable   = errors.New("MIDI device unavailable")
	ErrBusy                = fmt.Errorf("%w: endpoint already open", ErrDeviceUnavailable)
	ErrDisconnected        = fmt.Errorf("%w: device disconnected", ErrDeviceUnavailable)
	ErrTimeout             = errors.New("timed out waiting for MIDI port")
	ErrClosed              = errors.New("MIDI session closed")
	ErrMalformedMessage    = errors.New("malformed MIDI message")
	ErrSubscribed          = errors.New("MIDI session has a subscriber")
	ErrUnsupportedPlatform = errors.New("MIDI functionality is not available on this platform")
)
