//go:build windows
// +build windows

package midiwindows

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/leandrodaf/drumkit/internal/wire"
	"github.com/leandrodaf/drumkit/sdk/contracts"
	"go.uber.org/multierr"
	"golang.org/x/sys/windows"
)

// Type definitions for MIDI handles
type HMIDIIN windows.Handle

// Constants for callback flags
const (
	CALLBACK_FUNCTION = 0x00030000 // Indicates that the callback is a function
	MIDI_IO_STATUS    = 0x00000020 // MIDI input/output status
)

// Constants for MIDI message types
const (
	MIM_OPEN      = 0x3C1 // MIDI device opened
	MIM_CLOSE     = 0x3C2 // MIDI device closed
	MIM_DATA      = 0x3C3 // MIDI data received
	MIM_ERROR     = 0x3C5 // MIDI error
	MIM_LONGERROR = 0x3C6 // Long MIDI error
	MIM_MOREDATA  = 0x3CC // More MIDI data available
)

// WinMM result codes that map onto the error taxonomy.
const (
	MMSYSERR_NOERROR     = 0
	MMSYSERR_BADDEVICEID = 2
	MMSYSERR_ALLOCATED   = 4
	MMSYSERR_NODRIVER    = 6
)

// Struct representing MIDI device capabilities
type midiInCaps struct {
	wMid           uint16
	wPid           uint16
	vDriverVersion uint32
	szPname        [32]uint16
	dwSupport      uint32
}

// Load the winmm.dll library and required functions
var (
	winmm                = windows.NewLazySystemDLL("winmm.dll")
	procMidiInGetNumDevs = winmm.NewProc("midiInGetNumDevs")
	procMidiInGetDevCaps = winmm.NewProc("midiInGetDevCapsW")
	procMidiInOpen       = winmm.NewProc("midiInOpen")
	procMidiInStart      = winmm.NewProc("midiInStart")
	procMidiInStop       = winmm.NewProc("midiInStop")
	procMidiInClose      = winmm.NewProc("midiInClose")
)

// A single callback trampoline serves every connection; dwInstance selects the
// connection from the table so no Go pointer is handed to WinMM.
var (
	callbackOnce sync.Once
	callbackPtr  uintptr
	connections  sync.Map // uintptr -> *connection
	nextInstance atomic.Uintptr
)

// Driver lists and opens WinMM MIDI input devices.
type Driver struct {
	logger contracts.Logger
}

// NewDriver creates a MIDI driver for Windows
func NewDriver(options *contracts.ClientOptions) (contracts.Driver, error) {
	options.Logger.Info("WinMM MIDI driver created")
	callbackOnce.Do(func() {
		callbackPtr = windows.NewCallback(midiInCallback)
	})
	return &Driver{logger: options.Logger}, nil
}

// Ins lists the available MIDI input devices
func (d *Driver) Ins() ([]contracts.PortDescriptor, error) {
	r0, _, _ := procMidiInGetNumDevs.Call()
	numDevices := uint32(r0)

	ports := make([]contracts.PortDescriptor, 0, numDevices)
	for i := uint32(0); i < numDevices; i++ {
		name, caps, ok := deviceCaps(i)
		if !ok {
			d.logger.Warn("Failed to get information for MIDI device", d.logger.Field().Int("deviceID", int(i)))
			continue
		}
		ports = append(ports, contracts.PortDescriptor{
			Name:         name,
			Index:        int(i),
			EntityName:   name,
			Manufacturer: fmt.Sprintf("MID: %d PID: %d", caps.wMid, caps.wPid),
		})
	}
	return ports, nil
}

func deviceCaps(id uint32) (string, midiInCaps, bool) {
	var caps midiInCaps
	r1, _, _ := procMidiInGetDevCaps.Call(
		uintptr(id),
		uintptr(unsafe.Pointer(&caps)),
		unsafe.Sizeof(caps),
	)
	if r1 != MMSYSERR_NOERROR {
		return "", caps, false
	}
	return windows.UTF16ToString(caps.szPname[:]), caps, true
}

// Open opens the device at port.Index after checking it still carries port.Name.
func (d *Driver) Open(port contracts.PortDescriptor, onData func([]byte, time.Time), onErr func(error)) (contracts.Connection, error) {
	if name, _, ok := deviceCaps(uint32(port.Index)); !ok || name != port.Name {
		return nil, fmt.Errorf("%w: %s", contracts.ErrDeviceUnavailable, port.Name)
	}

	c := &connection{logger: d.logger, port: port, onData: onData, onErr: onErr}
	c.instance = nextInstance.Add(1)
	connections.Store(c.instance, c)

	fdwOpen := CALLBACK_FUNCTION | MIDI_IO_STATUS
	r1, _, _ := procMidiInOpen.Call(
		uintptr(unsafe.Pointer(&c.handle)),
		uintptr(port.Index),
		callbackPtr,
		c.instance,
		uintptr(fdwOpen),
	)
	if r1 != MMSYSERR_NOERROR {
		connections.Delete(c.instance)
		return nil, openError(port, r1)
	}

	r1, _, _ = procMidiInStart.Call(uintptr(c.handle))
	if r1 != MMSYSERR_NOERROR {
		_, _, _ = procMidiInClose.Call(uintptr(c.handle))
		connections.Delete(c.instance)
		return nil, fmt.Errorf("failed to start MIDI capture on %s: code %d", port.Name, r1)
	}

	d.logger.Info("MIDI device connected", d.logger.Field().String("port", port.Name))
	return c, nil
}

func openError(port contracts.PortDescriptor, code uintptr) error {
	switch code {
	case MMSYSERR_ALLOCATED:
		return fmt.Errorf("%w: %s", contracts.ErrBusy, port.Name)
	case MMSYSERR_BADDEVICEID, MMSYSERR_NODRIVER:
		return fmt.Errorf("%w: %s", contracts.ErrDeviceUnavailable, port.Name)
	}
	return fmt.Errorf("%w: %s: midiInOpen code %d", contracts.ErrDeviceUnavailable, port.Name, code)
}

// Close releases nothing: each connection owns its handle.
func (d *Driver) Close() error {
	return nil
}

// connection owns one open WinMM input handle.
type connection struct {
	logger   contracts.Logger
	port     contracts.PortDescriptor
	handle   HMIDIIN
	instance uintptr
	onData   func([]byte, time.Time)
	onErr    func(error)
	closing  atomic.Bool
	once     sync.Once
}

// midiInCallback processes incoming MIDI messages on the WinMM callback thread.
func midiInCallback(hMidiIn uintptr, wMsg uint32, dwInstance uintptr, dwParam1 uintptr, dwParam2 uintptr) uintptr {
	v, ok := connections.Load(dwInstance)
	if !ok {
		return 0
	}
	c := v.(*connection)

	switch wMsg {
	case MIM_OPEN:
		c.logger.Debug("MIDI device opened", c.logger.Field().String("port", c.port.Name))
	case MIM_CLOSE:
		if !c.closing.Load() && c.onErr != nil {
			c.onErr(contracts.ErrDisconnected)
		}
	case MIM_DATA, MIM_MOREDATA:
		status := byte(dwParam1 & 0xFF)
		n := wire.MessageLength(status)
		if n == 0 {
			c.logger.Debug("Ignoring packed message without a status byte")
			return 0
		}
		msg := []byte{status, byte((dwParam1 >> 8) & 0xFF), byte((dwParam1 >> 16) & 0xFF)}
		c.onData(msg[:n], time.Now())
	case MIM_ERROR, MIM_LONGERROR:
		c.logger.Warn("MIDI error reported by driver",
			c.logger.Field().String("port", c.port.Name),
			c.logger.Field().Int64("msg", int64(wMsg)))
	default:
		c.logger.Debug("Unknown MIDI message", c.logger.Field().Int64("msg", int64(wMsg)))
	}

	return 0
}

// Close stops capture and closes the device handle.
func (c *connection) Close() error {
	var err error
	c.once.Do(func() {
		c.closing.Store(true)
		if r1, _, _ := procMidiInStop.Call(uintptr(c.handle)); r1 != MMSYSERR_NOERROR {
			err = multierr.Append(err, fmt.Errorf("midiInStop code %d", r1))
		}
		if r1, _, _ := procMidiInClose.Call(uintptr(c.handle)); r1 != MMSYSERR_NOERROR {
			err = multierr.Append(err, fmt.Errorf("midiInClose code %d", r1))
		}
		connections.Delete(c.instance)
		c.handle = 0
	})
	return err
}
