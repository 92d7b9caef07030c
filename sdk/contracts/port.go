package contracts

import "fmt"

// PortDescriptor identifies a MIDI input endpoint as reported by the driver at query time.
// Descriptors are never cached; re-list to observe devices that were plugged in or removed.
type PortDescriptor struct {
	Name         string // Endpoint name as exposed by the operating system.
	Index        int    // Position in the driver's input list when it was queried.
	Manufacturer string // Device manufacturer, when the platform reports one.
	EntityName   string // Name of the entity to which the endpoint belongs.
}

// String returns "index: name", the format used by port listings.
func (p PortDescriptor) String() string {
	return fmt.Sprintf("%d: %s", p.Index, p.Name)
}
