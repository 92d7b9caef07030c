// Package ports discovers MIDI input endpoints.
package ports

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/leandrodaf/drumkit/sdk/contracts"
)

// Defaults used when callers pass zero values.
const (
	DefaultPollInterval = 200 * time.Millisecond
	DefaultWaitTimeout  = 15 * time.Second
)

// Directory queries a driver for input endpoints. Results are never cached.
type Directory struct {
	driver contracts.Driver
	logger contracts.Logger
}

// NewDirectory returns a directory over driver.
func NewDirectory(driver contracts.Driver, logger contracts.Logger) *Directory {
	return &Directory{driver: driver, logger: logger}
}

// List returns the driver's current input endpoints. An empty list is not an error.
func (d *Directory) List(ctx context.Context) ([]contracts.PortDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ports, err := d.driver.Ins()
	if err != nil {
		return nil, fmt.Errorf("list MIDI inputs: %w", err)
	}
	if len(ports) == 0 {
		d.logger.Warn("No MIDI input ports found")
	}
	return ports, nil
}

// Find returns the first port whose name contains keyword (case-sensitive).
// An empty keyword matches the first port.
func Find(keyword string, ports []contracts.PortDescriptor) (contracts.PortDescriptor, bool) {
	for _, p := range ports {
		if strings.Contains(p.Name, keyword) {
			return p, true
		}
	}
	return contracts.PortDescriptor{}, false
}

// WaitFor polls the directory every pollInterval until a port matching keyword appears.
// It fails with ErrTimeout once timeout has elapsed; a zero timeout checks exactly once
// and contracts.NoTimeout waits until ctx is done. Listing errors are logged and retried.
func (d *Directory) WaitFor(ctx context.Context, keyword string, pollInterval, timeout time.Duration) (contracts.PortDescriptor, error) {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}

	var deadline <-chan time.Time
	if timeout >= 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	attempts := 0
	for {
		attempts++
		ports, err := d.List(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return contracts.PortDescriptor{}, ctxErr
			}
			d.logger.Warn("Listing MIDI ports failed; retrying", d.logger.Field().Error("error", err))
		} else if p, ok := Find(keyword, ports); ok {
			d.logger.Info("MIDI port found",
				d.logger.Field().String("port", p.Name),
				d.logger.Field().Int("attempts", attempts))
			return p, nil
		}

		if timeout == 0 {
			return contracts.PortDescriptor{}, fmt.Errorf("%w: no port matching %q", contracts.ErrTimeout, keyword)
		}

		select {
		case <-ctx.Done():
			return contracts.PortDescriptor{}, ctx.Err()
		case <-deadline:
			return contracts.PortDescriptor{}, fmt.Errorf("%w: no port matching %q after %s", contracts.ErrTimeout, keyword, timeout)
		case <-ticker.C:
		}
	}
}
