package midi

import (
	"context"
	"sync"
	"time"

	"github.com/leandrodaf/drumkit/internal/ports"
	"github.com/leandrodaf/drumkit/internal/reader"
	"github.com/leandrodaf/drumkit/sdk/contracts"
	"go.uber.org/multierr"
)

// NewMIDIClient creates a new MIDI client with the specified options.
// It applies default options and initializes the platform driver.
//
// opts ...contracts.Option: A variadic list of option functions to customize the client configuration.
//
// Returns:
//   - contracts.Client: An instance of the MIDI client.
//   - error: An error, if any occurred during the creation of the client.
func NewMIDIClient(opts ...contracts.Option) (contracts.Client, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}

	driver, err := NewDriver(&options)
	if err != nil {
		return nil, err
	}

	return &client{
		options:   options,
		logger:    options.Logger,
		driver:    driver,
		directory: ports.NewDirectory(driver, options.Logger),
		registry:  reader.NewRegistry(),
	}, nil
}

type client struct {
	options   contracts.ClientOptions
	logger    contracts.Logger
	driver    contracts.Driver
	directory *ports.Directory
	registry  *reader.Registry

	mu       sync.Mutex
	sessions map[*reader.Session]struct{}
	closed   bool
}

func (c *client) ListPorts(ctx context.Context) ([]contracts.PortDescriptor, error) {
	return c.directory.List(ctx)
}

func (c *client) FindPort(keyword string, list []contracts.PortDescriptor) (contracts.PortDescriptor, bool) {
	return ports.Find(keyword, list)
}

// WaitForPort uses the client's poll interval when pollInterval is zero.
func (c *client) WaitForPort(ctx context.Context, keyword string, pollInterval, timeout time.Duration) (contracts.PortDescriptor, error) {
	if pollInterval <= 0 {
		pollInterval = c.options.PollInterval
	}
	return c.directory.WaitFor(ctx, keyword, pollInterval, timeout)
}

func (c *client) Open(port contracts.PortDescriptor) (contracts.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, contracts.ErrClosed
	}

	s, err := reader.Open(c.driver, c.registry, port, c.logger, reader.Config{
		BufferSize:              c.options.BufferSize,
		Filter:                  c.options.EventFilter,
		IncludeOther:            c.options.IncludeOther,
		DisconnectCheckInterval: c.options.DisconnectCheckInterval,
	})
	if err != nil {
		return nil, err
	}

	if c.sessions == nil {
		c.sessions = make(map[*reader.Session]struct{})
	}
	c.sessions[s] = struct{}{}
	go func() {
		<-s.Done()
		c.mu.Lock()
		delete(c.sessions, s)
		c.mu.Unlock()
	}()
	return s, nil
}

// Close closes every open session, then the driver.
func (c *client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	open := make([]*reader.Session, 0, len(c.sessions))
	for s := range c.sessions {
		open = append(open, s)
	}
	c.mu.Unlock()

	var err error
	for _, s := range open {
		err = multierr.Append(err, s.Close())
	}
	err = multierr.Append(err, c.driver.Close())
	c.logger.Info("MIDI client closed", c.logger.Field().Int("sessions", len(open)))
	_ = c.logger.Sync()
	return err
}
