package midi

import (
	"fmt"
	"time"

	"github.com/leandrodaf/drumkit/internal/logger"
	"github.com/leandrodaf/drumkit/internal/ports"
	"github.com/leandrodaf/drumkit/sdk/contracts"
)

// DefaultDisconnectCheckInterval is how often sessions re-list ports to spot unplugged devices.
const DefaultDisconnectCheckInterval = time.Second

// applyDefaultOptions sets default values for ClientOptions if not explicitly provided.
//
// opts ...contracts.Option: A variadic list of option functions that can modify ClientOptions.
//
// Returns:
//   - contracts.ClientOptions: A structure containing the finalized client options with defaults applied.
//   - error: An error if there was an issue applying the options.
func applyDefaultOptions(opts ...contracts.Option) (contracts.ClientOptions, error) {
	options := &contracts.ClientOptions{}
	for _, opt := range opts {
		opt(options)
	}

	// Set defaults if options are not provided
	if options.Logger == nil {
		options.Logger = logger.NewZapLogger()
	}
	if options.LogLevel == 0 {
		options.LogLevel = contracts.InfoLevel
	}
	if options.CoreMIDIConfig == nil {
		options.CoreMIDIConfig = &contracts.CoreMIDIConfig{ClientName: "drumkit"}
	}
	if options.BufferSize < 0 {
		return contracts.ClientOptions{}, fmt.Errorf("buffer size must not be negative: %d", options.BufferSize)
	}
	if options.PollInterval <= 0 {
		options.PollInterval = ports.DefaultPollInterval
	}
	if options.DisconnectCheckInterval == 0 {
		options.DisconnectCheckInterval = DefaultDisconnectCheckInterval
	}

	options.Logger.SetLevel(options.LogLevel)
	if options.LogFilePath != "" {
		if err := options.Logger.SetDestination(contracts.FileLog, options.LogFilePath); err != nil {
			return contracts.ClientOptions{}, err
		}
	}
	return *options, nil
}
