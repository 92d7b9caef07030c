// Command findport prints the first MIDI input whose name contains a keyword.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/leandrodaf/drumkit/internal/logger"
	"github.com/leandrodaf/drumkit/sdk/contracts"
	"github.com/leandrodaf/drumkit/sdk/midi"
	"github.com/spf13/cobra"
)

func main() {
	if err := newFindPortCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newFindPortCmd(extra ...contracts.Option) *cobra.Command {
	var wait time.Duration
	cmd := &cobra.Command{
		Use:          "findport <keyword>",
		Short:        "Print the first MIDI input port whose name contains keyword",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := append([]contracts.Option{
				contracts.WithLogger(logger.NewZapLogger()),
				contracts.WithLogLevel(contracts.WarnLevel),
			}, extra...)
			client, err := midi.NewMIDIClient(opts...)
			if err != nil {
				return err
			}
			defer client.Close()

			var port contracts.PortDescriptor
			if wait > 0 {
				port, err = client.WaitForPort(cmd.Context(), args[0], 0, wait)
				if err != nil {
					return err
				}
			} else {
				inputs, err := client.ListPorts(cmd.Context())
				if err != nil {
					return err
				}
				var ok bool
				if port, ok = client.FindPort(args[0], inputs); !ok {
					return fmt.Errorf("no MIDI input matching %q", args[0])
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), port.Name)
			return nil
		},
	}
	cmd.Flags().DurationVar(&wait, "wait", 0, "keep polling for the port up to this long")
	return cmd
}
