package main

import (
	"fmt"

	"github.com/leandrodaf/drumkit/sdk/contracts"
	"github.com/leandrodaf/drumkit/sdk/midi"
	"github.com/spf13/cobra"
)

func newListCmd(f *runFlags, extra []contracts.Option) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available MIDI input ports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := f.clientOptions(false, extra)
			if err != nil {
				return err
			}
			client, err := midi.NewMIDIClient(opts...)
			if err != nil {
				return err
			}
			defer client.Close()

			inputs, err := client.ListPorts(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(inputs) == 0 {
				fmt.Fprintln(out, "No MIDI input ports detected.")
				return nil
			}
			fmt.Fprintln(out, "Available MIDI input ports:")
			for _, p := range inputs {
				marker := " "
				if _, ok := client.FindPort(f.portKeyword, []contracts.PortDescriptor{p}); ok && f.portKeyword != "" {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %2d: %s\n", marker, p.Index, p.Name)
			}
			return nil
		},
	}
}
