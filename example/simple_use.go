package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/leandrodaf/drumkit/internal/logger"
	"github.com/leandrodaf/drumkit/sdk/contracts"
	"github.com/leandrodaf/drumkit/sdk/midi"
)

func main() {
	log := logger.NewZapLogger()

	client, err := midi.NewMIDIClient(
		contracts.WithLogger(log),
		contracts.WithLogLevel(contracts.InfoLevel),
		contracts.WithMIDIEventFilter(contracts.EventFilter{
			Kinds: []contracts.EventKind{contracts.NoteOn, contracts.NoteOff},
		}),
	)
	if err != nil {
		log.Error("Failed to initialize MIDI client", log.Field().Error("error", err))
		return
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ports, err := client.ListPorts(ctx)
	if err != nil || len(ports) == 0 {
		log.Error("No MIDI input ports found or error listing ports", log.Field().Error("error", err))
		return
	}
	fmt.Println("Available MIDI inputs:", ports)

	session, err := client.Open(ports[0])
	if err != nil {
		log.Error("Failed to open MIDI port", log.Field().Error("error", err))
		return
	}
	defer session.Close()

	fmt.Println("Capturing MIDI events... Press Ctrl+C to exit.")
	for {
		event, err := session.ReadNext(ctx)
		if err != nil {
			log.Info("Capture stopped", log.Field().Error("reason", err))
			return
		}
		log.Info("MIDI Event",
			log.Field().Time("Timestamp", event.Timestamp),
			log.Field().String("Kind", event.Kind.String()),
			log.Field().Uint8("Note", event.Note()),
			log.Field().Uint8("Velocity", event.Velocity()),
		)
	}
}
