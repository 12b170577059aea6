package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"prospec-live/internal/config"
	"prospec-live/pkg/events"
	pktNats "prospec-live/pkg/nats"

	"github.com/fatih/color"
)

// Supervisor console: tails the prospection event bus and prints door edits,
// invitation traffic and finalized transcript segments as they happen.
func main() {
	cfg := config.Load()

	color.Cyan("🔭 Supervisor feed — listening on %s\n", cfg.App.NatsURL)

	sub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Fatalf("Unable to connect to NATS: %v", err)
	}
	defer sub.Close()

	err = sub.Subscribe("prospec.>", "supervisor-console", func(ctx context.Context, event events.Event) error {
		printEvent(event)
		return nil
	})
	if err != nil {
		log.Fatalf("Unable to subscribe: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	color.Cyan("\nSupervisor feed stopped")
}

func printEvent(event events.Event) {
	payload, _ := json.MarshalIndent(event.Payload(), "", "  ")

	switch event.EventType() {
	case events.DoorUpdated:
		color.Green("[%s] DOOR_UPDATED", event.Timestamp().Format("15:04:05"))
	case events.TranscriptFinal:
		color.Yellow("[%s] TRANSCRIPT_FINAL", event.Timestamp().Format("15:04:05"))
	case events.InvitationCreated, events.InvitationAccepted, events.InvitationRefused, events.InvitationCancelled:
		color.Magenta("[%s] %s", event.Timestamp().Format("15:04:05"), event.EventType())
	default:
		color.White("[%s] %s", event.Timestamp().Format("15:04:05"), event.EventType())
	}
	fmt.Println(string(payload))
}
