/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/rentalhub/apiserver/config"
	"github.com/rentalhub/apiserver/internal/events"
	"github.com/spf13/cobra"
)

// notifierCmd consumes message-created events from the broker. It is the
// integration point for notification delivery; for now it logs each event.
var notifierCmd = &cobra.Command{
	Use:   "notifier",
	Short: "Consume rental-message events from the broker",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		bus, err := events.FromConfig(cmd.Context(), cfg.Broker)
		if err != nil {
			return err
		}
		if bus == nil {
			return fmt.Errorf("no broker configured (BROKER_BACKEND=%q)", cfg.Broker.Backend)
		}
		defer func() {
			_ = bus.Close()
		}()

		fmt.Fprintf(os.Stderr, "consuming %q events\n", cfg.Broker.Channel)
		err = bus.Subscribe(cmd.Context(), handleEvent)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func handleEvent(ctx context.Context, evt events.Event) error {
	if evt.Type != events.TypeMessageCreated {
		slog.Warn("unexpected event type", "type", evt.Type, "id", evt.ID)
		return nil
	}

	var payload events.MessageCreated
	if err := json.Unmarshal(evt.Data, &payload); err != nil {
		// Drop unparsable events instead of redelivering them forever.
		slog.Error("unparsable event", "error", err, "id", evt.ID)
		return nil
	}

	slog.Info("message created",
		"message_id", payload.MessageID,
		"rental_id", payload.RentalID,
		"sender_id", payload.SenderID,
	)
	return nil
}

func init() {
	rootCmd.AddCommand(notifierCmd)
}
