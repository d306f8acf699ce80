package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newWorkersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "workers",
		Short: "List live Filter Workers and their stats",
		RunE:  runWorkers,
	}
}

func runWorkers(cmd *cobra.Command, args []string) error {
	if err := requireAuthentication(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := client.Workers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list workers: %w", err)
	}

	if len(resp.Workers) == 0 {
		fmt.Println("No Filter Workers currently live.")
		return nil
	}

	for _, w := range resp.Workers {
		fmt.Printf("%s\n", w.EventType)
		fmt.Printf("  subscribers:       %d\n", w.SubscriberCount)
		fmt.Printf("  subscriptions:     %d\n", w.SubscriptionCount)
		fmt.Printf("  events matched:    %d\n", w.EventsMatched)
		fmt.Printf("  events delivered:  %d\n", w.EventsDelivered)
		fmt.Printf("  delivery drops:    %d\n", w.DeliveryDrops)
		fmt.Printf("  extraction errors: %d\n", w.ExtractionErrors)
	}

	return nil
}
