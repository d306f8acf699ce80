package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newHealthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check admin surface health",
		RunE:  runHealth,
	}
}

func runHealth(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	health, err := client.Health(ctx)
	if err != nil {
		return fmt.Errorf("failed to check health: %w", err)
	}

	if health.Healthy {
		fmt.Println("Healthy.")
	} else {
		fmt.Println("Not healthy.")
	}
	fmt.Printf("Worker count: %d\n", health.WorkerCount)
	if health.Message != "" {
		fmt.Printf("Message: %s\n", health.Message)
	}

	return nil
}
