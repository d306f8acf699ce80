package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newProcessesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "processes",
		Short: "List known Supervisor processes",
		Long:  "Lists every Filter Supervisor process in the cluster-wide discovery group.",
		RunE:  runProcesses,
	}
}

func runProcesses(cmd *cobra.Command, args []string) error {
	if err := requireAuthentication(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := client.Processes(ctx)
	if err != nil {
		return fmt.Errorf("failed to list processes: %w", err)
	}

	if len(resp.Processes) == 0 {
		fmt.Println("No Supervisor processes known.")
		return nil
	}

	fmt.Printf("%d process(es):\n\n", len(resp.Processes))
	for _, p := range resp.Processes {
		fmt.Printf("  %s  %s\n", p.NodeID, p.Address)
	}

	return nil
}
