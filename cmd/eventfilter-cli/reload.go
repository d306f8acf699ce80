package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newReloadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Trigger reload_config on the admin surface",
		Long:  "Reloads the Supervisor's ExtractorMap and pushes it to every live Filter Worker.",
		RunE:  runReload,
	}
}

func runReload(cmd *cobra.Command, args []string) error {
	if err := requireAuthentication(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := client.Reload(ctx)
	if err != nil {
		return fmt.Errorf("reload failed: %w", err)
	}

	if resp.Reloaded {
		fmt.Println("Reload succeeded.")
	} else {
		fmt.Printf("Reload did not apply: %s\n", resp.Message)
	}

	return nil
}
