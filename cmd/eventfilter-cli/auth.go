package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newAuthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with the admin surface",
		Long: `Authenticate against a Filter Supervisor's admin surface using a
client ID. This generates a bearer token usable for subsequent commands.`,
		RunE: runAuth,
	}
}

func runAuth(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	fmt.Printf("Authenticating with %s as client %s...\n", serverURL, clientID)

	if err := client.Login(ctx); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	fmt.Printf("Authentication successful. Token: %s\n", client.GetToken())
	fmt.Println("Save the token for future use with --token.")

	return nil
}
