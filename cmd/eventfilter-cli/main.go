package main

import (
	"fmt"
	"os"
	"time"

	"github.com/eventfilter-go/eventfilter/pkg/adminclient"
	"github.com/spf13/cobra"
)

var (
	serverURL string
	clientID  string
	token     string
	timeout   time.Duration

	client *adminclient.Client
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "eventfilter-cli",
		Short: "Command line interface for an EventFilter admin surface",
		Long: `eventfilter-cli talks to a Filter Supervisor's admin HTTP surface.
It provides commands for authentication, triggering reload_config,
listing live Supervisor processes, and inspecting Filter Worker stats.`,
		PersistentPreRunE: initializeClient,
	}

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8081", "admin surface URL")
	rootCmd.PersistentFlags().StringVar(&clientID, "client-id", "", "client ID for authentication")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "bearer token (if already authenticated)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")

	rootCmd.AddCommand(newAuthCommand())
	rootCmd.AddCommand(newReloadCommand())
	rootCmd.AddCommand(newProcessesCommand())
	rootCmd.AddCommand(newWorkersCommand())
	rootCmd.AddCommand(newHealthCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func initializeClient(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "help" || cmd.Parent() == nil {
		return nil
	}

	if clientID == "" {
		clientID = "eventfilter-cli"
	}

	config := adminclient.Config{
		ServerURL: serverURL,
		ClientID:  clientID,
		Timeout:   timeout,
	}

	var err error
	client, err = adminclient.NewClient(config)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	if token != "" {
		client.SetToken(token)
	}

	return nil
}

func requireAuthentication() error {
	if client == nil {
		return fmt.Errorf("client not initialized")
	}
	if !client.IsAuthenticated() {
		return fmt.Errorf("not authenticated - run 'eventfilter-cli auth' first or provide --token")
	}
	return nil
}
