package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eventfilter-go/eventfilter/internal/adminapi"
	"github.com/eventfilter-go/eventfilter/internal/discovery"
	"github.com/eventfilter-go/eventfilter/internal/filtersupervisor"
)

const (
	appName    = "EventFilter"
	appVersion = "0.1.0"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to a YAML startup config file (optional)")
		showVersion = flag.Bool("version", false, "Show version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s v%s\n", appName, appVersion)
		os.Exit(0)
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	logger := log.Default()

	startup, err := LoadStartupConfig(*configPath)
	if err != nil {
		log.Fatalf("❌ Invalid startup configuration: %v", err)
	}

	logger.Printf("🚀 Starting %s v%s", appName, appVersion)
	logger.Printf("📋 Node ID: %s", startup.NodeID)
	logger.Printf("🔌 Admin Listen: %s", startup.ListenAddress)

	supConfig := filtersupervisor.NewConfig(startup.NodeID, startup.ListenAddress).
		WithExtractorConfigSource(startup.ExtractorConfigSource).
		WithWorkerIdleTTL(startup.WorkerIdleTTL).
		WithReloadDeadline(startup.ReloadDeadline)

	logger.Printf("🔧 Creating Filter Supervisor...")
	supervisor, err := filtersupervisor.New(supConfig,
		filtersupervisor.WithLogger(logger),
		filtersupervisor.WithDiscovery(discovery.NewStaticDiscovery(startup.DiscoverySeeds)),
	)
	if err != nil {
		log.Fatalf("❌ Failed to create Filter Supervisor: %v", err)
	}
	defer func() {
		logger.Printf("🛑 Closing Filter Supervisor...")
		if err := supervisor.Close(); err != nil {
			logger.Printf("⚠️  Error closing supervisor: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Printf("▶️  Starting Filter Supervisor...")
	if err := supervisor.Start(ctx); err != nil {
		log.Fatalf("❌ Failed to start Filter Supervisor: %v", err)
	}

	adminServer := adminapi.NewServer(supervisor, adminapi.Config{
		Addr:      startup.ListenAddress,
		SecretKey: startup.JWTSecret,
	})

	serverErrCh := make(chan error, 1)
	go func() {
		logger.Printf("🔌 Admin surface listening on %s", startup.ListenAddress)
		if err := adminServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	setupGracefulShutdown(cancel, adminServer, supervisor)

	logger.Printf("✅ %s node %s started successfully!", appName, startup.NodeID)
	logger.Printf("💡 Use Ctrl+C to shutdown gracefully")

	select {
	case err := <-serverErrCh:
		if err != nil {
			logger.Printf("❌ Admin surface stopped unexpectedly: %v", err)
		}
	case <-ctx.Done():
	}

	logger.Printf("👋 %s node %s stopped", appName, startup.NodeID)
}

// setupGracefulShutdown configures signal handling so SIGINT/SIGTERM/
// SIGHUP drain the admin surface and supervisor before the process
// exits, mirroring the teacher's daemon shutdown sequence.
func setupGracefulShutdown(cancel context.CancelFunc, adminServer *adminapi.Server, supervisor *filtersupervisor.Supervisor) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		sig := <-sigChan
		log.Printf("🛑 Received signal %v, shutting down gracefully...", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := adminServer.Stop(shutdownCtx); err != nil {
			log.Printf("⚠️  Error stopping admin surface: %v", err)
		}
		if err := supervisor.Close(); err != nil {
			log.Printf("⚠️  Error closing supervisor: %v", err)
		}

		cancel()
	}()
}
