package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hco/sparkping/internal/config"
	"github.com/hco/sparkping/internal/monitor"
	"github.com/hco/sparkping/internal/server"
	"github.com/hco/sparkping/internal/tui"
)

// Command flags
var (
	baseURL     string
	transport   string
	listenAddr  string
	serviceType string
	mdnsDomain  string
	scanTimeout int
)

func init() {
	// Service location flags (persistent on root)
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Discovery service base URL (overrides config file)")
	rootCmd.PersistentFlags().StringVar(&transport, "transport", "", "Stream transport: http or websocket (overrides config file)")

	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadConfig reads the config file and applies flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if baseURL != "" {
		cfg.Service.BaseURL = baseURL
	}
	if transport != "" {
		cfg.Service.Transport = transport
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// monitorCmd launches the interactive full-screen monitor
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Launch the interactive discovery monitor",
	Long: `Launch a full-screen TUI that follows the discovery stream live.

The monitor shows the current session status and a deduplicated,
insertion-ordered list of discovered devices. Discovery starts
automatically and can be restarted at any time.`,
	Example: `  # Monitor the configured discovery service
  sparkping monitor
  # Or simply (monitor is default on a terminal):
  sparkping

  # Monitor a specific service
  sparkping monitor --base-url http://10.0.0.5:8770/

  # Use the websocket transport
  sparkping monitor --transport websocket`,
	RunE: runMonitor,
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	m := monitor.New(cfg.StreamURL(), nil)
	defer m.Close()

	if err := tui.Run(m); err != nil {
		return fmt.Errorf("monitor error: %w", err)
	}
	return nil
}

// watchCmd streams discovery events as plain text
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream discovery events as plain text",
	Long: `Follow the discovery stream and print one line per event.

Unlike the interactive monitor, watch writes plain text to stdout and
is suitable for redirection and scripting. It exits when the session
completes, the service reports an error, or the stream is interrupted.`,
	Example: `  # Watch the configured discovery service
  sparkping watch

  # Watch a specific service and capture the output
  sparkping watch --base-url http://10.0.0.5:8770/ > devices.log`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := monitor.New(cfg.StreamURL(), nil)
	defer m.Close()

	if err := m.Start(ctx); err != nil {
		return fmt.Errorf("failed to start discovery: %w", err)
	}

	fmt.Printf("Watching %s\n", cfg.StreamURL())

	seen := 0
	for {
		select {
		case <-ctx.Done():
			m.Stop()
			fmt.Println("Interrupted.")
			return nil
		case <-m.Updates():
		}

		snap := m.Snapshot()

		// Report devices appended since the last wake-up. Updates
		// replace in place, so a shrinking or equal count means no
		// new devices.
		for ; seen < len(snap.Devices); seen++ {
			device := snap.Devices[seen]
			fmt.Printf("%s  %s\n", time.Now().Format("15:04:05"), device.String())
		}
		if len(snap.Devices) < seen {
			seen = len(snap.Devices)
		}

		if !snap.Running {
			if snap.Status == monitor.StatusError {
				return fmt.Errorf("%s", snap.Message)
			}
			if snap.Message != "" {
				fmt.Println(snap.Message)
			}
			fmt.Printf("Session ended with %d device(s).\n", len(snap.Devices))
			return nil
		}
	}
}

// serveCmd runs the bundled discovery-service simulator
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the discovery-service simulator",
	Long: `Run a local discovery service backed by a real mDNS browse.

The simulator serves the same push-stream endpoints the monitor
consumes. Each connecting client gets its own discovery session fed by
live mDNS responses on the local network.`,
	Example: `  # Serve on the configured listen address
  sparkping serve

  # Serve on a specific port with a bounded browse
  sparkping serve --listen :9000 --scan-timeout 30

  # Browse a specific service type
  sparkping serve --service-type _http._tcp`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "Listen address (overrides config file)")
	serveCmd.Flags().StringVar(&serviceType, "service-type", "", "mDNS service type to browse (overrides config file)")
	serveCmd.Flags().StringVar(&mdnsDomain, "domain", "", "mDNS domain (overrides config file)")
	serveCmd.Flags().IntVar(&scanTimeout, "scan-timeout", -1, "Browse timeout in seconds, 0 for unbounded (overrides config file)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if listenAddr != "" {
		cfg.Simulator.Listen = listenAddr
	}
	if serviceType != "" {
		cfg.Simulator.ServiceType = serviceType
	}
	if mdnsDomain != "" {
		cfg.Simulator.Domain = mdnsDomain
	}
	if scanTimeout >= 0 {
		cfg.Simulator.ScanTimeout = scanTimeout
	}

	source := server.NewMDNSSource()
	source.ServiceType = cfg.Simulator.ServiceType
	source.Domain = cfg.Simulator.Domain
	source.Timeout = time.Duration(cfg.Simulator.ScanTimeout) * time.Second

	srv := server.New(cfg.Simulator.Listen, source)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Discovery simulator listening on %s\n", cfg.Simulator.Listen)
	fmt.Printf("  Browsing %s in %s\n", cfg.Simulator.ServiceType, cfg.Simulator.Domain)

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("simulator error: %w", err)
	}

	fmt.Println("Simulator stopped.")
	return nil
}
