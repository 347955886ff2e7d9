// Sparkping is a live monitor for network device discovery.
//
// It connects to a discovery service's push stream, maintains a
// deduplicated set of discovered devices, and presents them either in
// a full-screen TUI or as a plain-text event log. A bundled simulator
// serves the same stream from a real mDNS browse so the monitor can be
// exercised without the production service.
//
// Usage:
//
//	sparkping [command] [flags]
//
// Running without arguments launches the interactive monitor when
// stdout is a terminal, or the plain-text watcher otherwise.
// See 'sparkping --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/hco/sparkping/internal/logging"
	"github.com/hco/sparkping/internal/version"
)

func main() {
	if err := logging.InitializeFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}
	defer logging.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sparkping",
	Short: "Live network device discovery monitor",
	Long: `A live monitor for network device discovery.

Connects to a discovery service's push stream and maintains a
deduplicated, insertion-ordered view of discovered devices.

If no command is specified, the interactive monitor launches when
stdout is a terminal; otherwise events are streamed as plain text.`,
	Version: version.Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: full-screen monitor on a TTY, plain
		// watcher when output is redirected
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return runMonitor(cmd, args)
		}
		return runWatch(cmd, args)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sparkping %s (commit: %s)\n", version.Version, version.Commit)
	},
}
