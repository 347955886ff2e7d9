// Package logging provides structured logging for SparkPing.
//
// This package wraps zap logger with convenience functions for common logging
// patterns used throughout the application. Logging is silent by default so
// CLI and TUI output stays clean; set SPARKPING_LOG_LEVEL to enable it.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (raw frames, dropped events)
//   - Info: Normal operations (session open/close, state changes)
//   - Warn: Non-fatal issues (malformed frames, stale-epoch deliveries)
//   - Error: Fatal issues (startup failures, lost connections)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Device discovered",
//	    zap.String("address", "192.168.1.100"),
//	    zap.String("hostname", "printer.local"),
//	)
//
// # Specialized Logging
//
// The package provides domain-specific logging functions:
//
// Session Logging:
//
//	logging.LogSession(epoch, "opened")
//	logging.LogSession(epoch, "closed")
//
// Frame Logging:
//
//	logging.LogFrame(epoch, "device_found", len(payload))
//
// # Configuration
//
// Initialize logging at startup:
//
//	if err := logging.InitializeFromEnv(); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap logger
// handles synchronization automatically.
package logging
