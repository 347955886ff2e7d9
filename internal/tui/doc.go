// Package tui implements the full-screen terminal monitor for live
// device discovery.
//
// Built on the Bubble Tea framework, the package follows the Elm
// architecture: the MonitorModel holds all state, Update applies
// messages immutably, and View is a pure function of the model.
//
// # Framework Components
//
//   - bubbles/list: discovered device cards with filtering
//   - bubbles/spinner: activity indicator while a session is live
//   - bubbles/help: context-aware key binding footer
//   - lipgloss: styling and layout
//
// # Monitor Integration
//
// The screen does not own any stream state. It drives a
// monitor.Monitor through its control operations (Start, Stop,
// ClearDevices) and re-reads the monitor's snapshot whenever the
// monitor signals a change on its Updates channel. A long-running
// tea.Cmd blocks on that channel and re-arms itself after every
// wake-up, so stream events repaint the screen without polling.
//
// # Key Bindings
//
//   - ↑/↓: navigate the device list
//   - s: start a new discovery session
//   - x: stop the current session
//   - c: clear discovered devices
//   - q: quit
package tui
