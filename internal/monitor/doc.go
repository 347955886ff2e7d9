// Package monitor maintains the live, deduplicated device registry fed
// by the discovery service's push stream, together with an
// {idle, running, error} status and a human-readable message.
//
// # Control surface
//
// The UI layer drives a Monitor through three operations and one read:
//
//	m := monitor.New(urls.DiscoveryStream(base), nil)
//	m.Start(ctx)      // open a session, clear devices, status running
//	m.Stop()          // close the session, "Discovery stopped", idle
//	m.ClearDevices()  // empty the registry; error status resets to idle
//	snap := m.Snapshot()
//
// Updates() delivers a coalesced wake-up whenever the observable state
// changes, so interactive consumers need not poll.
//
// # Session lifecycle
//
// At most one session is live at a time: Start closes any prior
// session before dialing, and every session carries a monotonically
// increasing epoch. Frames are applied only when their epoch matches
// the current one, so a frame still in flight from a stopped session
// can never mutate the registry or the status.
//
// A transport failure under the live epoch moves the monitor to the
// error status with a canned message; the same failure arriving after
// an explicit stop is discarded silently. Malformed frames are dropped
// and never end the session. Service-pushed completed and error events
// are terminal: they close the session from the consumer side too.
//
// There is no terminal monitor state. Both idle and error are exited
// by calling Start again.
package monitor
