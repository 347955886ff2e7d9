package monitor

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/hco/sparkping/internal/discovery"
	"github.com/hco/sparkping/internal/logging"
	"github.com/hco/sparkping/internal/stream"
)

// Status is the monitor's lifecycle state.
type Status int

const (
	// StatusIdle means no discovery session is running
	StatusIdle Status = iota
	// StatusRunning means a session is live and events are applied
	StatusRunning
	// StatusError means the last session ended in a failure
	StatusError
)

// String returns a human-readable name for the status
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Canned status messages surfaced to the UI.
const (
	// MessageStopped is set when the user stops a running session
	MessageStopped = "Discovery stopped"

	// MessageConnectionLost is set when the transport fails under a
	// live session
	MessageConnectionLost = "Connection to discovery service lost"
)

// Snapshot is the read-only observable state exposed to the UI layer.
type Snapshot struct {
	Devices []discovery.Device
	Status  Status
	Message string
	Running bool
}

// Monitor owns one discovery session at a time and maintains the live
// device registry and status. All state is guarded by a single mutex,
// so events are applied strictly in delivery order and never
// concurrently.
type Monitor struct {
	streamURL string
	dialer    stream.Dialer

	mu       sync.Mutex
	registry *discovery.Registry
	status   Status
	message  string
	epoch    uint64
	sub      stream.Subscription

	updates chan struct{}
}

// New creates an idle monitor that will subscribe to streamURL.
// The dialer may be nil, in which case it is chosen from the URL scheme.
func New(streamURL string, dialer stream.Dialer) *Monitor {
	if dialer == nil {
		dialer = stream.NewDialer(streamURL)
	}
	return &Monitor{
		streamURL: streamURL,
		dialer:    dialer,
		registry:  discovery.NewRegistry(),
		status:    StatusIdle,
		updates:   make(chan struct{}, 1),
	}
}

// Start begins a new discovery session. Any prior session is closed
// first, the registry and message are cleared, and the status becomes
// Running. Start works from any state; restarting while Running is a
// fresh session.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()

	// At most one live session: supersede the old one before dialing.
	// closeSessionLocked bumps the epoch, making any frame still in
	// flight from the old subscription stale and giving this session a
	// fresh tag.
	m.closeSessionLocked()
	epoch := m.epoch
	m.registry.Clear()
	m.message = ""

	// The session is Running from the caller's point of view as soon as
	// Start is underway; a snapshot taken mid-dial must not show the
	// previous session's terminal status.
	m.status = StatusRunning
	m.notifyLocked()

	// Dial outside the lock so a slow connect doesn't block readers
	m.mu.Unlock()

	sub, err := m.dialer.Dial(ctx, m.streamURL)

	m.mu.Lock()
	defer m.mu.Unlock()

	if epoch != m.epoch {
		// A competing Start or Close superseded this session while we
		// were dialing; hand the subscription straight back.
		if err == nil {
			sub.Close()
		}
		return nil
	}

	if err != nil {
		m.status = StatusError
		m.message = err.Error()
		m.notifyLocked()
		return err
	}

	m.sub = sub
	logging.LogSession(epoch, "opened")

	go m.pump(epoch, sub)
	return nil
}

// Stop ends the current session. While Running it sets the stopped
// message and returns to Idle; in any other state it only releases the
// session handle, leaving status and message untouched. Safe to call
// when already stopped.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	wasRunning := m.status == StatusRunning
	m.closeSessionLocked()

	if wasRunning {
		m.status = StatusIdle
		m.message = MessageStopped
		m.notifyLocked()
	}
}

// ClearDevices empties the registry and message. A Running session
// keeps populating the now-empty registry; an Error status is
// acknowledged and reset to Idle.
func (m *Monitor) ClearDevices() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.registry.Clear()
	m.message = ""
	if m.status == StatusError {
		m.status = StatusIdle
	}
	m.notifyLocked()
}

// Close releases any open session unconditionally, regardless of
// status. It is the teardown hook for the owning context and is safe
// to call repeatedly.
func (m *Monitor) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeSessionLocked()
}

// Snapshot returns a copy of the observable state.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		Devices: m.registry.Devices(),
		Status:  m.status,
		Message: m.message,
		Running: m.status == StatusRunning,
	}
}

// Updates returns a coalescing notification channel: a receive means
// the observable state changed at least once since the last receive.
func (m *Monitor) Updates() <-chan struct{} {
	return m.updates
}

// closeSessionLocked releases the session handle if one is held and
// always bumps the epoch, invalidating frames still in flight from the
// closed subscription as well as any Start still dialing. Idempotent;
// callers hold m.mu.
func (m *Monitor) closeSessionLocked() {
	if m.sub != nil {
		m.sub.Close()
		m.sub = nil
		logging.LogSession(m.epoch, "closed")
	}
	m.epoch++
}

// notifyLocked signals Updates without blocking; callers hold m.mu.
func (m *Monitor) notifyLocked() {
	select {
	case m.updates <- struct{}{}:
	default:
	}
}

// errStreamEnded marks a transport that ended without a completed or
// error event and without a transport error frame.
var errStreamEnded = errors.New("stream ended without a terminal event")

// pump funnels subscription frames into the monitor until the channel
// closes. Runs on its own goroutine, one per session.
func (m *Monitor) pump(epoch uint64, sub stream.Subscription) {
	for frame := range sub.Frames() {
		if frame.Err != nil {
			m.transportLost(epoch, frame.Err)
			continue
		}
		m.handleFrame(epoch, frame.Data)
	}

	// Channel closure with the epoch still live means the service ended
	// the stream silently: no terminal event, no error frame. Every
	// expected ending (completed/error events, Stop, Close, transport
	// error) bumps the epoch first, so this resolves as a stale no-op
	// on those paths.
	m.transportLost(epoch, errStreamEnded)
}

// handleFrame decodes and applies one pushed frame. Frames delivered
// under a superseded epoch are discarded before any state is touched.
func (m *Monitor) handleFrame(epoch uint64, raw []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if epoch != m.epoch {
		logging.Debug("Discarding stale-epoch frame",
			zap.Uint64("frame_epoch", epoch),
			zap.Uint64("current_epoch", m.epoch),
		)
		return
	}

	event, err := discovery.DecodeEvent(raw)
	if err != nil {
		// Malformed frame: drop it, keep the session alive
		logging.Warn("Dropping malformed frame", zap.Error(err))
		return
	}
	logging.LogFrame(epoch, string(event.Type), len(raw))

	switch event.Type {
	case discovery.EventDeviceFound:
		if m.registry.UpsertFound(*event.Device) {
			logging.Debug("Device registered",
				zap.String("address", event.Device.Address),
				zap.String("name", event.Device.Name),
			)
			m.notifyLocked()
		}

	case discovery.EventDeviceUpdated:
		if m.registry.ApplyUpdate(*event.Device) {
			m.notifyLocked()
		} else {
			// Update for an address never announced: dropped. The
			// service contract says found precedes updated.
			logging.Debug("Dropping update for unknown address",
				zap.String("address", event.Device.Address),
			)
		}

	case discovery.EventStarted:
		m.message = event.Message
		m.notifyLocked()

	case discovery.EventCompleted:
		// Service ended the session on its side
		m.closeSessionLocked()
		m.status = StatusIdle
		m.message = event.Message
		m.notifyLocked()

	case discovery.EventError:
		m.closeSessionLocked()
		m.status = StatusError
		m.message = event.Message
		m.notifyLocked()
	}
}

// transportLost handles a transport failure. Under a live epoch it is a
// fatal stream failure; after the handle was cleared it is a late
// straggler from a closed connection and is ignored.
func (m *Monitor) transportLost(epoch uint64, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if epoch != m.epoch {
		logging.Debug("Ignoring transport failure from closed session", zap.Error(err))
		return
	}

	logging.Error("Discovery stream lost", zap.Error(err))
	m.closeSessionLocked()
	m.status = StatusError
	m.message = MessageConnectionLost
	m.notifyLocked()
}
