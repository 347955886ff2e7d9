package discovery

import (
	"encoding/json"
	"fmt"
)

// EventType discriminates the variants of a pushed discovery event.
type EventType string

const (
	// EventDeviceFound announces a newly discovered device
	EventDeviceFound EventType = "device_found"

	// EventDeviceUpdated carries a refreshed record for a known device
	EventDeviceUpdated EventType = "device_updated"

	// EventStarted is the service's acknowledgement that discovery is running
	EventStarted EventType = "started"

	// EventCompleted is a service-side end of discovery (terminal)
	EventCompleted EventType = "completed"

	// EventError is a service-side failure (terminal)
	EventError EventType = "error"
)

// Event is one decoded discovery event. Which fields are populated
// depends on Type: Device for device_found/device_updated, Message for
// started/completed/error, DeviceCount for completed.
type Event struct {
	Type        EventType `json:"event_type"`
	Device      *Device   `json:"device,omitempty"`
	Message     string    `json:"message,omitempty"`
	DeviceCount int       `json:"device_count,omitempty"`
}

// Terminal reports whether the event ends the session from the service
// side (completed or error).
func (e *Event) Terminal() bool {
	return e.Type == EventCompleted || e.Type == EventError
}

// DecodeError reports a malformed frame. Decode failures are non-fatal:
// the frame is dropped and the stream continues.
type DecodeError struct {
	Reason string
	Err    error
}

// Error implements the error interface
func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("decode failed: %s", e.Reason)
}

// Unwrap returns the underlying error for error chain inspection
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// DecodeEvent parses one raw pushed frame into a typed discovery event.
// The payload must be a single JSON object carrying an "event_type"
// discriminator; device-carrying variants must include a device record.
func DecodeEvent(raw []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, &DecodeError{Reason: "invalid JSON", Err: err}
	}

	switch event.Type {
	case EventDeviceFound, EventDeviceUpdated:
		if event.Device == nil {
			return nil, &DecodeError{Reason: fmt.Sprintf("%s event without device", event.Type)}
		}
		if event.Device.Address == "" {
			return nil, &DecodeError{Reason: fmt.Sprintf("%s event with empty device address", event.Type)}
		}
	case EventStarted, EventCompleted, EventError:
		// Message-only variants; an empty message is legal.
	case "":
		return nil, &DecodeError{Reason: "missing event_type discriminator"}
	default:
		return nil, &DecodeError{Reason: fmt.Sprintf("unknown event_type %q", event.Type)}
	}

	return &event, nil
}
