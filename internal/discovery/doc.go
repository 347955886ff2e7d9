// Package discovery defines the device-discovery data model: the device
// record pushed by the discovery service, the typed event union, and the
// deduplicated device registry.
//
// # Events
//
// The discovery service pushes one JSON object per frame, discriminated
// by an "event_type" field:
//
//	{"event_type":"device_found",   "device": {...}}
//	{"event_type":"device_updated", "device": {...}}
//	{"event_type":"started",   "message": "..."}
//	{"event_type":"completed", "message": "...", "device_count": 3}
//	{"event_type":"error",     "message": "..."}
//
// DecodeEvent parses a frame into an Event. A malformed frame yields a
// *DecodeError; callers drop the frame and keep reading, it never ends
// the session.
//
// # Registry
//
// Registry holds one entry per distinct device address, ordered by first
// appearance. Found events are idempotent and never overwrite an
// existing entry; update events replace an existing entry wholesale and
// are dropped for unknown addresses.
//
// # Identity
//
// The dedup key is the device's primary address, compared as an exact
// string. Devices reachable through several discovery sources appear
// once per distinct address; the discovery_method tag is carried for
// display only.
package discovery
