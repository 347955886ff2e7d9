// Package server implements a self-contained discovery service for
// development and testing: the push-stream endpoints consumed by the
// monitor, fed from a pluggable event source.
//
// # Endpoints
//
//	GET /api/discovery/start   newline-delimited JSON push stream
//	GET /api/discovery/ws      websocket push stream
//
// Each client connection runs its own discovery session: a started
// event, then device_found/device_updated events from the source, then
// completed (clean end of the source) or error (source failure). With
// an unbounded source the session runs until the client disconnects.
//
// # Sources
//
// MDNSSource is the real source: it browses the local network via
// mDNS/DNS-SD (grandcat/zeroconf) and maps resolved service entries to
// device records with discovery_method "mdns". Tests substitute their
// own EventSource.
package server
