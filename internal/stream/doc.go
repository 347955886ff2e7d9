// Package stream implements the cancellable push-subscription primitive
// used to consume the discovery service's event stream.
//
// A Subscription is a single owned resource: acquired by Dial, released
// exactly once by Close (idempotent). Frames are delivered in service
// emission order on an unbuffered channel; no reordering or batching
// happens on the consumer side.
//
// # Transports
//
// Two interchangeable transports implement the same contract:
//
//   - HTTPDialer: a GET request whose response body is an unbounded
//     newline-delimited JSON stream (one event object per line).
//   - WebsocketDialer: the same payloads pushed as websocket text
//     messages, for ws:// and wss:// endpoints.
//
// NewDialer picks the transport from the URL scheme.
//
// # Failure semantics
//
// A transport failure while the subscription is live is reported as one
// terminal Frame with a non-nil Err, after which the channel closes. A
// failure provoked by Close (cancelled request, locally closed socket)
// is not an error: the channel simply closes. Distinguishing a stale
// subscription's stray frames from the current session's is the
// consumer's job, via the monitor's epoch guard.
package stream
