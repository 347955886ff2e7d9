package urls

import "strings"

// Discovery service endpoint paths, relative to the service base path.
const (
	// DiscoveryStreamPath is the GET-initiated push stream. The service
	// holds the connection open and pushes one JSON event per frame
	// until the client disconnects.
	DiscoveryStreamPath = "api/discovery/start"

	// DiscoveryWebsocketPath is the websocket variant of the push stream,
	// for deployments behind proxies that buffer streamed HTTP bodies.
	DiscoveryWebsocketPath = "api/discovery/ws"
)

// NormalizeBase guarantees a single trailing slash on a service base URL
// so joining with the endpoint paths above cannot double or drop a slash.
func NormalizeBase(base string) string {
	return strings.TrimRight(base, "/") + "/"
}

// DiscoveryStream returns the full URL of the push stream endpoint.
func DiscoveryStream(base string) string {
	return NormalizeBase(base) + DiscoveryStreamPath
}

// DiscoveryWebsocket returns the full URL of the websocket endpoint,
// rewriting the scheme to its websocket counterpart.
func DiscoveryWebsocket(base string) string {
	u := NormalizeBase(base) + DiscoveryWebsocketPath
	switch {
	case strings.HasPrefix(u, "https://"):
		return "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		return "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u
}
