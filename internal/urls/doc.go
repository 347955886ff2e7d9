// Package urls provides centralized constants and joiners for the discovery
// service endpoints used throughout the application.
//
// This package exists so the endpoint layout lives in a single location.
// Callers supply an opaque base path and get back fully joined URLs.
//
// Usage:
//
//	import "github.com/hco/sparkping/internal/urls"
//
//	streamURL := urls.DiscoveryStream(cfg.Service.BaseURL)
package urls
