package server

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/hco/sparkping/internal/discovery"
	"github.com/hco/sparkping/internal/logging"
)

const (
	// DefaultServiceType is the mDNS service type browsed when none is
	// configured
	DefaultServiceType = "_services._dns-sd._udp"

	// DefaultDomain is the mDNS domain (typically "local.")
	DefaultDomain = "local."
)

// EmitFunc receives one discovery event from a source.
type EmitFunc func(*discovery.Event)

// EventSource produces discovery events until ctx is cancelled. A
// returned error means the source failed; a nil return is a clean end.
type EventSource interface {
	Run(ctx context.Context, emit EmitFunc) error
}

// MDNSSource browses the local network via mDNS/DNS-SD and turns
// resolved service entries into device_found and device_updated events.
type MDNSSource struct {
	// ServiceType is the mDNS service type to browse
	ServiceType string

	// Domain is the mDNS domain
	Domain string

	// Timeout bounds the browse; zero browses until ctx is cancelled
	Timeout time.Duration
}

// NewMDNSSource creates a source with default settings
func NewMDNSSource() *MDNSSource {
	return &MDNSSource{
		ServiceType: DefaultServiceType,
		Domain:      DefaultDomain,
	}
}

// Run browses for services and emits one device_found per new address
// and one device_updated whenever a seen address re-resolves with
// different data.
func (s *MDNSSource) Run(ctx context.Context, emit EmitFunc) error {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	done := make(chan struct{})

	go func() {
		defer close(done)
		dedupeEntries(entries, emit)
	}()

	serviceType := s.ServiceType
	if serviceType == "" {
		serviceType = DefaultServiceType
	}
	domain := s.Domain
	if domain == "" {
		domain = DefaultDomain
	}

	if err := resolver.Browse(ctx, serviceType, domain, entries); err != nil {
		// Browse never took ownership of the channel, so the consumer
		// must be released here
		close(entries)
		<-done
		return fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	// Browse closes the entries channel when ctx ends
	<-ctx.Done()
	<-done

	return nil
}

// dedupeEntries drains resolved entries until the channel closes,
// emitting device_found for each new address and device_updated when a
// seen address re-resolves with different data.
func dedupeEntries(entries <-chan *zeroconf.ServiceEntry, emit EmitFunc) {
	seen := make(map[string]discovery.Device)
	for entry := range entries {
		device := entryToDevice(entry)
		if device == nil {
			continue
		}

		prev, ok := seen[device.Address]
		switch {
		case !ok:
			seen[device.Address] = *device
			logging.Debug("mDNS device found",
				zap.String("address", device.Address),
				zap.String("hostname", device.Hostname),
			)
			emit(&discovery.Event{Type: discovery.EventDeviceFound, Device: device})
		case !reflect.DeepEqual(prev, *device):
			seen[device.Address] = *device
			emit(&discovery.Event{Type: discovery.EventDeviceUpdated, Device: device})
		}
	}
}

// entryToDevice converts a zeroconf service entry to a device record.
// Returns nil when the entry has no resolvable address.
func entryToDevice(entry *zeroconf.ServiceEntry) *discovery.Device {
	var addresses []string
	for _, addr := range entry.AddrIPv4 {
		addresses = append(addresses, addr.String())
	}
	for _, addr := range entry.AddrIPv6 {
		addresses = append(addresses, addr.String())
	}
	if len(addresses) == 0 {
		return nil
	}

	txt := parseTxtRecords(entry.Text)

	name := entry.Instance
	if name == "" {
		name = strings.TrimSuffix(entry.HostName, ".")
	}

	ttl := int(entry.TTL)
	service := discovery.ServiceRecord{
		ServiceType:   entry.Service,
		Fullname:      entry.ServiceInstanceName(),
		InstanceName:  entry.Instance,
		Port:          entry.Port,
		TxtProperties: txt,
	}

	return &discovery.Device{
		Name:            name,
		Address:         addresses[0],
		Addresses:       addresses,
		Hostname:        entry.HostName,
		Services:        []discovery.ServiceRecord{service},
		TxtProperties:   txt,
		TTL:             &ttl,
		DiscoveryMethod: "mdns",
	}
}

// parseTxtRecords splits "key=value" TXT records into a map. A record
// without '=' becomes a key with an empty value.
func parseTxtRecords(records []string) map[string]string {
	txt := make(map[string]string)
	for _, record := range records {
		parts := strings.SplitN(record, "=", 2)
		if len(parts) == 2 {
			txt[parts[0]] = parts[1]
		} else {
			txt[parts[0]] = ""
		}
	}
	return txt
}
