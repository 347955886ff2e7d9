package discovery

import "fmt"

// ServiceRecord describes one advertised service on a discovered device.
type ServiceRecord struct {
	// ServiceType is the service type identifier (e.g., "_http._tcp")
	ServiceType string `json:"service_type"`

	// Fullname is the full DNS name of the service instance
	Fullname string `json:"fullname"`

	// InstanceName is the human-readable instance name
	InstanceName string `json:"instance_name"`

	// Port is the service port
	Port int `json:"port"`

	// TxtProperties contains the service's TXT record key/value pairs
	TxtProperties map[string]string `json:"txt_properties"`
}

// Device represents a discovered network device as pushed by the
// discovery service. Address is the device's identity key: the registry
// deduplicates on exact address match.
type Device struct {
	// Name is the device's display name
	Name string `json:"name"`

	// Address is the primary address and the identity key (exact match)
	Address string `json:"address"`

	// Addresses lists all known addresses for the device
	Addresses []string `json:"addresses"`

	// Hostname is the device's network hostname
	Hostname string `json:"hostname"`

	// Services lists the services advertised by the device
	Services []ServiceRecord `json:"services"`

	// TxtProperties is the merged TXT properties across all services
	TxtProperties map[string]string `json:"txt_properties"`

	// TTL is the advertised time-to-live in seconds, if any
	TTL *int `json:"ttl"`

	// DiscoveryMethod tags how the device was found (e.g., "mdns")
	DiscoveryMethod string `json:"discovery_method"`
}

// String returns a human-readable string representation of the device
func (d *Device) String() string {
	name := d.Name
	if name == "" {
		name = d.Hostname
	}
	return fmt.Sprintf("%s at %s (%s)", name, d.Address, d.DiscoveryMethod)
}

// TxtProperty retrieves a merged TXT property by key, or returns empty
// string if not found
func (d *Device) TxtProperty(key string) string {
	if d.TxtProperties == nil {
		return ""
	}
	return d.TxtProperties[key]
}
