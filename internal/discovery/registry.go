package discovery

// Registry is a deduplicated collection of discovered devices, keyed by
// address and ordered by first appearance.
//
// Registry is not safe for concurrent use by itself; the monitor
// serializes all access under its own lock.
type Registry struct {
	devices []Device
	index   map[string]int
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		index: make(map[string]int),
	}
}

// UpsertFound applies a device_found event. If no entry has the
// device's address it is appended, preserving order of first discovery.
// A found event for an address already present is a duplicate and
// leaves the existing entry untouched. Returns true when the device
// was appended.
func (r *Registry) UpsertFound(device Device) bool {
	if _, ok := r.index[device.Address]; ok {
		return false
	}
	r.index[device.Address] = len(r.devices)
	r.devices = append(r.devices, device)
	return true
}

// ApplyUpdate applies a device_updated event: the entry with a matching
// address is replaced wholesale, keeping its position. An update for an
// unknown address is a no-op; it neither creates an entry nor errors.
// Returns true when an entry was replaced.
func (r *Registry) ApplyUpdate(device Device) bool {
	i, ok := r.index[device.Address]
	if !ok {
		return false
	}
	r.devices[i] = device
	return true
}

// Clear empties the registry
func (r *Registry) Clear() {
	r.devices = nil
	r.index = make(map[string]int)
}

// Devices returns a copy of the registry contents in insertion order
func (r *Registry) Devices() []Device {
	out := make([]Device, len(r.devices))
	copy(out, r.devices)
	return out
}

// Len returns the number of registered devices
func (r *Registry) Len() int {
	return len(r.devices)
}
