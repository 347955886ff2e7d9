package discovery

import "testing"

func device(name, address string) Device {
	return Device{
		Name:            name,
		Address:         address,
		Addresses:       []string{address},
		Hostname:        name + ".local",
		DiscoveryMethod: "mdns",
	}
}

func TestRegistry_UpsertFound(t *testing.T) {
	r := NewRegistry()

	if !r.UpsertFound(device("A", "10.0.0.1")) {
		t.Error("UpsertFound(A) = false, want true for new address")
	}
	if !r.UpsertFound(device("B", "10.0.0.2")) {
		t.Error("UpsertFound(B) = false, want true for new address")
	}

	// Duplicate found for a present address must not overwrite
	if r.UpsertFound(device("A-renamed", "10.0.0.1")) {
		t.Error("UpsertFound(duplicate) = true, want false")
	}

	devices := r.Devices()
	if len(devices) != 2 {
		t.Fatalf("Len() = %d, want 2", len(devices))
	}
	if devices[0].Name != "A" {
		t.Errorf("devices[0].Name = %q, want %q (found must be idempotent)", devices[0].Name, "A")
	}
	if devices[1].Name != "B" {
		t.Errorf("devices[1].Name = %q, want %q", devices[1].Name, "B")
	}
}

func TestRegistry_InsertionOrder(t *testing.T) {
	r := NewRegistry()

	addresses := []string{"10.0.0.5", "10.0.0.1", "10.0.0.3", "10.0.0.2"}
	for i, addr := range addresses {
		r.UpsertFound(device(string(rune('A'+i)), addr))
	}

	// Re-announce the first address; order must not change
	r.UpsertFound(device("Z", "10.0.0.5"))

	devices := r.Devices()
	if len(devices) != len(addresses) {
		t.Fatalf("Len() = %d, want %d", len(devices), len(addresses))
	}
	for i, addr := range addresses {
		if devices[i].Address != addr {
			t.Errorf("devices[%d].Address = %q, want %q (first-appearance order)", i, devices[i].Address, addr)
		}
	}
}

func TestRegistry_ApplyUpdate(t *testing.T) {
	r := NewRegistry()
	r.UpsertFound(device("A", "10.0.0.1"))
	r.UpsertFound(device("B", "10.0.0.2"))

	updated := device("B2", "10.0.0.2")
	updated.Hostname = "b2.local"
	if !r.ApplyUpdate(updated) {
		t.Fatal("ApplyUpdate(present address) = false, want true")
	}

	devices := r.Devices()
	if devices[1].Name != "B2" || devices[1].Hostname != "b2.local" {
		t.Errorf("devices[1] = %+v, want wholesale replacement by B2", devices[1])
	}
	if devices[0].Name != "A" {
		t.Errorf("devices[0].Name = %q, update must not touch other entries", devices[0].Name)
	}
	if devices[1].Address != "10.0.0.2" {
		t.Errorf("devices[1].Address = %q, update must keep position", devices[1].Address)
	}
}

func TestRegistry_ApplyUpdate_UnknownAddress(t *testing.T) {
	r := NewRegistry()
	r.UpsertFound(device("A", "10.0.0.1"))

	if r.ApplyUpdate(device("ghost", "10.0.0.99")) {
		t.Error("ApplyUpdate(unknown address) = true, want false (no-op)")
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (update must not create entries)", r.Len())
	}
}

func TestRegistry_Clear(t *testing.T) {
	r := NewRegistry()
	r.UpsertFound(device("A", "10.0.0.1"))
	r.UpsertFound(device("B", "10.0.0.2"))

	r.Clear()

	if r.Len() != 0 {
		t.Errorf("Len() after Clear() = %d, want 0", r.Len())
	}

	// Addresses seen before the clear are new again
	if !r.UpsertFound(device("A", "10.0.0.1")) {
		t.Error("UpsertFound after Clear() = false, want true")
	}
}

func TestRegistry_FoundUpdateFoundScenario(t *testing.T) {
	// found(A) -> found(B) -> updated(B as B2) -> found(A duplicate)
	r := NewRegistry()

	r.UpsertFound(device("A", "10.0.0.1"))
	r.UpsertFound(device("B", "10.0.0.2"))
	r.ApplyUpdate(device("B2", "10.0.0.2"))
	r.UpsertFound(device("A-dup", "10.0.0.1"))

	devices := r.Devices()
	if len(devices) != 2 {
		t.Fatalf("Len() = %d, want 2", len(devices))
	}
	if devices[0].Name != "A" {
		t.Errorf("devices[0].Name = %q, want original A", devices[0].Name)
	}
	if devices[1].Name != "B2" {
		t.Errorf("devices[1].Name = %q, want B2", devices[1].Name)
	}
}

func TestRegistry_DevicesReturnsCopy(t *testing.T) {
	r := NewRegistry()
	r.UpsertFound(device("A", "10.0.0.1"))

	snapshot := r.Devices()
	snapshot[0].Name = "mutated"

	if r.Devices()[0].Name != "A" {
		t.Error("mutating a snapshot must not affect the registry")
	}
}
