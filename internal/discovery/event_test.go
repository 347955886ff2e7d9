package discovery

import (
	"errors"
	"testing"
)

func TestDecodeEvent(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantErr     bool
		wantType    EventType
		wantMessage string
		wantCount   int
		wantAddress string
	}{
		{
			name:        "device_found with full device",
			raw:         `{"event_type":"device_found","device":{"name":"Printer","address":"10.0.0.9","addresses":["10.0.0.9","fe80::1"],"hostname":"printer.local","services":[{"service_type":"_ipp._tcp","fullname":"Printer._ipp._tcp.local.","instance_name":"Printer","port":631,"txt_properties":{"rp":"ipp/print"}}],"txt_properties":{"rp":"ipp/print"},"ttl":120,"discovery_method":"mdns"}}`,
			wantType:    EventDeviceFound,
			wantAddress: "10.0.0.9",
		},
		{
			name:        "device_updated",
			raw:         `{"event_type":"device_updated","device":{"name":"NAS","address":"10.0.0.12","addresses":["10.0.0.12"],"hostname":"nas.local","services":[],"txt_properties":{},"ttl":null,"discovery_method":"mdns"}}`,
			wantType:    EventDeviceUpdated,
			wantAddress: "10.0.0.12",
		},
		{
			name:        "started",
			raw:         `{"event_type":"started","message":"Discovery running"}`,
			wantType:    EventStarted,
			wantMessage: "Discovery running",
		},
		{
			name:        "completed with device count",
			raw:         `{"event_type":"completed","message":"Discovery finished","device_count":4}`,
			wantType:    EventCompleted,
			wantMessage: "Discovery finished",
			wantCount:   4,
		},
		{
			name:        "error",
			raw:         `{"event_type":"error","message":"scan failed"}`,
			wantType:    EventError,
			wantMessage: "scan failed",
		},
		{
			name:    "invalid JSON",
			raw:     `{"event_type":"started",`,
			wantErr: true,
		},
		{
			name:    "missing discriminator",
			raw:     `{"message":"hello"}`,
			wantErr: true,
		},
		{
			name:    "unknown event_type",
			raw:     `{"event_type":"device_lost","message":"gone"}`,
			wantErr: true,
		},
		{
			name:    "device_found without device",
			raw:     `{"event_type":"device_found"}`,
			wantErr: true,
		},
		{
			name:    "device_found with empty address",
			raw:     `{"event_type":"device_found","device":{"name":"x","address":""}}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := DecodeEvent([]byte(tt.raw))

			if tt.wantErr {
				if err == nil {
					t.Fatalf("DecodeEvent() error = nil, want *DecodeError")
				}
				var decodeErr *DecodeError
				if !errors.As(err, &decodeErr) {
					t.Errorf("DecodeEvent() error type = %T, want *DecodeError", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("DecodeEvent() error = %v, want nil", err)
			}

			if event.Type != tt.wantType {
				t.Errorf("event.Type = %q, want %q", event.Type, tt.wantType)
			}
			if event.Message != tt.wantMessage {
				t.Errorf("event.Message = %q, want %q", event.Message, tt.wantMessage)
			}
			if event.DeviceCount != tt.wantCount {
				t.Errorf("event.DeviceCount = %d, want %d", event.DeviceCount, tt.wantCount)
			}
			if tt.wantAddress != "" {
				if event.Device == nil {
					t.Fatal("event.Device = nil, want device")
				}
				if event.Device.Address != tt.wantAddress {
					t.Errorf("event.Device.Address = %q, want %q", event.Device.Address, tt.wantAddress)
				}
			}
		})
	}
}

func TestDecodeEvent_DeviceFields(t *testing.T) {
	raw := `{
		"event_type": "device_found",
		"device": {
			"name": "Living Room Speaker",
			"address": "192.168.1.42",
			"addresses": ["192.168.1.42", "fe80::aa:1"],
			"hostname": "speaker.local",
			"services": [
				{
					"service_type": "_airplay._tcp",
					"fullname": "Living Room Speaker._airplay._tcp.local.",
					"instance_name": "Living Room Speaker",
					"port": 7000,
					"txt_properties": {"model": "X100"}
				}
			],
			"txt_properties": {"model": "X100", "srcvers": "366.0"},
			"ttl": 4500,
			"discovery_method": "mdns"
		}
	}`

	event, err := DecodeEvent([]byte(raw))
	if err != nil {
		t.Fatalf("DecodeEvent() error = %v", err)
	}

	device := event.Device
	if device.Name != "Living Room Speaker" {
		t.Errorf("device.Name = %q, want %q", device.Name, "Living Room Speaker")
	}
	if len(device.Addresses) != 2 {
		t.Errorf("len(device.Addresses) = %d, want 2", len(device.Addresses))
	}
	if device.Hostname != "speaker.local" {
		t.Errorf("device.Hostname = %q, want %q", device.Hostname, "speaker.local")
	}
	if len(device.Services) != 1 {
		t.Fatalf("len(device.Services) = %d, want 1", len(device.Services))
	}
	service := device.Services[0]
	if service.ServiceType != "_airplay._tcp" {
		t.Errorf("service.ServiceType = %q, want %q", service.ServiceType, "_airplay._tcp")
	}
	if service.Port != 7000 {
		t.Errorf("service.Port = %d, want 7000", service.Port)
	}
	if device.TxtProperty("srcvers") != "366.0" {
		t.Errorf("device.TxtProperty(srcvers) = %q, want %q", device.TxtProperty("srcvers"), "366.0")
	}
	if device.TTL == nil || *device.TTL != 4500 {
		t.Errorf("device.TTL = %v, want 4500", device.TTL)
	}
	if device.DiscoveryMethod != "mdns" {
		t.Errorf("device.DiscoveryMethod = %q, want %q", device.DiscoveryMethod, "mdns")
	}
}

func TestDecodeEvent_NullTTL(t *testing.T) {
	raw := `{"event_type":"device_found","device":{"name":"x","address":"10.0.0.1","ttl":null}}`

	event, err := DecodeEvent([]byte(raw))
	if err != nil {
		t.Fatalf("DecodeEvent() error = %v", err)
	}
	if event.Device.TTL != nil {
		t.Errorf("device.TTL = %v, want nil", event.Device.TTL)
	}
}

func TestEvent_Terminal(t *testing.T) {
	tests := []struct {
		eventType EventType
		want      bool
	}{
		{EventDeviceFound, false},
		{EventDeviceUpdated, false},
		{EventStarted, false},
		{EventCompleted, true},
		{EventError, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.eventType), func(t *testing.T) {
			event := &Event{Type: tt.eventType}
			if got := event.Terminal(); got != tt.want {
				t.Errorf("Terminal() = %v, want %v", got, tt.want)
			}
		})
	}
}
