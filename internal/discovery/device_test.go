package discovery

import "testing"

func TestDevice_String(t *testing.T) {
	tests := []struct {
		name   string
		device Device
		want   string
	}{
		{
			name: "named device",
			device: Device{
				Name:            "Printer",
				Address:         "10.0.0.9",
				Hostname:        "printer.local",
				DiscoveryMethod: "mdns",
			},
			want: "Printer at 10.0.0.9 (mdns)",
		},
		{
			name: "unnamed device falls back to hostname",
			device: Device{
				Address:         "10.0.0.3",
				Hostname:        "nas.local",
				DiscoveryMethod: "scan",
			},
			want: "nas.local at 10.0.0.3 (scan)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.device.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDevice_TxtProperty(t *testing.T) {
	d := Device{
		TxtProperties: map[string]string{
			"model": "X100",
			"flag":  "",
		},
	}

	if got := d.TxtProperty("model"); got != "X100" {
		t.Errorf("TxtProperty(model) = %q, want %q", got, "X100")
	}
	if got := d.TxtProperty("flag"); got != "" {
		t.Errorf("TxtProperty(flag) = %q, want empty", got)
	}
	if got := d.TxtProperty("missing"); got != "" {
		t.Errorf("TxtProperty(missing) = %q, want empty", got)
	}

	var empty Device
	if got := empty.TxtProperty("model"); got != "" {
		t.Errorf("TxtProperty on nil map = %q, want empty", got)
	}
}
