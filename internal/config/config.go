package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/hco/sparkping/internal/urls"
)

const (
	appName    = "sparkping"
	configFile = "config.yaml"
)

// Transport selects how the push stream is consumed.
const (
	// TransportHTTP consumes the stream as a chunked GET response
	TransportHTTP = "http"
	// TransportWebsocket consumes the stream over a websocket
	TransportWebsocket = "websocket"
)

// ServiceConfig locates the discovery service.
type ServiceConfig struct {
	// BaseURL is the opaque URL prefix the endpoint paths are joined to
	BaseURL string `yaml:"base_url"`

	// Transport is "http" or "websocket"
	Transport string `yaml:"transport"`
}

// SimulatorConfig configures the bundled discovery-service simulator.
type SimulatorConfig struct {
	// Listen is the simulator's listen address
	Listen string `yaml:"listen"`

	// ServiceType is the mDNS service type browsed for events
	ServiceType string `yaml:"service_type"`

	// Domain is the mDNS domain (typically "local.")
	Domain string `yaml:"domain"`

	// ScanTimeout bounds a browse in seconds; 0 runs until the client
	// disconnects
	ScanTimeout int `yaml:"scan_timeout"`
}

// Config is the application configuration, read from a YAML file in the
// OS config directory.
type Config struct {
	Version   int             `yaml:"version"`
	Service   ServiceConfig   `yaml:"service"`
	Simulator SimulatorConfig `yaml:"simulator"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Version: 1,
		Service: ServiceConfig{
			BaseURL:   "http://localhost:8770/",
			Transport: TransportHTTP,
		},
		Simulator: SimulatorConfig{
			Listen:      ":8770",
			ServiceType: "_services._dns-sd._udp",
			Domain:      "local.",
			ScanTimeout: 0,
		},
	}
}

// StreamURL returns the full push-stream URL for the configured
// transport.
func (c *Config) StreamURL() string {
	if c.Service.Transport == TransportWebsocket {
		return urls.DiscoveryWebsocket(c.Service.BaseURL)
	}
	return urls.DiscoveryStream(c.Service.BaseURL)
}

// Validate checks the configuration for values Load cannot default away.
func (c *Config) Validate() error {
	if c.Version != 1 {
		return fmt.Errorf("unsupported config version: %d (expected 1)", c.Version)
	}
	if c.Service.BaseURL == "" {
		return fmt.Errorf("service.base_url must not be empty")
	}
	switch c.Service.Transport {
	case TransportHTTP, TransportWebsocket:
	default:
		return fmt.Errorf("service.transport must be %q or %q, got %q",
			TransportHTTP, TransportWebsocket, c.Service.Transport)
	}
	return nil
}

// GetConfigDir returns the OS-appropriate configuration directory.
// This follows platform conventions:
//   - Linux: $XDG_CONFIG_HOME/sparkping or $HOME/.config/sparkping
//   - macOS: $HOME/.config/sparkping (following XDG convention on macOS)
//   - Windows: %LOCALAPPDATA%\sparkping
func GetConfigDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "windows":
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			userProfile := os.Getenv("USERPROFILE")
			if userProfile == "" {
				return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
			}
			baseDir = filepath.Join(userProfile, "AppData", "Local", appName)
		} else {
			baseDir = filepath.Join(localAppData, appName)
		}

	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		baseDir = filepath.Join(homeDir, ".config", appName)

	default:
		xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfigHome != "" {
			baseDir = filepath.Join(xdgConfigHome, appName)
		} else {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("cannot determine home directory: %w", err)
			}
			baseDir = filepath.Join(homeDir, ".config", appName)
		}
	}

	return baseDir, nil
}

// GetConfigPath returns the full path to the configuration file.
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFile), nil
}

// Load reads the configuration from disk. A missing file yields the
// defaults; a present but malformed file is an error.
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}
	return LoadFile(configPath)
}

// LoadFile reads the configuration from an explicit path. Empty fields
// are filled from the defaults so partial config files stay valid.
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to disk with an atomic rename.
func (c *Config) Save() error {
	configDir, err := GetConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(configDir, configFile)

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# SparkPing Configuration File
#
# service.base_url is the discovery service URL prefix; the push stream
# lives at {base_url}api/discovery/start.
#
# Location: ` + configPath + `

`)
	data = append(header, data...)

	tmpPath := configPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary config file: %w", err)
	}

	// Atomic rename (this is atomic on all platforms)
	if err := os.Rename(tmpPath, configPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config file: %w", err)
	}

	return nil
}
