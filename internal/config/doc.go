// Package config loads and stores the SparkPing configuration file.
//
// The configuration lives at the OS-appropriate config directory
// (e.g. ~/.config/sparkping/config.yaml on Linux) and covers two
// concerns: where the discovery service is (service.base_url,
// service.transport) and how the bundled simulator behaves
// (simulator.*). A missing file is not an error; defaults apply.
//
// Usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	m := monitor.New(cfg.StreamURL(), nil)
package config
