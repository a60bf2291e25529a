// Package config handles the client configuration directory and files.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

const (
	// AppName is the application directory name under XDG_CONFIG_HOME.
	AppName = "duet"

	configFile  = "config.json"
	sessionFile = "session.json"
	logFile     = "duet.log"
	localDBFile = "duet.db"
)

// Config is the persisted client configuration plus derived paths. The
// session token is deliberately kept in a separate file so `duet logout` can
// drop it without rewriting the config.
type Config struct {
	// ServiceURL is the remote data service base URL.
	ServiceURL string `json:"service_url,omitempty"`
	// AnonKey is the service's public API key, sent with every request.
	AnonKey string `json:"anon_key,omitempty"`
	// Local switches every command to the sqlite-backed solo mode.
	Local bool `json:"local,omitempty"`
	// Debug lowers the log level.
	Debug bool `json:"debug,omitempty"`

	// Dir is the configuration directory (not persisted).
	Dir string `json:"-"`
}

// DefaultDir returns XDG_CONFIG_HOME/duet or $HOME/.config/duet.
func DefaultDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// Load reads the config file from dir (DefaultDir when empty) and applies
// environment overrides DUET_URL and DUET_ANON_KEY. A missing file is not an
// error: commands like `duet login --url ...` bootstrap it.
func Load(dir string) (*Config, error) {
	if dir == "" {
		dir = DefaultDir()
	}
	cfg := &Config{Dir: dir}

	data, err := os.ReadFile(filepath.Join(dir, configFile))
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
		cfg.Dir = dir
	case errors.Is(err, os.ErrNotExist):
		// First run.
	default:
		return nil, err
	}

	if v := os.Getenv("DUET_URL"); v != "" {
		cfg.ServiceURL = v
	}
	if v := os.Getenv("DUET_ANON_KEY"); v != "" {
		cfg.AnonKey = v
	}
	return cfg, nil
}

// Save writes the config file, creating the directory as needed.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.Dir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.Dir, configFile), data, 0o600)
}

func (c *Config) SessionPath() string { return filepath.Join(c.Dir, sessionFile) }
func (c *Config) LogPath() string     { return filepath.Join(c.Dir, logFile) }
func (c *Config) LocalDBPath() string { return filepath.Join(c.Dir, localDBFile) }
