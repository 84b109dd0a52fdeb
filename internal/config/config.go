// Package config handles persistent user configuration for transip-dns.
//
// Configuration is stored as YAML at <user config dir>/transip-dns/config.yaml
// unless TRANS_IP_CONFIG names another file. Flags and the other TRANS_IP_*
// environment variables override what is stored here.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"
)

// EnvPath overrides the config file location.
const EnvPath = "TRANS_IP_CONFIG"

// DefaultInterval is the watch interval when none is configured.
const DefaultInterval = 5 * time.Minute

var pathOverride string

// SetPath overrides the config file path. Intended for testing.
func SetPath(p string) { pathOverride = p }

// ResetPath clears the path override. Intended for testing.
func ResetPath() { pathOverride = "" }

// Config holds user preferences that persist across invocations. The YAML
// keys match the names accepted by "config set".
type Config struct {
	Username        string `yaml:"username,omitempty"`
	PrivateKeyFile  string `yaml:"private-key-file,omitempty"`
	Interval        string `yaml:"interval,omitempty"`
	AddressSource   string `yaml:"address-source,omitempty"`
	TokenExpiration string `yaml:"token-expiration,omitempty"`
	AuditLog        bool   `yaml:"audit-log,omitempty"`
}

// WatchInterval returns the configured watch interval, or DefaultInterval
// when unset.
func (c *Config) WatchInterval() (time.Duration, error) {
	if c.Interval == "" {
		return DefaultInterval, nil
	}
	d, err := time.ParseDuration(c.Interval)
	if err != nil {
		return 0, fmt.Errorf("config: invalid interval %q: %w", c.Interval, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("config: interval must be positive, got %s", d)
	}
	return d, nil
}

// Validate runs every stored value through its key's setter, so a file
// edited by hand is held to the same rules as "config set".
func (c *Config) Validate() error {
	var errs []error
	for _, spec := range Keys {
		v := spec.Get(c)
		if v == "" {
			continue
		}
		scratch := *c
		if err := spec.Set(&scratch, v); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", spec.Name, err))
		}
	}
	return errors.Join(errs...)
}

// Path returns the config file location: the SetPath override, then
// $TRANS_IP_CONFIG, then the platform config directory.
func Path() (string, error) {
	if pathOverride != "" {
		return pathOverride, nil
	}
	if p := os.Getenv(EnvPath); p != "" {
		return p, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: unable to determine config directory: %w", err)
	}
	return filepath.Join(base, "transip-dns", "config.yaml"), nil
}

// Load reads the config file. A missing file yields a zero Config.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config stored at path. Unknown keys and invalid values
// are errors.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes the config to Path().
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, replacing any existing file in one
// rename so a concurrent reader never sees a partial file.
func (c *Config) SaveTo(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("config: failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.yaml")
	if err != nil {
		return fmt.Errorf("config: failed to write %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("config: failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("config: failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("config: failed to write %s: %w", path, err)
	}
	return nil
}
