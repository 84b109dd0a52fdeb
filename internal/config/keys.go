package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"nathanbeddoewebdev/transip-dns/internal/publicip"
)

// KeySpec describes a single configuration key.
type KeySpec struct {
	// Name is the CLI-facing key name (e.g. "private-key-file").
	Name string

	// Description is a short human-readable explanation shown in help text.
	Description string

	// Section groups related keys in the interactive view.
	Section string

	// Default describes the effective value when the key is unset.
	Default string

	// Toggle marks a boolean key. The interactive view flips it instead of
	// opening an editor.
	Toggle bool

	// Get returns the current value for this key from a loaded Config.
	Get func(cfg *Config) string

	// Set validates value and applies it to the given Config (in memory
	// only; the caller is responsible for calling Save). An empty value
	// clears the key.
	Set func(cfg *Config, value string) error
}

// Sections of the interactive view, in display order.
const (
	SectionCredentials = "Credentials"
	SectionWatch       = "Watch"
	SectionAPI         = "API"
	SectionHistory     = "History"
)

// Keys is the authoritative list of all supported configuration keys.
// To add a new option: add a field to Config and append a KeySpec here.
var Keys = []KeySpec{
	{
		Name:        "username",
		Description: "TransIP account login used when --username is not specified",
		Section:     SectionCredentials,
		Default:     "keychain",
		Get:         func(cfg *Config) string { return cfg.Username },
		Set: func(cfg *Config, v string) error {
			cfg.Username = strings.TrimSpace(v)
			return nil
		},
	},
	{
		Name:        "private-key-file",
		Description: "Path to the PEM private key used when no key flag is given",
		Section:     SectionCredentials,
		Default:     "keychain",
		Get:         func(cfg *Config) string { return cfg.PrivateKeyFile },
		Set: func(cfg *Config, v string) error {
			cfg.PrivateKeyFile = strings.TrimSpace(v)
			return nil
		},
	},
	{
		Name:        "interval",
		Description: "Default watch interval (e.g. 5m, 1h)",
		Section:     SectionWatch,
		Default:     "5m",
		Get:         func(cfg *Config) string { return cfg.Interval },
		Set: func(cfg *Config, v string) error {
			v = strings.TrimSpace(v)
			if v != "" {
				d, err := time.ParseDuration(v)
				if err != nil {
					return fmt.Errorf("invalid interval %q: %w", v, err)
				}
				if d <= 0 {
					return fmt.Errorf("interval must be positive, got %s", d)
				}
			}
			cfg.Interval = v
			return nil
		},
	},
	{
		Name:        "address-source",
		Description: "Where to discover the public address: auto, dns or http",
		Section:     SectionWatch,
		Default:     "auto",
		Get:         func(cfg *Config) string { return cfg.AddressSource },
		Set: func(cfg *Config, v string) error {
			v = strings.ToLower(strings.TrimSpace(v))
			if v != "" {
				if _, err := publicip.ParseSourceMode(v); err != nil {
					return err
				}
			}
			cfg.AddressSource = v
			return nil
		},
	},
	{
		Name:        "token-expiration",
		Description: "Requested API token lifetime (e.g. \"30 minutes\", \"1 month\")",
		Section:     SectionAPI,
		Default:     "provider default",
		Get:         func(cfg *Config) string { return cfg.TokenExpiration },
		Set: func(cfg *Config, v string) error {
			cfg.TokenExpiration = strings.TrimSpace(v)
			return nil
		},
	},
	{
		Name:        "audit-log",
		Description: "Record applied changes in the local audit log (true/false)",
		Section:     SectionHistory,
		Default:     "false",
		Toggle:      true,
		Get: func(cfg *Config) string {
			if !cfg.AuditLog {
				return ""
			}
			return "true"
		},
		Set: func(cfg *Config, v string) error {
			v = strings.TrimSpace(v)
			if v == "" {
				cfg.AuditLog = false
				return nil
			}
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid boolean %q", v)
			}
			cfg.AuditLog = b
			return nil
		},
	},
}

// Lookup returns the KeySpec for the given name, or nil if not found.
// The name is matched case-insensitively after trimming whitespace.
func Lookup(name string) *KeySpec {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for i := range Keys {
		if Keys[i].Name == normalized {
			return &Keys[i]
		}
	}
	return nil
}

// KeyNames returns the names of all registered keys.
func KeyNames() []string {
	names := make([]string, len(Keys))
	for i, k := range Keys {
		names[i] = k.Name
	}
	return names
}

// KeysHelp builds a formatted block listing all available keys and their
// descriptions, suitable for inclusion in Cobra Long help text.
func KeysHelp() string {
	if len(Keys) == 0 {
		return ""
	}

	maxLen := 0
	for _, k := range Keys {
		if len(k.Name) > maxLen {
			maxLen = len(k.Name)
		}
	}

	var b strings.Builder
	b.WriteString("Available keys:\n")
	for _, k := range Keys {
		fmt.Fprintf(&b, "  %-*s   %s\n", maxLen, k.Name, k.Description)
	}
	return b.String()
}
