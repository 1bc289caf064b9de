// Package config loads file configuration for the CLI and the MCP server.
// Library packages take their settings through their own Config structs;
// this package only exists at the edges, mapping a YAML document onto them.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings is the on-disk configuration document. Every field is optional;
// zero values fall back to the package defaults downstream.
type Settings struct {
	Bus     Bus     `yaml:"bus"`
	Files   Files   `yaml:"files"`
	Markers Markers `yaml:"markers"`

	// Timeout bounds one remote round trip, e.g. "30s".
	Timeout string `yaml:"timeout,omitempty"`
	// PollInterval sets how often the response slot is checked, e.g. "50ms".
	PollInterval string `yaml:"poll_interval,omitempty"`
	// Serialization selects lenient or strict variable harvesting.
	Serialization string `yaml:"serialization,omitempty"`
}

// Bus addresses the drawing application on the message bus.
type Bus struct {
	Dest       string `yaml:"dest,omitempty"`
	ObjectPath string `yaml:"object_path,omitempty"`
	Action     string `yaml:"action,omitempty"`
}

// Files locates the exchange files of the transport.
type Files struct {
	ParamsPath string `yaml:"params_path,omitempty"`
	SlotDir    string `yaml:"slot_dir,omitempty"`
}

// Markers override the block markers of hybrid scripts.
type Markers struct {
	Local  string `yaml:"local,omitempty"`
	Remote string `yaml:"remote,omitempty"`
}

// Parse decodes and validates a settings document.
func Parse(input []byte) (Settings, error) {
	var s Settings
	if err := yaml.Unmarshal(input, &s); err != nil {
		return Settings{}, fmt.Errorf("decode config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Load reads a settings file. A missing path yields empty settings, so a
// config file stays optional.
func Load(path string) (Settings, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Settings{}, nil
		}
		return Settings{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(raw)
}

// Validate checks the fields that cannot be deferred to downstream defaults.
func (s Settings) Validate() error {
	if _, err := s.duration(s.Timeout); err != nil {
		return fmt.Errorf("config timeout: %w", err)
	}
	if _, err := s.duration(s.PollInterval); err != nil {
		return fmt.Errorf("config poll_interval: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(s.Serialization)) {
	case "", "lenient", "strict":
	default:
		return fmt.Errorf("config serialization must be lenient or strict, got %q", s.Serialization)
	}
	if s.Markers.Local != "" && s.Markers.Local == s.Markers.Remote {
		return fmt.Errorf("config markers must differ, both are %q", s.Markers.Local)
	}
	return nil
}

// TimeoutDuration returns the parsed timeout, or zero when unset.
func (s Settings) TimeoutDuration() time.Duration {
	d, _ := s.duration(s.Timeout)
	return d
}

// PollIntervalDuration returns the parsed poll interval, or zero when unset.
func (s Settings) PollIntervalDuration() time.Duration {
	d, _ := s.duration(s.PollInterval)
	return d
}

// Strict reports whether strict serialization was requested.
func (s Settings) Strict() bool {
	return strings.EqualFold(strings.TrimSpace(s.Serialization), "strict")
}

func (Settings) duration(value string) (time.Duration, error) {
	if strings.TrimSpace(value) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("must not be negative, got %s", value)
	}
	return d, nil
}
