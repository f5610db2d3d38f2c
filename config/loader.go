package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultTimeout is applied when a file does not set a timeout.
const DefaultTimeout = 30 * time.Second

// ClientConfig is the structure of a client file.
type ClientConfig struct {
	// BaseURL is the address relative routes resolve against. It must be
	// absolute and carry no query string or fragment.
	BaseURL string `json:"baseUrl,omitempty" yaml:"baseUrl,omitempty"`

	// Timeout bounds every call made through the client.
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// UserAgent is sent with every request that does not set its own.
	UserAgent string `json:"userAgent,omitempty" yaml:"userAgent,omitempty"`

	// Headers are default headers added to every request.
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`

	// RateLimit paces requests to this many per second. Zero disables pacing.
	RateLimit float64 `json:"rateLimit,omitempty" yaml:"rateLimit,omitempty"`

	// RateBurst is how many requests may start back to back after an idle
	// period. It defaults to 1.
	RateBurst int `json:"rateBurst,omitempty" yaml:"rateBurst,omitempty"`

	// Debug dumps every request and response to stderr.
	Debug bool `json:"debug,omitempty" yaml:"debug,omitempty"`

	// Verbose includes response headers in debug dumps.
	Verbose bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

// Load reads a client file. The format is chosen by extension:
//   - .yaml, .yml -> YAML
//   - .json -> JSON
//
// Any other extension is read as YAML.
func Load(path string) (*ClientConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data, path)
}

// Parse decodes data, choosing the format from the extension of path the way
// Load does. Environment references such as ${API_TOKEN} in the file are
// expanded before decoding.
func Parse(data []byte, path string) (*ClientConfig, error) {
	var config ClientConfig
	expanded := []byte(os.ExpandEnv(string(data)))

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		if err := json.Unmarshal(expanded, &config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	case ".yaml", ".yml", "":
		if err := yaml.Unmarshal(expanded, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(expanded, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config (unknown format %s): %w", ext, err)
		}
	}

	ApplyDefaults(&config)
	return &config, nil
}

// ApplyDefaults fills unset fields.
func ApplyDefaults(config *ClientConfig) {
	if config.Timeout == 0 {
		config.Timeout = Duration(DefaultTimeout)
	}
	config.BaseURL = strings.TrimSpace(config.BaseURL)
}

// Duration is a time.Duration that can be unmarshaled from JSON/YAML strings
// such as "30s" or "1m30s". A bare integer is read as seconds.
type Duration time.Duration

// ParseDuration parses s as a Go duration, or as whole seconds when it is a
// plain integer.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}

	var seconds int
	var rest string
	if n, _ := fmt.Sscanf(s, "%d%s", &seconds, &rest); n == 1 {
		return time.Duration(seconds) * time.Second, nil
	}

	return 0, fmt.Errorf("invalid duration format: %s", s)
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*d = 0
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}

	dur, err := ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}

	dur, err := ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// String returns the duration as a string.
func (d Duration) String() string {
	return time.Duration(d).String()
}
