package config

import (
	"io"
	"os"
	"sort"
	"time"

	"github.com/wesleyorama2/fluent/http"
)

// debugOutput is where Debug dumps go.
var debugOutput io.Writer = os.Stderr

// ClientOptions converts the configuration into options for http.NewClient.
// Headers are applied in name order so the result does not depend on map
// iteration.
func (c *ClientConfig) ClientOptions() []http.ClientOption {
	var options []http.ClientOption

	if c.BaseURL != "" {
		options = append(options, http.WithBaseURL(c.BaseURL))
	}
	if c.Timeout > 0 {
		options = append(options, http.WithTimeout(time.Duration(c.Timeout)))
	}
	if c.UserAgent != "" {
		options = append(options, http.WithHeader("User-Agent", c.UserAgent))
	}

	names := make([]string, 0, len(c.Headers))
	for name := range c.Headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		options = append(options, http.WithHeader(name, c.Headers[name]))
	}

	if c.RateLimit > 0 {
		options = append(options, http.WithRateLimit(c.RateLimit, c.RateBurst))
	}

	if c.Debug {
		options = append(options, http.WithDebugOutput(debugOutput, c.Verbose))
	}

	return options
}

// NewClient loads path, validates it and returns a client built from it.
func NewClient(path string, extra ...http.ClientOption) (*http.Client, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return http.NewClient(append(cfg.ClientOptions(), extra...)...), nil
}
