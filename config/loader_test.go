package config

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	fluent "github.com/wesleyorama2/fluent/http"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{name: "standard seconds", input: "30s", expected: 30 * time.Second},
		{name: "standard minutes", input: "2m", expected: 2 * time.Minute},
		{name: "milliseconds", input: "500ms", expected: 500 * time.Millisecond},
		{name: "combined duration", input: "1h30m", expected: 90 * time.Minute},
		{name: "integer as seconds", input: "30", expected: 30 * time.Second},
		{name: "empty string", input: "", expected: 0},
		{name: "invalid format", input: "abc", wantErr: true},
		{name: "integer with junk", input: "30x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDuration(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDuration_JSONAndYAML(t *testing.T) {
	var fromJSON struct {
		Timeout Duration `json:"timeout"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"timeout":"1m30s"}`), &fromJSON))
	assert.Equal(t, Duration(90*time.Second), fromJSON.Timeout)

	require.NoError(t, json.Unmarshal([]byte(`{"timeout":15}`), &fromJSON))
	assert.Equal(t, Duration(15*time.Second), fromJSON.Timeout)

	data, err := json.Marshal(fromJSON)
	require.NoError(t, err)
	assert.JSONEq(t, `{"timeout":"15s"}`, string(data))

	var fromYAML struct {
		Timeout Duration `yaml:"timeout"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("timeout: 250ms\n"), &fromYAML))
	assert.Equal(t, Duration(250*time.Millisecond), fromYAML.Timeout)
	assert.Equal(t, "250ms", fromYAML.Timeout.String())

	assert.Error(t, yaml.Unmarshal([]byte("timeout: soon\n"), &fromYAML))
}

func TestParse(t *testing.T) {
	yamlData := []byte(`
baseUrl: https://api.example.com
timeout: 10s
userAgent: fluent-test/1.0
headers:
  Accept: application/json
rateLimit: 20
rateBurst: 5
debug: true
verbose: true
`)
	jsonData := []byte(`{
  "baseUrl": "https://api.example.com",
  "timeout": "10s",
  "userAgent": "fluent-test/1.0",
  "headers": {"Accept": "application/json"},
  "rateLimit": 20,
  "rateBurst": 5,
  "debug": true,
  "verbose": true
}`)

	expected := &ClientConfig{
		BaseURL:   "https://api.example.com",
		Timeout:   Duration(10 * time.Second),
		UserAgent: "fluent-test/1.0",
		Headers:   map[string]string{"Accept": "application/json"},
		RateLimit: 20,
		RateBurst: 5,
		Debug:     true,
		Verbose:   true,
	}

	tests := []struct {
		name string
		data []byte
		path string
	}{
		{name: "yaml", data: yamlData, path: "client.yaml"},
		{name: "yml", data: yamlData, path: "client.yml"},
		{name: "no extension defaults to yaml", data: yamlData, path: ""},
		{name: "unknown extension read as yaml", data: yamlData, path: "client.conf"},
		{name: "json", data: jsonData, path: "client.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse(tt.data, tt.path)
			require.NoError(t, err)
			assert.Equal(t, expected, cfg)
		})
	}
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("baseUrl: '  https://api.example.com  '\n"), "client.yaml")
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.BaseURL)
	assert.Equal(t, Duration(DefaultTimeout), cfg.Timeout)
	assert.False(t, cfg.Debug)
}

func TestParse_ExpandsEnvironment(t *testing.T) {
	t.Setenv("FLUENT_TEST_TOKEN", "s3cret")

	cfg, err := Parse([]byte("headers:\n  Authorization: Bearer ${FLUENT_TEST_TOKEN}\n"), "client.yaml")
	require.NoError(t, err)
	assert.Equal(t, "Bearer s3cret", cfg.Headers["Authorization"])
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte(`{"baseUrl": `), "client.json")
	assert.ErrorContains(t, err, "failed to parse JSON config")

	_, err = Parse([]byte("headers: [unclosed"), "client.yaml")
	assert.ErrorContains(t, err, "failed to parse YAML config")

	_, err = Parse([]byte("headers: [unclosed"), "client.conf")
	assert.ErrorContains(t, err, "unknown format .conf")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "client.yaml")
	require.NoError(t, os.WriteFile(path, []byte("baseUrl: https://api.example.com\ntimeout: 5s\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", cfg.BaseURL)
	assert.Equal(t, Duration(5*time.Second), cfg.Timeout)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestClientOptions(t *testing.T) {
	var received http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received = r.Header.Clone()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	var dump bytes.Buffer
	previous := debugOutput
	debugOutput = &dump
	defer func() { debugOutput = previous }()

	cfg := &ClientConfig{
		BaseURL:   server.URL,
		Timeout:   Duration(5 * time.Second),
		UserAgent: "fluent-test/1.0",
		Headers:   map[string]string{"X-B": "2", "X-A": "1"},
		RateLimit: 100,
		Debug:     true,
	}
	require.NoError(t, cfg.Validate())

	client := fluent.NewClient(cfg.ClientOptions()...)
	rb, err := client.Request("/ping")
	require.NoError(t, err)
	resp, err := rb.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "fluent-test/1.0", received.Get("User-Agent"))
	assert.Equal(t, "1", received.Get("X-A"))
	assert.Equal(t, "2", received.Get("X-B"))
	assert.Contains(t, dump.String(), "REQUEST: GET "+server.URL+"/ping")
}

func TestClientOptions_Empty(t *testing.T) {
	assert.Empty(t, (&ClientConfig{}).ClientOptions())
}

func TestNewClient(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "valid.json")
	require.NoError(t, os.WriteFile(valid, []byte(`{"baseUrl":"https://api.example.com"}`), 0o600))
	client, err := NewClient(valid)
	require.NoError(t, err)
	base, err := client.BaseAddress()
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", base.String())

	invalid := filepath.Join(dir, "invalid.json")
	require.NoError(t, os.WriteFile(invalid, []byte(`{"baseUrl":"/relative"}`), 0o600))
	_, err = NewClient(invalid)
	var verrs ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}
