// Package config builds the process-wide configuration from viper.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultBaseURL is the Jules REST API root used when no override is set.
const DefaultBaseURL = "https://jules.googleapis.com/v1alpha"

// ErrMissingAPIKey is returned when no Jules credential is configured.
var ErrMissingAPIKey = errors.New("JULES_API_KEY is not set; create a key at https://jules.google.com/settings#api")

// Transport selects how the MCP server talks to its client.
type Transport string

const (
	TransportStdio   Transport = "stdio"
	TransportHTTP    Transport = "http"
	TransportDurable Transport = "durable"
)

// Transports lists every supported transport.
func Transports() []Transport {
	return []Transport{TransportStdio, TransportHTTP, TransportDurable}
}

// Config is constructed once at startup and passed by pointer to the
// client and the transports.
type Config struct {
	APIKey       string
	BaseURL      string
	Transport    Transport
	PromptPrefix string
	HTTP         HTTPConfig
	Log          LogConfig
}

// HTTPConfig holds settings for the network transports and the upstream
// HTTP client.
type HTTPConfig struct {
	Addr      string
	Port      int
	KeepAlive time.Duration
	Timeout   time.Duration
}

// LogConfig controls the side-channel logger.
type LogConfig struct {
	Level string
	File  string
}

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api_key", "")
	v.SetDefault("api_base", DefaultBaseURL)
	v.SetDefault("transport", string(TransportStdio))
	v.SetDefault("prompt_prefix", "")
	v.SetDefault("http.addr", "")
	v.SetDefault("http.port", 3000)
	v.SetDefault("http.keepalive", 15*time.Second)
	v.SetDefault("http.timeout", time.Duration(0))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}

// BindEnv wires the JULES_ prefix plus the MCP_* aliases understood by
// hosted deployments.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix("JULES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("transport", "JULES_TRANSPORT", "MCP_TRANSPORT")
	_ = v.BindEnv("http.addr", "JULES_HTTP_ADDR", "MCP_ADDR")
	_ = v.BindEnv("http.port", "JULES_HTTP_PORT", "MCP_PORT")
}

// FromViper reads the current values without validating them.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		APIKey:       strings.TrimSpace(v.GetString("api_key")),
		BaseURL:      strings.TrimRight(v.GetString("api_base"), "/"),
		Transport:    Transport(strings.ToLower(strings.TrimSpace(v.GetString("transport")))),
		PromptPrefix: v.GetString("prompt_prefix"),
		HTTP: HTTPConfig{
			Addr:      v.GetString("http.addr"),
			Port:      v.GetInt("http.port"),
			KeepAlive: v.GetDuration("http.keepalive"),
			Timeout:   v.GetDuration("http.timeout"),
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
			File:  v.GetString("log.file"),
		},
	}
}

// Load reads and validates the configuration. It fails before any
// invocation can be accepted.
func Load(v *viper.Viper) (*Config, error) {
	cfg := FromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the credential and the enumerated settings.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Transport == "" {
		c.Transport = TransportStdio
	}

	valid := false
	for _, t := range Transports() {
		if c.Transport == t {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("unknown transport %q (want stdio, http or durable)", c.Transport)
	}

	if c.Transport != TransportStdio && (c.HTTP.Port < 0 || c.HTTP.Port > 65535) {
		return fmt.Errorf("invalid http port %d", c.HTTP.Port)
	}
	if c.HTTP.KeepAlive <= 0 {
		c.HTTP.KeepAlive = 15 * time.Second
	}
	return nil
}

// ListenAddr is the host:port the HTTP transports bind to.
func (h HTTPConfig) ListenAddr() string {
	return h.Addr + ":" + strconv.Itoa(h.Port)
}
