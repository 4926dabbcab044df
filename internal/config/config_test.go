package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	BindEnv(v)
	return v
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JULES_API_KEY", "key-123")
	t.Setenv("MCP_TRANSPORT", "")
	t.Setenv("JULES_TRANSPORT", "")

	cfg, err := Load(newViper(t))
	require.NoError(t, err)

	assert.Equal(t, "key-123", cfg.APIKey)
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, TransportStdio, cfg.Transport)
	assert.Equal(t, 3000, cfg.HTTP.Port)
	assert.Equal(t, 15*time.Second, cfg.HTTP.KeepAlive)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_MissingAPIKey(t *testing.T) {
	t.Setenv("JULES_API_KEY", "   ")

	_, err := Load(newViper(t))
	require.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestLoad_EnvAliases(t *testing.T) {
	t.Setenv("JULES_API_KEY", "k")
	t.Setenv("MCP_TRANSPORT", "HTTP")
	t.Setenv("MCP_PORT", "8123")
	t.Setenv("JULES_API_BASE", "http://localhost:9999/v1/")
	t.Setenv("JULES_HTTP_KEEPALIVE", "2s")

	cfg, err := Load(newViper(t))
	require.NoError(t, err)

	assert.Equal(t, TransportHTTP, cfg.Transport)
	assert.Equal(t, 8123, cfg.HTTP.Port)
	assert.Equal(t, "http://localhost:9999/v1", cfg.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.HTTP.KeepAlive)
	assert.Equal(t, ":8123", cfg.HTTP.ListenAddr())
}

func TestLoad_JulesEnvBeatsAlias(t *testing.T) {
	t.Setenv("JULES_API_KEY", "k")
	t.Setenv("JULES_TRANSPORT", "durable")
	t.Setenv("MCP_TRANSPORT", "http")
	t.Setenv("JULES_HTTP_PORT", "9001")
	t.Setenv("MCP_PORT", "9002")
	t.Setenv("JULES_HTTP_ADDR", "127.0.0.1")
	t.Setenv("MCP_ADDR", "0.0.0.0")

	cfg, err := Load(newViper(t))
	require.NoError(t, err)

	assert.Equal(t, TransportDurable, cfg.Transport)
	assert.Equal(t, 9001, cfg.HTTP.Port)
	assert.Equal(t, "127.0.0.1", cfg.HTTP.Addr)
}

func TestLoad_UnknownTransport(t *testing.T) {
	t.Setenv("JULES_API_KEY", "k")
	t.Setenv("MCP_TRANSPORT", "carrier-pigeon")

	_, err := Load(newViper(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown transport")
}

func TestFromViper_DoesNotValidate(t *testing.T) {
	t.Setenv("JULES_API_KEY", "")

	cfg := FromViper(newViper(t))
	assert.Empty(t, cfg.APIKey)
}
