package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/julesmcp/internal/config"
	"github.com/joescharf/julesmcp/internal/output"
)

// testEnv sets up isolated config dir, viper, and output for testing.
func testEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	origFunc := configDirFunc
	configDirFunc = func() (string, error) { return dir, nil }
	t.Cleanup(func() { configDirFunc = origFunc })

	viper.Reset()
	config.SetDefaults(viper.GetViper())
	servePIDFile = ""
	configForce = false
	dryRun = false
	verbose = false

	ui = output.New()
	ui.Out = io.Discard
	ui.ErrOut = io.Discard

	return dir
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestConfigInit_CreatesFile(t *testing.T) {
	dir := testEnv(t)

	require.NoError(t, configInitRun())

	cfgPath := filepath.Join(dir, "config.yaml")
	info, err := os.Stat(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data := readFile(t, cfgPath)
	assert.Contains(t, data, "julesmcp configuration")
	assert.Contains(t, data, `transport: "stdio"`)
	assert.Contains(t, data, `api_base: "https://jules.googleapis.com/v1alpha"`)
	assert.Contains(t, data, "port: 3000")
	assert.Contains(t, data, "keepalive: 15s")
	assert.Contains(t, data, "# api_key:")
}

func TestConfigInit_RoundTripsThroughViper(t *testing.T) {
	dir := testEnv(t)
	viper.Set("transport", "durable")
	viper.Set("http.port", 8787)
	require.NoError(t, configInitRun())

	v := viper.New()
	config.SetDefaults(v)
	v.SetConfigFile(filepath.Join(dir, "config.yaml"))
	require.NoError(t, v.ReadInConfig())

	v.Set("api_key", "k")
	cfg, err := config.Load(v)
	require.NoError(t, err)
	assert.Equal(t, config.TransportDurable, cfg.Transport)
	assert.Equal(t, 8787, cfg.HTTP.Port)
	assert.Equal(t, config.DefaultBaseURL, cfg.BaseURL)
}

func TestConfigInit_ExistingFile(t *testing.T) {
	tests := []struct {
		name    string
		force   bool
		wantErr string
	}{
		{name: "refuses overwrite", wantErr: "already exists"},
		{name: "force overwrites", force: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := testEnv(t)
			cfgPath := filepath.Join(dir, "config.yaml")
			require.NoError(t, os.WriteFile(cfgPath, []byte("existing"), 0o600))

			configForce = tt.force
			err := configInitRun()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Equal(t, "existing", readFile(t, cfgPath))
				return
			}
			require.NoError(t, err)
			assert.Contains(t, readFile(t, cfgPath), "julesmcp configuration")
		})
	}
}

func TestConfigInit_DryRun(t *testing.T) {
	dir := testEnv(t)
	dryRun = true
	ui.DryRun = true

	require.NoError(t, configInitRun())

	_, err := os.Stat(filepath.Join(dir, "config.yaml"))
	assert.True(t, os.IsNotExist(err), "config file should not exist in dry-run mode")
}

func TestConfigShow_Sources(t *testing.T) {
	dir := testEnv(t)
	var out bytes.Buffer
	ui.Out = &out

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log:\n  level: debug\n"), 0o600))
	t.Setenv("JULES_API_KEY", "secret-abcd")
	viper.Set("api_key", "secret-abcd")

	require.NoError(t, configShowRun())

	s := out.String()
	assert.Contains(t, s, "Config file: "+filepath.Join(dir, "config.yaml"))
	assert.Contains(t, s, "****abcd")
	assert.NotContains(t, s, "secret-abcd")
	assert.Contains(t, s, "(env: JULES_API_KEY)")
	assert.Contains(t, s, "(file)")
	assert.Contains(t, s, "(default)")
}

func TestConfigShow_AliasSourceMatchesEffectiveValue(t *testing.T) {
	testEnv(t)
	t.Setenv("JULES_TRANSPORT", "durable")
	t.Setenv("MCP_TRANSPORT", "http")
	t.Setenv("JULES_HTTP_PORT", "9001")
	t.Setenv("MCP_PORT", "9002")
	t.Setenv("JULES_HTTP_ADDR", "127.0.0.1")
	t.Setenv("MCP_ADDR", "0.0.0.0")
	config.BindEnv(viper.GetViper())

	want := map[string]string{
		"transport": "JULES_TRANSPORT",
		"http.port": "JULES_HTTP_PORT",
		"http.addr": "JULES_HTTP_ADDR",
	}
	for _, k := range configKeys {
		env, ok := want[k.Key]
		if !ok {
			continue
		}
		assert.Equal(t, os.Getenv(env), viper.GetString(k.Key), k.Key)
		assert.Equal(t, "(env: "+env+")", detectSource(k.Key, nil, k.EnvVars...), k.Key)
	}
}

func TestConfigShow_NoFile(t *testing.T) {
	testEnv(t)
	var out bytes.Buffer
	ui.Out = &out

	require.NoError(t, configShowRun())
	assert.Contains(t, out.String(), "Config file: (none)")
	assert.Contains(t, out.String(), "(not set)")
}

func TestConfigEdit_NoEditor(t *testing.T) {
	testEnv(t)
	t.Setenv("EDITOR", "")
	t.Setenv("VISUAL", "")

	err := configEditRun()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "$EDITOR is not set")
}

func TestConfigEdit_NoConfigFile(t *testing.T) {
	testEnv(t)
	t.Setenv("EDITOR", "echo") // harmless command

	err := configEditRun()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestDetectSource(t *testing.T) {
	fileValues := map[string]bool{"key_a": true}

	t.Setenv("JULESMCP_TEST_KEY", "val")
	t.Setenv("JULESMCP_TEST_ALIAS", "val")

	assert.Equal(t, "(env: JULESMCP_TEST_KEY)", detectSource("test_key", fileValues, "JULESMCP_TEST_KEY"))
	assert.Equal(t, "(env: JULESMCP_TEST_KEY)", detectSource("test_key", fileValues, "JULESMCP_TEST_KEY", "JULESMCP_TEST_ALIAS"))
	assert.Equal(t, "(env: JULESMCP_TEST_ALIAS)", detectSource("test_key", fileValues, "JULESMCP_NONEXISTENT", "JULESMCP_TEST_ALIAS"))
	assert.Equal(t, "(file)", detectSource("key_a", fileValues, "JULESMCP_KEY_A_NONEXISTENT"))
	assert.Equal(t, "(default)", detectSource("key_b", fileValues, "JULESMCP_KEY_B_NONEXISTENT"))
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "(not set)", maskSecret(""))
	assert.Equal(t, "****", maskSecret("abc"))
	assert.Equal(t, "****wxyz", maskSecret("secret-wxyz"))
}

func TestFlattenKeys(t *testing.T) {
	input := map[string]any{
		"transport": "http",
		"http": map[string]any{
			"port": 8080,
			"addr": "127.0.0.1",
		},
	}

	result := make(map[string]bool)
	flattenKeys("", input, result)

	assert.True(t, result["transport"])
	assert.True(t, result["http.port"])
	assert.True(t, result["http.addr"])
	assert.False(t, result["http"])
}
