package cmd

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"text/template"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var configForce bool

// configDirFunc returns the config directory path, replaceable in tests.
var configDirFunc = defaultConfigDir

func defaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "julesmcp"), nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or manage configuration",
	Long: `Show or manage julesmcp configuration.

Running bare 'julesmcp config' is the same as 'julesmcp config show'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config file with commented defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configInitRun()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration with sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open config file in $EDITOR",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configEditRun()
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

// configTemplate is the template for generating config.yaml with comments.
const configTemplate = `# julesmcp configuration
# See: julesmcp config show (for effective values and sources)

# Jules API key (prefer the JULES_API_KEY environment variable)
# api_key: ""

# Jules REST API root
api_base: "{{ .APIBase }}"

# MCP transport: stdio, http or durable
transport: "{{ .Transport }}"

# Text prepended to every session prompt
prompt_prefix: "{{ .PromptPrefix }}"

# HTTP transports
http:
  # Bind address; empty means all interfaces
  addr: "{{ .HTTPAddr }}"
  port: {{ .HTTPPort }}
  # SSE keep-alive interval
  keepalive: {{ .KeepAlive }}
  # Upstream request timeout; 0 disables it
  timeout: {{ .Timeout }}

# Logs go to stderr unless a file is set
log:
  level: "{{ .LogLevel }}"
  file: "{{ .LogFile }}"
`

type configTemplateData struct {
	APIBase      string
	Transport    string
	PromptPrefix string
	HTTPAddr     string
	HTTPPort     int
	KeepAlive    string
	Timeout      string
	LogLevel     string
	LogFile      string
}

func configFilePath() (string, error) {
	dir, err := configDirFunc()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func configInitRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	// Check if file already exists
	if _, err := os.Stat(cfgPath); err == nil {
		if !configForce {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", cfgPath)
		}
		ui.Warning("Overwriting existing config file")
	}

	// Build template data from current viper values
	data := configTemplateData{
		APIBase:      viper.GetString("api_base"),
		Transport:    viper.GetString("transport"),
		PromptPrefix: viper.GetString("prompt_prefix"),
		HTTPAddr:     viper.GetString("http.addr"),
		HTTPPort:     viper.GetInt("http.port"),
		KeepAlive:    viper.GetDuration("http.keepalive").String(),
		Timeout:      viper.GetDuration("http.timeout").String(),
		LogLevel:     viper.GetString("log.level"),
		LogFile:      viper.GetString("log.file"),
	}

	tmpl, err := template.New("config").Parse(configTemplate)
	if err != nil {
		return fmt.Errorf("template parse error: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("template execute error: %w", err)
	}

	if dryRun {
		ui.DryRunMsg("Would create config file: %s", cfgPath)
		fmt.Fprintln(ui.Out)
		fmt.Fprint(ui.Out, buf.String())
		return nil
	}

	// Create config directory
	dir := filepath.Dir(cfgPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(cfgPath, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	ui.Success("Config file created: %s", cfgPath)
	fmt.Fprintln(ui.Out)
	fmt.Fprint(ui.Out, buf.String())
	return nil
}

// configKeyInfo describes a config key for display purposes.
type configKeyInfo struct {
	Key     string
	EnvVars []string
	Secret  bool
}

var configKeys = []configKeyInfo{
	{Key: "api_key", EnvVars: []string{"JULES_API_KEY"}, Secret: true},
	{Key: "api_base", EnvVars: []string{"JULES_API_BASE"}},
	{Key: "transport", EnvVars: []string{"JULES_TRANSPORT", "MCP_TRANSPORT"}},
	{Key: "prompt_prefix", EnvVars: []string{"JULES_PROMPT_PREFIX"}},
	{Key: "http.addr", EnvVars: []string{"JULES_HTTP_ADDR", "MCP_ADDR"}},
	{Key: "http.port", EnvVars: []string{"JULES_HTTP_PORT", "MCP_PORT"}},
	{Key: "http.keepalive", EnvVars: []string{"JULES_HTTP_KEEPALIVE"}},
	{Key: "http.timeout", EnvVars: []string{"JULES_HTTP_TIMEOUT"}},
	{Key: "log.level", EnvVars: []string{"JULES_LOG_LEVEL"}},
	{Key: "log.file", EnvVars: []string{"JULES_LOG_FILE"}},
}

func configShowRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	// Check if config file exists
	if _, err := os.Stat(cfgPath); err == nil {
		ui.Info("Config file: %s", cfgPath)
	} else {
		ui.Info("Config file: (none)")
	}
	fmt.Fprintln(ui.Out)

	// Read config file values to determine file source
	fileValues := readConfigFileValues(cfgPath)

	for _, k := range configKeys {
		val := viper.Get(k.Key)
		if k.Secret {
			val = maskSecret(viper.GetString(k.Key))
		}
		ui.Setting(k.Key, val, detectSource(k.Key, fileValues, k.EnvVars...))
	}

	return nil
}

// maskSecret keeps only the last four characters.
func maskSecret(s string) string {
	if s == "" {
		return "(not set)"
	}
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}

// readConfigFileValues reads the raw YAML file and returns a flat map of keys present in it.
func readConfigFileValues(path string) map[string]bool {
	result := make(map[string]bool)

	data, err := os.ReadFile(path)
	if err != nil {
		return result
	}

	var parsed map[string]any
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return result
	}

	// Flatten nested keys with dot notation
	flattenKeys("", parsed, result)
	return result
}

// flattenKeys recursively flattens a nested map to dot-notation keys.
func flattenKeys(prefix string, m map[string]any, result map[string]bool) {
	for key, val := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}
		if nested, ok := val.(map[string]any); ok {
			flattenKeys(fullKey, nested, result)
		} else {
			result[fullKey] = true
		}
	}
}

// detectSource determines where a config value is coming from. Earlier
// env vars take precedence.
func detectSource(key string, fileValues map[string]bool, envVars ...string) string {
	for _, envVar := range envVars {
		if _, ok := os.LookupEnv(envVar); ok {
			return fmt.Sprintf("(env: %s)", envVar)
		}
	}
	if fileValues[key] {
		return "(file)"
	}
	return "(default)"
}

func configEditRun() error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		return fmt.Errorf("$EDITOR is not set; set it to your preferred editor (e.g. export EDITOR=vim)")
	}

	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s (run 'julesmcp config init' first)", cfgPath)
	}

	if dryRun {
		ui.DryRunMsg("Would open %s in %s", cfgPath, editor)
		return nil
	}

	editCmd := exec.Command(editor, cfgPath)
	editCmd.Stdin = os.Stdin
	editCmd.Stdout = os.Stdout
	editCmd.Stderr = os.Stderr
	return editCmd.Run()
}
