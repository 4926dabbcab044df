package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/joescharf/julesmcp/internal/config"
	"github.com/joescharf/julesmcp/internal/jules"
	"github.com/joescharf/julesmcp/internal/logging"
	julesmcp "github.com/joescharf/julesmcp/internal/mcp"
)

// setup loads and validates the configuration, installs the side-channel
// logger and builds the tool registry. The returned func closes the log.
func setup() (*config.Config, *julesmcp.Server, func(), error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, nil, nil, err
	}

	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	logger, closeLog, err := logging.New(level, cfg.Log.File, os.Stderr)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open log: %w", err)
	}
	logging.Install(logger)

	client := jules.NewClient(cfg, jules.WithLogger(logging.Component("jules")))
	tools := julesmcp.NewServer(client, cfg,
		julesmcp.WithLogger(logging.Component("tools")),
		julesmcp.WithVersion(buildVersion),
	)
	return cfg, tools, closeLog, nil
}
