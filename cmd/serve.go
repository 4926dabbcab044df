package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/julesmcp/internal/config"
	"github.com/joescharf/julesmcp/internal/daemon"
	"github.com/joescharf/julesmcp/internal/logging"
	"github.com/joescharf/julesmcp/internal/transport"
)

const shutdownTimeout = 10 * time.Second

var servePIDFile string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the Jules tools over MCP",
	Long: `Serve the Jules tools over the selected transport until interrupted.

Transports:
  stdio    newline-delimited JSON-RPC on stdin/stdout (default)
  http     stateless JSON-RPC on POST /message and streamable HTTP on /mcp
  durable  long-lived server with SSE, WebSocket, JSON-RPC and REST routes

Use 'julesmcp serve start' to run an HTTP transport in the background.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveRun(cmd)
	},
}

var serveStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start an HTTP transport in the background",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveStartRun()
	},
}

var serveStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a background server is running",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveStatusRun()
	},
}

var serveStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the background server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveStopRun()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.AddCommand(serveStartCmd, serveStatusCmd, serveStopCmd)

	serveCmd.PersistentFlags().StringP("transport", "t", "", "transport: stdio, http or durable")
	serveCmd.PersistentFlags().IntP("port", "p", 0, "port for the HTTP transports")
	serveCmd.PersistentFlags().StringVar(&servePIDFile, "pid-file", "", "PID file for background servers")
	_ = viper.BindPFlag("transport", serveCmd.PersistentFlags().Lookup("transport"))
	_ = viper.BindPFlag("http.port", serveCmd.PersistentFlags().Lookup("port"))
}

// pidFile returns the PID file manager for the background server.
func pidFile() *daemon.PIDFile {
	if servePIDFile != "" {
		return daemon.NewPIDFile(servePIDFile)
	}
	return daemon.NewPIDFile(filepath.Join(runtimeDir(), "julesmcp-serve.pid"))
}

// serveLogPath is where a background server writes its output.
func serveLogPath() string {
	return filepath.Join(runtimeDir(), "julesmcp-serve.log")
}

func serveRun(cmd *cobra.Command) error {
	cfg, tools, closeLog, err := setup()
	if err != nil {
		return err
	}
	defer closeLog()
	log := logging.Component("serve")

	tr, err := transport.New(cfg, tools, logging.Component("transport"))
	if err != nil {
		return err
	}

	if servePIDFile != "" && cfg.Transport != config.TransportStdio {
		pf := pidFile()
		if err := pf.Acquire(); err != nil {
			return err
		}
		defer func() { _ = pf.Release() }()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), shutdownSignals()...)
	defer stop()

	log.Info().Str("transport", string(cfg.Transport)).Str("version", buildVersion).Msg("starting")
	if cfg.Transport != config.TransportStdio {
		ui.Stderr().Info("Serving %s transport on %s", cfg.Transport, cfg.HTTP.ListenAddr())
	}
	errCh := make(chan error, 1)
	go func() { errCh <- tr.Start(ctx) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := tr.Stop(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("shutdown")
	}
	return <-errCh
}

func serveStartRun() error {
	pf := pidFile()
	if pid, running := pf.IsRunning(); running {
		return fmt.Errorf("server already running (PID %d)", pid)
	}

	transportName := config.Transport(viper.GetString("transport"))
	if transportName == config.TransportStdio || transportName == "" {
		return errors.New("background mode needs an HTTP transport: use --transport http or --transport durable")
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate executable: %w", err)
	}
	args := []string{
		"serve",
		"--transport", string(transportName),
		"--port", strconv.Itoa(viper.GetInt("http.port")),
		"--pid-file", pf.Path,
	}
	if cfgFile := viper.ConfigFileUsed(); cfgFile != "" {
		args = append(args, "--config", cfgFile)
	}

	if dryRun {
		ui.DryRunMsg("Would run %s %v", exe, args)
		return nil
	}

	logPath := serveLogPath()
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("create runtime directory: %w", err)
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	child := exec.Command(exe, args...)
	child.Stdout = logFile
	child.Stderr = logFile
	setDaemonAttrs(child)
	if err := child.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	if err := pf.WritePID(child.Process.Pid); err != nil {
		return fmt.Errorf("write PID file: %w", err)
	}
	_ = child.Process.Release()

	ui.Success("Server started (PID %d, transport %s, port %d)", child.Process.Pid, transportName, viper.GetInt("http.port"))
	ui.Info("Logs: %s", logPath)
	return nil
}

func serveStatusRun() error {
	pf := pidFile()
	pid, running := pf.IsRunning()
	if !running {
		if pid != 0 {
			ui.VerboseLog("removing stale PID file %s", pf.Path)
			_ = pf.Remove()
		}
		ui.Info("Server not running")
		return nil
	}
	ui.Success("Server running (PID %d)", pid)
	ui.VerboseLog("PID file: %s", pf.Path)
	return nil
}

func serveStopRun() error {
	pf := pidFile()
	pid, running := pf.IsRunning()
	if !running {
		return errors.New("server not running")
	}

	if dryRun {
		ui.DryRunMsg("Would stop server (PID %d)", pid)
		return nil
	}

	if err := pf.Signal(sigTERM()); err != nil {
		return fmt.Errorf("signal server: %w", err)
	}

	deadline := time.Now().Add(shutdownTimeout)
	for time.Now().Before(deadline) {
		if _, alive := pf.IsRunning(); !alive {
			_ = pf.Remove()
			ui.Success("Server stopped (PID %d)", pid)
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}

	ui.Warning("Server did not exit in %s, killing", shutdownTimeout)
	if err := pf.Signal(sigKILL()); err != nil {
		return fmt.Errorf("kill server: %w", err)
	}
	_ = pf.Remove()
	ui.Success("Server killed (PID %d)", pid)
	return nil
}
