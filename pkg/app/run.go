// Package app provides the shared entry point for the freegin-ai gateway binary.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/freegin-ai/gateway/internal/config"
	"github.com/freegin-ai/gateway/internal/security"
)

// RunParams configures the main application loop.
type RunParams struct {
	// ConfigPath is an explicit path to the YAML configuration file.
	// If empty, ResolveConfigPath is called automatically.
	ConfigPath string

	// Version, Commit, and Date are injected at build time via ldflags.
	Version string
	Commit  string
	Date    string

	// DataDir overrides the default persistent data directory.
	DataDir string

	// LogLevel sets the minimum log level. Defaults to slog.LevelInfo.
	LogLevel slog.Level
}

// Run loads configuration, wires every collaborator, starts the HTTP
// gateway and background scheduler, and blocks until a shutdown signal
// (SIGINT/SIGTERM) is received.
func Run(params RunParams) error {
	cfgPath := params.ConfigPath
	if cfgPath == "" {
		resolved, err := ResolveConfigPath()
		if err != nil {
			return err
		}
		cfgPath = resolved
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	redactor := security.NewRedactor()
	innerHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: params.LogLevel,
	})
	logger := slog.New(security.NewRedactingHandler(innerHandler, redactor))

	application, err := Wire(cfg, cfgPath, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Error("error closing database", "error", err)
		}
	}()

	if err := application.Gateway.Start(); err != nil {
		return fmt.Errorf("starting gateway: %w", err)
	}
	if err := application.Scheduler.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	sig := <-sigCh
	logger.Info("shutdown signal received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := application.Scheduler.Stop(ctx); err != nil {
		logger.Error("error stopping scheduler", "error", err)
	}
	if err := application.Gateway.Stop(ctx); err != nil {
		logger.Error("error stopping gateway", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// ResolveConfigPath searches for a config file in standard locations.
// Search order: $XDG_CONFIG_HOME/freegin-ai/freegin-ai.yaml →
// ~/.config/freegin-ai/freegin-ai.yaml → ./freegin-ai.yaml
func ResolveConfigPath() (string, error) {
	var candidates []string

	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		candidates = append(candidates, filepath.Join(xdg, "freegin-ai", "freegin-ai.yaml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "freegin-ai", "freegin-ai.yaml"))
	}

	candidates = append(candidates, "freegin-ai.yaml")

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("no configuration file found (searched: %v)", candidates)
}

// DefaultDataDir returns the default persistent data directory.
// Uses $XDG_DATA_HOME/freegin-ai if set, otherwise ~/.local/share/freegin-ai
// per the XDG spec.
func DefaultDataDir() string {
	if dir, ok := os.LookupEnv("XDG_DATA_HOME"); ok {
		return filepath.Join(dir, "freegin-ai")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "freegin-ai")
}

// DefaultWorkspace returns the current working directory.
func DefaultWorkspace() string {
	dir, _ := os.Getwd()
	return dir
}
