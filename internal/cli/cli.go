// Package cli implements the copperline command-line interface.
//
// This package provides commands for generating fabrication file sets,
// rendering schematics, validating existing outputs, and running the
// preview server. The CLI is built using cobra and supports verbose
// logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - generate: Produce the Gerber layers, drill file, and schematics
//   - schematic: Render the circuit schematic on its own
//   - validate: Check an existing output directory
//   - serve: Run the HTTP preview server
//   - cache: Manage the artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/lwerner/copperline/pkg/buildinfo"
	"github.com/lwerner/copperline/pkg/cache"
	"github.com/lwerner/copperline/pkg/errors"
	"github.com/lwerner/copperline/pkg/fab"
	"github.com/lwerner/copperline/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "copperline"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Copperline generates PCB fabrication files",
		Long:         `Copperline is a CLI tool that synthesizes a complete fabrication file set (RS-274X Gerber layers, an Excellon drill file, and a circuit schematic) for the SE050 breakout board from a parametric layout description.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	}

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.schematicCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) *pipeline.Runner {
	return pipeline.NewRunner(newCache(noCache), nil, c.Logger)
}

func newCache(noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return cache.NewNullCache()
	}
	return fc
}

// cacheDir returns the cache directory using XDG standard (~/.cache/copperline/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// loadParams reads board parameters from a TOML file, or returns the
// built-in defaults when no path is given.
func loadParams(path string) (fab.Params, error) {
	if path == "" {
		return fab.DefaultParams(), nil
	}
	if err := errors.ValidateOutputDir(path); err != nil {
		return fab.Params{}, err
	}
	return fab.LoadParams(path)
}

// parseList parses a comma-separated flag value into a slice.
// Empty means no restriction.
func parseList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
