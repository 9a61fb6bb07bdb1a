// Package cli implements the edaitorial command tree.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/escuriola/edaitorial/internal/app"
	"github.com/escuriola/edaitorial/internal/logging"
	"github.com/escuriola/edaitorial/internal/report"
)

// ExitError carries a process exit code other than 1.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) Unwrap() error { return e.Err }

// Options are the persistent flags shared by every command.
type Options struct {
	ConfigPath string
	LogLevel   string
	Output     string
	Verbose    bool
	Quiet      bool
}

// NewRootCmd builds the command tree.
func NewRootCmd(version string) *cobra.Command {
	opts := &Options{}
	rootCmd := &cobra.Command{
		Use:   "edaitorial",
		Short: "AI-assisted editorial quality checks",
		Long: `edaitorial analyzes editorial content for SEO, accessibility, spelling,
broken references and general quality, scores it and decides whether it is
ready to publish.

Configuration is read from edaitorial.yaml in the working directory (or
--config) and EDAITORIAL_* environment variables. Backend credentials come
from LLM_API_KEY and LLM_PROVIDER.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !report.ValidFormat(opts.Output) {
				return fmt.Errorf("unknown output format %q (want one of %v)", opts.Output, report.Formats)
			}
			return nil
		},
	}

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to config file (default ./edaitorial.yaml when present)")
	rootCmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&opts.Output, "output", "o", report.FormatHuman, "Output format (human, json, yaml)")
	rootCmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Suppress progress output")

	rootCmd.AddCommand(
		NewAnalyzeCmd(opts),
		NewGateCmd(opts),
		NewServeCmd(opts),
		NewNodesCmd(opts),
		NewHistoryCmd(opts),
		NewCompareCmd(opts),
		NewCacheCmd(opts),
		NewVersionCmd(version),
	)

	return rootCmd
}

// Execute runs the command tree and exits the process on failure.
func Execute(version string) {
	rootCmd := NewRootCmd(version)
	if err := rootCmd.Execute(); err != nil {
		code := 1
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.Code
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(code)
	}
}

// newApplication loads the configuration and builds the application. Log
// lines go to stderr; one-shot commands log warnings only unless asked.
func newApplication(cmd *cobra.Command, opts *Options, quietLogs bool, appOpts ...app.ComponentOption) (*app.Application, error) {
	cfg, err := app.LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	level := cfg.Level()
	switch {
	case opts.LogLevel != "":
		level = logging.ParseLevel(opts.LogLevel)
	case opts.Verbose:
		level = logging.LevelDebug
	case quietLogs && level < logging.LevelWarn:
		level = logging.LevelWarn
	}
	logger := logging.NewLogger("edaitorial", level, cmd.ErrOrStderr())

	return app.NewApplication(cfg, logger, appOpts...)
}

func closeApplication(cmd *cobra.Command, a *app.Application) {
	if err := a.Shutdown(cmd.Context()); err != nil {
		a.Logger.Warn("shutdown", logging.Field{Key: "error", Value: err})
	}
}

func printSuccess(w io.Writer, msg string) {
	green := color.New(color.FgGreen)
	green.Fprintf(w, "✓ %s\n", msg)
}

func printError(w io.Writer, msg string) {
	red := color.New(color.FgRed)
	red.Fprintf(w, "✗ %s\n", msg)
}
