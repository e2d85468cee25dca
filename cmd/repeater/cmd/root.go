// Package cmd implements the repeater CLI commands.
//
// The root command loads the optional configuration file, builds the logger
// and dispatches to the subcommands:
//   - simulate: scroll a generated data set headlessly and report frame stats
//   - demo: scroll the same data set interactively in the terminal
package cmd

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/go-drift/repeater/pkg/config"
	"github.com/go-drift/repeater/pkg/errors"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// Execute runs the CLI.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var (
		verbose    bool
		configPath string
	)

	root := &cobra.Command{
		Use:          "repeater",
		Short:        "Drive the virtualizing layout engine from a terminal",
		Long:         `repeater scrolls large generated collections through the virtualizing layout engine and reports what was realized, recycled and phased.`,
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			level, err := cfg.LogLevel()
			if err != nil {
				return err
			}
			if verbose {
				level = log.DebugLevel
			}
			logger := newLogger(cmd.ErrOrStderr(), level)
			errors.SetHandler(&errors.LogHandler{Logger: logger, Verbose: verbose})

			ctx := withLogger(cmd.Context(), logger)
			ctx = withConfig(ctx, cfg)
			cmd.SetContext(ctx)
			logger.Debug("configuration loaded", "budget", cfg.Budget(), "cacheLength", cfg.CacheLength())
			return nil
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("repeater %s (built %s)\n", Version, BuildTime))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "configuration file (default: repeater.yaml or repeater.toml in the working directory)")

	root.AddCommand(newSimulateCmd())
	root.AddCommand(newDemoCmd())
	return root
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadOptional(".")
}
