package main

import (
	"context"
	"os"

	"github.com/odexkit/odexpatch/cmd/odexpatch/opts"
	"github.com/odexkit/odexpatch/pkg/config"
	"github.com/odexkit/odexpatch/pkg/status"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

const defaultConfigFile = ".odexpatch.yaml"

var (
	// Flags
	configFile string
	debugMode  bool
)

// newRootOpts creates a new rootOpts with initialized dependencies.
// A missing config file at the default location is not an error: the
// zero-argument run works against ./input, ./output, ./backup and ./tools.
func newRootOpts(ctx context.Context) (*opts.RootOpts, error) {
	userLogger := status.NewUserLogger(ctx)

	var cfg *config.Config
	var err error
	cfg, err = config.Load(ctx, configFile)
	if err != nil {
		if configFile == defaultConfigFile && errors.Is(err, os.ErrNotExist) {
			cfg = config.Default()
		} else {
			return nil, errors.Errorf("loading config: %w", err)
		}
	}

	return &opts.RootOpts{
		Config:     cfg,
		StatusMgr:  status.NewManager(os.Stdout, status.NewDefaultFileFormatter()),
		UserLogger: userLogger,
	}, nil
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", defaultConfigFile, "config file path")
	cmd.PersistentFlags().BoolVarP(&debugMode, "debug", "d", false, "enable debug logging")
}

// setupLogging configures zerolog based on flags
func setupLogging() {
	if debugMode {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &log
}
