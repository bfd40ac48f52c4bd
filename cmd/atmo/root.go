package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yegors/stdatmo/internal/config"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "atmo",
		Short: "atmo evaluates the 1976 U.S. Standard Atmosphere and gravity model",
		Long: `atmo computes temperature, pressure, density and speed of sound for a
geometric altitude using the layered 1976 U.S. Standard Atmosphere (exact up
to ~86 km, extrapolated above), together with inverse-square gravity.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "Path to a TOML configuration file (defaults are used when omitted)")

	root.AddCommand(
		newEvalCmd(),
		newGravityCmd(),
		newLayersCmd(),
		newProfileCmd(),
		newAirDataCmd(),
		newPressureAltitudeCmd(),
		newDensityAltitudeCmd(),
	)
	return root
}

// loadConfig returns the configuration named by --config, or the defaults
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if path == "" {
		return config.Default(), nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
