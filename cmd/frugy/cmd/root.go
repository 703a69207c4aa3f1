/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"os"

	"github.com/go-kit/log"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/ssargent/frugy/pkg/config"
	"github.com/ssargent/frugy/pkg/di"
	"github.com/ssargent/frugy/pkg/logging"
	"github.com/ssargent/frugy/pkg/registry"
)

var container *di.Container

// SetContainer injects the dependency container used by every command
func SetContainer(c *di.Container) {
	container = c
}

// env is the per-invocation state built by the root command
type env struct {
	cfg        *config.Config
	configPath string
	logger     log.Logger
	reg        *registry.Registry
}

type envKey struct{}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "frugy",
	Short: "frugy - IPMI FRU area encoder and decoder",
	Long: `frugy builds and parses IPMI Field Replaceable Unit (FRU) information
areas. Areas are described in YAML, encoded into checksummed binary images
for an EEPROM, and decoded back.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		cmd.SetContext(context.WithValue(cmd.Context(), envKey{}, e))
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default is ~/.config/frugy/config.yaml)")
	rootCmd.PersistentFlags().StringP("data-dir", "d", "", "Data directory for the image catalog")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
}

// setup loads the configuration, applies flag overrides and builds the logger.
// A missing config file is not an error; defaults are used instead.
func setup(cmd *cobra.Command) (*env, error) {
	if container == nil {
		return nil, errors.New("dependency container not initialized")
	}

	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	cfg := config.DefaultConfig()
	if config.ConfigExists(configPath) {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if dataDir, _ := cmd.Flags().GetString("data-dir"); dataDir != "" {
		cfg.DataDir = dataDir
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Logging.Level = lvl
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, configPath: configPath, logger: logger, reg: container.GetRegistry()}, nil
}

func envFrom(cmd *cobra.Command) (*env, error) {
	e, ok := cmd.Context().Value(envKey{}).(*env)
	if !ok {
		return nil, errors.New("command environment not initialized")
	}
	return e, nil
}
