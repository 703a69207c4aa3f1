/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/ssargent/frugy/pkg/config"
	"gopkg.in/yaml.v3"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the frugy configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write a default configuration file.

Examples:
  frugy config init
  frugy config init --generate-api-key --data-dir=/var/lib/frugy`,
	Args: cobra.NoArgs,
	// init must work even when the existing file no longer loads
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		if configPath == "" {
			configPath = config.GetDefaultConfigPath()
		}
		dataDir, _ := cmd.Flags().GetString("data-dir")
		force, _ := cmd.Flags().GetBool("force")
		withKey, _ := cmd.Flags().GetBool("generate-api-key")

		cfg, err := initConfig(configPath, dataDir, force, withKey)
		if err != nil {
			return err
		}
		cmd.Printf("Configuration written to %s\n", configPath)
		cmd.Printf("Data directory: %s\n", cfg.DataDir)
		if cfg.Server.APIKey != "" {
			cmd.Printf("API key: %s\n", cfg.Server.APIKey)
		}
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := envFrom(cmd)
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(e.cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config")
		}
		cmd.Printf("# %s\n", e.configPath)
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configShowCmd)

	configInitCmd.Flags().Bool("force", false, "Overwrite an existing configuration file")
	configInitCmd.Flags().Bool("generate-api-key", false, "Generate a random API key for the server")
}

// initConfig writes a default configuration unless one already exists
func initConfig(configPath, dataDir string, force, withKey bool) (*config.Config, error) {
	if config.ConfigExists(configPath) && !force {
		return nil, errors.Errorf("configuration already exists at %s, use --force to overwrite", configPath)
	}
	return config.BootstrapConfig(configPath, dataDir, withKey)
}
