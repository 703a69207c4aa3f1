/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"
	"github.com/ssargent/frugy/pkg/api"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the frugy REST API server. It encodes and decodes areas over HTTP
and serves the image catalog from the data directory.

Requests must carry an X-API-Key header when an API key is configured.

Examples:
  frugy serve
  frugy serve --bind 0.0.0.0 --port 9200 --api-key=mysecretkey`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := envFrom(cmd)
		if err != nil {
			return err
		}
		cfg := serverConfig(cmd, e)

		s, err := openStore(e)
		if err != nil {
			return err
		}
		defer s.Close()

		if cfg.APIKey == "" {
			level.Warn(e.logger).Log("msg", "no API key configured, the API is unauthenticated")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		starter := container.GetServerFactory().CreateServerStarter()
		return starter.StartServer(ctx, e.reg, s, cfg, e.logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("bind", "", "Address to bind (default from config)")
	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on (default from config)")
	serveCmd.Flags().String("api-key", "", "API key for request authentication (default from config)")
}

// serverConfig merges the serve flags over the loaded configuration
func serverConfig(cmd *cobra.Command, e *env) api.ServerConfig {
	cfg := api.ServerConfig{
		Bind:   e.cfg.Server.Bind,
		Port:   e.cfg.Server.Port,
		APIKey: e.cfg.Server.APIKey,
	}
	if cmd.Flags().Changed("bind") {
		cfg.Bind, _ = cmd.Flags().GetString("bind")
	}
	if cmd.Flags().Changed("port") {
		cfg.Port, _ = cmd.Flags().GetInt("port")
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey, _ = cmd.Flags().GetString("api-key")
	}
	return cfg
}
