// Package cli wires the newsclf commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"newsclf/config"
)

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "newsclf",
		Short: "News category classifier API",
		Long: `newsclf serves a pre-trained TF-IDF + linear classifier over HTTP and
classifies short news texts (including Devanagari script) into categories.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "config.yaml", "Path to the YAML config file")

	serveCmd := NewServeCommand()
	rootCmd.RunE = serveCmd.RunE

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(NewCheckCommand())
	rootCmd.AddCommand(NewSmokeCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// defaultURL is the address a local client uses to reach the configured server.
func defaultURL(cfg *config.Config) string {
	host := cfg.Http.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, cfg.Http.Port)
}
