// Package cli implements the command-line interface.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/confpack/confpack/internal/config"
	"github.com/confpack/confpack/internal/source"
	"github.com/confpack/confpack/internal/ui"
)

var (
	// Global flags
	configPath  string
	backendFlag string

	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "confpack",
	Short: "confpack - conference dataset export pipeline",
	Long: `confpack fetches a conference's raw collections and compiles them into
normalized entity stores, secondary indexes, pre-joined views, and derived
artifacts: a deterministic JSON tree a client can ingest without joins.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if strings.TrimSpace(configPath) != "" {
			cfg, err = config.LoadFrom(configPath)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cfg == nil {
			cfg = &config.Config{}
		}
		if cfg.UI.Accent != "" {
			ui.SetAccent(cfg.UI.Accent)
		}
		return nil
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "Backend base URL (overrides config)")
}

func getConfig() *config.Config {
	return cfg
}

// backendURL resolves the backend base URL: flag > config > default.
func backendURL() string {
	if backendFlag != "" {
		return backendFlag
	}
	if cfg != nil && cfg.BackendURL != "" {
		return cfg.BackendURL
	}
	return source.DefaultBaseURL
}

func newBackendClient() *source.Client {
	return source.NewClient(source.ClientOptions{BaseURL: backendURL()})
}
