package main

import (
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/infrastructure/config"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/infrastructure/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const app = "matchctl"

// set at build time
var version = "dev"

var (
	debug      bool
	jsonOutput bool

	rootCmd = &cobra.Command{
		Use:          app,
		Short:        "matchctl scores purchase orders against invoices and extracts documents",
		SilenceUsage: true,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s version: %s\n", app, version)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "json format for logging")
	rootCmd.AddCommand(versionCmd)
}

// newLogger logs to stderr so stdout stays clean for command output
func newLogger() (*zap.Logger, error) {
	cfg := logger.DefaultConfig()
	cfg.Output = "stderr"
	cfg.Format = "console"
	if jsonOutput {
		cfg.Format = "json"
	}
	cfg.Level = "warn"
	if debug {
		cfg.Level = "debug"
	}
	return logger.New(cfg)
}

// loadConfig reads the same configuration as the server
func loadConfig() (*config.Config, *zap.Logger, error) {
	log, err := newLogger()
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
