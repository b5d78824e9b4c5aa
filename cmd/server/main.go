package main

import (
	"fmt"
	"os"

	"github.com/npezzotti/smartshop/internal/config"
	"github.com/npezzotti/smartshop/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var Version = "dev"

var configFile string

func main() {
	rootCmd := &cobra.Command{
		Use:           "smartshop",
		Short:         "SmartShop marketplace API and realtime server",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default ./smartshop.yaml)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads configuration and builds the process logger from it.
func loadConfig() (*config.Config, zerolog.Logger, error) {
	v, err := config.NewViper(configFile)
	if err != nil {
		return nil, zerolog.Nop(), err
	}

	cfg, err := config.NewConfig(v)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("config: %w", err)
	}

	logger := logging.New(logging.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	return cfg, logger, nil
}
