package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/GyrosOfWar/serve/config"
)

// loadConfig loads the configuration, sets up logging and stores the config in
// the command context for RunE.
func loadConfig(cmd *cobra.Command, args []string) error {
	files, err := cmd.Flags().GetStringSlice("config")
	if err != nil {
		return fmt.Errorf("read config flag: %w", err)
	}

	cfg, err := config.Load(files, cmd.Flags())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cmd == rootCmd && len(args) > 0 {
		cfg.Storage.Path = args[0]
	}

	setupLogging(cfg, os.Stdout)
	cmd.SetContext(config.WithContext(cmd.Context(), cfg))
	return nil
}
