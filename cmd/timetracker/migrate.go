package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"timetracker/internal/config"
)

func migrateCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			// NewDB migrates on open.
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "Database %s is up to date\n", cfg.DatabaseURL)
			return nil
		},
	}
}
