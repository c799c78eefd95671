package main

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"timetracker/internal/config"
	"timetracker/internal/notify"
)

func reportCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a summary of running and recently stopped timers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			text, err := a.reports.Summary(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)

			if send, _ := cmd.Flags().GetBool("send"); send {
				notifier, err := notify.New(cfg, log.Default())
				if err != nil {
					return fmt.Errorf("notifier: %w", err)
				}
				return notifier.Notify(cmd.Context(), text)
			}
			return nil
		},
	}
	cmd.Flags().Bool("send", false, "Also deliver the report through the configured notifier")
	return cmd
}
