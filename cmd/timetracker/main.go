package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfgPath string
	rootCmd := &cobra.Command{
		Use:           "timetracker",
		Short:         "Task and time tracking over JSON/HTTP",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "Path to a YAML config file")

	serve := serveCmd(&cfgPath)
	rootCmd.RunE = serve.RunE // default action is serve
	rootCmd.AddCommand(serve)
	rootCmd.AddCommand(migrateCmd(&cfgPath))
	rootCmd.AddCommand(reportCmd(&cfgPath))
	rootCmd.AddCommand(configCmd(&cfgPath))

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
