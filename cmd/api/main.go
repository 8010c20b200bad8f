package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "walkin",
		Short:        "Clinic walk-in registration and reporting API",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yml (default: search ., ./config, /app/config)")

	rootCmd.AddCommand(serveCmd(&configPath))
	rootCmd.AddCommand(reportCmd(&configPath))
	rootCmd.AddCommand(hashPasswordCmd())
	rootCmd.AddCommand(backupCmd(&configPath))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
