package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nimbus-hab/nimbus/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "nimbus",
	Short: "Nimbus is the flight controller for a stratospheric balloon probe",
	Long: `Nimbus drives an autonomous balloon mission through its phase graph:
hardware self-test, launch wait, GPS fix acquisition, ascent, descent and
landing, with crash-resilient state persistence and a safe-mode fallback.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "nimbus.yaml", "Path to the configuration file")
}

// loadConfig reads the configured file, falling back to defaults when
// the flag was left untouched and the default file does not exist.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if _, err := os.Stat(path); os.IsNotExist(err) && !cmd.Flags().Changed("config") {
		return config.Default(), nil
	}
	return config.Load(path)
}
