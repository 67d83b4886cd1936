package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nimbus-hab/nimbus/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration file for consistency",
	Long: `Parses the configuration and reports every problem found, so a probe
on a launch field needs exactly one fix-and-retry cycle.`,
	Run: func(cmd *cobra.Command, args []string) {
		path, _ := cmd.Flags().GetString("config")
		if _, err := config.Load(path); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Configuration is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
