package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nimbus-hab/nimbus"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of nimbus",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("nimbus version %s\n", strings.TrimSpace(nimbus.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
