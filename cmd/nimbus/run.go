package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nimbus-hab/nimbus"
	"github.com/nimbus-hab/nimbus/internal/presentation/tui"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fly the mission",
	Long: `Boots the engine, resumes any persisted phase and drives the mission
to completion. With --sim the airframe is replaced by a built-in flight
simulation so a full mission can be flown on a desk.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sim, _ := cmd.Flags().GetBool("sim")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		tui.PrintBanner()

		var opts []nimbus.Option
		if sim {
			opts = append(opts, nimbus.WithSimulatedHardware())
		}
		m, err := nimbus.New(cfg, opts...)
		if err != nil {
			return err
		}
		defer m.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := m.Run(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				fmt.Println("Mission interrupted; phase record persisted, run again to resume.")
				return nil
			}
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("sim", false, "Run against simulated hardware instead of the airframe")
}
