package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	fileadapter "github.com/nimbus-hab/nimbus/internal/adapters/file"
	"github.com/nimbus-hab/nimbus/internal/presentation/graph"
	"github.com/nimbus-hab/nimbus/pkg/domain"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the phase graph visualization",
	Long: `Outputs a Mermaid diagram (graph TD) of the mission phase graph. When a
persisted phase record exists in the data directory, visited phases and
the current phase are highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		var overlay *graph.Overlay
		record, err := fileadapter.New(cfg.DataDir).Load(context.Background())
		switch {
		case err == nil:
			overlay = &graph.Overlay{CurrentPhase: record.Phase}
			for p, n := range record.Attempts {
				if n > 0 {
					overlay.VisitedPhases = append(overlay.VisitedPhases, p)
				}
			}
		case errors.Is(err, domain.ErrNoImage):
			// No flight yet; plain graph.
		default:
			return fmt.Errorf("reading phase record: %w", err)
		}

		fmt.Print(graph.GenerateMermaid(overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
