package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	fileadapter "github.com/nimbus-hab/nimbus/internal/adapters/file"
	"github.com/nimbus-hab/nimbus/internal/config"
	"github.com/nimbus-hab/nimbus/internal/presentation/tui"
	"github.com/nimbus-hab/nimbus/pkg/domain"
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render a post-flight mission report",
	Long: `Reads the persisted phase record and mission logs from the data
directory and renders a recovery debrief to the terminal.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		record, err := fileadapter.New(cfg.DataDir).Load(context.Background())
		if err != nil {
			return fmt.Errorf("no mission to report on: %w", err)
		}

		md := buildReport(cfg, record)
		render := tui.NewRenderer()
		out, err := render(md)
		if err != nil {
			// Fall back to raw markdown rather than losing the debrief.
			fmt.Print(md)
			return nil
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func buildReport(cfg *config.Config, record *domain.PhaseRecord) string {
	var sb strings.Builder
	sb.WriteString("# Mission Report\n\n")
	sb.WriteString(fmt.Sprintf("- **Final phase:** %s\n", record.Phase))
	sb.WriteString(fmt.Sprintf("- **Entered at:** %s\n\n", record.EnteredAt.Format("2006-01-02 15:04:05 MST")))

	sb.WriteString("## Phase attempts\n\n")
	sb.WriteString("| Phase | Entries |\n|---|---|\n")
	for _, p := range domain.Phases {
		if n := record.Attempts[p]; n > 0 {
			sb.WriteString(fmt.Sprintf("| %s | %d |\n", p, n))
		}
	}

	if logs := missionLogs(cfg.DataDir); len(logs) > 0 {
		sb.WriteString("\n## Mission logs\n\n")
		for _, l := range logs {
			sb.WriteString(fmt.Sprintf("- `%s`\n", l))
		}
	}
	return sb.String()
}

func missionLogs(dataDir string) []string {
	entries, err := os.ReadDir(filepath.Join(dataDir, "logs"))
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), "mission-") {
			out = append(out, filepath.Join(dataDir, "logs", e.Name()))
		}
	}
	sort.Strings(out)
	return out
}
