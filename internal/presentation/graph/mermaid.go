// Package graph renders the phase transition graph for documentation
// and field debriefs.
package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nimbus-hab/nimbus/pkg/domain"
)

// Overlay contains dynamic mission state to visualize on the graph.
type Overlay struct {
	VisitedPhases []domain.Phase
	CurrentPhase  domain.Phase
}

// GenerateMermaid produces a Mermaid flowchart of the phase graph.
// Shapes carry meaning:
// - Init: ((circle)) entry point
// - SafeMode: [/parallelogram/] fault sink
// - ShutDown: [[subroutine]] terminal
// - everything else: [rectangle]
// Escalation edges into SafeMode are drawn dotted.
func GenerateMermaid(overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, p := range domain.Phases {
		opener, closer := "[", "]"
		switch p {
		case domain.PhaseInit:
			opener, closer = "((", "))"
		case domain.PhaseSafeMode:
			opener, closer = "[/", "/]"
		case domain.PhaseShutDown:
			opener, closer = "[[", "]]"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", nodeID(p), opener, p, closer))

		succ := append([]domain.Phase(nil), domain.Successors(p)...)
		sort.Slice(succ, func(i, j int) bool { return succ[i] < succ[j] })
		for _, next := range succ {
			arrow := "-->"
			if next == domain.PhaseSafeMode {
				arrow = "-.->"
			}
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", nodeID(p), arrow, nodeID(next)))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[domain.Phase]bool)
		for _, p := range overlay.VisitedPhases {
			if p == "" || seen[p] {
				continue
			}
			seen[p] = true
			sb.WriteString(fmt.Sprintf("    class %s visited;\n", nodeID(p)))
		}
		if overlay.CurrentPhase != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", nodeID(overlay.CurrentPhase)))
		}
	}

	return sb.String()
}

func nodeID(p domain.Phase) string {
	return strings.ReplaceAll(string(p), "-", "_")
}
