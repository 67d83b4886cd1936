package tui

import (
	"fmt"
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// PrintBanner outputs the ASCII art banner. Skipped when stdout is not
// a terminal so piped output stays clean.
func PrintBanner() {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return
	}

	p := termenv.ColorProfile()
	// Sky-to-stratosphere gradient.
	s1 := termenv.String("  _   _ _           _               ").Foreground(p.Color("#38bdf8"))
	s2 := termenv.String(" | \\ | (_)_ __ ___ | |__  _   _ ___ ").Foreground(p.Color("#60a5fa"))
	s3 := termenv.String(" |  \\| | | '_ ` _ \\| '_ \\| | | / __|").Foreground(p.Color("#818cf8"))
	s4 := termenv.String(" | |\\  | | | | | | | |_) | |_| \\__ \\").Foreground(p.Color("#a78bfa"))
	s5 := termenv.String(" |_| \\_|_|_| |_| |_|_.__/ \\__,_|___/").Foreground(p.Color("#c084fc"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	fmt.Println()
}
