// Package banner prints the startup banner, sized to the terminal.
package banner

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

const boxWidth = 72

// Config holds banner content.
type Config struct {
	AppName string
	Version string
	Mode    string // production/development
	URL     string
	Modules int
	Auth    bool
}

// Print writes the banner to stdout. Narrow terminals and pipes get a
// single-line form.
func Print(cfg Config) {
	printWidth(os.Stdout, cfg, terminalWidth())
}

// printWidth renders for a specific width (internal, testable).
func printWidth(w io.Writer, cfg Config, width int) {
	if width < boxWidth+2 {
		fmt.Fprintf(w, "%s %s (%s) listening on %s, %d core modules\n",
			cfg.AppName, cfg.Version, cfg.Mode, cfg.URL, cfg.Modules)
		return
	}

	line := strings.Repeat("═", boxWidth-2)
	auth := "disabled"
	if cfg.Auth {
		auth = "enabled"
	}

	fmt.Fprintf(w, "╔%s╗\n", line)
	boxRow(w, fmt.Sprintf("%s %s", cfg.AppName, cfg.Version))
	fmt.Fprintf(w, "╠%s╣\n", line)
	boxRow(w, fmt.Sprintf("Mode:         %s", cfg.Mode))
	boxRow(w, fmt.Sprintf("Listening:    %s", cfg.URL))
	boxRow(w, fmt.Sprintf("Core modules: %d", cfg.Modules))
	boxRow(w, fmt.Sprintf("Admin auth:   %s", auth))
	fmt.Fprintf(w, "╚%s╝\n", line)
}

func boxRow(w io.Writer, text string) {
	inner := boxWidth - 4
	if len(text) > inner {
		text = text[:inner-3] + "..."
	}
	fmt.Fprintf(w, "║ %-*s ║\n", inner, text)
}

func terminalWidth() int {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 0
	}
	return width
}
