package ui

import (
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Color definitions for consistent styling across the CLI.
var (
	// Placed tasks and clean runs: green
	colorOK = color.New(color.FgGreen)

	// Fixed-duration tasks: bold cyan
	colorFixed = color.New(color.FgCyan, color.Bold)

	// Overdue and errors: red
	colorErr = color.New(color.FgRed)

	// Headers: bold
	colorHeader = color.New(color.Bold)

	// Muted: for secondary information
	colorMuted = color.New(color.FgWhite, color.Faint)
)

// termWidth returns the terminal width, or a default if detection fails.
func termWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // sensible default
	}
	return width
}

// DisableColor disables all color output.
func DisableColor() {
	color.NoColor = true
}

func formatOK(s string) string {
	return colorOK.Sprint(s)
}

func formatFixed(s string) string {
	return colorFixed.Sprint(s)
}

func formatErr(s string) string {
	return colorErr.Sprint(s)
}

func formatHeader(s string) string {
	return colorHeader.Sprint(s)
}

func formatMuted(s string) string {
	return colorMuted.Sprint(s)
}
