// Package style renders the installer's user-facing terminal output. The
// usual consumer is a panel's log stream, not an interactive terminal, so
// Setup drops color entirely when stderr is not a TTY.
package style

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/pterm/pterm"
)

var (
	// ErrorStyle renders the tagged fatal-error banner.
	ErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

	// HaltStyle renders the second-factor halt notice, visually distinct
	// from a failure.
	HaltStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

// Setup configures colored output based on the output stream.
func Setup() {
	fd := os.Stderr.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		pterm.DisableColor()
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// Stage prints a numbered section header for one workflow stage.
func Stage(n, total int, title string) {
	pterm.DefaultSection.Printf("[%d/%d] %s", n, total, title)
}

// Step prints a progress line inside the current stage.
func Step(format string, args ...interface{}) {
	pterm.Info.Printfln(format, args...)
}

// Warn prints a non-fatal warning.
func Warn(format string, args ...interface{}) {
	pterm.Warning.Printfln(format, args...)
}

// RenderError formats a fatal error for stderr.
func RenderError(err error) string {
	return ErrorStyle.Render(fmt.Sprintf("Error: %v", err))
}

// RenderHalt formats the second-factor halt notice for stderr.
func RenderHalt(recoveryPath string) string {
	return HaltStyle.Render(fmt.Sprintf(
		"Installation halted: a Steam Guard code is required.\nSee %s for instructions.", recoveryPath))
}
