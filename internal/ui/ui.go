// Package ui renders terminal output for the CLI.
package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/pterm/pterm"
)

var (
	successColor = lipgloss.Color("#00FF88")
	warningColor = lipgloss.Color("#FFB800")
	errorColor   = lipgloss.Color("#FF4444")
	accentColor  = lipgloss.Color("#00D9FF")
	mutedColor   = lipgloss.Color("#6C757D")

	titleStyle   = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(successColor).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(errorColor).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(warningColor).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)
)

// Header prints a section header with a subtitle.
func Header(title, subtitle string) {
	fmt.Println(titleStyle.Render(title))
	if subtitle != "" {
		fmt.Println(mutedStyle.Render(subtitle))
	}
	fmt.Println()
}

// Success prints a success message.
func Success(format string, args ...interface{}) {
	fmt.Println(successStyle.Render("✓ " + fmt.Sprintf(format, args...)))
}

// Error prints an error message to stderr.
func Error(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, errorStyle.Render("✗ "+fmt.Sprintf(format, args...)))
}

// Warning prints a warning message.
func Warning(format string, args ...interface{}) {
	fmt.Println(warningStyle.Render("⚠ " + fmt.Sprintf(format, args...)))
}

// Info prints an informational message.
func Info(format string, args ...interface{}) {
	fmt.Println(mutedStyle.Render(fmt.Sprintf(format, args...)))
}

// Table prints a table with a header row.
func Table(headers []string, rows [][]string) {
	data := pterm.TableData{headers}
	data = append(data, rows...)
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// List prints a bulleted list.
func List(items []string) {
	for _, item := range items {
		fmt.Printf("  • %s\n", item)
	}
}

// Markdown renders markdown for the terminal. Falls back to the raw text if
// rendering fails.
func Markdown(source string) {
	out, err := glamour.Render(source, "dark")
	if err != nil {
		fmt.Println(source)
		return
	}
	fmt.Print(out)
}

// ParseError prints a schema parse error, highlighting the message.
func ParseError(path string, err error) {
	bold := color.New(color.FgRed, color.Bold)
	bold.Fprintf(os.Stderr, "schema error")
	fmt.Fprintf(os.Stderr, " in %s:\n  %s\n", color.CyanString(path), err)
}
