// Package ui renders terminal output for the CLI with lipgloss styles.
//
// A single [Palette] holds the title, success, error, warning and help styles. [SummaryPanel] draws the result of a
// scrape as a bordered block; styles degrade to plain text when output is not a terminal.
package ui
