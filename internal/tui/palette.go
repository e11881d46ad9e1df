package tui

import "github.com/charmbracelet/lipgloss"

// Desaturated palette; ColorError marks failed rows in summaries.
var (
	ColorInk       = lipgloss.Color("#ECEFF4")
	ColorDim       = lipgloss.Color("#6C7589")
	ColorAccent    = lipgloss.Color("#D08770")
	ColorAccentAlt = lipgloss.Color("#8FBCBB")
	ColorSuccess   = lipgloss.Color("#A3BE8C")
	ColorWarn      = lipgloss.Color("#EBCB8B")
	ColorError     = lipgloss.Color("#BF616A")
)

var (
	SuccessStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	WarnStyle    = lipgloss.NewStyle().Foreground(ColorWarn)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	HeadingStyle = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	DimStyle     = lipgloss.NewStyle().Foreground(ColorDim)
)
