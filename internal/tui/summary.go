package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Status colours a summary value.
type Status int

const (
	StatusPlain Status = iota
	StatusOK
	StatusWarn
	StatusFail
)

type SummaryRow struct {
	Label  string
	Value  string
	Status Status
}

// RenderSummary draws rows as a two-column table with a heading.
func RenderSummary(heading string, rows []SummaryRow) string {
	labelWidth := lipgloss.Width(heading)
	valueWidth := 0
	for _, row := range rows {
		labelWidth = max(labelWidth, lipgloss.Width(row.Label))
		valueWidth = max(valueWidth, lipgloss.Width(row.Value))
	}

	hline := DimStyle.Render(strings.Repeat("-", labelWidth+valueWidth+3))
	lines := []string{HeadingStyle.Render(heading), hline}

	for _, row := range rows {
		label := padRight(row.Label, labelWidth)
		lines = append(lines, labelStyle.Render(label)+DimStyle.Render(" | ")+styleFor(row.Status).Render(row.Value))
	}

	lines = append(lines, hline)
	return strings.Join(lines, "\n")
}

func styleFor(s Status) lipgloss.Style {
	switch s {
	case StatusOK:
		return SuccessStyle
	case StatusWarn:
		return WarnStyle
	case StatusFail:
		return ErrorStyle
	default:
		return valueStyle
	}
}

func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

var (
	valueStyle = lipgloss.NewStyle().Foreground(ColorInk).Bold(true)
)
