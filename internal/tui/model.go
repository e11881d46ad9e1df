package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ins2doi/internal/task"
)

const logLines = 6

type Model struct {
	title     string
	updates   <-chan task.Update
	cancel    func()
	started   time.Time
	width     int
	percent   int
	lines     []string
	cancelled bool
	quitting  bool
}

type doneMsg struct{}

type updateMsg task.Update

// NewModel renders updates until the channel closes. cancel, if set, runs
// on ctrl+c; the model then keeps draining updates so the operation can
// wind down.
func NewModel(title string, updates <-chan task.Update, cancel func()) Model {
	return Model{title: title, updates: updates, cancel: cancel, started: time.Now()}
}

func (m Model) Init() tea.Cmd {
	return listenForUpdates(m.updates)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case updateMsg:
		if msg.Percent >= 0 {
			m.percent = msg.Percent
		}
		if msg.Message != "" {
			m.lines = append(m.lines, msg.Message)
			if len(m.lines) > logLines {
				m.lines = m.lines[len(m.lines)-logLines:]
			}
		}
		return m, listenForUpdates(m.updates)
	case doneMsg:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC && !m.cancelled {
			m.cancelled = true
			if m.cancel != nil {
				m.cancel()
			}
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	default:
		return m, nil
	}
}

func (m Model) Percent() int { return m.percent }

func (m Model) Lines() []string { return append([]string(nil), m.lines...) }

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	barWidth := 40
	if m.width > 0 {
		barWidth = int(math.Min(60, float64(m.width-10)))
		if barWidth < 20 {
			barWidth = 20
		}
	}

	bar := renderBar(barWidth, float64(m.percent)/100)
	elapsed := time.Since(m.started).Round(time.Millisecond)

	lines := []string{
		titleStyle.Render(m.title),
		barStyle.Render(bar) + labelStyle.Render(fmt.Sprintf(" %3d%%", m.percent)),
		dimStyle.Render(fmt.Sprintf("Elapsed: %s", elapsed)),
	}
	for _, l := range m.lines {
		lines = append(lines, logStyle.Render("  "+l))
	}
	if m.cancelled {
		lines = append(lines, warnStyle.Render("cancelling..."))
	}

	return strings.Join(lines, "\n")
}

func listenForUpdates(updates <-chan task.Update) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-updates
		if !ok {
			return doneMsg{}
		}
		return updateMsg(update)
	}
}

func renderBar(width int, ratio float64) string {
	filled := int(math.Round(ratio * float64(width)))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", width-filled) + "]"
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	labelStyle = lipgloss.NewStyle().Foreground(ColorInk)
	barStyle   = lipgloss.NewStyle().Foreground(ColorAccentAlt)
	dimStyle   = lipgloss.NewStyle().Foreground(ColorDim)
	logStyle   = lipgloss.NewStyle().Foreground(ColorDim)
	warnStyle  = lipgloss.NewStyle().Foreground(ColorWarn)
)
