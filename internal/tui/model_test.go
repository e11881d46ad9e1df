package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"ins2doi/internal/task"
)

func TestModelTracksUpdates(t *testing.T) {
	updates := make(chan task.Update, 4)
	var m tea.Model = NewModel("scan", updates, nil)

	m, _ = m.Update(updateMsg{Percent: 40, Message: "checking Insurgency 2"})
	m, _ = m.Update(updateMsg{Percent: -1, Message: "library: D:\\SteamLibrary"})

	got := m.(Model)
	if got.Percent() != 40 {
		t.Fatalf("percent = %d, want 40", got.Percent())
	}
	if len(got.Lines()) != 2 {
		t.Fatalf("lines = %v", got.Lines())
	}
	view := got.View()
	if !strings.Contains(view, "40%") || !strings.Contains(view, "checking Insurgency 2") {
		t.Fatalf("view = %q", view)
	}
}

func TestModelKeepsRecentLines(t *testing.T) {
	var m tea.Model = NewModel("patch", nil, nil)
	for i := 0; i < logLines+3; i++ {
		m, _ = m.Update(updateMsg{Percent: -1, Message: strings.Repeat("x", i+1)})
	}
	lines := m.(Model).Lines()
	if len(lines) != logLines || lines[len(lines)-1] != strings.Repeat("x", logLines+3) {
		t.Fatalf("lines = %v", lines)
	}
}

func TestModelQuitsWhenChannelCloses(t *testing.T) {
	updates := make(chan task.Update)
	close(updates)
	m := NewModel("block", updates, nil)

	msg := m.Init()()
	if _, ok := msg.(doneMsg); !ok {
		t.Fatalf("msg = %#v, want doneMsg", msg)
	}
	next, cmd := m.Update(msg)
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if next.(Model).View() != "" {
		t.Fatal("view should be empty after quitting")
	}
}

func TestCtrlCCancelsOnce(t *testing.T) {
	calls := 0
	var m tea.Model = NewModel("scan", nil, func() { calls++ })
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if calls != 1 {
		t.Fatalf("cancel called %d times", calls)
	}
	if !strings.Contains(m.View(), "cancelling") {
		t.Fatal("view should show cancellation")
	}
}

func TestRenderSummary(t *testing.T) {
	out := RenderSummary("Scan results", []SummaryRow{
		{Label: "Insurgency 2", Value: "found", Status: StatusOK},
		{Label: "Day of Infamy", Value: "missing", Status: StatusWarn},
	})
	for _, want := range []string{"Scan results", "Insurgency 2", "found", "Day of Infamy", "missing"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}
