package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"ins2doi/internal/firewall"
	"ins2doi/internal/task"
	"ins2doi/internal/tui"
)

// runWithProgress submits fn and shows its progress until it finishes.
func runWithProgress(name, title string, fn task.Func) error {
	h, err := sess.Runner.Submit(name, fn)
	if err != nil {
		return err
	}

	if plainOutput {
		printUpdates(os.Stdout, h.Updates())
		return h.Wait()
	}

	program := tea.NewProgram(tui.NewModel(title, h.Updates(), h.Cancel))
	uiDone := make(chan struct{})
	go func() {
		if _, err := program.Run(); err != nil {
			// the view died; stop the work rather than block on a full channel
			h.Cancel()
		}
		close(uiDone)
	}()

	err = h.Wait()
	<-uiDone
	for range h.Updates() {
	}
	return err
}

func printUpdates(w io.Writer, updates <-chan task.Update) {
	last := 0
	for u := range updates {
		if u.Percent >= 0 {
			last = u.Percent
		}
		if u.Message == "" {
			continue
		}
		fmt.Fprintf(w, "[%3d%%] %s\n", last, u.Message)
	}
}

func errorLine(err error) string {
	switch {
	case errors.Is(err, firewall.ErrNotElevated):
		return errorStyle("error: ") + err.Error() + "; run from an elevated terminal"
	case errors.Is(err, context.Canceled):
		return errorStyle("cancelled")
	default:
		return errorStyle("error: ") + err.Error()
	}
}

func errorStyle(s string) string {
	return tui.ErrorStyle.Render(s)
}
