package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"ins2doi/internal/games"
	"ins2doi/internal/session"
)

func TestCurrentResultRevalidatesStoredScan(t *testing.T) {
	prev := sess
	t.Cleanup(func() { sess = prev })
	sess = session.New(context.Background(), nil, nil, games.Default())

	dir := t.TempDir()
	exe := filepath.Join(dir, "insurgency_x64.exe")
	if err := os.WriteFile(exe, []byte("MZ"), 0o644); err != nil {
		t.Fatal(err)
	}
	sess.SetResult(games.NewScanResult(map[string]games.GameLocation{
		games.KeyInsurgency: {Path: dir, ExecutablePath: exe},
	}, []string{games.KeyDayOfInfamy}, nil))

	result, err := currentResult()
	if err != nil {
		t.Fatal(err)
	}
	if got := len(games.TasksFor(sess.Catalog, result)); got != 1 {
		t.Fatalf("tasks = %d, want 1", got)
	}

	if err := os.Remove(exe); err != nil {
		t.Fatal(err)
	}
	result, err = currentResult()
	if err != nil {
		t.Fatal(err)
	}
	if _, found := result.Location(games.KeyInsurgency); found {
		t.Fatal("removed install should not be handed to patch")
	}
	if got := len(games.TasksFor(sess.Catalog, result)); got != 0 {
		t.Fatalf("tasks = %d, want 0", got)
	}
}
