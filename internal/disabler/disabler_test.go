package disabler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ins2doi/internal/games"
)

func write(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatal(err)
	}
}

func read(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func installed(t *testing.T, key string) (games.ScanResult, string) {
	t.Helper()
	g, _ := games.Default().Lookup(key)
	dir := t.TempDir()
	exe := filepath.Join(dir, g.Exe)
	write(t, exe, "client")
	res := games.NewScanResult(map[string]games.GameLocation{
		key: {Path: dir, ExecutablePath: exe},
	}, nil, nil)
	return res, dir
}

func TestNamesFor(t *testing.T) {
	g, _ := games.Default().Lookup(games.KeyInsurgency)
	n := namesFor(g)
	if n.launcher != "insurgency_BE.exe" || n.disabled != "insurgency_BE_disabled.exe" {
		t.Fatalf("names = %+v", n)
	}
}

func TestDisableAndRestoreRoundTrip(t *testing.T) {
	res, dir := installed(t, games.KeyInsurgency)
	launcher := filepath.Join(dir, "insurgency_BE.exe")
	backup := filepath.Join(dir, "insurgency_BE_disabled.exe")
	write(t, launcher, "battleye")

	d := &Disabler{Catalog: games.Default()}
	outs, err := d.Disable(context.Background(), res, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(outs) != 1 || outs[0].Err != nil {
		t.Fatalf("outcomes = %+v", outs)
	}
	if read(t, launcher) != "client" {
		t.Fatal("launcher should now be the plain client")
	}
	if read(t, backup) != "battleye" {
		t.Fatal("original launcher should be backed up")
	}

	// a second run must not clobber the saved original
	if _, err := d.Disable(context.Background(), res, nil); err != nil {
		t.Fatal(err)
	}
	if read(t, backup) != "battleye" {
		t.Fatal("backup overwritten on second run")
	}

	outs, err = d.Restore(context.Background(), res, nil)
	if err != nil || outs[0].Err != nil {
		t.Fatalf("restore = %+v, %v", outs, err)
	}
	if read(t, launcher) != "battleye" {
		t.Fatal("launcher not restored")
	}
	if _, err := os.Stat(backup); !os.IsNotExist(err) {
		t.Fatal("backup should be moved back")
	}
}

func TestDisableWithoutExistingLauncher(t *testing.T) {
	res, dir := installed(t, games.KeyDayOfInfamy)

	d := &Disabler{Catalog: games.Default()}
	if _, err := d.Disable(context.Background(), res, nil); err != nil {
		t.Fatal(err)
	}
	if read(t, filepath.Join(dir, "dayofinfamy_BE.exe")) != "client" {
		t.Fatal("launcher should be created from the client")
	}
}

func TestDisableSkipsInvalidClient(t *testing.T) {
	res, dir := installed(t, games.KeyInsurgency)
	launcher := filepath.Join(dir, "insurgency_BE.exe")
	write(t, launcher, "battleye")

	d := &Disabler{Catalog: games.Default(), Validate: ValidatePE}
	var last int
	outs, err := d.Disable(context.Background(), res, func(p int, _ string) { last = p })
	if err != nil {
		t.Fatal(err)
	}
	if outs[0].Err == nil {
		t.Fatal("a non-PE client should be rejected")
	}
	if read(t, launcher) != "battleye" {
		t.Fatal("launcher must be untouched when validation fails")
	}
	if last != 100 {
		t.Fatalf("progress = %d", last)
	}
}

func TestDisableContinuesPastFailures(t *testing.T) {
	insDir := t.TempDir()
	doiDir := t.TempDir()
	write(t, filepath.Join(doiDir, "dayofinfamy_x64.exe"), "doi")
	res := games.NewScanResult(map[string]games.GameLocation{
		games.KeyInsurgency:  {Path: insDir},
		games.KeyDayOfInfamy: {Path: doiDir},
	}, nil, nil)

	outs, err := (&Disabler{Catalog: games.Default()}).Disable(context.Background(), res, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(outs) != 2 || outs[0].Err == nil || outs[1].Err != nil {
		t.Fatalf("outcomes = %+v", outs)
	}
}

func TestDisableNoGames(t *testing.T) {
	_, err := (&Disabler{Catalog: games.Default()}).Disable(context.Background(), games.ScanResult{}, nil)
	if !errors.Is(err, ErrNoGames) {
		t.Fatalf("err = %v", err)
	}
}

func TestRestoreWithoutBackup(t *testing.T) {
	res, _ := installed(t, games.KeyInsurgency)
	outs, err := (&Disabler{Catalog: games.Default()}).Restore(context.Background(), res, nil)
	if err != nil {
		t.Fatal(err)
	}
	if outs[0].Err == nil {
		t.Fatal("restore without a backup should report an error")
	}
}
