package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"ins2doi/internal/config"
	"ins2doi/internal/games"
)

func TestResultRevalidates(t *testing.T) {
	s := New(context.Background(), nil, nil, games.Default())
	if _, ok := s.Result(); ok {
		t.Fatal("no scan yet")
	}

	dir := t.TempDir()
	exe := filepath.Join(dir, "insurgency_x64.exe")
	if err := os.WriteFile(exe, []byte("MZ"), 0o644); err != nil {
		t.Fatal(err)
	}
	s.SetResult(games.NewScanResult(map[string]games.GameLocation{
		games.KeyInsurgency: {Path: dir, ExecutablePath: exe},
	}, []string{games.KeyDayOfInfamy}, nil))

	res, ok := s.Result()
	if !ok {
		t.Fatal("expected a stored result")
	}
	if _, found := res.Location(games.KeyInsurgency); !found {
		t.Fatal("insurgency should still be present")
	}

	if err := os.Remove(exe); err != nil {
		t.Fatal(err)
	}
	res, _ = s.Result()
	if _, found := res.Location(games.KeyInsurgency); found {
		t.Fatal("vanished install should be dropped")
	}
	if len(res.Missing()) != 2 {
		t.Fatalf("missing = %v", res.Missing())
	}
}

func TestComponentsFollowConfig(t *testing.T) {
	cfg := config.Default()
	cfg.RulePrefix = "TestPrefix"
	cfg.ChunkSize = 50
	cfg.PayloadDir = t.TempDir()
	cfg.VerifyExecutables = false

	s := New(context.Background(), cfg, nil, games.Default())

	b := s.Blocker(nil)
	if b.Installer.Prefix != "TestPrefix" || b.Installer.ChunkSize != 50 {
		t.Fatalf("installer = %+v", b.Installer)
	}
	if b.URL != config.DefaultBlocklistURL || b.Elevated == nil {
		t.Fatalf("blocker = %+v", b)
	}
	if s.Payloads().Dir != cfg.PayloadDir {
		t.Fatal("payload dir not applied")
	}
	if s.Disabler().Validate != nil {
		t.Fatal("validation should be off")
	}
	if s.Scanner().Libraries == nil {
		t.Fatal("scanner needs a library source")
	}
}
