package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("APPDATA", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ChunkSize != DefaultChunkSize {
		t.Fatalf("ChunkSize = %d, want %d", cfg.ChunkSize, DefaultChunkSize)
	}
	if cfg.RulePrefix != DefaultRulePrefix {
		t.Fatalf("RulePrefix = %q", cfg.RulePrefix)
	}
	if cfg.FetchTimeout() != 30*time.Second {
		t.Fatalf("FetchTimeout = %v", cfg.FetchTimeout())
	}
	if !cfg.VerifyExecutables {
		t.Fatal("VerifyExecutables should default to true")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	content := "rule_prefix: MyFilter\nchunk_size: 50\nextra_library_roots:\n  - /games/steam\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RulePrefix != "MyFilter" || cfg.ChunkSize != 50 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if len(cfg.ExtraLibraryRoots) != 1 || cfg.ExtraLibraryRoots[0] != "/games/steam" {
		t.Fatalf("ExtraLibraryRoots = %v", cfg.ExtraLibraryRoots)
	}
	if cfg.BlocklistURL != DefaultBlocklistURL {
		t.Fatalf("unset keys should keep defaults, got %q", cfg.BlocklistURL)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("rule_prefix: FromFile\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("INS2DOI_RULE_PREFIX", "FromEnv")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RulePrefix != "FromEnv" {
		t.Fatalf("RulePrefix = %q, want FromEnv", cfg.RulePrefix)
	}
}

func TestValidateClampsUnsafeValues(t *testing.T) {
	cfg := Default()
	cfg.ChunkSize = 0
	cfg.FetchTimeoutSeconds = -1
	cfg.RulePrefix = "bad'prefix"
	cfg.BlocklistURL = "ftp://example.com/list"
	cfg.LogLevel = "loud"

	errs := cfg.Validate()
	if len(errs) != 5 {
		t.Fatalf("expected 5 errors, got %d: %v", len(errs), errs)
	}
	if cfg.ChunkSize != DefaultChunkSize {
		t.Fatalf("ChunkSize = %d", cfg.ChunkSize)
	}
	if cfg.FetchTimeoutSeconds != DefaultFetchTimeout {
		t.Fatalf("FetchTimeoutSeconds = %d", cfg.FetchTimeoutSeconds)
	}
	if cfg.RulePrefix != DefaultRulePrefix {
		t.Fatalf("RulePrefix = %q", cfg.RulePrefix)
	}
	if cfg.BlocklistURL != DefaultBlocklistURL {
		t.Fatalf("BlocklistURL = %q", cfg.BlocklistURL)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestValidateChunkSizeBounds(t *testing.T) {
	cases := []struct {
		size     int
		wantErrs int
		want     int
	}{
		{size: 1, wantErrs: 0, want: 1},
		{size: 200, wantErrs: 0, want: 200},
		{size: 201, wantErrs: 1, want: DefaultChunkSize},
		{size: 1000, wantErrs: 1, want: DefaultChunkSize},
	}
	for _, tc := range cases {
		cfg := Default()
		cfg.ChunkSize = tc.size
		if errs := cfg.Validate(); len(errs) != tc.wantErrs {
			t.Fatalf("chunk_size %d: expected %d errors, got %v", tc.size, tc.wantErrs, errs)
		}
		if cfg.ChunkSize != tc.want {
			t.Fatalf("chunk_size %d: ChunkSize = %d, want %d", tc.size, cfg.ChunkSize, tc.want)
		}
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	if errs := Default().Validate(); len(errs) != 0 {
		t.Fatalf("defaults should validate, got %v", errs)
	}
}
