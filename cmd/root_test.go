package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigValidatesLogLevelOverride(t *testing.T) {
	t.Setenv("INS2DOI_LOG_LEVEL", "")
	path := filepath.Join(t.TempDir(), "ins2doi.yaml")
	if err := os.WriteFile(path, []byte("log_level: debug\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		override string
		want     string
		problems int
	}{
		{override: "", want: "debug", problems: 0},
		{override: "warn", want: "warn", problems: 0},
		{override: "loud", want: "info", problems: 1},
	}
	for _, tc := range cases {
		cfg, problems, err := loadConfig(path, tc.override)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.LogLevel != tc.want {
			t.Fatalf("override %q: LogLevel = %q, want %q", tc.override, cfg.LogLevel, tc.want)
		}
		if len(problems) != tc.problems {
			t.Fatalf("override %q: problems = %v", tc.override, problems)
		}
	}
}
