package scanner

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"ins2doi/internal/games"
	"ins2doi/internal/logging"
	"ins2doi/pkg/fsutil"
)

// driveSubpaths are joined with the game folder under every drive root
// during the fallback sweep.
var driveSubpaths = [][]string{
	{"Program Files (x86)", "Steam", "steamapps", "common"},
	{"Program Files", "Steam", "steamapps", "common"},
	{"SteamLibrary", "steamapps", "common"},
}

// Progress receives a percentage and a human-readable line. A negative
// percent leaves the previous value in place.
type Progress func(percent int, message string)

// Scanner locates installed games.
type Scanner struct {
	Catalog   games.Catalog
	Libraries func() []string
	Drives    func(ctx context.Context) []string
	Logger    *zap.Logger
}

func New(catalog games.Catalog, libraries func() []string, logger *zap.Logger) *Scanner {
	return &Scanner{
		Catalog:   catalog,
		Libraries: libraries,
		Drives:    Drives,
		Logger:    logging.L(logger, "scanner"),
	}
}

// Scan checks every library for every game, then sweeps drive roots for
// anything still missing. The sweep visits every drive and every subpath;
// on machines with many slow drives it can take a while and only stops
// early when ctx is cancelled.
func (s *Scanner) Scan(ctx context.Context, progress Progress) games.ScanResult {
	if progress == nil {
		progress = func(int, string) {}
	}
	log := s.Logger
	if log == nil {
		log = zap.NewNop()
	}

	var libraries []string
	if s.Libraries != nil {
		libraries = s.Libraries()
	}

	progress(0, "detecting Steam libraries")
	if len(libraries) == 0 {
		progress(0, "no Steam libraries found")
	}
	for _, lib := range libraries {
		progress(0, "library: "+lib)
	}

	found := map[string]games.GameLocation{}
	var missing []string

	total := len(s.Catalog)
	step := 100
	if total > 0 {
		step = 100 / total
	}

	for i, g := range s.Catalog {
		if ctx.Err() != nil {
			break
		}
		progress(min(100, i*step), fmt.Sprintf("checking %s", g.Title))

		if loc, ok := findInLibraries(g, libraries); ok {
			found[g.Key] = loc
			log.Info("game found", zap.String(logging.KeyGame, g.Key), zap.String(logging.KeyPath, loc.Path))
			progress(min(100, (i+1)*step), fmt.Sprintf("found %s in %s", g.Title, loc.Path))
			continue
		}

		missing = append(missing, g.Key)
		log.Info("game not in libraries", zap.String(logging.KeyGame, g.Key))
		progress(min(100, (i+1)*step), fmt.Sprintf("%s not found in Steam libraries", g.Title))
	}

	if len(missing) > 0 && s.Drives != nil && ctx.Err() == nil {
		progress(min(100, total*step), "running fallback drive scan for missing games")
		missing = s.sweepDrives(ctx, missing, found, progress, log)
	}

	if len(found) == 0 {
		progress(100, "no supported games detected")
	} else {
		progress(100, "scan complete")
	}

	return games.NewScanResult(found, missing, libraries)
}

func (s *Scanner) sweepDrives(ctx context.Context, missing []string, found map[string]games.GameLocation, progress Progress, log *zap.Logger) []string {
	stillMissing := append([]string{}, missing...)

	for _, drive := range s.Drives(ctx) {
		if len(stillMissing) == 0 || ctx.Err() != nil {
			break
		}
		progress(-1, "scanning drive "+drive)

		remaining := stillMissing[:0]
		for _, key := range stillMissing {
			g, ok := s.Catalog.Lookup(key)
			if !ok {
				continue
			}
			loc, ok := findOnDrive(ctx, g, drive)
			if !ok {
				remaining = append(remaining, key)
				continue
			}
			found[key] = loc
			log.Info("game found on drive", zap.String(logging.KeyGame, key), zap.String(logging.KeyPath, loc.Path))
			progress(-1, fmt.Sprintf("found %s in %s", g.Title, loc.Path))
		}
		stillMissing = remaining
	}

	return stillMissing
}

func findInLibraries(g games.Game, libraries []string) (games.GameLocation, bool) {
	for _, lib := range libraries {
		if loc, ok := lookIn(filepath.Join(lib, g.Folder), g.Exe); ok {
			return loc, true
		}
	}
	return games.GameLocation{}, false
}

func findOnDrive(ctx context.Context, g games.Game, drive string) (games.GameLocation, bool) {
	for _, sub := range driveSubpaths {
		if ctx.Err() != nil {
			return games.GameLocation{}, false
		}
		parts := append([]string{drive}, sub...)
		parts = append(parts, g.Folder)
		if loc, ok := lookIn(filepath.Join(parts...), g.Exe); ok {
			return loc, true
		}
	}
	return games.GameLocation{}, false
}

// lookIn reports whether dir holds exe, matching case-insensitively when the
// exact name is absent.
func lookIn(dir, exe string) (games.GameLocation, bool) {
	if !fsutil.DirExists(dir) {
		return games.GameLocation{}, false
	}
	exePath, ok := fsutil.FindFold(dir, exe)
	if !ok {
		return games.GameLocation{}, false
	}
	return games.GameLocation{Path: dir, ExecutablePath: exePath}, true
}
