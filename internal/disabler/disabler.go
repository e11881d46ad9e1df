package disabler

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"ins2doi/internal/games"
	"ins2doi/internal/logging"
	"ins2doi/pkg/fsutil"
)

var ErrNoGames = errors.New("no installed games to change")

// Outcome is what happened to one game.
type Outcome struct {
	GameKey  string
	Launcher string
	Backup   string
	Err      error
}

// Disabler swaps a game's anti-cheat launcher for the plain 64-bit client.
type Disabler struct {
	Catalog games.Catalog
	// Validate vets the client before it is copied. Nil skips the check.
	Validate func(path string) error
	Logger   *zap.Logger
}

func New(catalog games.Catalog, verify bool, logger *zap.Logger) *Disabler {
	d := &Disabler{Catalog: catalog, Logger: logging.L(logger, "disabler")}
	if verify {
		d.Validate = ValidatePE
	}
	return d
}

type names struct {
	source   string
	launcher string
	disabled string
}

// namesFor derives <name>_BE.exe and <name>_BE_disabled.exe from the
// <name>_x64.exe client.
func namesFor(g games.Game) names {
	ext := filepath.Ext(g.Exe)
	stem := strings.TrimSuffix(g.Exe, ext)
	base := stem
	if i := strings.LastIndex(strings.ToLower(stem), "_x64"); i >= 0 {
		base = stem[:i]
	}
	return names{
		source:   g.Exe,
		launcher: base + "_BE" + ext,
		disabled: base + "_BE_disabled" + ext,
	}
}

// find resolves name in dir case-insensitively, falling back to the
// exact joined path when nothing exists yet.
func find(dir, name string) (string, bool) {
	if p, ok := fsutil.FindFold(dir, name); ok {
		return p, true
	}
	return filepath.Join(dir, name), false
}

// Disable runs over every found game. Failures are recorded per game and do
// not stop the others.
func (d *Disabler) Disable(ctx context.Context, result games.ScanResult, progress func(int, string)) ([]Outcome, error) {
	return d.each(ctx, result, progress, "disabled", d.disableOne)
}

// Restore puts the backed-up launcher back in place.
func (d *Disabler) Restore(ctx context.Context, result games.ScanResult, progress func(int, string)) ([]Outcome, error) {
	return d.each(ctx, result, progress, "restored", d.restoreOne)
}

func (d *Disabler) each(ctx context.Context, result games.ScanResult, progress func(int, string), verb string, fn func(games.Game, games.GameLocation) Outcome) ([]Outcome, error) {
	if progress == nil {
		progress = func(int, string) {}
	}
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}

	type job struct {
		game games.Game
		loc  games.GameLocation
	}
	var jobs []job
	for _, g := range d.Catalog {
		if loc, ok := result.Location(g.Key); ok {
			jobs = append(jobs, job{g, loc})
		}
	}
	if len(jobs) == 0 {
		return nil, ErrNoGames
	}

	outcomes := make([]Outcome, 0, len(jobs))
	for i, j := range jobs {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		out := fn(j.game, j.loc)
		outcomes = append(outcomes, out)

		pct := int(math.Round(100 * float64(i+1) / float64(len(jobs))))
		if out.Err != nil {
			log.Warn("skipping game", zap.String(logging.KeyGame, j.game.Key), zap.Error(out.Err))
			progress(pct, fmt.Sprintf("%s: %v", j.game.Title, out.Err))
			continue
		}
		log.Info("launcher "+verb, zap.String(logging.KeyGame, j.game.Key), zap.String(logging.KeyPath, out.Launcher))
		progress(pct, fmt.Sprintf("%s: launcher %s", j.game.Title, verb))
	}
	return outcomes, nil
}

func (d *Disabler) disableOne(g games.Game, loc games.GameLocation) Outcome {
	out := Outcome{GameKey: g.Key}
	if !fsutil.DirExists(loc.Path) {
		out.Err = fmt.Errorf("install directory %s no longer exists", loc.Path)
		return out
	}
	n := namesFor(g)

	source, ok := find(loc.Path, n.source)
	if !ok {
		out.Err = fmt.Errorf("%s not found", n.source)
		return out
	}
	if d.Validate != nil {
		if err := d.Validate(source); err != nil {
			out.Err = fmt.Errorf("refusing to copy %s: %w", n.source, err)
			return out
		}
	}

	launcher, launcherExists := find(loc.Path, n.launcher)
	backup, backupExists := find(loc.Path, n.disabled)
	out.Launcher = launcher

	if launcherExists {
		if !backupExists {
			if err := os.Rename(launcher, backup); err != nil {
				out.Err = fmt.Errorf("backing up %s: %w", n.launcher, err)
				return out
			}
			out.Backup = backup
		} else {
			// an earlier run already saved the original; this one is our copy
			if err := os.Remove(launcher); err != nil {
				out.Err = fmt.Errorf("removing stale %s: %w", n.launcher, err)
				return out
			}
			out.Backup = backup
		}
	} else if backupExists {
		out.Backup = backup
	}

	if err := fsutil.ReplaceFile(source, launcher); err != nil {
		out.Err = fmt.Errorf("copying %s over %s: %w", n.source, n.launcher, err)
	}
	return out
}

func (d *Disabler) restoreOne(g games.Game, loc games.GameLocation) Outcome {
	out := Outcome{GameKey: g.Key}
	n := namesFor(g)

	backup, ok := find(loc.Path, n.disabled)
	if !ok {
		out.Err = fmt.Errorf("no %s backup to restore", n.disabled)
		return out
	}
	launcher, exists := find(loc.Path, n.launcher)
	if exists {
		if err := os.Remove(launcher); err != nil {
			out.Err = fmt.Errorf("removing %s: %w", n.launcher, err)
			return out
		}
	}
	if err := os.Rename(backup, launcher); err != nil {
		out.Err = fmt.Errorf("restoring %s: %w", n.launcher, err)
		return out
	}
	out.Launcher = launcher
	out.Backup = backup
	return out
}
