package patcher

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"ins2doi/internal/archive"
	"ins2doi/internal/games"
	"ins2doi/internal/logging"
	"ins2doi/internal/payload"
	"ins2doi/pkg/fsutil"
)

var ErrNoTasks = errors.New("no games to patch")

// PayloadSource resolves the patch archive for a game.
type PayloadSource interface {
	Lookup(key string) (payload.EmbeddedPayload, error)
}

// Extractor unpacks an archive into dest, backing up overwritten files.
type Extractor func(ctx context.Context, archivePath, dest, backupDir string, progress func(int), logf func(string)) error

// Patcher applies the bundled patch to each found game.
type Patcher struct {
	Catalog  games.Catalog
	Payloads PayloadSource
	Extract  Extractor
	Logger   *zap.Logger
	// BackupRoot, when set, collects backups as <root>/<game>/<stamp>
	// instead of next to the patched directory.
	BackupRoot string
	Now        func() time.Time
}

func New(catalog games.Catalog, payloads PayloadSource, logger *zap.Logger) *Patcher {
	return &Patcher{
		Catalog:  catalog,
		Payloads: payloads,
		Extract:  archive.Extract,
		Logger:   logging.L(logger, "patcher"),
		Now:      time.Now,
	}
}

// Summary counts what a run did.
type Summary struct {
	Total    int
	Patched  int
	Files    int
	BackedUp int
	Backups  []string
}

// Apply patches every task in order and stops at the first failure.
func (p *Patcher) Apply(ctx context.Context, tasks []games.PatchTask, progress func(int, string)) (Summary, error) {
	summary := Summary{Total: len(tasks)}
	if len(tasks) == 0 {
		return summary, ErrNoTasks
	}
	if progress == nil {
		progress = func(int, string) {}
	}
	log := p.Logger
	if log == nil {
		log = zap.NewNop()
	}
	extract := p.Extract
	if extract == nil {
		extract = archive.Extract
	}

	stamp := p.now().Format("20060102-150405")
	total := len(tasks)

	for i, t := range tasks {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		g, ok := p.Catalog.Lookup(t.GameKey)
		if !ok {
			return summary, fmt.Errorf("unknown game %q", t.GameKey)
		}
		if !fsutil.DirExists(t.TargetDirectory) {
			return summary, fmt.Errorf("%s: install directory %s no longer exists", g.Title, t.TargetDirectory)
		}

		pl, err := p.Payloads.Lookup(g.Key)
		if err != nil {
			return summary, fmt.Errorf("%s: %w", g.Title, err)
		}

		dest := filepath.Join(t.TargetDirectory, g.PatchSubdir)
		backup := filepath.Join(dest+".backup", stamp)
		if p.BackupRoot != "" {
			backup = filepath.Join(p.BackupRoot, g.Key, stamp)
		}

		glog := log.With(zap.String(logging.KeyGame, g.Key))
		progress(-1, fmt.Sprintf("applying %s to %s", pl.Label, t.TargetDirectory))

		files, backedUp, err := p.applyOne(ctx, extract, pl, dest, backup, glog, progress)
		if err != nil {
			glog.Error("patch failed", zap.Error(err))
			return summary, fmt.Errorf("%s: %w", g.Title, err)
		}

		summary.Patched++
		summary.Files += files
		if backedUp > 0 {
			summary.BackedUp += backedUp
			summary.Backups = append(summary.Backups, backup)
		} else {
			// nothing was overwritten; drop the empty backup folder
			_ = os.Remove(backup)
			_ = os.Remove(filepath.Dir(backup))
		}
		pct := int(math.Round(100 * float64(i+1) / float64(total)))
		glog.Info("patch applied", zap.String(logging.KeyPath, dest), zap.Int("files", files))
		progress(pct, fmt.Sprintf("%s applied (%d%%)", pl.Label, pct))
	}

	progress(100, "all patches applied")
	return summary, nil
}

func (p *Patcher) applyOne(ctx context.Context, extract Extractor, pl payload.EmbeddedPayload, dest, backup string, log *zap.Logger, progress func(int, string)) (files, backedUp int, err error) {
	zipPath, err := payload.Decode(pl)
	if err != nil {
		return 0, 0, err
	}
	defer func() {
		if rmErr := os.Remove(zipPath); rmErr != nil && !os.IsNotExist(rmErr) {
			log.Warn("could not remove temp archive", zap.String(logging.KeyPath, zipPath), zap.Error(rmErr))
		}
	}()

	logf := func(line string) {
		switch {
		case strings.HasPrefix(line, "[WRITE]"):
			files++
		case strings.HasPrefix(line, "[BACKUP]"):
			backedUp++
		}
		log.Debug(line)
		progress(-1, line)
	}
	err = extract(ctx, zipPath, dest, backup, nil, logf)
	return files, backedUp, err
}

func (p *Patcher) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}
