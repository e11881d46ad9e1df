package archive

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"ins2doi/pkg/fsutil"
)

// UnsafePathError reports an archive entry that would land outside the
// destination directory.
type UnsafePathError struct {
	Entry string
}

func (e *UnsafePathError) Error() string {
	return fmt.Sprintf("unsafe path in archive: %s", e.Entry)
}

// Extract unpacks the zip at archivePath into dest. Entries are processed in
// lexicographic order. Any existing file about to be overwritten is first
// copied to the same relative path under backupDir. progress receives
// round(100*done/total) after each entry; logf receives one line per action.
//
// Every entry is checked before anything is written, so an archive holding a
// traversal entry leaves dest untouched and returns *UnsafePathError. The
// check follows symlinks already present under dest.
func Extract(ctx context.Context, archivePath, dest, backupDir string, progress func(int), logf func(string)) error {
	if progress == nil {
		progress = func(int) {}
	}
	if logf == nil {
		logf = func(string) {}
	}

	zr, err := zip.OpenReader(archivePath)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return fmt.Errorf("open archive: %w", err)
	}
	defer zr.Close()

	destAbs, err := filepath.Abs(dest)
	if err != nil {
		return err
	}
	backupAbs, err := filepath.Abs(backupDir)
	if err != nil {
		return err
	}

	entries := make([]*zip.File, len(zr.File))
	copy(entries, zr.File)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})

	targets := make([]string, len(entries))
	for i, f := range entries {
		target, err := resolveTarget(destAbs, f.Name, f.FileInfo().IsDir())
		if err != nil {
			return err
		}
		if err := confined(destAbs, target, f.Name); err != nil {
			return err
		}
		targets[i] = target
	}

	if err := os.MkdirAll(destAbs, 0o755); err != nil {
		return err
	}
	if err := os.MkdirAll(backupAbs, 0o755); err != nil {
		return err
	}

	total := len(entries)
	for i, f := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		target := targets[i]
		// earlier entries may have changed what lies on disk
		if err := confined(destAbs, target, f.Name); err != nil {
			return err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			logf("[DIR] " + f.Name)
		} else {
			if err := extractFile(f, destAbs, target, backupAbs, logf); err != nil {
				return fmt.Errorf("extract %s: %w", f.Name, err)
			}
		}

		progress(percent(i+1, total))
	}

	if total == 0 {
		progress(100)
	}
	return nil
}

func extractFile(f *zip.File, dest, target, backupDir string, logf func(string)) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	if fsutil.FileExists(target) {
		rel, err := filepath.Rel(dest, target)
		if err != nil {
			return err
		}
		if err := fsutil.CopyFile(target, filepath.Join(backupDir, rel)); err != nil {
			return fmt.Errorf("backup: %w", err)
		}
		logf("[BACKUP] " + filepath.ToSlash(rel))
	}

	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}

	logf("[WRITE] " + f.Name)
	return nil
}

// resolveTarget maps an entry name onto a path beneath dest. Names are
// treated as slash separated regardless of platform, and backslashes count
// as separators too since Windows tools emit them.
func resolveTarget(dest, name string, isDir bool) (string, error) {
	clean := strings.ReplaceAll(name, `\`, "/")
	if clean == "" || strings.HasPrefix(clean, "/") || filepath.VolumeName(clean) != "" || strings.Contains(clean, ":") {
		return "", &UnsafePathError{Entry: name}
	}

	target := filepath.Join(dest, filepath.FromSlash(clean))
	if !fsutil.IsWithin(target, dest) {
		return "", &UnsafePathError{Entry: name}
	}
	if !isDir && filepath.Clean(target) == filepath.Clean(dest) {
		return "", &UnsafePathError{Entry: name}
	}
	return target, nil
}

// confined checks target against dest after following symlinks, so a link
// inside dest cannot carry an entry somewhere else.
func confined(dest, target, name string) error {
	root, ok := realPath(dest)
	if !ok {
		return &UnsafePathError{Entry: name}
	}
	resolved, ok := realPath(target)
	if !ok || !fsutil.IsWithin(resolved, root) {
		return &UnsafePathError{Entry: name}
	}
	return nil
}

// realPath resolves symlinks in the longest existing prefix of p and joins
// the missing remainder back on. ok is false when some component exists but
// cannot be resolved, such as a dangling link.
func realPath(p string) (string, bool) {
	p = filepath.Clean(p)
	rest := ""
	for {
		resolved, err := filepath.EvalSymlinks(p)
		if err == nil {
			return filepath.Join(resolved, rest), true
		}
		if _, lerr := os.Lstat(p); lerr == nil {
			return "", false
		}
		parent := filepath.Dir(p)
		if parent == p {
			return filepath.Join(p, rest), true
		}
		rest = filepath.Join(filepath.Base(p), rest)
		p = parent
	}
}

func percent(done, total int) int {
	if total <= 0 {
		return 100
	}
	return int(math.Round(100 * float64(done) / float64(total)))
}
