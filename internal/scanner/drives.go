package scanner

import (
	"context"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v3/disk"

	"ins2doi/pkg/fsutil"
)

// Drives returns the existing drive roots to sweep. Partitions reported by
// the OS come first; on Windows the letters C..Z are tried as well so
// drives gopsutil skips (network shares, removable media) are still covered.
func Drives(ctx context.Context) []string {
	var roots []string
	seen := map[string]bool{}
	add := func(p string) {
		key := fsutil.Key(p)
		if seen[key] || !fsutil.DirExists(p) {
			return
		}
		seen[key] = true
		roots = append(roots, p)
	}

	if parts, err := disk.PartitionsWithContext(ctx, false); err == nil {
		for _, part := range parts {
			add(driveRoot(part.Mountpoint))
		}
	}

	if runtime.GOOS == "windows" {
		for letter := 'C'; letter <= 'Z'; letter++ {
			if ctx.Err() != nil {
				break
			}
			add(string(letter) + `:\`)
		}
	}

	return roots
}

func driveRoot(mount string) string {
	if runtime.GOOS == "windows" && len(mount) == 2 && strings.HasSuffix(mount, ":") {
		return mount + `\`
	}
	return filepath.Clean(mount)
}
