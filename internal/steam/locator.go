package steam

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"ins2doi/internal/logging"
	"ins2doi/pkg/fsutil"
)

// ConventionalRoots are the install locations checked when the registry has
// nothing to offer.
var ConventionalRoots = []string{
	`C:\Program Files (x86)\Steam`,
	`C:\Program Files\Steam`,
	`D:\SteamLibrary`,
	`E:\SteamLibrary`,
}

const (
	appsDir      = "steamapps"
	commonDir    = "common"
	manifestName = "libraryfolders.vdf"
)

// Locator discovers Steam library roots and their common app directories.
type Locator struct {
	// RegistryPath returns the client install path recorded by the platform
	// registry. Nil means no registry lookup.
	RegistryPath func() (string, bool)
	Conventional []string
	Logger       *zap.Logger
}

// NewLocator returns a Locator wired to the platform registry, the
// conventional roots and any extra roots.
func NewLocator(logger *zap.Logger, extraRoots ...string) *Locator {
	roots := append([]string{}, ConventionalRoots...)
	roots = append(roots, extraRoots...)
	return &Locator{
		RegistryPath: RegistryInstallPath,
		Conventional: roots,
		Logger:       logging.L(logger, "steam"),
	}
}

func (l *Locator) log() *zap.Logger {
	if l.Logger == nil {
		return zap.NewNop()
	}
	return l.Logger
}

// BaseRoots returns existing library roots: the registry path first, then
// conventional locations, de-duplicated by resolved path.
func (l *Locator) BaseRoots() []string {
	var candidates []string

	if l.RegistryPath != nil {
		if p, ok := l.safeRegistryPath(); ok && fsutil.DirExists(p) {
			l.log().Debug("registry install path", zap.String(logging.KeyPath, p))
			candidates = append(candidates, p)
		}
	}

	for _, p := range l.Conventional {
		if fsutil.DirExists(p) {
			l.log().Debug("conventional install path", zap.String(logging.KeyPath, p))
			candidates = append(candidates, p)
		}
	}

	roots := dedupe(candidates)
	l.log().Debug("base roots resolved", zap.Int("count", len(roots)))
	return roots
}

func (l *Locator) safeRegistryPath() (p string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			l.log().Warn("registry lookup failed", zap.Any("panic", r))
			p, ok = "", false
		}
	}()
	return l.RegistryPath()
}

// CommonDirs returns every existing <library>/steamapps/common directory
// reachable from the base roots, including libraries listed in each root's
// libraryfolders.vdf.
func (l *Locator) CommonDirs() []string {
	var commons []string

	for _, root := range l.BaseRoots() {
		apps := filepath.Join(root, appsDir)
		if fsutil.DirExists(apps) {
			commons = append(commons, filepath.Join(apps, commonDir))
		}

		manifest := filepath.Join(apps, manifestName)
		if !fsutil.FileExists(manifest) {
			continue
		}
		data, err := os.ReadFile(manifest)
		if err != nil {
			l.log().Warn("read library manifest", zap.String(logging.KeyPath, manifest), zap.Error(err))
			continue
		}
		for _, lib := range LibraryPaths(string(data)) {
			l.log().Debug("manifest library", zap.String(logging.KeyPath, lib))
			libApps := filepath.Join(lib, appsDir)
			if fsutil.DirExists(libApps) {
				commons = append(commons, filepath.Join(libApps, commonDir))
			}
		}
	}

	var existing []string
	for _, c := range commons {
		if fsutil.DirExists(c) {
			existing = append(existing, c)
		}
	}
	out := dedupe(existing)
	l.log().Debug("common dirs resolved", zap.Int("count", len(out)))
	return out
}

// LibraryPaths filters the manifest entries down to those present on disk.
func LibraryPaths(manifestText string) []string {
	var out []string
	for _, p := range ParseLibraryFolders(manifestText) {
		if fsutil.DirExists(p) {
			out = append(out, p)
		}
	}
	return out
}

func dedupe(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		key := fsutil.Key(p)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}
