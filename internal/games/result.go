package games

import (
	"maps"
	"slices"

	"ins2doi/pkg/fsutil"
)

// GameLocation records where a game was found.
type GameLocation struct {
	Path           string
	ExecutablePath string
}

// ScanResult is the outcome of one scan. It is never mutated after
// NewScanResult returns; accessors hand out copies.
type ScanResult struct {
	found     map[string]GameLocation
	missing   []string
	libraries []string
}

func NewScanResult(found map[string]GameLocation, missing, libraries []string) ScanResult {
	return ScanResult{
		found:     maps.Clone(found),
		missing:   slices.Clone(missing),
		libraries: slices.Clone(libraries),
	}
}

func (r ScanResult) Found() map[string]GameLocation {
	out := maps.Clone(r.found)
	if out == nil {
		out = map[string]GameLocation{}
	}
	return out
}

func (r ScanResult) Location(key string) (GameLocation, bool) {
	loc, ok := r.found[key]
	return loc, ok
}

func (r ScanResult) Missing() []string {
	return slices.Clone(r.missing)
}

func (r ScanResult) Libraries() []string {
	return slices.Clone(r.libraries)
}

// Revalidate returns a copy that drops locations whose directory or
// executable no longer exists. Dropped games move to the missing list.
func (r ScanResult) Revalidate() ScanResult {
	found := make(map[string]GameLocation, len(r.found))
	missing := slices.Clone(r.missing)
	for key, loc := range r.found {
		if fsutil.DirExists(loc.Path) && fsutil.FileExists(loc.ExecutablePath) {
			found[key] = loc
			continue
		}
		missing = append(missing, key)
	}
	slices.Sort(missing)
	return ScanResult{found: found, missing: missing, libraries: slices.Clone(r.libraries)}
}

// PatchTask is one patch application, built from a scan result just before
// patching.
type PatchTask struct {
	GameKey         string
	TargetDirectory string
}

// TasksFor builds one task per found game, in catalog order.
func TasksFor(catalog Catalog, result ScanResult) []PatchTask {
	var tasks []PatchTask
	for _, g := range catalog {
		loc, ok := result.Location(g.Key)
		if !ok {
			continue
		}
		tasks = append(tasks, PatchTask{GameKey: g.Key, TargetDirectory: loc.Path})
	}
	return tasks
}
