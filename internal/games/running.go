package games

import (
	"context"
	"strings"

	"github.com/shirou/gopsutil/v3/process"
)

// Running reports which catalog games currently have their marker
// executable running, keyed by game key.
func Running(ctx context.Context, catalog Catalog) (map[string]bool, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	byExe := make(map[string]string, len(catalog))
	for _, g := range catalog {
		byExe[strings.ToLower(g.Exe)] = g.Key
	}

	running := map[string]bool{}
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		if key, ok := byExe[strings.ToLower(name)]; ok {
			running[key] = true
		}
	}
	return running, nil
}
