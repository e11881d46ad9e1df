package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"ins2doi/internal/config"
	"ins2doi/internal/disabler"
	"ins2doi/internal/firewall"
	"ins2doi/internal/games"
	"ins2doi/internal/logging"
	"ins2doi/internal/patcher"
	"ins2doi/internal/payload"
	"ins2doi/internal/privilege"
	"ins2doi/internal/scanner"
	"ins2doi/internal/steam"
	"ins2doi/internal/task"
)

// Session carries the state of one invocation. The root command builds it
// and passes it to each subcommand.
type Session struct {
	Config  *config.Config
	Logger  *zap.Logger
	Runner  *task.Runner
	Catalog games.Catalog

	mu      sync.Mutex
	result  games.ScanResult
	scanned bool
}

func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, catalog games.Catalog) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = config.Default()
	}
	return &Session{
		Config:  cfg,
		Logger:  logger,
		Runner:  task.NewRunner(ctx, logging.L(logger, "task")),
		Catalog: catalog,
	}
}

// SetResult stores the outcome of a scan.
func (s *Session) SetResult(r games.ScanResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = r
	s.scanned = true
}

// Result returns the last scan, re-checked against the filesystem.
func (s *Session) Result() (games.ScanResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.scanned {
		return games.ScanResult{}, false
	}
	return s.result.Revalidate(), true
}

func (s *Session) Locator() *steam.Locator {
	return steam.NewLocator(s.Logger, s.Config.ExtraLibraryRoots...)
}

func (s *Session) Scanner() *scanner.Scanner {
	return scanner.New(s.Catalog, s.Locator().CommonDirs, s.Logger)
}

func (s *Session) Payloads() payload.Registry {
	labels := make(map[string]string, len(s.Catalog))
	for _, g := range s.Catalog {
		labels[g.Key] = g.Title + " Patch"
	}
	return payload.Registry{Dir: s.Config.PayloadDir, Labels: labels}
}

func (s *Session) Patcher() *patcher.Patcher {
	return patcher.New(s.Catalog, s.Payloads(), s.Logger)
}

func (s *Session) Disabler() *disabler.Disabler {
	return disabler.New(s.Catalog, s.Config.VerifyExecutables, s.Logger)
}

// Blocker wires the firewall workflow to sink. A nil sink uses PowerShell.
func (s *Session) Blocker(sink firewall.Sink) *firewall.Blocker {
	if sink == nil {
		sink = firewall.PowerShell{}
	}
	log := logging.L(s.Logger, "firewall")
	return &firewall.Blocker{
		Installer: &firewall.Installer{
			Sink:      sink,
			Prefix:    s.Config.RulePrefix,
			ChunkSize: s.Config.ChunkSize,
			Logger:    log,
		},
		URL:      s.Config.BlocklistURL,
		Timeout:  s.Config.FetchTimeout(),
		Elevated: privilege.Elevated,
		Logger:   log,
	}
}
