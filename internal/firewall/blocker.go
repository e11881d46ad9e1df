package firewall

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

var ErrNotElevated = errors.New("administrator rights are required to change firewall rules")

// Blocker drives the full blocklist workflow on top of an Installer.
type Blocker struct {
	Installer *Installer
	Client    *http.Client
	URL       string
	Timeout   time.Duration
	// Elevated reports whether the process may change firewall rules. Nil
	// skips the check.
	Elevated func() bool
	Logger   *zap.Logger
}

func (b *Blocker) log() *zap.Logger {
	if b.Logger == nil {
		return zap.NewNop()
	}
	return b.Logger
}

func (b *Blocker) checkElevated() error {
	if b.Elevated != nil && !b.Elevated() {
		return ErrNotElevated
	}
	return nil
}

// Block replaces the prefixed rules with rules built from the remote list.
func (b *Blocker) Block(ctx context.Context, progress func(int, string)) error {
	if progress == nil {
		progress = func(int, string) {}
	}
	if err := b.checkElevated(); err != nil {
		return err
	}

	progress(5, "downloading blocklist from "+b.URL)
	entries, err := Fetch(ctx, b.Client, b.URL, b.Timeout)
	if err != nil {
		return err
	}

	progress(25, fmt.Sprintf("loaded %d entries", len(entries)))
	ips := ValidateEntries(entries, b.log())
	if len(ips) == 0 {
		return ErrEmptyList
	}
	if path, err := SaveList(ips); err != nil {
		b.log().Warn("could not save blocklist copy", zap.Error(err))
	} else {
		progress(-1, "saved list to "+path)
	}

	progress(-1, "removing previous rules")
	if err := b.Installer.Remove(ctx); err != nil {
		return err
	}

	progress(45, fmt.Sprintf("installing rules for %d addresses", len(ips)))
	err = b.Installer.Install(ctx, ips, func(pct int, msg string) {
		progress(45+pct*45/100, msg)
	})
	if err != nil {
		return err
	}

	progress(90, "verifying rules")
	ok, err := b.Installer.Exists(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("rules with prefix %s were not found after install", b.Installer.Prefix)
	}

	b.log().Info("blocklist installed", zap.Int("addresses", len(ips)))
	progress(100, "blocklist active")
	return nil
}

// Unblock removes every prefixed rule.
func (b *Blocker) Unblock(ctx context.Context) error {
	if err := b.checkElevated(); err != nil {
		return err
	}
	if err := b.Installer.Remove(ctx); err != nil {
		return err
	}
	b.log().Info("blocklist rules removed")
	return nil
}

// Status reports whether any prefixed rule is installed.
func (b *Blocker) Status(ctx context.Context) (bool, error) {
	return b.Installer.Exists(ctx)
}
