package firewall

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"ins2doi/internal/logging"
)

var ErrEmptyList = errors.New("no addresses to block")

// RuleCreationError reports a rule the shell refused to create. Rules from
// earlier chunks stay installed.
type RuleCreationError struct {
	Rule     string
	ExitCode int
	Output   string
}

func (e *RuleCreationError) Error() string {
	return fmt.Sprintf("creating firewall rule %s: exit %d: %s", e.Rule, e.ExitCode, e.Output)
}

type Direction string

const (
	Inbound  Direction = "Inbound"
	Outbound Direction = "Outbound"
)

func (d Direction) tag() string {
	if d == Inbound {
		return "IN"
	}
	return "OUT"
}

// RuleBatch is one rule: a chunk of addresses blocked in one direction.
type RuleBatch struct {
	Prefix    string
	Direction Direction
	Index     int
	Addresses []string
}

func (b RuleBatch) Name() string {
	return fmt.Sprintf("%s_%s_%d", b.Prefix, b.Direction.tag(), b.Index)
}

func (b RuleBatch) Script() string {
	quoted := make([]string, len(b.Addresses))
	for i, a := range b.Addresses {
		quoted[i] = quote(a)
	}
	return fmt.Sprintf(
		"New-NetFirewallRule -DisplayName %s -Direction %s -Action Block -RemoteAddress %s -Protocol Any -Profile Any -ErrorAction Stop | Out-Null",
		quote(b.Name()), b.Direction, strings.Join(quoted, ","),
	)
}

// quote renders s as a PowerShell single-quoted literal.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Installer manages the block rules that share a name prefix.
type Installer struct {
	Sink      Sink
	Prefix    string
	ChunkSize int
	Logger    *zap.Logger
}

func (in *Installer) log() *zap.Logger {
	if in.Logger == nil {
		return zap.NewNop()
	}
	return in.Logger
}

// Install creates an inbound and an outbound rule per chunk of ips. The
// first failing rule stops the run.
func (in *Installer) Install(ctx context.Context, ips []string, progress func(int, string)) error {
	if len(ips) == 0 {
		return ErrEmptyList
	}
	if progress == nil {
		progress = func(int, string) {}
	}

	chunks := Chunk(ips, in.ChunkSize)
	total := len(chunks)
	for i, chunk := range chunks {
		index := i + 1
		for _, dir := range []Direction{Inbound, Outbound} {
			if err := ctx.Err(); err != nil {
				return err
			}
			batch := RuleBatch{Prefix: in.Prefix, Direction: dir, Index: index, Addresses: chunk}
			res, err := in.Sink.Run(ctx, batch.Script())
			if err != nil {
				return fmt.Errorf("running shell for %s: %w", batch.Name(), err)
			}
			if res.ExitCode != 0 {
				out := strings.TrimSpace(res.Stderr)
				if out == "" {
					out = strings.TrimSpace(res.Stdout)
				}
				if out == "" {
					out = "unknown PowerShell error"
				}
				in.log().Error("rule creation failed",
					zap.String(logging.KeyRule, batch.Name()),
					zap.Int("exit_code", res.ExitCode),
					zap.String("output", out))
				return &RuleCreationError{Rule: batch.Name(), ExitCode: res.ExitCode, Output: out}
			}
			in.log().Debug("rule created", zap.String(logging.KeyRule, batch.Name()), zap.Int("addresses", len(chunk)))
		}
		pct := int(math.Round(100 * float64(index) / float64(total)))
		progress(pct, fmt.Sprintf("added IP chunk %d/%d", index, total))
	}

	progress(100, fmt.Sprintf("added %d inbound/outbound rule pairs", total))
	return nil
}

func (in *Installer) matchScript() string {
	return fmt.Sprintf("Get-NetFirewallRule -ErrorAction SilentlyContinue | Where-Object { $_.DisplayName -like %s }",
		quote(in.Prefix+"*"))
}

// Remove deletes every rule whose display name starts with the prefix. It
// succeeds when there is nothing to delete.
func (in *Installer) Remove(ctx context.Context) error {
	script := "$rules = " + in.matchScript() + "\nif ($rules) { $rules | Remove-NetFirewallRule }"
	res, err := in.Sink.Run(ctx, script)
	if err != nil {
		return fmt.Errorf("removing %s rules: %w", in.Prefix, err)
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("removing %s rules: exit %d: %s", in.Prefix, res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return nil
}

// Exists reports whether at least one rule carries the prefix.
func (in *Installer) Exists(ctx context.Context) (bool, error) {
	res, err := in.Sink.Run(ctx, in.matchScript())
	if err != nil {
		return false, fmt.Errorf("querying %s rules: %w", in.Prefix, err)
	}
	if res.ExitCode != 0 {
		return false, fmt.Errorf("querying %s rules: exit %d: %s", in.Prefix, res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return strings.TrimSpace(res.Stdout) != "", nil
}
