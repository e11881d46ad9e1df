package firewall

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// SinkResult is what a script run produced.
type SinkResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Sink executes an imperative shell script. A non-zero exit is reported in
// the result, not as an error; err is reserved for failing to run at all.
type Sink interface {
	Run(ctx context.Context, script string) (SinkResult, error)
}

// PowerShell runs scripts through powershell.exe with no console window.
type PowerShell struct {
	// Path overrides the interpreter, mostly for pwsh on non-Windows hosts.
	Path string
}

func (p PowerShell) Run(ctx context.Context, script string) (SinkResult, error) {
	bin := p.Path
	if bin == "" {
		bin = "powershell.exe"
	}
	cmd := exec.CommandContext(ctx, bin,
		"-NoProfile",
		"-NonInteractive",
		"-WindowStyle", "Hidden",
		"-ExecutionPolicy", "Bypass",
		"-Command", script,
	)
	hideWindow(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := SinkResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		return res, err
	}
	return res, nil
}
