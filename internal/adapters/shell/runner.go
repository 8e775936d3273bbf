// Package shell runs external package manager commands.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.trai.ch/darling/internal/core/domain"
	"go.trai.ch/darling/internal/core/ports"
	"go.trai.ch/zerr"
)

// waitDelay bounds how long a cancelled command may keep its output pipes open.
const waitDelay = 5 * time.Second

// maxStderr limits how much captured stderr is attached to an error.
const maxStderr = 4096

// Runner implements ports.CommandRunner using os/exec.
type Runner struct {
	logger ports.Logger
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// NewRunner creates a Runner attached to the process's stdin and stderr.
// Command stdout goes to stderr as well, keeping darling's own stdout machine-readable.
func NewRunner(logger ports.Logger) *Runner {
	return &Runner{
		logger: logger,
		stdin:  os.Stdin,
		stdout: os.Stderr,
		stderr: os.Stderr,
	}
}

// SetStreams replaces the streams interactive commands are attached to.
func (r *Runner) SetStreams(stdin io.Reader, stdout, stderr io.Writer) {
	r.stdin = stdin
	r.stdout = stdout
	r.stderr = stderr
}

// Run executes argv attached to the configured streams.
func (r *Runner) Run(ctx context.Context, argv []string) error {
	cmd, err := r.command(ctx, argv)
	if err != nil {
		return err
	}

	cmd.Stdin = r.stdin
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr

	if err := cmd.Run(); err != nil {
		return commandError(err, argv, nil)
	}
	return nil
}

// Output executes argv and returns its standard output.
// Standard error is captured and attached to the returned error.
func (r *Runner) Output(ctx context.Context, argv []string) ([]byte, error) {
	cmd, err := r.command(ctx, argv)
	if err != nil {
		return nil, err
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, commandError(err, argv, stderr.Bytes())
	}
	return stdout.Bytes(), nil
}

func (r *Runner) command(ctx context.Context, argv []string) (*exec.Cmd, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, zerr.Wrap(domain.ErrCommandFailed, "empty command")
	}

	r.logger.Debug("$ " + strings.Join(argv, " "))

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...) //nolint:gosec // commands come from backend definitions
	cmd.WaitDelay = waitDelay
	return cmd, nil
}

func commandError(err error, argv []string, stderr []byte) error {
	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}

	wrapped := zerr.With(zerr.Wrap(err, domain.ErrCommandFailed.Error()), "command", strings.Join(argv, " "))
	wrapped = zerr.With(wrapped, "exit_code", exitCode)

	if msg := strings.TrimSpace(string(stderr)); msg != "" {
		if len(msg) > maxStderr {
			msg = msg[len(msg)-maxStderr:]
		}
		wrapped = zerr.With(wrapped, "stderr", msg)
	}

	return wrapped
}
