// Package collect runs the OS network-statistics command and returns its raw
// output.
package collect

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/HerbHall/netsampler/internal/failure"
)

// Default command line, as used on macOS.
const (
	DefaultCommand = "netstat"
	DefaultMarker  = "Link#"
)

// DefaultArgs asks netstat for numeric, per-interface byte and drop counters.
var DefaultArgs = []string{"-nbid"}

// exitCommandNotFound is the shell convention for a missing executable.
const exitCommandNotFound = 127

// Runner produces one raw statistics dump.
type Runner interface {
	Run(ctx context.Context) ([]byte, error)
}

// Compile-time guard.
var _ Runner = (*CommandRunner)(nil)

// CommandRunner executes an external command synchronously.
type CommandRunner struct {
	name    string
	args    []string
	timeout time.Duration
	logger  *zap.Logger
}

// NewCommandRunner creates a runner for name with args. A zero timeout means
// the command may run for as long as it needs.
func NewCommandRunner(name string, args []string, timeout time.Duration, logger *zap.Logger) *CommandRunner {
	if name == "" {
		name = DefaultCommand
	}
	if args == nil {
		args = DefaultArgs
	}
	return &CommandRunner{
		name:    name,
		args:    args,
		timeout: timeout,
		logger:  logger,
	}
}

// Run executes the command and returns its stdout. Missing executables and
// non-zero exits are returned as collection failures.
func (r *CommandRunner) Run(ctx context.Context) ([]byte, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.name, r.args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	r.logger.Debug("statistics command finished",
		zap.String("command", r.name),
		zap.Strings("args", r.args),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("stdout_bytes", stdout.Len()),
	)
	if err != nil {
		return nil, r.classify(ctx, err, stderr.String())
	}
	return stdout.Bytes(), nil
}

func (r *CommandRunner) classify(ctx context.Context, err error, stderr string) error {
	if errors.Is(err, exec.ErrNotFound) {
		return r.notFound(err)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == exitCommandNotFound {
		return r.notFound(err)
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return failure.New(failure.Collection, r.name, ctxErr)
	}

	msg := strings.TrimSpace(stderr)
	if msg == "" {
		msg = "Unable to get metrics"
	}
	return &failure.Error{Kind: failure.Collection, Op: r.name, Msg: msg, Err: err}
}

func (r *CommandRunner) notFound(err error) error {
	return &failure.Error{
		Kind: failure.Collection,
		Op:   r.name,
		Msg:  "Command '" + r.name + "' not found.",
		Err:  err,
	}
}
