package noid

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/warptools/noidwrap/noidapi"
	"github.com/warptools/noidwrap/pkg/config"
	"github.com/warptools/noidwrap/pkg/logging"
	"github.com/warptools/noidwrap/pkg/tracing"
)

const LOG_TAG = "noid"

// Output is what one noid invocation wrote.
type Output struct {
	Stdout string
	Stderr string
}

// Runner invokes noid with the given subcommand and arguments.
// Implementations are responsible for the "-f <dbdir>" prefix.
//
// Run must return an error when noid reports failure,
// and that error must carry whatever noid wrote to stderr.
type Runner interface {
	Run(ctx context.Context, args ...string) (Output, error)
}

// ExecRunner runs the noid executable as a subprocess.
type ExecRunner struct {
	Path    string        // noid executable; looked up on $PATH if it has no slash
	DBPath  string        // directory holding the minter database
	Timeout time.Duration // per-invocation limit; zero for none
}

// NewExecRunner builds an ExecRunner from the NOID section of the config.
func NewExecRunner(cfg config.NoidConfig) *ExecRunner {
	return &ExecRunner{
		Path:    cfg.NoidPath,
		DBPath:  cfg.DBPath,
		Timeout: cfg.Timeout,
	}
}

// CommandLine returns the full argv used for the given noid arguments.
func (r *ExecRunner) CommandLine(args ...string) []string {
	cmdline := make([]string, 0, len(args)+3)
	cmdline = append(cmdline, r.Path, "-f", r.DBPath)
	return append(cmdline, args...)
}

// Run executes noid and captures its output.
//
// Errors:
//
//   - noidwrap-error-noid-failed -- when noid exits non-zero, times out, or prints an "error:" line
//   - noidwrap-error-noid-unavailable -- when the executable cannot be started
func (r *ExecRunner) Run(ctx context.Context, args ...string) (out Output, err error) {
	subcommand := ""
	if len(args) > 0 {
		subcommand = args[0]
	}
	logger := logging.Ctx(ctx)
	ctx, span := tracing.Start(ctx, "noid "+subcommand, trace.WithAttributes(
		tracing.AttrFullExecNameNoid,
		attribute.String(tracing.AttrKeyNoidwrapExecSubcommand, subcommand),
	))
	defer func() { tracing.EndWithStatus(span, err) }()

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmdline := r.CommandLine(args...)
	logger.Debug(LOG_TAG, "running command: %s", strings.Join(cmdline, " "))

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, cmdline[0], cmdline[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if logger.Level() <= logging.LevelDebug {
		cmd.Stderr = io.MultiWriter(&stderr, logger.InfoWriter(LOG_TAG+" stderr"))
	}
	runErr := cmd.Run()
	out = Output{Stdout: stdout.String(), Stderr: stderr.String()}
	stderrText := strings.TrimSpace(out.Stderr)

	if runErr != nil {
		var exitErr *exec.ExitError
		switch {
		case ctx.Err() != nil:
			err = noidapi.ErrorNoidFailed(subcommand, -1, stderrText, fmt.Errorf("%w (%s)", ctx.Err(), runErr))
		case errors.As(runErr, &exitErr):
			span.SetAttributes(attribute.Int(tracing.AttrKeyNoidwrapExecExitCode, exitErr.ExitCode()))
			err = noidapi.ErrorNoidFailed(subcommand, exitErr.ExitCode(), stderrText, runErr)
		default:
			err = noidapi.ErrorNoidUnavailable(r.Path, runErr)
		}
		logger.Info(LOG_TAG, "noid command failed: %s", stderrText)
		return out, err
	}

	if line, ok := reportedError(subcommand, out); ok {
		err = noidapi.ErrorNoidFailed(subcommand, 0, line, errors.New("noid reported an error"))
		logger.Info(LOG_TAG, "noid command reported an error: %s", line)
		return out, err
	}
	return out, nil
}

// statusSubcommands print a status line or a listing of fresh identifiers, never bound data.
var statusSubcommands = map[string]bool{
	"mint":     true,
	"bind":     true,
	"dbcreate": true,
	"hold":     true,
}

func isErrorLine(line string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "error:")
}

// reportedError finds an "error:" line noid printed while exiting zero.
// Every stderr line counts. On stdout only the first line of a status subcommand counts,
// since fetch and get print element values verbatim.
func reportedError(subcommand string, out Output) (string, bool) {
	for _, line := range splitLines(out.Stderr) {
		if isErrorLine(line) {
			return strings.TrimSpace(line), true
		}
	}
	if !statusSubcommands[subcommand] {
		return "", false
	}
	for _, line := range splitLines(out.Stdout) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if isErrorLine(line) {
			return strings.TrimSpace(line), true
		}
		break
	}
	return "", false
}
