package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultTimeout bounds every tool invocation.
const DefaultTimeout = 30 * time.Second

// Tool names a supported external binary.
type Tool string

// Supported tools.
const (
	ToolExiftool Tool = "exiftool"
	ToolBinwalk  Tool = "binwalk"
	ToolSteghide Tool = "steghide"
	ToolOutguess Tool = "outguess"
)

// PayloadTools lists the password-based extraction tools in the order the
// brute-force decoder tries them.
var PayloadTools = []Tool{ToolSteghide, ToolOutguess}

// Runner invokes external tools with a timeout.
// A Runner holds no per-invocation state and is safe for concurrent use.
type Runner struct {
	// timeout bounds each invocation.
	timeout time.Duration

	// binaries overrides the executable used for a tool.
	binaries map[Tool]string

	// tempDir is the parent directory for per-call scratch directories.
	// Empty means os.TempDir().
	tempDir string

	// logger for structured logging.
	logger *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithTimeout sets the per-invocation timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithBinary overrides the executable for a tool. An empty path is ignored.
func WithBinary(tool Tool, path string) Option {
	return func(r *Runner) {
		if path != "" {
			r.binaries[tool] = path
		}
	}
}

// WithTempDir sets the parent directory for scratch files.
func WithTempDir(dir string) Option {
	return func(r *Runner) {
		r.tempDir = dir
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		timeout:  DefaultTimeout,
		binaries: make(map[Tool]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Timeout returns the configured per-invocation timeout.
func (r *Runner) Timeout() time.Duration {
	return r.timeout
}

// binary returns the executable for tool.
func (r *Runner) binary(tool Tool) string {
	if bin, ok := r.binaries[tool]; ok {
		return bin
	}
	return string(tool)
}

// Available reports whether the tool's executable can be found.
func (r *Runner) Available(tool Tool) bool {
	_, err := exec.LookPath(r.binary(tool))
	return err == nil
}

// Run executes tool with args and classifies the result.
func (r *Runner) Run(ctx context.Context, tool Tool, args ...string) Outcome {
	out := Outcome{Tool: tool}
	if tool == "" {
		out.Status = StatusFailed
		out.Reason = ErrEmptyCommand.Error()
		return out
	}

	bin, err := exec.LookPath(r.binary(tool))
	if err != nil {
		out.Status = StatusUnavailable
		out.Reason = fmt.Sprintf("%s not found in PATH", r.binary(tool))
		r.logger.Debug("tool unavailable", "tool", tool, "error", err)
		return out
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...) //nolint:gosec // Tool binaries come from configuration
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	start := time.Now()
	err = cmd.Run()
	out.Duration = time.Since(start)
	out.Output = stdout.Bytes()
	out.Stderr = strings.TrimSpace(stderr.String())

	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		out.Status = StatusTimedOut
		out.Reason = fmt.Sprintf("exceeded timeout of %s", r.timeout)
	case err != nil:
		out.Status = StatusFailed
		out.Reason = out.Stderr
		if out.Reason == "" {
			out.Reason = err.Error()
		}
	default:
		out.Status = StatusOK
	}

	r.logger.Debug("tool finished",
		"tool", tool,
		"status", out.Status.String(),
		"duration", out.Duration,
	)
	return out
}

// ExtractPayload asks a password-based extraction tool to recover data
// hidden in the image at path. On success Output holds the payload.
// The scratch directory is removed before returning.
func (r *Runner) ExtractPayload(ctx context.Context, path string, tool Tool, password string) Outcome {
	dir, err := os.MkdirTemp(r.tempDir, "stegscan-"+uuid.NewString()+"-")
	if err != nil {
		return Outcome{Tool: tool, Status: StatusFailed, Reason: fmt.Sprintf("failed to create scratch directory: %v", err)}
	}
	defer os.RemoveAll(dir)

	target := filepath.Join(dir, "payload.bin")

	var args []string
	switch tool {
	case ToolSteghide:
		args = []string{"extract", "-sf", path, "-p", password, "-xf", target, "-f"}
	case ToolOutguess:
		args = []string{"-r", "-k", password, path, target}
	default:
		return Outcome{Tool: tool, Status: StatusFailed, Reason: ErrUnsupportedTool.Error()}
	}

	out := r.Run(ctx, tool, args...)
	if !out.OK() {
		return out
	}

	payload, err := os.ReadFile(target) //nolint:gosec // Path is inside our scratch directory
	if err != nil {
		out.Status = StatusFailed
		out.Reason = "tool reported success but wrote no payload"
		return out
	}
	out.Output = payload
	return out
}

// SignatureScan runs a binwalk-style scan for embedded file signatures.
func (r *Runner) SignatureScan(ctx context.Context, path string) Outcome {
	return r.Run(ctx, ToolBinwalk, path)
}
