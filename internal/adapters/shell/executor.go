// Package shell provides the process executor adapter.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/core/ports"
	"go.trai.ch/zerr"
)

// DefaultTailSize is the amount of trailing output kept for error reports.
const DefaultTailSize = 16 * 1024

// Executor implements ports.Executor using os/exec.
type Executor struct {
	logger   ports.Logger
	verbose  bool
	tailSize int
}

// NewExecutor creates a new Executor. With verbose set, every output line of
// the external tools is also forwarded to logger.
func NewExecutor(logger ports.Logger, verbose bool) *Executor {
	return &Executor{
		logger:   logger,
		verbose:  verbose,
		tailSize: DefaultTailSize,
	}
}

// SetVerbose switches forwarding of tool output to the logger.
func (e *Executor) SetVerbose(enabled bool) {
	e.verbose = enabled
}

// Run runs the command and waits for it to complete. Output is streamed into the
// vertex on ctx, if any. On failure the error is a *domain.CommandError carrying
// the tail of the combined output.
func (e *Executor) Run(ctx context.Context, c domain.Command) error {
	_, err := e.run(ctx, c, false)
	return err
}

// Output runs the command and returns its standard output. Standard error is
// only kept for the error report.
func (e *Executor) Output(ctx context.Context, c domain.Command) (string, error) {
	return e.run(ctx, c, true)
}

func (e *Executor) run(ctx context.Context, c domain.Command, capture bool) (string, error) {
	if c.Name == "" {
		return "", zerr.Wrap(domain.ErrInvalidCommand, "empty command")
	}

	cmdEnv := resolveEnvironment(os.Environ(), c.Env)

	executable := c.Name
	if !filepath.IsAbs(c.Name) {
		if lp, err := lookPath(c.Name, cmdEnv); err == nil {
			executable = lp
		}
	}

	cmd := exec.CommandContext(ctx, executable, c.Args...) //nolint:gosec // descriptor provided command

	// exec.CommandContext sets Args[0] to the resolved path.
	if len(cmd.Args) > 0 {
		cmd.Args[0] = c.Name
	}
	cmd.Dir = c.Dir
	cmd.Env = cmdEnv

	tail := newTailBuffer(e.tailSize)
	stdoutWriters := []io.Writer{tail}
	stderrWriters := []io.Writer{tail}

	var captured bytes.Buffer
	if capture {
		stdoutWriters = []io.Writer{&captured}
	}

	if v, ok := ports.VertexFromContext(ctx); ok {
		stdoutWriters = append(stdoutWriters, v.Stdout())
		stderrWriters = append(stderrWriters, v.Stderr())
	}

	if e.verbose {
		stdoutLog := &logWriter{logger: e.logger, level: domain.LogLevelInfo}
		stderrLog := &logWriter{logger: e.logger, level: domain.LogLevelWarn}
		defer func() {
			_ = stdoutLog.Close()
			_ = stderrLog.Close()
		}()
		stdoutWriters = append(stdoutWriters, stdoutLog)
		stderrWriters = append(stderrWriters, stderrLog)
	}

	cmd.Stdout = io.MultiWriter(stdoutWriters...)
	cmd.Stderr = io.MultiWriter(stderrWriters...)

	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}

		return "", &domain.CommandError{
			Command:  c.String(),
			ExitCode: exitCode,
			Output:   tail.String(),
			Err:      zerr.With(zerr.Wrap(err, "command failed"), "exit_code", exitCode),
		}
	}

	return captured.String(), nil
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	mu    sync.Mutex
	limit int
	buf   []byte
}

func newTailBuffer(limit int) *tailBuffer {
	return &tailBuffer{limit: limit}
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.limit; over > 0 {
		t.buf = slices.Clone(t.buf[over:])
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.buf)
}

type logWriter struct {
	logger ports.Logger
	level  domain.LogLevel
	buf    []byte
}

func (w *logWriter) Write(p []byte) (n int, err error) {
	w.buf = append(w.buf, p...)

	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}

		w.logLine(w.buf[:i])
		w.buf = w.buf[i+1:]
	}

	return len(p), nil
}

func (w *logWriter) Close() error {
	if len(w.buf) > 0 {
		w.logLine(w.buf)
		w.buf = nil
	}
	return nil
}

func (w *logWriter) logLine(line []byte) {
	msg := strings.TrimSuffix(string(line), "\r")

	if w.level == domain.LogLevelWarn {
		w.logger.Warn(msg)
		return
	}
	w.logger.Info(msg)
}

// resolveEnvironment applies the command's overrides on top of the process environment.
// The result is sorted by key.
func resolveEnvironment(sysEnv, overrides []string) []string {
	envMap := make(map[string]string, len(sysEnv)+len(overrides))
	for _, entries := range [][]string{sysEnv, overrides} {
		for _, entry := range entries {
			if k, v, ok := strings.Cut(entry, "="); ok {
				envMap[k] = v
			}
		}
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	slices.Sort(result)
	return result
}

// lookPath searches for an executable in the directories named by the PATH environment variable.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if strings.HasPrefix(e, "PATH=") {
			path = strings.TrimPrefix(e, "PATH=")
			break
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		path := filepath.Join(dir, file)
		if err := findExecutable(path); err == nil {
			return path, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
