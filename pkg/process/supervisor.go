// Package process spawns and supervises the external soft IOC server as a
// child process. Startup failures are fatal to the caller; shutdown is
// best-effort cleanup, never a verified transaction.
package process

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"syscall"
)

// Option configures the supervisor before the child process starts.
type Option func(*config)

type config struct {
	console bool
	logger  *slog.Logger
}

// WithoutConsole detaches the child from the supervisor's standard streams.
// By default the child inherits stdin/stdout so the server's interactive
// console remains usable.
func WithoutConsole() Option {
	return func(c *config) { c.console = false }
}

// WithLogger sets the logger used for shutdown diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Supervisor owns one running server process and the cache directory it was
// started from.
type Supervisor struct {
	cmd     *exec.Cmd
	dir     string
	console bool
	logger  *slog.Logger
}

// Start launches command with the script filename as its only argument, cwd
// set to dir. On POSIX systems the child shares the supervisor's standard
// input and output; on Windows stream duplication is skipped. A start
// failure is returned as-is: callers treat it as fatal and do not retry.
func Start(command, script, dir string, opts ...Option) (*Supervisor, error) {
	cfg := &config{
		console: true,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	cmd := exec.Command(command, script)
	cmd.Dir = dir
	if cfg.console && runtime.GOOS != "windows" {
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("process: start %s: %w", command, err)
	}
	return &Supervisor{cmd: cmd, dir: dir, console: cfg.console, logger: cfg.logger}, nil
}

// Dir returns the working directory the child was started in.
func (s *Supervisor) Dir() string { return s.dir }

// Pid returns the child's process ID.
func (s *Supervisor) Pid() int {
	if s == nil || s.cmd == nil || s.cmd.Process == nil {
		return 0
	}
	return s.cmd.Process.Pid
}

// Stop terminates the child and cleans up, in order: send a termination
// signal, reset the controlling terminal, remove the cache directory tree,
// then wait for the child to exit. Every step tolerates failure (the process
// may already be dead, the directory already gone); errors are logged, not
// returned, except when the context expires before the child exits.
func (s *Supervisor) Stop(ctx context.Context) error {
	if s == nil || s.cmd == nil || s.cmd.Process == nil {
		return nil
	}

	if err := s.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		s.logger.Debug("process: terminate signal failed", "error", err)
	}
	if s.console && runtime.GOOS != "windows" {
		reset := exec.Command("reset")
		reset.Stdout = os.Stdout
		if err := reset.Run(); err != nil {
			s.logger.Debug("process: terminal reset failed", "error", err)
		}
	}
	if err := os.RemoveAll(s.dir); err != nil {
		s.logger.Debug("process: cache removal failed", "error", err)
	}

	done := make(chan error, 1)
	go func() { done <- s.cmd.Wait() }()
	select {
	case err := <-done:
		if err != nil {
			s.logger.Debug("process: child exited with error", "error", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("process: wait for exit: %w", ctx.Err())
	}
}
