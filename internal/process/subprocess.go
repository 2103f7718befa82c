package process

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/smazurov/progressbridge/internal/logging"
	"golang.org/x/sys/unix"
)

// OutputHandler receives output lines from the subprocess.
// Implementations can forward output to the event bus, store diagnostics, etc.
type OutputHandler interface {
	HandleLine(source, line string)
}

// killedExitCode is reported when the child had to be force killed (128 + SIGKILL).
const killedExitCode = 137

// Subprocess is a running child process whose stdin and merged stdout/stderr
// are exposed as a single io.ReadWriter.
type Subprocess struct {
	id              string
	command         string
	cmd             *exec.Cmd
	stdin           io.WriteCloser
	output          *os.File // read end of the merged stdout/stderr pipe
	logger          logging.Logger
	startedAt       time.Time
	gracefulTimeout time.Duration // timeout for graceful shutdown before force kill
	killTimeout     time.Duration // timeout after Kill() before giving up
	processGroup    bool          // child leads its own process group

	waitDone chan struct{} // closed once cmd.Wait returns
	waitErr  error

	mu       sync.Mutex
	state    State
	exitCode int
	stopOnce sync.Once
}

// Option configures a Subprocess before it starts.
type Option func(*Subprocess)

// WithGracefulTimeout sets how long Stop waits after SIGINT before killing.
func WithGracefulTimeout(d time.Duration) Option {
	return func(s *Subprocess) {
		if d > 0 {
			s.gracefulTimeout = d
		}
	}
}

// WithKillTimeout sets how long Stop waits after SIGKILL before giving up.
func WithKillTimeout(d time.Duration) Option {
	return func(s *Subprocess) {
		if d > 0 {
			s.killTimeout = d
		}
	}
}

// WithProcessGroup puts the child in its own process group so stop signals
// reach its descendants too. A child in its own group is a background job of
// the controlling terminal and is stopped by SIGTTOU/SIGTTIN when it touches
// /dev/tty, so leave this off for children that draw on the terminal.
func WithProcessGroup(enabled bool) Option {
	return func(s *Subprocess) {
		s.processGroup = enabled
	}
}

// Start parses command, launches it, and returns the running subprocess.
// The child's stderr is merged into its stdout.
func Start(id, command string, logger logging.Logger, opts ...Option) (*Subprocess, error) {
	s := &Subprocess{
		id:              id,
		command:         command,
		logger:          logger,
		gracefulTimeout: 5 * time.Second,
		killTimeout:     5 * time.Second,
		waitDone:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	args, err := splitArgs(command)
	if err != nil {
		s.logger.Error("Failed to parse command", "error", err)
		return nil, err
	}

	if len(args) == 0 {
		s.logger.Error("Empty command")
		return nil, fmt.Errorf("empty command")
	}

	s.cmd = exec.Command(args[0], args[1:]...)
	if s.processGroup {
		s.cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	}

	outR, outW, err := os.Pipe()
	if err != nil {
		s.logger.Error("Failed to create output pipe", "error", err)
		return nil, err
	}
	s.cmd.Stdout = outW
	s.cmd.Stderr = outW

	stdin, err := s.cmd.StdinPipe()
	if err != nil {
		outR.Close()
		outW.Close()
		s.logger.Error("Failed to create stdin pipe", "error", err)
		return nil, err
	}

	if err := s.cmd.Start(); err != nil {
		outR.Close()
		outW.Close()
		s.logger.Error("Failed to start process", "error", err, "command", command)
		return nil, err
	}

	// The child holds its own copy; ours must go so EOF arrives when it exits.
	outW.Close()

	s.stdin = stdin
	s.output = outR
	s.startedAt = time.Now()
	s.state = StateRunning

	s.logger.Info("Process started", "id", s.id, "pid", s.cmd.Process.Pid, "command", command, "process_group", s.processGroup)

	go func() {
		err := s.cmd.Wait()
		s.mu.Lock()
		s.waitErr = err
		s.exitCode = exitCodeFromError(err)
		s.state = StateExited
		s.mu.Unlock()
		close(s.waitDone)
	}()

	return s, nil
}

// Read reads from the child's merged stdout/stderr.
func (s *Subprocess) Read(p []byte) (int, error) {
	return s.output.Read(p)
}

// Write writes to the child's stdin.
func (s *Subprocess) Write(p []byte) (int, error) {
	return s.stdin.Write(p)
}

// PID returns the child's process id.
func (s *Subprocess) PID() int {
	return s.cmd.Process.Pid
}

// Done is closed once the child has been reaped.
func (s *Subprocess) Done() <-chan struct{} {
	return s.waitDone
}

// Info returns a snapshot of the subprocess state.
func (s *Subprocess) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()

	info := Info{
		ID:        s.id,
		Command:   s.command,
		State:     s.state,
		PID:       s.cmd.Process.Pid,
		StartedAt: s.startedAt,
		ExitCode:  s.exitCode,
	}
	if s.state == StateExited && s.exitCode != 0 {
		info.LastError = s.waitErr
	}
	return info
}

// Stop closes both pipe ends and terminates the child, escalating from
// SIGINT to SIGKILL. It is safe to call more than once and returns the exit code.
func (s *Subprocess) Stop() int {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		if s.state == StateRunning {
			s.state = StateStopping
		}
		s.mu.Unlock()

		if err := s.stdin.Close(); err != nil && !isClosedErr(err) {
			s.logger.Debug("Failed to close stdin", "error", err)
		}
		if err := s.output.Close(); err != nil && !isClosedErr(err) {
			s.logger.Debug("Failed to close output", "error", err)
		}

		select {
		case <-s.waitDone:
		default:
			s.sendStopSignal()
			s.waitForExit(s.gracefulTimeout)
		}
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exitCode
}

// exitCodeFromError extracts exit code from process error.
// Returns 0 for nil error, the exit code for ExitError, or 1 for other errors.
func exitCodeFromError(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 1
}

// sendStopSignal sends SIGINT to the subprocess (or its group) without waiting.
func (s *Subprocess) sendStopSignal() {
	pid := s.cmd.Process.Pid
	if !s.processGroup {
		s.logger.Info("Sending SIGINT to process", "pid", pid)
		if err := s.cmd.Process.Signal(os.Interrupt); err != nil && !errors.Is(err, os.ErrProcessDone) {
			s.logger.Warn("Failed to send SIGINT", "error", err)
		}
		return
	}
	s.logger.Info("Sending SIGINT to process group", "pid", pid)
	if err := unix.Kill(-pid, unix.SIGINT); err != nil && !errors.Is(err, unix.ESRCH) {
		s.logger.Warn("Failed to send SIGINT", "error", err)
	}
}

// waitForExit waits for the process to exit with a timeout, force-killing if needed.
func (s *Subprocess) waitForExit(timeout time.Duration) {
	select {
	case <-s.waitDone:
		return
	case <-time.After(timeout):
	}

	pid := s.cmd.Process.Pid
	s.logger.Warn("Graceful shutdown timeout, forcing kill", "timeout", timeout, "pid", pid)
	s.kill()

// Wait for process to exit with a secondary timeout to prevent hanging
	select {
	case <-s.waitDone:
	case <-time.After(s.killTimeout):
		s.logger.Error("Process did not exit after kill signal")
	}

	s.mu.Lock()
	s.exitCode = killedExitCode
	s.mu.Unlock()
}

// kill sends SIGKILL to the group when there is one, and to the child otherwise.
func (s *Subprocess) kill() {
	if s.processGroup {
		err := unix.Kill(-s.cmd.Process.Pid, unix.SIGKILL)
		if err == nil || errors.Is(err, unix.ESRCH) {
			return
		}
		s.logger.Error("Failed to kill process group", "error", err)
	}
	if err := s.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		s.logger.Error("Failed to kill process", "error", err)
	}
}

// IsClosed reports whether err is the normal end of a pipe: EOF, a closed
// file, or a broken pipe after the child went away.
func IsClosed(err error) bool {
	return errors.Is(err, io.EOF) || isClosedErr(err)
}

func isClosedErr(err error) bool {
	return errors.Is(err, os.ErrClosed) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, syscall.EPIPE)
}
