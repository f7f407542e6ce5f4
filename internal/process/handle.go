package process

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"db2graph/internal/logger"
)

// Result describes a finished command.
type Result struct {
	Command  string
	ExitCode int
	Output   string // captured standard output when it was not redirected
	Duration time.Duration
}

// ResultHandle is one running process. It is the only owner of the OS process: Close
// terminates it if it is still running and waits for it to exit.
type ResultHandle struct {
	commands *Commands
	cmd      *exec.Cmd
	started  time.Time

	done       chan struct{}
	result     Result
	err        error
	closeOnce  sync.Once
	terminated atomic.Bool
}

func newResultHandle(c *Commands, cmd *exec.Cmd) *ResultHandle {
	return &ResultHandle{
		commands: c,
		cmd:      cmd,
		started:  time.Now(),
		done:     make(chan struct{}),
	}
}

func (h *ResultHandle) Pid() int { return h.cmd.Process.Pid }

// Done is closed once the process has exited and its output has been consumed.
func (h *ResultHandle) Done() <-chan struct{} { return h.done }

func (h *ResultHandle) finish(waitErr error, output, stderr *tailBuffer) {
	defer close(h.done)

	exitCode := 0
	if state := h.cmd.ProcessState; state != nil {
		exitCode = state.ExitCode()
	}
	h.result = Result{
		Command:  h.commands.String(),
		ExitCode: exitCode,
		Duration: time.Since(h.started),
	}
	if output != nil {
		h.result.Output = output.String()
	}

	if errors.Is(waitErr, exec.ErrWaitDelay) {
		// the process exited cleanly, a child of it still held the output open
		logger.Debugf("%s left its output open after exiting", h.result.Command)
		waitErr = nil
	}

	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		h.err = &ExecutionError{Command: h.result.Command, ExitCode: exitCode, Stderr: stderr.String(), Err: waitErr}
		return
	}
	if exitCode == 0 || !h.commands.failOnNonZero || h.terminated.Load() {
		return
	}
	if r, ok := h.commands.stdout.(resolver); ok && r.Resolved() {
		logger.Debugf("%s exited with status %d after its outcome was resolved", h.result.Command, exitCode)
		return
	}
	h.err = &ExecutionError{Command: h.result.Command, ExitCode: exitCode, Stderr: stderr.String()}
}

// Await blocks until the process exits, ctx ends or the command's timeout elapses. A
// non-zero exit is an *ExecutionError when the command fails on non-zero exit values.
func (h *ResultHandle) Await(ctx context.Context) (Result, error) {
	if h.commands.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.commands.timeout)
		defer cancel()
	}

	select {
	case <-h.done:
		return h.result, h.err
	case <-ctx.Done():
		select {
		case <-h.done:
			return h.result, h.err
		default:
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Result{}, fmt.Errorf("%s: %w", h.commands, ErrTimeout)
		}
		return Result{}, ctx.Err()
	}
}

// Close terminates the process if it is still running: SIGTERM first, then a kill once the
// grace period has passed. It returns after the process has exited. Calling Close more than
// once is safe.
func (h *ResultHandle) Close() error {
	h.closeOnce.Do(func() {
		select {
		case <-h.done:
			return
		default:
		}

		h.terminated.Store(true)
		logger.Debugf("terminating %s (pid %d)", h.commands, h.Pid())
		if err := h.cmd.Process.Signal(syscall.SIGTERM); err != nil {
			// not supported on windows
			_ = h.cmd.Process.Kill()
		}

		timer := time.NewTimer(h.commands.grace)
		defer timer.Stop()
		select {
		case <-h.done:
		case <-timer.C:
			logger.Warnf("%s did not stop within %s, killing it", h.commands, h.commands.grace)
			_ = h.cmd.Process.Kill()
		}
	})
	<-h.done
	return nil
}
