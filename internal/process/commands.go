package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"db2graph/internal/logger"
)

// DefaultGracePeriod is how long Close waits after SIGTERM before killing the process.
const DefaultGracePeriod = 5 * time.Second

// minWaitDelay keeps Wait bounded when the grace period is zero; a zero WaitDelay waits for
// output held open by orphaned children forever.
const minWaitDelay = time.Second

// StreamConsumer reads the standard output of a running command until end of stream.
type StreamConsumer interface {
	Consume(r io.Reader)
}

// resolver is implemented by consumers that can decide a command's outcome from its output.
type resolver interface {
	Resolved() bool
}

// Commands is an immutable command line plus the options to execute it. Build one with
// NewCommands; a Commands can be executed any number of times.
type Commands struct {
	program       string
	args          []string
	workDir       string
	inheritEnv    bool
	env           map[string]string
	failOnNonZero bool
	timeout       time.Duration
	grace         time.Duration
	stdout        StreamConsumer
	mergeStdErr   bool
}

type CommandsBuilder struct {
	c Commands
}

func NewCommands(program string, args ...string) *CommandsBuilder {
	return &CommandsBuilder{c: Commands{
		program: program,
		args:    append([]string(nil), args...),
		env:     make(map[string]string),
		grace:   DefaultGracePeriod,
	}}
}

// WorkingDirectory runs the command in dir instead of the current directory.
func (b *CommandsBuilder) WorkingDirectory(dir string) *CommandsBuilder {
	b.c.workDir = dir
	return b
}

// InheritEnvironment starts from the environment of this process. Without it the command
// only sees the variables set through Environment.
func (b *CommandsBuilder) InheritEnvironment() *CommandsBuilder {
	b.c.inheritEnv = true
	return b
}

func (b *CommandsBuilder) Environment(env map[string]string) *CommandsBuilder {
	for k, v := range env {
		b.c.env[k] = v
	}
	return b
}

func (b *CommandsBuilder) FailOnNonZeroExitValue() *CommandsBuilder {
	b.c.failOnNonZero = true
	return b
}

// Timeout bounds ResultHandle.Await. Zero means no timeout.
func (b *CommandsBuilder) Timeout(d time.Duration) *CommandsBuilder {
	b.c.timeout = d
	return b
}

func (b *CommandsBuilder) GracePeriod(d time.Duration) *CommandsBuilder {
	b.c.grace = d
	return b
}

// RedirectStdOutTo hands standard output to consumer instead of capturing it in the Result.
func (b *CommandsBuilder) RedirectStdOutTo(consumer StreamConsumer) *CommandsBuilder {
	b.c.stdout = consumer
	return b
}

// MergeStdErr sends standard error to the same destination as standard output.
func (b *CommandsBuilder) MergeStdErr() *CommandsBuilder {
	b.c.mergeStdErr = true
	return b
}

func (b *CommandsBuilder) Build() (*Commands, error) {
	c := b.c
	if strings.TrimSpace(c.program) == "" {
		return nil, errors.New("command program is required")
	}
	if c.timeout < 0 {
		return nil, fmt.Errorf("invalid timeout %s", c.timeout)
	}
	if c.grace < 0 {
		return nil, fmt.Errorf("invalid grace period %s", c.grace)
	}
	if c.workDir != "" {
		info, err := os.Stat(c.workDir)
		if err != nil {
			return nil, fmt.Errorf("invalid working directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("working directory %s is not a directory", c.workDir)
		}
	}

	c.args = append([]string(nil), c.args...)
	env := make(map[string]string, len(c.env))
	for k, v := range c.env {
		env[k] = v
	}
	c.env = env
	return &c, nil
}

func (c *Commands) Program() string { return c.program }

func (c *Commands) Args() []string { return append([]string(nil), c.args...) }

func (c *Commands) String() string {
	return strings.Join(append([]string{c.program}, c.args...), " ")
}

func (c *Commands) environ() []string {
	var env []string
	if c.inheritEnv {
		env = os.Environ()
	}
	keys := make([]string, 0, len(c.env))
	for k := range c.env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+c.env[k])
	}
	if env == nil {
		// an empty, non-nil Env keeps exec from inheriting
		env = []string{}
	}
	return env
}

// Execute starts the command and returns at once. The returned handle owns the process:
// Close it on every path. Cancelling ctx also terminates the process.
func (c *Commands) Execute(ctx context.Context) (*ResultHandle, error) {
	cmd := exec.Command(c.program, c.args...)
	cmd.Dir = c.workDir
	cmd.Env = c.environ()
	// bounds how long Wait waits for output still held open by orphaned children
	cmd.WaitDelay = max(c.grace, minWaitDelay)

	stderr := &tailBuffer{max: 64 * 1024}
	var output *tailBuffer
	var pr *io.PipeReader
	var pw *io.PipeWriter

	if c.stdout != nil {
		pr, pw = io.Pipe()
		cmd.Stdout = pw
	} else {
		output = &tailBuffer{max: 1 << 20}
		cmd.Stdout = output
	}
	switch {
	case c.mergeStdErr:
		cmd.Stderr = cmd.Stdout
	default:
		cmd.Stderr = stderr
	}

	logger.Debugf("exec %s (dir=%q)", c, c.workDir)
	if err := cmd.Start(); err != nil {
		if pw != nil {
			pw.Close()
		}
		return nil, &ExecutionError{Command: c.String(), ExitCode: -1, Err: err}
	}

	h := newResultHandle(c, cmd)
	consumed := make(chan struct{})
	if c.stdout != nil {
		go func() {
			defer close(consumed)
			c.stdout.Consume(pr)
			// drain whatever the consumer left so the process never blocks on a full pipe
			_, _ = io.Copy(io.Discard, pr)
		}()
	} else {
		close(consumed)
	}

	stop := context.AfterFunc(ctx, func() { h.Close() })
	go func() {
		waitErr := cmd.Wait()
		if pw != nil {
			pw.Close()
		}
		<-consumed
		stop()
		h.finish(waitErr, output, stderr)
	}()

	return h, nil
}
