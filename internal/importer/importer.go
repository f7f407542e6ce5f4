package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"db2graph/internal/logger"
	"db2graph/internal/process"
)

// ToolError is a failure the import tool reported in its own output.
type ToolError struct {
	Line string
}

func (e *ToolError) Error() string {
	return "import tool reported an error: " + e.Line
}

// Classifier recognizes the import tool's completion and failure lines.
func Classifier() process.LineClassifier {
	return process.ClassifierFunc(func(line string) (process.Verdict, error) {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "IMPORT DONE"):
			return process.Match, nil
		case strings.HasPrefix(trimmed, "Import error"), strings.Contains(trimmed, "Exception"):
			return process.Continue, &ToolError{Line: trimmed}
		}
		return process.Continue, nil
	})
}

type Result struct {
	Output   string
	Duration time.Duration
}

// Run executes the import tool and waits for it to report completion. The tool process is
// always terminated before Run returns.
func Run(ctx context.Context, cfg *Config) (Result, error) {
	start := time.Now()
	latch := process.NewLatch(Classifier())

	commands, err := process.NewCommands(cfg.Program(), cfg.Args()...).
		InheritEnvironment().
		Environment(cfg.env).
		FailOnNonZeroExitValue().
		MergeStdErr().
		RedirectStdOutTo(latch).
		Build()
	if err != nil {
		return Result{}, err
	}

	logger.Infof("Running %s", commands)
	handle, err := commands.Execute(ctx)
	if err != nil {
		return Result{}, err
	}
	defer handle.Close()

	waitCtx, cancel := context.WithTimeout(ctx, cfg.Timeout())
	defer cancel()
	go func() {
		// no point waiting once the tool has stopped writing
		select {
		case <-latch.EndOfStream():
			cancel()
		case <-waitCtx.Done():
		}
	}()

	outcome, err := latch.Await(waitCtx)
	if err != nil {
		return Result{Output: outcome.Contents}, err
	}

	exitCtx, cancelExit := context.WithTimeout(ctx, cfg.exitTimeout)
	defer cancelExit()

	if !outcome.OK {
		select {
		case <-latch.EndOfStream():
		default:
			if ctx.Err() != nil {
				return Result{Output: outcome.Contents}, ctx.Err()
			}
			return Result{Output: outcome.Contents}, fmt.Errorf("import did not complete within %s: %w", cfg.Timeout(), process.ErrTimeout)
		}
		if _, err := handle.Await(exitCtx); err != nil {
			return Result{Output: outcome.Contents}, err
		}
		return Result{Output: outcome.Contents}, fmt.Errorf("import tool exited without reporting completion:\n%s", lastLines(outcome.Contents, 10))
	}

	if _, err := handle.Await(exitCtx); err != nil {
		if !errors.Is(err, process.ErrTimeout) || ctx.Err() != nil {
			return Result{Output: outcome.Contents}, err
		}
		// the deferred Close terminates it
		logger.Warnf("%s reported completion but did not exit within %s", cfg.Program(), cfg.exitTimeout)
	}
	res := Result{Output: outcome.Contents, Duration: time.Since(start)}
	logger.Infof("Import finished in %s", res.Duration.Round(time.Millisecond))
	return res, nil
}

func lastLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
