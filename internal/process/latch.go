package process

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"db2graph/internal/logger"
)

type LatchState int

const (
	Pending LatchState = iota
	Satisfied
	Failed
	TimedOut
)

func (s LatchState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Satisfied:
		return "satisfied"
	case Failed:
		return "failed"
	case TimedOut:
		return "timed out"
	default:
		return "unknown"
	}
}

// LatchResult is the outcome of waiting on a Latch. OK is false when the wait ended before
// the classifier was satisfied; Contents holds the lines read so far.
type LatchResult struct {
	OK       bool
	Contents string
}

// Latch watches the output of a process line by line and moves once, from Pending to a
// terminal state, as soon as its classifier is satisfied or fails. It is a StreamConsumer,
// so it is wired in with CommandsBuilder.RedirectStdOutTo.
type Latch struct {
	classifier LineClassifier

	mu    sync.Mutex
	state LatchState
	lines []string
	err   error

	done chan struct{} // closed on the transition out of Pending
	eos  chan struct{} // closed once the stream has been read to the end
}

func NewLatch(classifier LineClassifier) *Latch {
	return &Latch{
		classifier: classifier,
		done:       make(chan struct{}),
		eos:        make(chan struct{}),
	}
}

// Consume classifies every line of r in order. Lines after the terminal transition are
// read and discarded.
func (l *Latch) Consume(r io.Reader) {
	defer close(l.eos)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 2*1024*1024)
	for sc.Scan() {
		l.line(strings.TrimSuffix(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		logger.Warnf("stopped reading process output: %v", err)
		_, _ = io.Copy(io.Discard, r)
	}
}

func (l *Latch) line(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != Pending {
		return
	}
	l.lines = append(l.lines, line)
	logger.Debugf("> %s", line)

	verdict, err := l.classifier.Classify(line)
	switch {
	case err != nil:
		l.transition(Failed, err)
	case verdict == Match:
		l.transition(Satisfied, nil)
	}
}

// transition must be called with mu held.
func (l *Latch) transition(to LatchState, err error) {
	if l.state != Pending {
		return
	}
	l.state = to
	l.err = err
	close(l.done)
}

// AwaitContents waits up to timeout for a terminal state. A classifier error is returned
// as is. Running out of time is not an error: the result is simply not OK.
func (l *Latch) AwaitContents(timeout time.Duration) (LatchResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return l.Await(ctx)
}

// Await is AwaitContents bounded by ctx. When ctx ends first the latch times out; callers
// that need to tell cancellation apart check ctx.Err().
func (l *Latch) Await(ctx context.Context) (LatchResult, error) {
	select {
	case <-l.done:
	case <-ctx.Done():
		l.mu.Lock()
		l.transition(TimedOut, nil)
		l.mu.Unlock()
	}
	return l.outcome()
}

func (l *Latch) outcome() (LatchResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	result := LatchResult{OK: l.state == Satisfied, Contents: strings.Join(l.lines, "\n")}
	if l.state == Failed {
		return result, l.err
	}
	return result, nil
}

func (l *Latch) State() LatchState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Resolved reports whether the classifier decided the outcome, successfully or not.
func (l *Latch) Resolved() bool {
	s := l.State()
	return s == Satisfied || s == Failed
}

// Contents returns the lines read so far.
func (l *Latch) Contents() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return strings.Join(l.lines, "\n")
}

// EndOfStream is closed once the watched output has been read to the end.
func (l *Latch) EndOfStream() <-chan struct{} { return l.eos }
