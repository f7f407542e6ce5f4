package process_test

import (
	"context"
	"errors"
	"io"
	"strconv"
	"testing"
	"time"

	"db2graph/internal/process"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numberIs(want int) process.LineClassifier {
	return process.ClassifierFunc(func(line string) (process.Verdict, error) {
		n, err := strconv.Atoi(line)
		if err == nil && n == want {
			return process.Match, nil
		}
		return process.Continue, nil
	})
}

func TestLatch_SatisfiedByProcessOutput(t *testing.T) {
	latch := process.NewLatch(numberIs(3))
	commands, err := helper("numbers", "10").
		FailOnNonZeroExitValue().
		RedirectStdOutTo(latch).
		Build()
	require.NoError(t, err)

	start := time.Now()
	handle, err := commands.Execute(context.Background())
	require.NoError(t, err)
	defer handle.Close()

	result, err := latch.AwaitContents(5 * time.Second)
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Equal(t, "1\n2\n3", result.Contents)
	assert.Less(t, time.Since(start), 3*time.Second)
	assert.Equal(t, process.Satisfied, latch.State())

	_, err = handle.Await(context.Background())
	assert.NoError(t, err)
}

func TestLatch_NotSatisfied(t *testing.T) {
	latch := process.NewLatch(process.MatchLine("X"))
	commands, err := helper("numbers", "3").
		FailOnNonZeroExitValue().
		RedirectStdOutTo(latch).
		Build()
	require.NoError(t, err)

	handle, err := commands.Execute(context.Background())
	require.NoError(t, err)
	defer handle.Close()

	timeout := 500 * time.Millisecond
	start := time.Now()
	result, err := latch.AwaitContents(timeout)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.GreaterOrEqual(t, elapsed, timeout)
	assert.Equal(t, "1\n2\n3", result.Contents)
	assert.Equal(t, process.TimedOut, latch.State())
}

func TestLatch_ClassifierError(t *testing.T) {
	illegal := errors.New("illegal value: 2")
	latch := process.NewLatch(process.ClassifierFunc(func(line string) (process.Verdict, error) {
		if line == "2" {
			return process.Continue, illegal
		}
		return numberIs(6).Classify(line)
	}))
	commands, err := helper("numbers", "10").
		FailOnNonZeroExitValue().
		RedirectStdOutTo(latch).
		Build()
	require.NoError(t, err)

	start := time.Now()
	handle, err := commands.Execute(context.Background())
	require.NoError(t, err)
	defer handle.Close()

	result, err := latch.AwaitContents(4 * time.Second)
	assert.Same(t, illegal, err)
	assert.False(t, result.OK)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, process.Failed, latch.State())
}

func TestLatch_TerminalStateIsFinal(t *testing.T) {
	pr, pw := io.Pipe()
	latch := process.NewLatch(process.MatchLine("go"))
	go latch.Consume(pr)

	_, err := io.WriteString(pw, "wait\ngo\nafter\n")
	require.NoError(t, err)
	require.NoError(t, pw.Close())
	<-latch.EndOfStream()

	for i := 0; i < 2; i++ {
		start := time.Now()
		result, err := latch.AwaitContents(time.Minute)
		require.NoError(t, err)
		assert.True(t, result.OK)
		assert.Equal(t, "wait\ngo", result.Contents)
		assert.Less(t, time.Since(start), time.Second)
	}
	assert.True(t, latch.Resolved())
}

func TestLatch_AwaitAfterTimeoutReturnsImmediately(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	latch := process.NewLatch(process.MatchLine("never"))
	go latch.Consume(pr)

	result, err := latch.AwaitContents(50 * time.Millisecond)
	require.NoError(t, err)
	assert.False(t, result.OK)

	// later output no longer changes the outcome
	go io.WriteString(pw, "never\n")
	start := time.Now()
	result, err = latch.AwaitContents(time.Minute)
	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.Less(t, time.Since(start), time.Second)
	assert.False(t, latch.Resolved())
}

func TestLatch_AwaitContext(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	latch := process.NewLatch(process.MatchLine("never"))
	go latch.Consume(pr)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := latch.Await(ctx)
	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.Equal(t, process.TimedOut, latch.State())
}
