package schedule

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-scripts/scrape/internal/logging"
)

func TestAddRejectsBadExpression(t *testing.T) {
	s := New(logging.Discard())
	err := s.Add("every now and then", "pipeline", func(context.Context) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "every now and then")
}

func TestRunNowPassesContext(t *testing.T) {
	s := New(logging.Discard())
	ctx, cancel := context.WithCancel(context.Background())

	var runs atomic.Int32
	jobCtx := make(chan context.Context, 1)
	require.NoError(t, s.Add("@every 6h", "pipeline", func(ctx context.Context) error {
		runs.Add(1)
		jobCtx <- ctx
		return errors.New("site unreachable")
	}))

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, true) }()

	var got context.Context
	select {
	case got = <-jobCtx:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not run")
	}
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.Equal(t, int32(1), runs.Load())
	assert.ErrorIs(t, got.Err(), context.Canceled)
}

func TestRunOnSchedule(t *testing.T) {
	s := New(logging.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ran := make(chan struct{}, 4)
	require.NoError(t, s.Add("@every 1s", "tick", func(context.Context) error {
		ran <- struct{}{}
		return nil
	}))

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, false) }()

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("job never fired")
	}
	cancel()
	require.NoError(t, <-done)
}

func TestSkipIfStillRunning(t *testing.T) {
	s := New(logging.Discard())
	ctx, cancel := context.WithCancel(context.Background())

	var running, overlaps atomic.Int32
	release := make(chan struct{})
	started := make(chan struct{}, 8)
	require.NoError(t, s.Add("@every 1s", "slow", func(context.Context) error {
		if running.Add(1) > 1 {
			overlaps.Add(1)
		}
		defer running.Add(-1)
		started <- struct{}{}
		<-release
		return nil
	}))

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, true) }()

	<-started
	// let at least two more ticks pass while the first run blocks
	time.Sleep(2500 * time.Millisecond)
	close(release)
	cancel()
	require.NoError(t, <-done)
	assert.Zero(t, overlaps.Load())
}

// lockedBuffer is shared by loggers writing from several goroutines
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestJobContextCarriesLogger(t *testing.T) {
	var buf lockedBuffer
	s := New(log.New(&buf))
	ctx, cancel := context.WithCancel(context.Background())

	ran := make(chan struct{})
	require.NoError(t, s.Add("@every 6h", "nightly", func(ctx context.Context) error {
		logging.From(ctx).Info("from the job")
		close(ran)
		return nil
	}))

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, true) }()

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not run")
	}
	cancel()
	require.NoError(t, <-done)

	var line string
	for _, l := range strings.Split(buf.String(), "\n") {
		if strings.Contains(l, "from the job") {
			line = l
		}
	}
	require.NotEmpty(t, line)
	assert.Contains(t, line, "job=nightly")
	assert.Contains(t, line, "schedule")
}
