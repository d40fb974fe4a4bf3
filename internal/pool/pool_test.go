package pool

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/user/debugpanel/internal/entity"
)

func collect[J, O any](ch <-chan Completion[J, O]) []Completion[J, O] {
	var out []Completion[J, O]
	for c := range ch {
		out = append(out, c)
	}
	return out
}

func TestWorkers(t *testing.T) {
	n, err := Workers(0)
	require.NoError(t, err)
	assert.Equal(t, runtime.NumCPU(), n)

	n, err = Workers(7)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	_, err = Workers(-1)
	var sizeErr *entity.InvalidPoolSizeError
	assert.ErrorAs(t, err, &sizeErr)

	_, err = New[int, int](Options{Size: -3}, zap.NewNop())
	assert.ErrorIs(t, err, entity.ErrConfiguration)
}

func TestRunEveryJobOnce(t *testing.T) {
	p, err := New[int, string](Options{Size: 4}, zap.NewNop())
	require.NoError(t, err)

	jobs := make([]int, 100)
	for i := range jobs {
		jobs[i] = i
	}
	results := collect(p.Run(context.Background(), jobs, func(_ context.Context, j int) string {
		return fmt.Sprint(j * 2)
	}))

	require.Len(t, results, len(jobs))
	seen := make(map[int]bool)
	for _, c := range results {
		require.NoError(t, c.Err)
		assert.False(t, seen[c.Job], "job %d reported twice", c.Job)
		seen[c.Job] = true
		assert.Equal(t, fmt.Sprint(c.Job*2), c.Outcome)
	}
}

func TestRunBoundsConcurrency(t *testing.T) {
	p, err := New[int, int](Options{Size: 3}, zap.NewNop())
	require.NoError(t, err)

	var inFlight, peak atomic.Int32
	jobs := make([]int, 20)
	results := collect(p.Run(context.Background(), jobs, func(_ context.Context, j int) int {
		n := inFlight.Add(1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return j
	}))
	assert.Len(t, results, 20)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestRunCompletionOrder(t *testing.T) {
	p, err := New[time.Duration, time.Duration](Options{Size: 2}, zap.NewNop())
	require.NoError(t, err)

	jobs := []time.Duration{200 * time.Millisecond, 0}
	results := collect(p.Run(context.Background(), jobs, func(_ context.Context, d time.Duration) time.Duration {
		time.Sleep(d)
		return d
	}))
	require.Len(t, results, 2)
	assert.Equal(t, time.Duration(0), results[0].Job)
	assert.Equal(t, 200*time.Millisecond, results[1].Job)
}

func TestRunIsolatesPanics(t *testing.T) {
	p, err := New[int, string](Options{Size: 2}, zap.NewNop())
	require.NoError(t, err)

	results := collect(p.Run(context.Background(), []int{1, 2, 3, 4}, func(_ context.Context, j int) string {
		if j == 3 {
			panic("node exploded")
		}
		return "ok"
	}))
	require.Len(t, results, 4)
	for _, c := range results {
		if c.Job == 3 {
			require.Error(t, c.Err)
			assert.Contains(t, c.Err.Error(), "node exploded")
			continue
		}
		assert.NoError(t, c.Err)
		assert.Equal(t, "ok", c.Outcome)
	}
}

func TestRunEarlyAbandon(t *testing.T) {
	p, err := New[int, int](Options{Size: 2}, zap.NewNop())
	require.NoError(t, err)

	var started atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	ch := p.Run(ctx, make([]int, 10), func(_ context.Context, j int) int {
		started.Add(1)
		time.Sleep(10 * time.Millisecond)
		return j
	})
	<-ch
	cancel()

	// Workers never block on the abandoned channel, so it still closes
	// and holds exactly one completion per remaining job.
	remaining := 0
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			if !ok {
				return true
			}
			remaining++
			return false
		default:
			return false
		}
	}, 2*time.Second, time.Millisecond)
	assert.Equal(t, 9, remaining)
	assert.Less(t, started.Load(), int32(10))
}

func TestRunStartedJobsOutliveCancel(t *testing.T) {
	p, err := New[int, bool](Options{Size: 1}, zap.NewNop())
	require.NoError(t, err)

	type key struct{}
	ctx, cancel := context.WithCancel(context.WithValue(context.Background(), key{}, "run"))
	started := make(chan struct{})
	ch := p.Run(ctx, []int{1, 2}, func(jobCtx context.Context, j int) bool {
		if j == 1 {
			close(started)
			time.Sleep(20 * time.Millisecond)
		}
		assert.Equal(t, "run", jobCtx.Value(key{}))
		return jobCtx.Err() == nil
	})
	<-started
	cancel()

	results := collect(ch)
	require.Len(t, results, 2)
	assert.Equal(t, 1, results[0].Job)
	assert.NoError(t, results[0].Err)
	assert.True(t, results[0].Outcome)
	assert.ErrorIs(t, results[1].Err, context.Canceled)
}

func TestRunPacing(t *testing.T) {
	p, err := New[int, time.Time](Options{Size: 4, Interval: 30 * time.Millisecond}, zap.NewNop())
	require.NoError(t, err)

	start := time.Now()
	results := collect(p.Run(context.Background(), []int{1, 2, 3, 4}, func(_ context.Context, _ int) time.Time {
		return time.Now()
	}))
	require.Len(t, results, 4)
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestRunNoJobs(t *testing.T) {
	p, err := New[int, int](Options{}, zap.NewNop())
	require.NoError(t, err)
	assert.Empty(t, collect(p.Run(context.Background(), nil, func(context.Context, int) int { return 0 })))
}
