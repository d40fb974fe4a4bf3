// Package pool runs independent jobs on a bounded set of workers and
// hands back their results in completion order.
package pool

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/user/debugpanel/internal/entity"
)

// Func is the body of one job. It must turn every failure into an O; the
// pool only guards against panics.
type Func[J, O any] func(ctx context.Context, job J) O

// Completion pairs a job with what it produced.
type Completion[J, O any] struct {
	Job     J
	Outcome O
	// Err is set, and Outcome left zero, when the body panicked or the job
	// was never started because ctx was done.
	Err error
}

// Options configures a pool.
type Options struct {
	// Size is the number of workers. Zero picks runtime.NumCPU().
	Size int
	// Interval is the minimum delay between two job starts across all
	// workers. Zero disables pacing.
	Interval time.Duration
}

// Pool manages the workers of one run.
type Pool[J, O any] struct {
	workers int
	limiter *rate.Limiter
	logger  *zap.Logger
}

// New validates opts and creates a pool.
func New[J, O any](opts Options, logger *zap.Logger) (*Pool[J, O], error) {
	workers, err := Workers(opts.Size)
	if err != nil {
		return nil, err
	}
	p := &Pool[J, O]{workers: workers, logger: logger}
	if opts.Interval > 0 {
		p.limiter = rate.NewLimiter(rate.Every(opts.Interval), 1)
	}
	return p, nil
}

// Workers resolves a requested pool size.
func Workers(size int) (int, error) {
	switch {
	case size < 0:
		return 0, &entity.InvalidPoolSizeError{Size: size}
	case size == 0:
		return runtime.NumCPU(), nil
	default:
		return size, nil
	}
}

// Size returns the number of workers.
func (p *Pool[J, O]) Size() int {
	return p.workers
}

// Run submits every job at once and returns a channel that yields one
// Completion per job, in completion order, then closes.
//
// The channel is buffered for all jobs, so a caller may stop reading at any
// point without blocking a worker. Cancelling ctx stops workers from
// starting further jobs; those jobs still get a Completion carrying
// ctx.Err(). Jobs already started run to completion: fn receives a context
// that keeps ctx's values but is never cancelled.
func (p *Pool[J, O]) Run(ctx context.Context, jobs []J, fn Func[J, O]) <-chan Completion[J, O] {
	tasks := make(chan J, len(jobs))
	for _, job := range jobs {
		tasks <- job
	}
	close(tasks)

	results := make(chan Completion[J, O], len(jobs))
	var g errgroup.Group
	for i := 0; i < min(p.workers, len(jobs)); i++ {
		g.Go(func() error {
			for job := range tasks {
				results <- p.process(ctx, job, fn)
			}
			return nil
		})
	}
	go func() {
		_ = g.Wait()
		close(results)
	}()
	return results
}

func (p *Pool[J, O]) process(ctx context.Context, job J, fn Func[J, O]) (c Completion[J, O]) {
	c.Job = job
	if err := ctx.Err(); err != nil {
		c.Err = err
		return c
	}
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			c.Err = err
			return c
		}
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("job panicked", zap.Any("panic", r), zap.Stack("stack"))
			c.Err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	c.Outcome = fn(context.WithoutCancel(ctx), job)
	return c
}
