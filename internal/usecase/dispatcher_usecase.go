package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/user/debugpanel/internal/entity"
	"github.com/user/debugpanel/internal/pool"
	"github.com/user/debugpanel/internal/report"
	"github.com/user/debugpanel/pkg/metrics"
)

// DispatchOptions tunes one run.
type DispatchOptions struct {
	Pool pool.Options
	// FailFast stops collecting at the first failed job. Jobs not yet
	// started are abandoned and show as missing in the report; running
	// jobs finish in the background.
	FailFast bool
	// SkipFailedNodes stops sending AUID jobs to a node once one of its
	// jobs failed.
	SkipFailedNodes bool
	// Verbose logs every outcome, not only failures.
	Verbose bool
	// OnProgress is called after each completion from the collecting
	// goroutine.
	OnProgress func(done, total int)
}

// Dispatcher fans a plan out over a worker pool.
type Dispatcher interface {
	Dispatch(ctx context.Context, plan entity.Plan, opts DispatchOptions) (*report.Table, error)
}

type dispatcher struct {
	runner  JobRunner
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewDispatcher creates a dispatcher. m may be nil.
func NewDispatcher(runner JobRunner, m *metrics.Metrics, logger *zap.Logger) Dispatcher {
	return &dispatcher{runner: runner, metrics: m, logger: logger}
}

// Dispatch validates plan, runs every job and returns the report. The only
// errors are configuration errors raised before anything is sent; job
// failures live in the report.
func (d *dispatcher) Dispatch(ctx context.Context, plan entity.Plan, opts DispatchOptions) (*report.Table, error) {
	if len(plan.Nodes) == 0 {
		return nil, entity.Configurationf("the list of nodes to process is empty")
	}
	if plan.Operation.Scope == entity.UnitScope && len(plan.AUIDs) == 0 {
		return nil, entity.Configurationf("the list of AUIDs to process is empty")
	}
	if plan.Depth < 0 {
		return nil, entity.Configurationf("depth must not be negative, got %d", plan.Depth)
	}

	p, err := pool.New[entity.Job, entity.Outcome](opts.Pool, d.logger)
	if err != nil {
		return nil, err
	}

	jobs := plan.Jobs()
	table := report.NewTable(plan.Operation, plan.Nodes, plan.AUIDs)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	body := d.instrument(d.runner.RunJob)
	if opts.SkipFailedNodes && plan.Operation.Scope == entity.UnitScope {
		body = newNodeGate().wrap(body)
	}

	d.logger.Info("dispatching",
		zap.String("operation", plan.Operation.Name),
		zap.Int("nodes", len(plan.Nodes)),
		zap.Int("auids", len(plan.AUIDs)),
		zap.Int("jobs", len(jobs)),
		zap.Int("workers", p.Size()),
	)

	done := 0
	for c := range p.Run(ctx, jobs, body) {
		outcome := c.Outcome
		if c.Err != nil {
			outcome = entity.Outcome{Kind: entity.InternalFailure, Error: c.Err.Error()}
		}
		table.Record(c.Job.Key, outcome)
		done++
		if opts.OnProgress != nil {
			opts.OnProgress(done, len(jobs))
		}

		fields := []zap.Field{
			zap.String("node", c.Job.Key.Node),
			zap.String("kind", string(outcome.Kind)),
		}
		if plan.Operation.Scope == entity.UnitScope {
			fields = append(fields, zap.String("auid", c.Job.Key.AUID))
		}
		if outcome.OK() {
			if opts.Verbose {
				d.logger.Info("job succeeded", fields...)
			}
			continue
		}
		if opts.Verbose {
			fields = append(fields, zap.Int("status", outcome.StatusCode), zap.String("reason", outcome.Reason))
		}
		d.logger.Warn(outcome.Text(), fields...)

		if opts.FailFast {
			d.logger.Warn("stopping at first failure", zap.Int("abandoned", len(jobs)-done))
			break
		}
	}
	return table, nil
}

func (d *dispatcher) instrument(fn pool.Func[entity.Job, entity.Outcome]) pool.Func[entity.Job, entity.Outcome] {
	if d.metrics == nil {
		return fn
	}
	return func(ctx context.Context, job entity.Job) entity.Outcome {
		d.metrics.JobsInFlight.Inc()
		defer d.metrics.JobsInFlight.Dec()
		start := time.Now()
		outcome := fn(ctx, job)
		d.metrics.ObserveJob(job.Operation, string(outcome.Kind), time.Since(start))
		return outcome
	}
}

// nodeGate remembers which nodes already failed during a run.
type nodeGate struct {
	mu     sync.Mutex
	failed map[string]struct{}
}

func newNodeGate() *nodeGate {
	return &nodeGate{failed: make(map[string]struct{})}
}

func (g *nodeGate) wrap(fn pool.Func[entity.Job, entity.Outcome]) pool.Func[entity.Job, entity.Outcome] {
	return func(ctx context.Context, job entity.Job) entity.Outcome {
		node := job.Key.Node
		if g.hasFailed(node) {
			return entity.Skipped(fmt.Sprintf("skipped: an earlier job failed on %s", node))
		}
		outcome := fn(ctx, job)
		if !outcome.OK() {
			g.markFailed(node)
		}
		return outcome
	}
}

func (g *nodeGate) hasFailed(node string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.failed[node]
	return ok
}

func (g *nodeGate) markFailed(node string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failed[node] = struct{}{}
}
