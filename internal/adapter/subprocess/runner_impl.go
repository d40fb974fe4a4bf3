// Package subprocess runs jobs in child processes. The parent writes one
// JSON job to the child's stdin and reads one JSON outcome from its stdout.
package subprocess

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/user/debugpanel/internal/entity"
)

// stderrTail bounds how much child stderr is kept for error messages.
const stderrTail = 2048

// Options describes the worker command.
type Options struct {
	// Path is the executable, usually os.Executable().
	Path string
	Args []string
	// Env is appended to the parent environment.
	Env []string
}

// Runner starts one child per job.
type Runner struct {
	opts   Options
	logger *zap.Logger
}

func NewRunner(opts Options, logger *zap.Logger) *Runner {
	return &Runner{opts: opts, logger: logger}
}

// RunJob never returns an error; a child that cannot be started, exits
// non-zero or answers garbage becomes an internal failure.
func (r *Runner) RunJob(ctx context.Context, job entity.Job) entity.Outcome {
	payload, err := json.Marshal(job)
	if err != nil {
		return entity.Failed(fmt.Errorf("encoding job: %w", err))
	}

	cmd := exec.CommandContext(ctx, r.opts.Path, r.opts.Args...)
	cmd.Env = append(cmd.Environ(), r.opts.Env...)
	cmd.Stdin = bytes.NewReader(payload)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if stderr.Len() > 0 {
		r.logger.Debug("job worker stderr",
			zap.String("node", job.Key.Node),
			zap.String("stderr", tail(stderr.String())),
		)
	}
	if runErr != nil {
		return entity.Failed(fmt.Errorf("job worker failed: %w: %s", runErr, tail(stderr.String())))
	}

	var outcome entity.Outcome
	if err := json.Unmarshal(stdout.Bytes(), &outcome); err != nil {
		return entity.Failed(fmt.Errorf("decoding job worker answer: %w", err))
	}
	return outcome
}

// Serve is the child side: it reads a job from in, runs it with run and
// writes the outcome to out.
func Serve(ctx context.Context, in io.Reader, out io.Writer, run func(context.Context, entity.Job) entity.Outcome) error {
	var job entity.Job
	if err := json.NewDecoder(in).Decode(&job); err != nil {
		return fmt.Errorf("decoding job: %w", err)
	}
	if err := json.NewEncoder(out).Encode(run(ctx, job)); err != nil {
		return fmt.Errorf("encoding outcome: %w", err)
	}
	return nil
}

func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > stderrTail {
		s = s[len(s)-stderrTail:]
	}
	return s
}
