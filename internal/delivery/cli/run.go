package cli

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/user/debugpanel/internal/adapter/httptransport"
	"github.com/user/debugpanel/internal/adapter/subprocess"
	"github.com/user/debugpanel/internal/entity"
	"github.com/user/debugpanel/internal/pool"
	"github.com/user/debugpanel/internal/report"
	"github.com/user/debugpanel/internal/target"
	"github.com/user/debugpanel/internal/usecase"
	"github.com/user/debugpanel/pkg/config"
	"github.com/user/debugpanel/pkg/logger"
	"github.com/user/debugpanel/pkg/metrics"
)

// run executes op. Errors returned before Dispatch are configuration
// errors; afterwards they carry their own exit code.
func run(cmd *cobra.Command, app *App, o *options, op entity.Operation, args []string) error {
	flags := cmd.Flags()
	if err := o.validate(flags, op); err != nil {
		return err
	}
	if op.Scope == entity.NodeScope && len(args) > 0 {
		return entity.Configurationf("%s does not take AUIDs, got %d", op.Name, len(args))
	}
	cfg, err := o.loadConfig(flags)
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(cfg.TableFormat)
	if err != nil {
		return err
	}

	nodes, err := target.Resolve("nodes", o.nodes, o.nodeFiles, true)
	if err != nil {
		return err
	}
	var auids []string
	if op.Scope == entity.UnitScope {
		explicit := append(append([]string(nil), o.auids...), args...)
		if auids, err = target.Resolve("AUIDs", explicit, o.auidFiles, true); err != nil {
			return err
		}
	}

	creds, err := credentials(app.Prompter, cfg)
	if err != nil {
		return err
	}

	diag := logger.Diagnostics(zapcore.AddSync(app.Stderr))
	log, cleanup, err := logger.New(diag, logger.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
		RunID:  uuid.NewString(),
	})
	if err != nil {
		return entity.Configurationf("setting up logging: %v", err)
	}
	defer cleanup()
	log.Debug("configuration loaded", zap.Stringer("config", cfg))

	m := metrics.New()
	runner, err := newRunner(app, cfg, log)
	if err != nil {
		return err
	}
	dispatcher := usecase.NewDispatcher(runner, m, log)

	dispatchOpts := usecase.DispatchOptions{
		Pool:            pool.Options{Size: cfg.PoolSize, Interval: cfg.Wait},
		FailFast:        o.failFast,
		SkipFailedNodes: o.skipFailedNodes,
		Verbose:         o.verbose,
	}
	var bar *progressBar
	if cfg.Progress || (!flags.Changed("progress") && app.StderrIsTerminal) {
		bar = newProgressBar(diag)
		dispatchOpts.OnProgress = bar.update
	}

	table, err := dispatcher.Dispatch(cmd.Context(), entity.Plan{
		Operation:   op,
		Nodes:       nodes,
		AUIDs:       auids,
		Depth:       cfg.Depth,
		Credentials: creds,
	}, dispatchOpts)
	if bar != nil {
		bar.finish()
	}
	if err != nil {
		return err
	}

	if err := table.Render(app.Stdout, format); err != nil {
		return &ExitError{Code: ExitJobsFailed, Err: fmt.Errorf("writing report: %w", err)}
	}
	if cfg.MetricsFile != "" {
		if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
			return &ExitError{Code: ExitJobsFailed, Err: fmt.Errorf("writing metrics: %w", err)}
		}
	}

	total := len(nodes)
	if op.Scope == entity.UnitScope {
		total *= len(auids)
	}
	if failed := table.Failures(); failed > 0 && !o.keepGoing {
		return &ExitError{Code: ExitJobsFailed, Err: fmt.Errorf("%d of %d jobs failed", failed, total)}
	}
	return nil
}

func credentials(p Prompter, cfg *config.Config) (entity.Credentials, error) {
	creds := entity.Credentials{Username: cfg.Username, Password: cfg.Password}
	var err error
	if creds.Username == "" {
		if creds.Username, err = p.Prompt("UI username"); err != nil {
			return creds, err
		}
	}
	if creds.Password == "" {
		if creds.Password, err = p.PromptSecret("UI password"); err != nil {
			return creds, err
		}
	}
	return creds, nil
}

func transportOptions(cfg *config.Config) (httptransport.Options, error) {
	workers, err := pool.Workers(cfg.PoolSize)
	if err != nil {
		return httptransport.Options{}, err
	}
	return httptransport.Options{
		Timeout:            cfg.Timeout,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
		UserAgent:          "debugpanel/" + Version,
		MaxConnsPerHost:    workers,
	}, nil
}

// newRunner picks the job body for the configured pool type.
func newRunner(app *App, cfg *config.Config, log *zap.Logger) (usecase.JobRunner, error) {
	if cfg.PoolType == config.ProcessPool {
		args := append(append([]string(nil), app.WorkerArgs...),
			"job-worker",
			"--timeout="+cfg.Timeout.String(),
			"--insecure-skip-verify="+strconv.FormatBool(cfg.InsecureSkipVerify),
			"--log-level="+cfg.LogLevel,
			"--log-format=json",
		)
		return subprocess.NewRunner(subprocess.Options{
			Path: app.Executable,
			Args: args,
			Env:  app.WorkerEnv,
		}, log), nil
	}
	opts, err := transportOptions(cfg)
	if err != nil {
		return nil, err
	}
	return usecase.NewLocalRunner(httptransport.New(opts, log)), nil
}
