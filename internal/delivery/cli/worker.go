package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/user/debugpanel/internal/adapter/httptransport"
	"github.com/user/debugpanel/internal/adapter/subprocess"
	"github.com/user/debugpanel/internal/entity"
	"github.com/user/debugpanel/internal/usecase"
	"github.com/user/debugpanel/pkg/logger"
)

// newJobWorkerCommand is the child side of the process pool. It reads one
// job from stdin and writes its outcome to stdout.
func newJobWorkerCommand(app *App, o *options) *cobra.Command {
	return &cobra.Command{
		Use:    "job-worker",
		Short:  "Run one job read from stdin (internal)",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			log, cleanup, err := logger.New(logger.Diagnostics(zapcore.AddSync(app.Stderr)), logger.Options{
				Level:  cfg.LogLevel,
				Format: cfg.LogFormat,
			})
			if err != nil {
				return entity.Configurationf("setting up logging: %v", err)
			}
			defer cleanup()

			opts, err := transportOptions(cfg)
			if err != nil {
				return err
			}
			runner := usecase.NewLocalRunner(httptransport.New(opts, log))
			return subprocess.Serve(cmd.Context(), app.Stdin, app.Stdout, runner.RunJob)
		},
	}
}
