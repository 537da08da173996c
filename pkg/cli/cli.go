package cli

import (
	"context"
	"time"

	"github.com/secmon-lab/lmx/pkg/cli/config"
	"github.com/secmon-lab/lmx/pkg/utils/async"
	"github.com/secmon-lab/lmx/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// asyncDrainTimeout bounds how long the CLI waits for background
// notifications before exiting
const asyncDrainTimeout = 5 * time.Second

func newApp(version string) *cli.Command {
	var loggerCfg config.Logger
	var sentryCfg config.Sentry
	var closers []func()

	var flags []cli.Flag
	flags = append(flags, loggerCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "lmx",
		Usage:   "MSP assessment library and QBR deliverables service",
		Version: version,
		Flags:   flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			f, err := loggerCfg.Configure()
			if err != nil {
				return ctx, err
			}
			closers = append(closers, f)

			flush, err := sentryCfg.Configure(version)
			if err != nil {
				return ctx, err
			}
			closers = append(closers, flush)

			logging.Default().Debug("Starting lmx", "logger", loggerCfg, "sentry", sentryCfg)
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if !async.Wait(asyncDrainTimeout) {
				logging.Default().Warn("Background tasks did not finish before exit")
			}
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
			return nil
		},
		Commands: []*cli.Command{
			cmdServe(),
			cmdAssessment(),
			cmdQBR(),
			cmdRefresh(),
			cmdValidate(),
		},
	}
}

func Run(ctx context.Context, args []string, version string) error {
	app := newApp(version)

	if err := app.Run(ctx, args); err != nil {
		logging.Default().Error("failed to run app", "error", err)
		return err
	}

	return nil
}
