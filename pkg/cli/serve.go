package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/lmx/pkg/cli/config"
	httpctrl "github.com/secmon-lab/lmx/pkg/controller/http"
	"github.com/secmon-lab/lmx/pkg/service/watcher"
	"github.com/secmon-lab/lmx/pkg/service/worker"
	"github.com/secmon-lab/lmx/pkg/usecase"
	"github.com/secmon-lab/lmx/pkg/utils/logging"
	"github.com/secmon-lab/lmx/pkg/utils/metrics"
	"github.com/urfave/cli/v3"
)

// watchHandler re-validates the catalog whenever files under the data
// directory change
func watchHandler(uc *usecase.UseCases) watcher.Handler {
	return func(ctx context.Context, changed []string) {
		logger := logging.From(ctx)
		logger.Info("Catalog files changed", "files", changed)

		result, err := uc.Validate(ctx)
		if err != nil {
			logger.Error("Catalog validation failed", "error", err)
			return
		}
		for _, issue := range result.Issues {
			logger.Warn("Catalog consistency issue found",
				"catalog", issue.Catalog,
				"id", issue.ID,
				"json_file", issue.JSONFile,
				"message", issue.Message,
			)
		}
		if !result.HasIssues() {
			logger.Info("Catalog is consistent")
		}
	}
}

// background holds the jobs running beside the HTTP server
type background struct {
	worker  *worker.QBRRefreshWorker
	watcher *watcher.Watcher
}

// startBackground starts the refresh worker when targets are given and the
// data directory watcher when watchDir is set. When a step fails, the jobs
// already started are stopped before returning.
func startBackground(ctx context.Context, uc *usecase.UseCases, targets []worker.Target, interval time.Duration, watchDir string) (*background, error) {
	bg := &background{}

	if len(targets) > 0 {
		w := worker.NewQBRRefreshWorker(uc.Refresh, targets, interval)
		if err := w.Start(ctx); err != nil {
			return nil, goerr.Wrap(err, "failed to start QBR refresh worker")
		}
		bg.worker = w
	}

	if watchDir != "" {
		dw, err := watcher.New(watchDir, watchHandler(uc))
		if err != nil {
			bg.stop(ctx)
			return nil, goerr.Wrap(err, "failed to create data directory watcher")
		}
		if err := dw.Start(ctx); err != nil {
			if stopErr := dw.Stop(); stopErr != nil {
				logging.From(ctx).Warn("failed to close data directory watcher", "error", stopErr)
			}
			bg.stop(ctx)
			return nil, goerr.Wrap(err, "failed to start data directory watcher", goerr.V("dir", watchDir))
		}
		bg.watcher = dw
	}

	return bg, nil
}

func (bg *background) stop(ctx context.Context) {
	if bg.worker != nil {
		bg.worker.Stop()
		bg.worker = nil
	}
	if bg.watcher != nil {
		if err := bg.watcher.Stop(); err != nil {
			logging.From(ctx).Warn("failed to stop data directory watcher", "error", err)
		}
		bg.watcher = nil
	}
}

func cmdServe() *cli.Command {
	var addr string
	var watch bool
	var opts catalogOptions
	var corkCfg config.Cork
	var itglueCfg config.ITGlue
	var slackCfg config.Slack
	var scheduleCfg config.RefreshSchedule

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("LMX_ADDR"),
			Destination: &addr,
		},
		&cli.BoolFlag{
			Name:        "watch",
			Usage:       "Validate the catalog when files in --data-dir change (fs backend only)",
			Value:       true,
			Sources:     cli.EnvVars("LMX_WATCH"),
			Destination: &watch,
		},
	}

	// Add shared config flags
	flags = append(flags, opts.Flags()...)
	flags = append(flags, corkCfg.Flags()...)
	flags = append(flags, itglueCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, scheduleCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()
			logger.Info("Serve configuration",
				"repository", opts.repo,
				"cork", corkCfg,
				"itglue", itglueCfg,
				"slack", slackCfg,
				"refresh", scheduleCfg,
			)

			corkSvc, err := corkCfg.Configure()
			if err != nil {
				return err
			}
			itglueSvc, err := itglueCfg.Configure()
			if err != nil {
				return err
			}
			notifier, err := slackCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure refresh notifications")
			}
			targets, err := scheduleCfg.Targets()
			if err != nil {
				return err
			}

			m := metrics.New()
			uc, closer, err := opts.open(ctx,
				usecase.WithCork(corkSvc),
				usecase.WithITGlue(itglueSvc),
				usecase.WithNotifier(notifier),
				usecase.WithMetrics(m),
			)
			if err != nil {
				return err
			}
			defer closer()

			if corkSvc == nil {
				logger.Info("Cork API key not configured, Cork refresh is disabled")
			}
			if itglueSvc == nil {
				logger.Info("IT Glue API key not configured, IT Glue refresh is disabled")
			}

			var watchDir string
			if watch {
				watchDir = opts.repo.WatchDir()
			}
			bg, err := startBackground(ctx, uc, targets, scheduleCfg.Interval(), watchDir)
			if err != nil {
				return err
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc, httpctrl.WithMetrics(m)),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			errCh := make(chan error, 1)
			go func() {
				logger.Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			var serveErr error
			select {
			case serveErr = <-errCh:
			case sig := <-sigCh:
				logger.Info("Received shutdown signal", "signal", sig)
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down")
			}

			// Stop background jobs before the server so no refresh races shutdown
			bg.stop(ctx)

			if serveErr != nil {
				return serveErr
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown completed")
			return nil
		},
	}
}
