package cli

import (
	"context"
	"io"
	"time"

	"github.com/secmon-lab/lmx/pkg/service/worker"
	"github.com/secmon-lab/lmx/pkg/usecase"
)

// RunWithWriter runs the CLI writing command output to w
func RunWithWriter(ctx context.Context, args []string, w io.Writer) error {
	app := newApp("test")
	app.Writer = w
	app.ErrWriter = w
	return app.Run(ctx, args)
}

// StartBackground starts the serve command's background jobs and returns
// their stop function
func StartBackground(ctx context.Context, uc *usecase.UseCases, targets []worker.Target, interval time.Duration, watchDir string) (func(), error) {
	bg, err := startBackground(ctx, uc, targets, interval, watchDir)
	if err != nil {
		return nil, err
	}
	return func() { bg.stop(ctx) }, nil
}
