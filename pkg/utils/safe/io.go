package safe

import (
	"context"
	"errors"
	"io"
	iofs "io/fs"
	"log/slog"
	"os"

	"github.com/secmon-lab/lmx/pkg/utils/logging"
)

// Close closes closer and logs a failure instead of returning it. A nil
// closer is a no-op.
func Close(ctx context.Context, closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.From(ctx).Error("Failed to close", slog.Any("error", err))
	}
}

// Remove deletes a file and logs any error other than the file being absent.
func Remove(ctx context.Context, name string) {
	if err := os.Remove(name); err != nil && !errors.Is(err, iofs.ErrNotExist) {
		logging.From(ctx).Error("Failed to remove", slog.String("path", name), slog.Any("error", err))
	}
}
