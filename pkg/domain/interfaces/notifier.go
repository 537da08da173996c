package interfaces

import (
	"context"

	"github.com/secmon-lab/lmx/pkg/domain/model"
)

// Notifier reports refresh outcomes to operators. Implementations must not
// fail the refresh itself, so errors are handled internally.
type Notifier interface {
	NotifyRefresh(ctx context.Context, event *model.RefreshEvent)
}
