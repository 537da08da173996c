package interfaces

import (
	"context"
	"time"

	"github.com/secmon-lab/lmx/pkg/domain/model"
	"github.com/secmon-lab/lmx/pkg/domain/types"
)

// DeliverableRepository stores the QBR config index, report templates and
// rendered (refreshed) reports
type DeliverableRepository interface {
	// GetIndex returns the QBR config index. Returns model.ErrNotFound when
	// the index document does not exist.
	GetIndex(ctx context.Context) (model.QBRConfigIndex, error)

	// UpdateIndex applies fn to the current index (an empty one when missing)
	// and writes the result back. Concurrent updates are serialized.
	UpdateIndex(ctx context.Context, fn func(idx model.QBRConfigIndex) error) error

	GetTemplate(ctx context.Context, jsonFile string) ([]byte, time.Time, error)
	CreateTemplate(ctx context.Context, jsonFile string, data []byte) error
	DeleteTemplate(ctx context.Context, jsonFile string) error
	ListTemplates(ctx context.Context) ([]string, error)

	// GetRendered returns the last rendered copy of a report
	GetRendered(ctx context.Context, id types.ReportID) ([]byte, time.Time, error)
	PutRendered(ctx context.Context, id types.ReportID, data []byte) error
	DeleteRendered(ctx context.Context, id types.ReportID) error
}
