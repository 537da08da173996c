package interfaces

import (
	"context"
	"time"

	"github.com/secmon-lab/lmx/pkg/domain/model"
	"github.com/secmon-lab/lmx/pkg/domain/types"
)

// AssessmentRepository stores the assessment config index and template files
type AssessmentRepository interface {
	// GetIndex returns the config index. Returns model.ErrNotFound when the
	// index document does not exist.
	GetIndex(ctx context.Context) (*model.AssessmentConfigIndex, error)

	// UpdateIndex applies fn to the current index (an empty one when missing)
	// and writes the result back. Concurrent updates are serialized.
	UpdateIndex(ctx context.Context, fn func(idx *model.AssessmentConfigIndex) error) error

	// GetTemplate returns the raw template file and its modification time
	GetTemplate(ctx context.Context, jsonFile string) ([]byte, time.Time, error)

	// CreateTemplate writes a new template file, failing with
	// model.ErrAlreadyExists when it exists
	CreateTemplate(ctx context.Context, jsonFile string, data []byte) error

	DeleteTemplate(ctx context.Context, jsonFile string) error
	// ListTemplates returns the file names of all stored templates
	ListTemplates(ctx context.Context) ([]string, error)
}

// ResultRepository stores scored assessment submissions
type ResultRepository interface {
	Put(ctx context.Context, result *model.AssessmentResult) error
	Get(ctx context.Context, assessmentID types.AssessmentID, id types.ResultID) (*model.AssessmentResult, error)

	// List returns results of an assessment, newest first
	List(ctx context.Context, assessmentID types.AssessmentID) ([]*model.AssessmentResult, error)
}
