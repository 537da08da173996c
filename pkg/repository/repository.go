// Package repository stores the assessment and deliverable catalogs as JSON
// documents in a BlobStore.
package repository

import (
	"github.com/secmon-lab/lmx/pkg/domain/interfaces"
)

type Catalog struct {
	store       interfaces.BlobStore
	assessment  *assessmentRepository
	result      *resultRepository
	deliverable *deliverableRepository
}

var _ interfaces.Repository = &Catalog{}

func New(store interfaces.BlobStore) *Catalog {
	return &Catalog{
		store:       store,
		assessment:  newAssessmentRepository(store),
		result:      newResultRepository(store),
		deliverable: newDeliverableRepository(store),
	}
}

func (c *Catalog) Assessment() interfaces.AssessmentRepository {
	return c.assessment
}

func (c *Catalog) Result() interfaces.ResultRepository {
	return c.result
}

func (c *Catalog) Deliverable() interfaces.DeliverableRepository {
	return c.deliverable
}

// Store exposes the underlying BlobStore
func (c *Catalog) Store() interfaces.BlobStore {
	return c.store
}

func (c *Catalog) Close() error {
	return c.store.Close()
}
