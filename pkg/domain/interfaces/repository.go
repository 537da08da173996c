package interfaces

import "io"

// Repository defines the interface for data persistence
type Repository interface {
	Assessment() AssessmentRepository
	Result() ResultRepository
	Deliverable() DeliverableRepository

	io.Closer
}
