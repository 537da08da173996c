package model

import (
	"time"

	"github.com/secmon-lab/lmx/pkg/domain/types"
)

// RefreshEvent describes the outcome of one vendor refresh run
type RefreshEvent struct {
	Vendor     types.Vendor
	ClientUUID string
	ClientName string
	ReportID   types.ReportID
	StartedAt  time.Time
	Duration   time.Duration
	// Err is nil when the refresh succeeded
	Err error
}

// Succeeded reports whether the refresh completed without error
func (e *RefreshEvent) Succeeded() bool {
	return e.Err == nil
}
