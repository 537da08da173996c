package worker

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lmx/pkg/domain/model"
	"github.com/secmon-lab/lmx/pkg/domain/types"
	"github.com/secmon-lab/lmx/pkg/utils/logging"
)

// Refresher runs one vendor refresh for a client
type Refresher interface {
	RefreshVendor(ctx context.Context, vendor types.Vendor, clientUUID string) (*model.RefreshResult, error)
}

// Target is a vendor client whose QBR report is refreshed on schedule
type Target struct {
	Vendor     types.Vendor
	ClientUUID string
}

func (t Target) String() string {
	return string(t.Vendor) + ":" + t.ClientUUID
}

// ParseTarget parses "vendor:clientUUID", e.g. "cork:7f8a..." or "itglue:12345"
func ParseTarget(s string) (Target, error) {
	vendor, clientUUID, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || clientUUID == "" {
		return Target{}, goerr.New("refresh target must be vendor:clientUUID", goerr.V("target", s))
	}
	v, err := types.ParseVendor(vendor)
	if err != nil {
		return Target{}, goerr.Wrap(err, "invalid refresh target", goerr.V("target", s))
	}
	return Target{Vendor: v, ClientUUID: clientUUID}, nil
}

// QBRRefreshWorker periodically refreshes QBR reports from vendor live data
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
// - Targets are refreshed sequentially to keep vendor API load predictable
type QBRRefreshWorker struct {
	refresher Refresher
	targets   []Target
	interval  time.Duration
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewQBRRefreshWorker creates a new worker for refreshing QBR reports
func NewQBRRefreshWorker(refresher Refresher, targets []Target, interval time.Duration) *QBRRefreshWorker {
	return &QBRRefreshWorker{
		refresher: refresher,
		targets:   targets,
		interval:  interval,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start begins the background refresh loop
// - Initial refresh and periodic refresh both run in a background goroutine
// - Does not block server startup
func (w *QBRRefreshWorker) Start(ctx context.Context) error {
	if w.interval <= 0 {
		return goerr.New("refresh interval must be positive", goerr.V("interval", w.interval))
	}

	logging.Default().Info("QBR refresh worker starting",
		"interval", w.interval.String(),
		"targets", len(w.targets))

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *QBRRefreshWorker) Stop() {
	logging.Default().Info("QBR refresh worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("QBR refresh worker stopped")
}

// run is the main worker loop (runs in goroutine)
func (w *QBRRefreshWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-w.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	w.refreshAll(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.refreshAll(ctx)

		case <-ctx.Done():
			logging.Default().Info("QBR refresh worker context cancelled")
			return
		}
	}
}

// refreshAll refreshes every target; a failing target does not stop the others
func (w *QBRRefreshWorker) refreshAll(ctx context.Context) {
	startTime := time.Now()
	failed := 0

	for _, target := range w.targets {
		if ctx.Err() != nil {
			return
		}

		if _, err := w.refresher.RefreshVendor(ctx, target.Vendor, target.ClientUUID); err != nil {
			failed++
			// Log error but continue worker
			logging.Default().Error("QBR refresh failed (will retry next interval)",
				"target", target.String(),
				"error", err.Error())
		}
	}

	logging.Default().Info("QBR refresh cycle completed",
		"targets", len(w.targets),
		"failed", failed,
		"duration", time.Since(startTime).String())
}
