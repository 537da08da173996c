package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lmx/pkg/service/worker"
	"github.com/urfave/cli/v3"
)

// RefreshSchedule holds the targets of the scheduled QBR refresh worker
type RefreshSchedule struct {
	targets  []string
	interval time.Duration
}

func (x *RefreshSchedule) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:        "refresh-target",
			Usage:       "Vendor client refreshed on schedule, as vendor:clientUUID (repeatable)",
			Category:    "Refresh",
			Destination: &x.targets,
			Sources:     cli.EnvVars("LMX_REFRESH_TARGETS"),
		},
		&cli.DurationFlag{
			Name:        "refresh-interval",
			Usage:       "Interval between scheduled QBR refreshes",
			Category:    "Refresh",
			Value:       6 * time.Hour,
			Destination: &x.interval,
			Sources:     cli.EnvVars("LMX_REFRESH_INTERVAL"),
		},
	}
}

func (x RefreshSchedule) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("targets", x.targets),
		slog.String("interval", x.interval.String()),
	)
}

// Interval returns the refresh interval
func (x *RefreshSchedule) Interval() time.Duration {
	return x.interval
}

// Targets parses the configured targets. An empty result disables the worker.
func (x *RefreshSchedule) Targets() ([]worker.Target, error) {
	targets := make([]worker.Target, 0, len(x.targets))
	for _, s := range x.targets {
		t, err := worker.ParseTarget(s)
		if err != nil {
			return nil, goerr.Wrap(ErrInvalidConfig, "invalid refresh target",
				goerr.V(FlagKey, "refresh-target"), goerr.V("cause", err.Error()))
		}
		targets = append(targets, t)
	}
	return targets, nil
}
